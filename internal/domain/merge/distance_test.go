package merge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	var h Haversine
	require.Zero(t, h.Distance(10, 20, 10, 20))
	// 0.001° долготы на широте 20° ≈ 104.5 м
	require.InDelta(t, 104.5, h.Distance(10, 20, 10.001, 20), 0.1)
	// 0.001° широты ≈ 111.2 м
	require.InDelta(t, 111.2, h.Distance(10, 20, 10, 20.001), 0.1)
	require.InDelta(t, h.Distance(1, 2, 3, 4), h.Distance(3, 4, 1, 2), 1e-9)
}

func TestPlanar(t *testing.T) {
	require.Equal(t, 5.0, Planar{}.Distance(0, 0, 3, 4))
}

func TestMetricByName(t *testing.T) {
	m, err := MetricByName("")
	require.NoError(t, err)
	require.IsType(t, Haversine{}, m)

	m, err = MetricByName("Planar")
	require.NoError(t, err)
	require.IsType(t, Planar{}, m)

	_, err = MetricByName("manhattan")
	require.Error(t, err)
}
