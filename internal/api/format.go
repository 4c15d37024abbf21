package telegram

import (
	"fmt"
	"strings"

	"pv-hotspot/internal/domain/entity"
)

var severityIcons = map[entity.Severity]string{
	entity.SeverityCritical: "🔴",
	entity.SeverityHigh:     "🟠",
	entity.SeverityMedium:   "🟡",
	entity.SeverityLow:      "🟢",
}

// FormatSummary сводка прогона для чата.
func FormatSummary(r *entity.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Прогон %s\n", shortID(r.RunID))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "🕒 %s\n", r.FinishedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "\nТайлов: %d (пропущено %d)\n", r.TilesTotal, r.TilesSkipped)
	fmt.Fprintf(&sb, "Детекций: %d, проходов слияния: %d\n", r.Detections, r.MergePasses)
	fmt.Fprintf(&sb, "Неисправностей: %d, к устранению: %d\n", len(r.Faults), r.Reported)

	for i := len(entity.Severities()) - 1; i >= 0; i-- {
		s := entity.Severities()[i]
		if n := r.SeverityCounts[s]; n > 0 {
			fmt.Fprintf(&sb, "%s %s: %d\n", severityIcons[s], s, n)
		}
	}
	fmt.Fprintf(&sb, "\n⚡ Потери: %.1f кВт·ч/год", r.AnnualKWhLoss)
	return sb.String()
}

// FormatTop список неисправностей по приоритету.
func FormatTop(faults []entity.Fault) string {
	if len(faults) == 0 {
		return msgNoFaults
	}
	var sb strings.Builder
	sb.WriteString("🔥 Приоритетные неисправности:\n")
	for i, f := range faults {
		fmt.Fprintf(&sb, "\n%d. %s %s %s\n   ΔT=%.1f°C, площадь %d px, приоритет %.2f",
			i+1, severityIcons[f.Severity], f.FaultID, f.FaultType, f.DeltaTMax, f.PixelArea, f.Priority)
	}
	sb.WriteString("\n\nПодробнее: /fault <id>")
	return sb.String()
}

// FormatFault карточка одной неисправности.
func FormatFault(f *entity.Fault) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s — %s\n\n", severityIcons[f.Severity], f.FaultID, f.FaultType)
	fmt.Fprintf(&sb, "Срочность: %s\n", f.Severity)
	fmt.Fprintf(&sb, "Уверенность: %.1f%%\n", f.Confidence)
	fmt.Fprintf(&sb, "ΔT max: %.2f°C\n", f.DeltaTMax)
	fmt.Fprintf(&sb, "Площадь: %d px\n", f.PixelArea)
	fmt.Fprintf(&sb, "Слито детекций: %d, тайлы: %s\n", f.MergeCount, joinInts(f.Tiles))
	fmt.Fprintf(&sb, "Потери: %.2f%% (%.1f кВт·ч/год)\n", f.LossPct, f.AnnualKWhLoss)
	fmt.Fprintf(&sb, "Приоритет: %.2f\n", f.Priority)
	fmt.Fprintf(&sb, "📍 %.6f, %.6f", f.Lat, f.Lon)
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
