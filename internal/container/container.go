package container

import (
	app "pv-hotspot/internal/application"
	"pv-hotspot/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	ReportService   *app.ReportService
	PipelineService *app.PipelineService
}

// New собирает сервисы. Прогоны конвейера сохраняются в faultRepo.
func New(userRepo port.UserRepository, faultRepo port.FaultRepository, pipeline app.PipelineDeps) *Container {
	pipeline.Repo = faultRepo

	return &Container{
		UserService:     app.NewUserService(userRepo),
		ReportService:   app.NewReportService(faultRepo),
		PipelineService: app.NewPipelineService(pipeline),
	}
}
