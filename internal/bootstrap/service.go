package bootstrap

import (
	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/services"
)

// Service is the application glue where we put all top level components to be used.
type Service struct {
	Scanner   *DlqScanner
	UseCase   *services.UseCase
	Brokers   servicebus.Provider
	Logger    libLog.Logger
	Telemetry *libOpentelemetry.Telemetry
}

// Run starts the application.
// This is the only necessary code to run an app in main.go
func (app *Service) Run() {
	libCommons.NewLauncher(
		libCommons.WithLogger(app.Logger),
		libCommons.RunApp("DLQ Scanner", app.Scanner),
	).Run()
}
