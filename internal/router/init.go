package router

import (
	"github.com/talentgrid/talentgrid-api/internal/application"
	"github.com/talentgrid/talentgrid-api/internal/container"
	gcsinfra "github.com/talentgrid/talentgrid-api/internal/infrastructure/gcs"
	pginfra "github.com/talentgrid/talentgrid-api/internal/infrastructure/postgres"
	handlers "github.com/talentgrid/talentgrid-api/internal/interface/http"
	"github.com/talentgrid/talentgrid-api/internal/router/modules"
)

// InitModules wires the application modules from container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	repo := pginfra.NewUserRepository(container.GetPGPool())
	uploader := gcsinfra.NewUploader(container.GetGCS(), cfg.GCSBucket)

	var mail application.MailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	service := application.NewService(
		repo,
		container.GetHasher(),
		container.GetJWT(),
		uploader,
		mail,
		container.GetLogger(),
		container.GetES(),
		cfg.ESProfilesIndex,
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)

	r.Add(modules.NewUserModule(handler, container.GetJWT()))
}
