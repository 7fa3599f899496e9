package controller

import (
	"github.com/tnqbao/gau-photobooth/config"
	"github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/repository"
	"github.com/tnqbao/gau-photobooth/service"
)

type Controller struct {
	Config  *config.Config
	Infra   *infra.Infra
	Service *service.PhotoService
}

func NewController(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	svc := service.NewPhotoService(
		infra.Minio,
		repo.PhotoRepo,
		infra.Produce.CleanupService,
		infra.Redis,
		infra.Logger,
		cfg.EnvConfig.Storage.MaxUploadSize,
	)

	return &Controller{
		Config:  cfg,
		Infra:   infra,
		Service: svc,
	}
}
