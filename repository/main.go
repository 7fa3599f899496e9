package repository

import (
	"github.com/tnqbao/gau-photobooth/infra"
)

type Repository struct {
	PhotoRepo *PhotoRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		PhotoRepo: NewPhotoRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
