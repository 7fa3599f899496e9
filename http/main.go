package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-photobooth/config"
	"github.com/tnqbao/gau-photobooth/http/controller"
	routes "github.com/tnqbao/gau-photobooth/http/route"
	infraPkg "github.com/tnqbao/gau-photobooth/infra"
	"github.com/tnqbao/gau-photobooth/repository"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :" + cfg.EnvConfig.Server.Port)
	if err := router.Run(":" + cfg.EnvConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
