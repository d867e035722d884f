package main

import (
	"log"

	"github.com/burntkayatoast/web-dev-project/config"
	"github.com/burntkayatoast/web-dev-project/db"
	"github.com/burntkayatoast/web-dev-project/routes"
	"github.com/burntkayatoast/web-dev-project/tmdb"
)

func main() {
	cfg := config.Load()

	dbService, err := db.NewService(cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbService.Close()

	if err := dbService.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	api := routes.NewAPI(dbService, cfg, tmdb.NewClient(cfg.GetTMDBKey()))
	api.Run()
}
