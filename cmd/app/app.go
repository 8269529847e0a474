package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/DRSN-tech/catalog-admin/internal/app"
	config "github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/joho/godotenv"
)

//	@title			Catalog Admin API
//	@version		1.0
//	@description	Управление каталогом: товары с фото, категории, производители.
//	@BasePath		/api
func main() {
	log := logger.NewSlogLogger()

	// .env нужен только при локальном запуске, в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Errorf(err, "failed to read .env")
		os.Exit(1)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
