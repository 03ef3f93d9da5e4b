package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"

	"carenest/services/portal/server"
	config "carenest/shared"
	"carenest/shared/logger"
	base "carenest/shared/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.Get(cfg.Log)
	log.Info("Starting CareNest portal")

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	storage, opts, err := server.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Error("session storage error", "error", err)
		os.Exit(1)
	}

	bs, err := base.NewBaseServer(cfg.App.Name, cfg, log, opts...)
	if err != nil {
		log.Error("base server error", "error", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(bs, storage)
	if err != nil {
		log.Error("server init error", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("CareNest portal stopped gracefully")
}
