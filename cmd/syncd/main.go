package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ortano/docsync/internal/app"
	"github.com/ortano/docsync/internal/config"
	"github.com/ortano/docsync/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("syncd")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	daemon, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error assembling daemon")
	}

	if err = daemon.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("daemon run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
