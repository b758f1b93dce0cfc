package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"loanlens/internal"
	"loanlens/internal/config"
	"loanlens/internal/container"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level), appConfig.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		logger.Error("[Main] failed to create application container: %v", err)
		os.Exit(1)
	}

	if err := appContainer.LoadDataset(ctx); err != nil {
		if appConfig.Data.StrictStartup {
			logger.Error("[Main] %v", err)
			_ = appContainer.Shutdown(context.Background())
			os.Exit(1)
		}
		// pages answer with the load error until a reload succeeds
		logger.Error("[Main] %v; serving error pages", err)
	}

	if err := appContainer.StartWatcher(ctx); err != nil {
		logger.Warn("[Main] %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(appContainer.Server.Start)
	if appContainer.Admin != nil {
		g.Go(appContainer.Admin.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("[Main] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		return appContainer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("[Main] server stopped: %v", err)
		os.Exit(1)
	}
}
