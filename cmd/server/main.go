package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides environment)")
	port := flag.String("port", "", "Server port")
	host := flag.String("host", "", "Listen host")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	modulesDir := flag.String("modules-dir", "", "Directory of widget module packages")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags win over file and environment
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *modulesDir != "" {
		cfg.Loader.ModulesDir = *modulesDir
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		logger.Fatal("Server error", zap.Error(err))
	}
}
