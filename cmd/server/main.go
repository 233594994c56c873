package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/config"
	"github.com/nhle/taskboard/internal/events"
	"github.com/nhle/taskboard/internal/rest"
	"github.com/nhle/taskboard/internal/service"
	"github.com/nhle/taskboard/internal/store"

	"github.com/nhle/taskboard/internal/auth"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := setupLogger(cfg.Env, cfg.LogsPath)
	log.WithField("env", cfg.Env).Info("Application start!")

	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer db.Close()

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL())
	hub := events.NewHub(logrus.NewEntry(log))

	svcs := rest.Services{
		Users:     service.NewUserService(db, tokens),
		Projects:  service.NewProjectService(db, logrus.NewEntry(log)),
		Tasks:     service.NewTaskService(db, hub, logrus.NewEntry(log)),
		Analytics: service.NewAnalyticsService(db),
	}

	router := rest.NewRouter(svcs, tokens, hub, log)

	log.WithField("port", cfg.Port).Info("listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func setupLogger(env string, logFilePath string) *logrus.Logger {
	log := logrus.New()

	switch env {
	case envLocal:
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case envDev, envProd:
		logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(err)
		}
		log.SetOutput(logFile)
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		if env == envProd {
			log.SetLevel(logrus.WarnLevel)
		} else {
			log.SetLevel(logrus.InfoLevel)
		}
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}
