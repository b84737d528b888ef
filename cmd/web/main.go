package main

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ninagrant/pairs/config"
	"github.com/ninagrant/pairs/server"
	"github.com/ninagrant/pairs/store"
)

func main() {
	// a missing .env file is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	logger := newLogger(cfg.LogLevel)

	lobbies := store.NewInMemoryStore(store.StoreOpts{
		Logger:        logger,
		MatchDelay:    cfg.MatchDelay(),
		MismatchDelay: cfg.MismatchDelay(),
	})

	s := server.NewServer(lobbies, cfg, logger)

	logger.WithField("addr", cfg.Addr).Info("listening")
	logger.Fatal(s.ListenAndServe())
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()

	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = time.RFC3339
	formatter.FullTimestamp = true
	logger.SetFormatter(formatter)

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}
