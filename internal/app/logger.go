package app

import (
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/config"
)

// InitLogger configures the global logrus logger from cfg.
func InitLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
