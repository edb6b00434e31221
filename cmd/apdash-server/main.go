package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"apdash-backend/internal/config"
)

func main() {
	bootstrap := logrus.New()
	cfg := config.Load(bootstrap)
	log := config.NewLogger(cfg)

	if err := newRootCmd(cfg, log).Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
