// Package main is the entry point for the STL viewer.
//
// Usage:
//
//	viewer [flags] [file.stl ...]
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/config"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== STL Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if len(cfg.Scene.Objects) == 0 {
		logger.Warn("no STL files given; pass paths as arguments, list them under scene.objects, or press O")
	}

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
