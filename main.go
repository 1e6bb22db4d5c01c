package main

import (
	"github.com/wasomaji/kitabu/internal/config"
	"github.com/wasomaji/kitabu/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
