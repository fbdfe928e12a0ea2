// Package main implements the cssminify-mcp entry point.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/seanhalberthal/cssminify/internal/cli"
	"github.com/seanhalberthal/cssminify/internal/config"
	"github.com/seanhalberthal/cssminify/internal/minifier"
	"github.com/seanhalberthal/cssminify/internal/server"
)

func main() {
	cliMode := flag.Bool("cli", false, "Run in CLI mode instead of MCP server")
	configFile := flag.String("config", "", "Config file (default ./"+config.FileName+" if present)")
	flag.Parse()

	path := *configFile
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = config.Find(wd)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *cliMode {
		cli.Run(cfg, flag.Args())
		return
	}

	m, err := minifier.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise minifier: %v", err)
	}
	server.Run(m)
}
