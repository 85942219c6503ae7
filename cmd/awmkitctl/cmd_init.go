package main

import (
	"fmt"
	"os"

	"awmkit/internal/config"
)

func cmdInit() {
	cfg, _, err := config.LoadOrCreate(*configPath)
	if err != nil {
		printError(fmt.Sprintf("creating config: %v", err))
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		printError(fmt.Sprintf("creating directories: %v", err))
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	printSection("Initialized")
	fmt.Printf("%sDatabase%s      %s\n", c.Dim, c.Reset, a.cfg.DatabasePath)
	fmt.Printf("%sEngine cache%s  %s\n", c.Dim, c.Reset, a.cfg.EngineCacheDir)
	fmt.Printf("%sConfig%s        %s\n", c.Dim, c.Reset, config.ConfigPath())
}
