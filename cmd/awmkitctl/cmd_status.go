package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"awmkit/internal/audio"
	"awmkit/internal/logging"
)

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	doctor := fs.Bool("doctor", false, "run dependency health checks")
	if err := fs.Parse(args); err != nil {
		printError(fmt.Sprintf("parsing flags: %v", err))
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	printSection("Configuration")
	fmt.Printf("  %sDatabase%s          %s\n", c.Dim, c.Reset, a.cfg.DatabasePath)
	fmt.Printf("  %sEngine cache%s      %s\n", c.Dim, c.Reset, a.cfg.EngineCacheDir)
	fmt.Printf("  %sDefault strength%s  %d\n", c.Dim, c.Reset, a.cfg.DefaultStrength)
	fmt.Printf("  %sDefault version%s   %d\n", c.Dim, c.Reset, a.cfg.DefaultVersion)
	fmt.Printf("  %sPipe I/O%s          %v\n", c.Dim, c.Reset, !a.cfg.DisablePipeIO)

	slot, err := a.keys.Current()
	if err == nil {
		fmt.Printf("  %sActive key slot%s   %d\n", c.Dim, c.Reset, slot)
	}

	if !*doctor {
		return
	}

	printSection("Doctor")
	exitCode := 0

	if enginePath, err := audio.DiscoverEngine(a.cfg.EngineBinaryPath, a.cfg.EngineCacheDir); err != nil {
		fmt.Printf("  %s✗%s embed/detect engine: %v\n", c.Red, c.Reset, err)
		exitCode = 1
	} else {
		fmt.Printf("  %s✓%s embed/detect engine: %s\n", c.Green, c.Reset, enginePath)
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		fmt.Printf("  %s✗%s ffmpeg not found on PATH (non-WAV input will fail)\n", c.Yellow, c.Reset)
	} else {
		fmt.Printf("  %s✓%s ffmpeg on PATH\n", c.Green, c.Reset)
	}

	if a.cfg.FingerprintBinaryPath == "" {
		fmt.Printf("  %s✗%s fingerprint generator not configured (clone-check reports unavailable)\n", c.Yellow, c.Reset)
	} else if _, err := os.Stat(a.cfg.FingerprintBinaryPath); err != nil {
		fmt.Printf("  %s✗%s fingerprint generator: %v\n", c.Red, c.Reset, err)
		exitCode = 1
	} else {
		fmt.Printf("  %s✓%s fingerprint generator: %s\n", c.Green, c.Reset, a.cfg.FingerprintBinaryPath)
	}

	slots, err := a.keys.List()
	if err != nil {
		fmt.Printf("  %s✗%s key registry: %v\n", c.Red, c.Reset, err)
		exitCode = 1
	} else if len(slots) == 0 {
		fmt.Printf("  %s✗%s no key slots configured\n", c.Yellow, c.Reset)
	} else {
		fmt.Printf("  %s✓%s %d key slot(s) configured\n", c.Green, c.Reset, len(slots))
	}

	os.Exit(exitCode)
}

func cmdCache(args []string) {
	if len(args) < 1 || args[0] != "clean" {
		printError("usage: awmkitctl cache clean [--db] [--logs]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("cache clean", flag.ExitOnError)
	withDB := fs.Bool("db", false, "also remove the evidence/tag/settings database")
	withLogs := fs.Bool("logs", false, "also remove rotated and compressed log files")
	if err := fs.Parse(args[1:]); err != nil {
		printError(fmt.Sprintf("parsing flags: %v", err))
		os.Exit(1)
	}

	cfg := loadConfig()

	if err := os.RemoveAll(cfg.EngineCacheDir); err != nil {
		printError(fmt.Sprintf("removing engine cache: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sRemoved engine cache%s %s\n", c.Green, c.Reset, cfg.EngineCacheDir)

	if *withDB {
		if err := os.Remove(cfg.DatabasePath); err != nil && !os.IsNotExist(err) {
			printError(fmt.Sprintf("removing database: %v", err))
			os.Exit(1)
		}
		fmt.Printf("%sRemoved database%s %s\n", c.Green, c.Reset, cfg.DatabasePath)
	}

	if *withLogs {
		removeLogFiles()
	}
}

// removeLogFiles deletes the current log file plus every rotated and
// gzip-compressed sibling discovered via FileRotator.GetLogFiles.
func removeLogFiles() {
	rotator, err := logging.NewFileRotator(logging.DefaultConfig())
	if err != nil {
		printError(fmt.Sprintf("removing logs: %v", err))
		os.Exit(1)
	}
	files, err := rotator.GetLogFiles()
	rotator.Close()
	if err != nil {
		printError(fmt.Sprintf("removing logs: %v", err))
		os.Exit(1)
	}

	removed := 0
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			printError(fmt.Sprintf("removing log file %s: %v", f, err))
			os.Exit(1)
		} else if err == nil {
			removed++
		}
	}
	fmt.Printf("%sRemoved%s %d log file(s)\n", c.Green, c.Reset, removed)
}
