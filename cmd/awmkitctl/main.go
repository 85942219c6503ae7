// awmkitctl is the control CLI for AWMKit: tag identities, key slots,
// message codec, audio embed/detect, evidence, and status.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"awmkit/internal/config"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

var (
	configPath  = flag.String("config", "", "path to config file")
	noColor     = flag.Bool("no-color", false, "disable colored output")
	showVersion = flag.Bool("version", false, "show version information")
	quiet       = flag.Bool("q", false, "suppress banner")
)

type colors struct {
	Reset, Bold, Dim, Red, Green, Yellow, Cyan, White string
}

var c colors

func initColors() {
	if *noColor || os.Getenv("NO_COLOR") != "" || !isTerminal() {
		c = colors{}
		return
	}
	c = colors{
		Reset: "\033[0m", Bold: "\033[1m", Dim: "\033[2m",
		Red: "\033[31m", Green: "\033[32m", Yellow: "\033[33m",
		Cyan: "\033[36m", White: "\033[37m",
	}
}

func isTerminal() bool {
	if runtime.GOOS == "windows" {
		return os.Getenv("TERM") != "" || os.Getenv("WT_SESSION") != ""
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

const banner = `
%s    ▄▀█ █░█░█ █▀▄▀█ █▄▀ █ ▀█▀%s
%s    █▀█ ▀▄▀▄▀ █░▀░█ █░█ █ ░█░%s%sctl%s

`

func printBanner() {
	fmt.Fprintf(os.Stderr, banner, c.Cyan+c.Bold, c.Reset, c.Cyan+c.Bold, c.Reset, c.Dim, c.Reset)
}

func printVersion() {
	fmt.Printf("%sawmkitctl%s %s%s%s\n", c.Bold, c.Reset, c.Cyan, Version, c.Reset)
	fmt.Printf("  %sBuild%s    %s\n", c.Dim, c.Reset, BuildTime)
	fmt.Printf("  %sCommit%s   %s\n", c.Dim, c.Reset, Commit)
	fmt.Printf("  %sPlatform%s %s/%s\n", c.Dim, c.Reset, runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  %sGo%s       %s\n", c.Dim, c.Reset, runtime.Version())
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s%s ERROR %s %s\n", c.Bold, c.Red, c.Reset, msg)
}

func printSection(title string) {
	fmt.Printf("\n%s%s %s %s\n\n", c.Bold, c.Cyan, title, c.Reset)
}

func usage() {
	fmt.Fprintf(os.Stderr, `%sUSAGE%s
    awmkitctl [options] <command> [arguments]

%sCOMMANDS%s
    %sinit%s                               Create config, database, and key-slot storage
    %stag%s      suggest <username>         Derive a deterministic tag from a username
              save <username> <tag>      Remember username -> tag
              list                       List saved username -> tag mappings
              remove <username>          Forget a mapping
              clear                      Forget all mappings
    %skey%s      show <slot>                Show a slot's metadata
              import <slot> <hex|-> key   Import 32-byte key material (hex, or raw via stdin with -)
              export <slot>              Print a slot's key material as hex
              rotate <slot>              Replace a slot's key with a fresh one
              delete <slot>              Remove a slot
              slot current                Show the active slot
              slot use <slot>             Set the active slot
              slot list                   List configured slots
              slot label <slot> <text>    Set a slot's label
    %sencode%s  <tag> [slot]                Print a 16-byte message (hex) for the active/given key
    %sdecode%s  <hex>                       Decode a message against all configured slots
    %sembed%s   <in.wav> <out.wav> <tag>    Embed a watermark, recording evidence on success
    %sdetect%s  [--json] <file>             Detect a watermark and run clone-check
    %sevidence%s list|show <id>|export <id> [--format json|yaml]|remove <id>|clear
    %sstatus%s  [--doctor]                  Show configuration and dependency health
    %scache%s   clean [--db] [--logs]        Remove the engine binary cache (and optionally the database/logs)
    %sversion%s                             Show version information

%sOPTIONS%s
    -config <path>   Path to config file (default: ~/.awmkit/config.toml)
    -no-color        Disable colored output
    -q               Suppress banner

`,
		c.Bold+c.White, c.Reset,
		c.Bold+c.White, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Bold+c.White, c.Reset,
	)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		printError(fmt.Sprintf("loading config: %v", err))
		os.Exit(1)
	}
	return cfg
}

func main() {
	flag.Parse()
	initColors()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		if !*quiet {
			printBanner()
		}
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	if !*quiet && cmd != "help" && cmd != "version" {
		printBanner()
	}

	args := flag.Args()[1:]

	switch cmd {
	case "init":
		cmdInit()
	case "tag":
		cmdTag(args)
	case "key":
		cmdKey(args)
	case "encode":
		cmdEncode(args)
	case "decode":
		cmdDecode(args)
	case "embed":
		cmdEmbed(args)
	case "detect":
		cmdDetect(args)
	case "evidence":
		cmdEvidence(args)
	case "status":
		cmdStatus(args)
	case "cache":
		cmdCache(args)
	case "help":
		usage()
	case "version":
		printVersion()
	default:
		printError(fmt.Sprintf("unknown command: %s", cmd))
		usage()
		os.Exit(1)
	}
}
