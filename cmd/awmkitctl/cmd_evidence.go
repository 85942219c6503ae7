package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

func cmdEvidence(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl evidence {list,show,export,remove,clear} ...")
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	switch args[0] {
	case "list":
		rows, err := a.store.ListEvidence(100)
		if err != nil {
			printError(fmt.Sprintf("list: %v", err))
			os.Exit(1)
		}
		printSection("Evidence")
		for _, e := range rows {
			fmt.Printf("  %4d  %-10s slot=%-2d %s\n", e.ID, e.Identity, e.KeySlot, e.FilePath)
		}
	case "show":
		if len(args) < 2 {
			printError("usage: awmkitctl evidence show <id>")
			os.Exit(1)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			printError(fmt.Sprintf("invalid id: %v", err))
			os.Exit(1)
		}
		e, err := a.store.GetEvidenceByID(id)
		if err != nil {
			printError(fmt.Sprintf("show: %v", err))
			os.Exit(1)
		}
		if e == nil {
			printError(fmt.Sprintf("no evidence row with id %d", id))
			os.Exit(1)
		}
		printSection(fmt.Sprintf("Evidence %d", e.ID))
		fmt.Printf("  %sFile%s       %s\n", c.Dim, c.Reset, e.FilePath)
		fmt.Printf("  %sTag%s        %s\n", c.Dim, c.Reset, e.Tag)
		fmt.Printf("  %sIdentity%s   %s\n", c.Dim, c.Reset, e.Identity)
		fmt.Printf("  %sKey slot%s   %d\n", c.Dim, c.Reset, e.KeySlot)
		fmt.Printf("  %sKey ID%s     %s\n", c.Dim, c.Reset, e.KeyID)
		fmt.Printf("  %sPCM SHA256%s %s\n", c.Dim, c.Reset, e.PCMSHA256)
		fmt.Printf("  %sCreated%s    %s\n", c.Dim, c.Reset, e.CreatedAt)
	case "export":
		cmdEvidenceExport(a, args[1:])
	case "remove":
		if len(args) < 2 {
			printError("usage: awmkitctl evidence remove <id>")
			os.Exit(1)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			printError(fmt.Sprintf("invalid id: %v", err))
			os.Exit(1)
		}
		if err := a.store.DeleteEvidence(id); err != nil {
			printError(fmt.Sprintf("remove: %v", err))
			os.Exit(1)
		}
		fmt.Printf("%sRemoved evidence%s %d\n", c.Green, c.Reset, id)
	case "clear":
		if err := a.store.ClearEvidence(); err != nil {
			printError(fmt.Sprintf("clear: %v", err))
			os.Exit(1)
		}
		fmt.Printf("%sCleared all evidence%s\n", c.Green, c.Reset)
	default:
		printError(fmt.Sprintf("unknown evidence subcommand: %s", args[0]))
		os.Exit(1)
	}
}

// cmdEvidenceExport serializes one evidence row as JSON or YAML.
func cmdEvidenceExport(a *app, args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl evidence export <id> [--format json|yaml]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("evidence export", flag.ExitOnError)
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args[1:]); err != nil {
		printError(fmt.Sprintf("parsing flags: %v", err))
		os.Exit(1)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printError(fmt.Sprintf("invalid id: %v", err))
		os.Exit(1)
	}
	e, err := a.store.GetEvidenceByID(id)
	if err != nil {
		printError(fmt.Sprintf("export: %v", err))
		os.Exit(1)
	}
	if e == nil {
		printError(fmt.Sprintf("no evidence row with id %d", id))
		os.Exit(1)
	}

	var out []byte
	switch *format {
	case "json":
		out, err = json.MarshalIndent(e, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(e)
	default:
		printError(fmt.Sprintf("unknown format %q (want json or yaml)", *format))
		os.Exit(1)
	}
	if err != nil {
		printError(fmt.Sprintf("export: %v", err))
		os.Exit(1)
	}
	os.Stdout.Write(out)
	if *format == "json" {
		fmt.Println()
	}
}
