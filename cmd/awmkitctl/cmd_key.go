package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
)

func cmdKey(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key {show,import,export,rotate,delete,slot} ...")
		os.Exit(1)
	}

	switch args[0] {
	case "show":
		cmdKeyShow(args[1:])
	case "import":
		cmdKeyImport(args[1:])
	case "export":
		cmdKeyExport(args[1:])
	case "rotate":
		cmdKeyRotate(args[1:])
	case "delete":
		cmdKeyDelete(args[1:])
	case "slot":
		cmdKeySlot(args[1:])
	default:
		printError(fmt.Sprintf("unknown key subcommand: %s", args[0]))
		os.Exit(1)
	}
}

func parseSlot(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		printError(fmt.Sprintf("invalid slot %q: %v", s, err))
		os.Exit(1)
	}
	return i
}

func cmdKeyShow(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key show <slot>")
		os.Exit(1)
	}
	slot := parseSlot(args[0])

	a := openApp()
	defer a.close()

	slots, err := a.keys.List()
	if err != nil {
		printError(fmt.Sprintf("list: %v", err))
		os.Exit(1)
	}
	for _, s := range slots {
		if s.Index != slot {
			continue
		}
		printSection(fmt.Sprintf("Slot %d", s.Index))
		fmt.Printf("  %sLabel%s      %s\n", c.Dim, c.Reset, s.Label)
		fmt.Printf("  %sKey ID%s     %s\n", c.Dim, c.Reset, s.KeyID)
		fmt.Printf("  %sTPM-sealed%s %v\n", c.Dim, c.Reset, s.Sealed)
		fmt.Printf("  %sUpdated%s    %s\n", c.Dim, c.Reset, s.UpdatedAt)
		return
	}
	printError(fmt.Sprintf("slot %d is not configured", slot))
	os.Exit(1)
}

func cmdKeyImport(args []string) {
	if len(args) < 2 {
		printError("usage: awmkitctl key import <slot> <hex|->")
		os.Exit(1)
	}
	slot := parseSlot(args[0])

	var raw []byte
	if args[1] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			printError(fmt.Sprintf("read stdin: %v", err))
			os.Exit(1)
		}
		raw = data
	} else {
		raw = []byte(args[1])
	}

	a := openApp()
	defer a.close()

	if err := a.keys.Import(slot, raw); err != nil {
		printError(fmt.Sprintf("import: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sImported key into slot%s %d\n", c.Green, c.Reset, slot)
}

func cmdKeyExport(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key export <slot>")
		os.Exit(1)
	}
	slot := parseSlot(args[0])

	a := openApp()
	defer a.close()

	key, err := a.keys.Key(slot)
	if err != nil {
		printError(fmt.Sprintf("export: %v", err))
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(key))
}

func cmdKeyRotate(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key rotate <slot>")
		os.Exit(1)
	}
	slot := parseSlot(args[0])

	a := openApp()
	defer a.close()

	if err := a.keys.Rotate(slot); err != nil {
		printError(fmt.Sprintf("rotate: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sRotated slot%s %d\n", c.Green, c.Reset, slot)
}

func cmdKeyDelete(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key delete <slot>")
		os.Exit(1)
	}
	slot := parseSlot(args[0])

	a := openApp()
	defer a.close()

	if err := a.keys.Delete(slot); err != nil {
		printError(fmt.Sprintf("delete: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sDeleted slot%s %d\n", c.Green, c.Reset, slot)
}

func cmdKeySlot(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl key slot {current,use,list,label} ...")
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	switch args[0] {
	case "current":
		slot, err := a.keys.Current()
		if err != nil {
			printError(fmt.Sprintf("current: %v", err))
			os.Exit(1)
		}
		fmt.Println(slot)
	case "use":
		if len(args) < 2 {
			printError("usage: awmkitctl key slot use <slot>")
			os.Exit(1)
		}
		slot := parseSlot(args[1])
		if err := a.keys.Use(slot); err != nil {
			printError(fmt.Sprintf("use: %v", err))
			os.Exit(1)
		}
		fmt.Printf("%sActive slot set to%s %d\n", c.Green, c.Reset, slot)
	case "list":
		slots, err := a.keys.List()
		if err != nil {
			printError(fmt.Sprintf("list: %v", err))
			os.Exit(1)
		}
		printSection("Key slots")
		for _, s := range slots {
			fmt.Printf("  %2d  %-12s %s\n", s.Index, s.Label, s.KeyID)
		}
	case "label":
		if len(args) < 3 {
			printError("usage: awmkitctl key slot label <slot> <text>")
			os.Exit(1)
		}
		slot := parseSlot(args[1])
		if err := a.keys.LabelSet(slot, args[2]); err != nil {
			printError(fmt.Sprintf("label: %v", err))
			os.Exit(1)
		}
		fmt.Printf("%sLabel set%s\n", c.Green, c.Reset)
	default:
		printError(fmt.Sprintf("unknown key slot subcommand: %s", args[0]))
		os.Exit(1)
	}
}

