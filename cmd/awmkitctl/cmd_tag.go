package main

import (
	"fmt"
	"os"

	"awmkit/internal/suggest"
)

func cmdTag(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl tag {suggest,save,list,remove,clear} ...")
		os.Exit(1)
	}

	switch args[0] {
	case "suggest":
		cmdTagSuggest(args[1:])
	case "save":
		cmdTagSave(args[1:])
	case "list":
		cmdTagList()
	case "remove":
		cmdTagRemove(args[1:])
	case "clear":
		cmdTagClear()
	default:
		printError(fmt.Sprintf("unknown tag subcommand: %s", args[0]))
		os.Exit(1)
	}
}

func cmdTagSuggest(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl tag suggest <username>")
		os.Exit(1)
	}
	t, err := suggest.FromUsername(args[0])
	if err != nil {
		printError(fmt.Sprintf("suggest: %v", err))
		os.Exit(1)
	}
	fmt.Println(t.String())
}

func cmdTagSave(args []string) {
	if len(args) < 2 {
		printError("usage: awmkitctl tag save <username> <tag>")
		os.Exit(1)
	}
	a := openApp()
	defer a.close()

	if err := a.store.SaveTagMapping(args[0], args[1]); err != nil {
		printError(fmt.Sprintf("save: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sSaved%s %s -> %s\n", c.Green, c.Reset, args[0], args[1])
}

func cmdTagList() {
	a := openApp()
	defer a.close()

	mappings, err := a.store.ListTagMappings()
	if err != nil {
		printError(fmt.Sprintf("list: %v", err))
		os.Exit(1)
	}
	printSection("Tag mappings")
	for _, m := range mappings {
		fmt.Printf("  %-20s %s\n", m.Username, m.Tag)
	}
}

func cmdTagRemove(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl tag remove <username>")
		os.Exit(1)
	}
	a := openApp()
	defer a.close()

	if err := a.store.RemoveTagMapping(args[0]); err != nil {
		printError(fmt.Sprintf("remove: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sRemoved%s %s\n", c.Green, c.Reset, args[0])
}

func cmdTagClear() {
	a := openApp()
	defer a.close()

	if err := a.store.ClearTagMappings(); err != nil {
		printError(fmt.Sprintf("clear: %v", err))
		os.Exit(1)
	}
	fmt.Printf("%sCleared all tag mappings%s\n", c.Green, c.Reset)
}
