package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"awmkit/internal/detect"
	"awmkit/internal/message"
	"awmkit/internal/tag"
)

func cmdEncode(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl encode <tag> [slot]")
		os.Exit(1)
	}

	t, err := tag.Parse(args[0])
	if err != nil {
		printError(fmt.Sprintf("encode: %v", err))
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	slot, key, err := resolveSlot(a, args[1:])
	if err != nil {
		printError(fmt.Sprintf("encode: %v", err))
		os.Exit(1)
	}

	out, err := message.Encode(message.EncodeOptions{
		Version: uint8(a.cfg.DefaultVersion),
		Tag:     t,
		Key:     key,
		KeySlot: &slot,
	})
	if err != nil {
		printError(fmt.Sprintf("encode: %v", err))
		os.Exit(1)
	}
	fmt.Println(hex.EncodeToString(out[:]))
}

// resolveSlot returns the explicit slot from args[0] if present, or the
// registry's active slot and key otherwise.
func resolveSlot(a *app, args []string) (int, []byte, error) {
	if len(args) > 0 {
		slot := parseSlot(args[0])
		key, err := a.keys.Key(slot)
		if err != nil {
			return 0, nil, err
		}
		return slot, key, nil
	}
	return a.activeSlotKey()
}

func cmdDecode(args []string) {
	if len(args) < 1 {
		printError("usage: awmkitctl decode <hex>")
		os.Exit(1)
	}

	raw, err := hex.DecodeString(args[0])
	if err != nil {
		printError(fmt.Sprintf("decode: invalid hex: %v", err))
		os.Exit(1)
	}
	if len(raw) != message.Size {
		printError(fmt.Sprintf("decode: expected %d bytes, got %d", message.Size, len(raw)))
		os.Exit(1)
	}
	var candidate [message.Size]byte
	copy(candidate[:], raw)

	a := openApp()
	defer a.close()

	keys, err := a.keys.Keys()
	if err != nil {
		printError(fmt.Sprintf("decode: %v", err))
		os.Exit(1)
	}

	result, err := detect.Route(candidate, keys)
	if err != nil {
		printError(fmt.Sprintf("decode: %v", err))
		os.Exit(1)
	}

	printSection("Decode result")
	fmt.Printf("  %sstatus%s    %s\n", c.Dim, c.Reset, result.Status)
	fmt.Printf("  %sslot_hint%s %d\n", c.Dim, c.Reset, result.SlotHint)
	fmt.Printf("  %sslot_used%s %d\n", c.Dim, c.Reset, result.SlotUsed)
	if result.Decoded != nil {
		fmt.Printf("  %stag%s       %s\n", c.Dim, c.Reset, result.Decoded.Tag.String())
		fmt.Printf("  %sidentity%s  %s\n", c.Dim, c.Reset, result.Decoded.Tag.Identity())
		fmt.Printf("  %sversion%s   %d\n", c.Dim, c.Reset, result.Decoded.Version)
	}

	if result.Status == detect.StatusMismatch || result.Status == detect.StatusMissingKey {
		os.Exit(1)
	}
}
