package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"awmkit/internal/audio"
	"awmkit/internal/clonecheck"
	"awmkit/internal/detect"
	"awmkit/internal/evidence"
	"awmkit/internal/message"
	"awmkit/internal/schemaval"
	"awmkit/internal/security"
	"awmkit/internal/tag"
)

func (a *app) openOrchestrator() *audio.Orchestrator {
	enginePath, err := audio.DiscoverEngine(a.cfg.EngineBinaryPath, a.cfg.EngineCacheDir)
	if err != nil {
		// Embed/detect still construct an Orchestrator with an empty
		// EnginePath; the engine invocation then fails with the bare
		// ErrEngineNotFound sentinel (without the discovery detail
		// above), so callers get one consistent error
		// path instead of a separate "no engine configured" check here.
		enginePath = ""
	}
	return audio.NewOrchestrator(enginePath, "ffmpeg", a.cfg.DisablePipeIO, nil)
}

func cmdEmbed(args []string) {
	if len(args) < 3 {
		printError("usage: awmkitctl embed <in.wav> <out.wav> <tag> [--slot N] [--strength N] [--key-file path]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	slotFlag := fs.Int("slot", -1, "key slot (default: active slot)")
	strengthFlag := fs.Int("strength", 0, "embed strength 1..30 (default: configured default)")
	keyFile := fs.String("key-file", "", "key file path passed to the engine")
	if err := fs.Parse(args[3:]); err != nil {
		printError(fmt.Sprintf("parsing flags: %v", err))
		os.Exit(1)
	}

	inputPath, outputPath, tagStr := args[0], args[1], args[2]

	t, err := tag.Parse(tagStr)
	if err != nil {
		printError(fmt.Sprintf("embed: %v", err))
		os.Exit(1)
	}

	a := openApp()
	defer a.close()

	slot, key, err := resolveSlotFlag(a, *slotFlag)
	if err != nil {
		printError(fmt.Sprintf("embed: %v", err))
		os.Exit(1)
	}

	strength := *strengthFlag
	if strength == 0 {
		strength = a.cfg.DefaultStrength
	}

	msg, err := message.Encode(message.EncodeOptions{
		Version: uint8(a.cfg.DefaultVersion),
		Tag:     t,
		Key:     key,
		KeySlot: &slot,
	})
	if err != nil {
		printError(fmt.Sprintf("embed: %v", err))
		os.Exit(1)
	}

	orch := a.openOrchestrator()
	ctx := context.Background()
	if err := orch.Embed(ctx, inputPath, outputPath, msg, strength, *keyFile); err != nil {
		printError(fmt.Sprintf("embed: %v", err))
		os.Exit(1)
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		printError(fmt.Sprintf("embed: reading output: %v", err))
		os.Exit(1)
	}
	pcm, err := audio.DecodeWAV(raw)
	if err != nil {
		printError(fmt.Sprintf("embed: decoding output: %v", err))
		os.Exit(1)
	}

	recorder := evidence.NewRecorder(a.store, a.fp)
	keyID := security.Fingerprint(key)
	_, inserted, err := recorder.Record(ctx, outputPath, tagStr, t.Identity(), uint8(a.cfg.DefaultVersion), slot, 0, hex.EncodeToString(msg[:]), keyID, pcm)
	if err != nil {
		printError(fmt.Sprintf("embed: recording evidence: %v", err))
		os.Exit(1)
	}

	fmt.Printf("%sEmbedded%s %s -> %s (slot %d)\n", c.Green, c.Reset, inputPath, outputPath, slot)
	if !inserted {
		fmt.Printf("%s(identical evidence already on record)%s\n", c.Dim, c.Reset)
	}
}

func resolveSlotFlag(a *app, slotFlag int) (int, []byte, error) {
	if slotFlag >= 0 {
		key, err := a.keys.Key(slotFlag)
		if err != nil {
			return 0, nil, err
		}
		return slotFlag, key, nil
	}
	return a.activeSlotKey()
}

// detectJSON is the stable `detect --json` payload (spec §6).
type detectJSON struct {
	Status                 string   `json:"status"`
	Tag                    *string  `json:"tag,omitempty"`
	Identity               *string  `json:"identity,omitempty"`
	Version                *int     `json:"version,omitempty"`
	KeySlot                *int     `json:"key_slot,omitempty"`
	DecodeSlotHint         *int     `json:"decode_slot_hint,omitempty"`
	DecodeSlotUsed         *int     `json:"decode_slot_used,omitempty"`
	SlotStatus             *string  `json:"slot_status,omitempty"`
	SlotScanCount          *int     `json:"slot_scan_count,omitempty"`
	CloneCheck             *string  `json:"clone_check,omitempty"`
	CloneScore             *float64 `json:"clone_score,omitempty"`
	CloneMatchSeconds      *float64 `json:"clone_match_seconds,omitempty"`
	CloneMatchedEvidenceID *int64   `json:"clone_matched_evidence_id,omitempty"`
	Error                  *string  `json:"error,omitempty"`
}

func cmdDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "emit the detect result as JSON")
	if err := fs.Parse(args); err != nil {
		printError(fmt.Sprintf("parsing flags: %v", err))
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		printError("usage: awmkitctl detect [--json] <file>")
		os.Exit(1)
	}
	inputPath := fs.Arg(0)

	a := openApp()
	defer a.close()

	ctx := context.Background()
	orch := a.openOrchestrator()

	result := detectJSON{}
	exitCode := 0

	engineResult, err := orch.Detect(ctx, inputPath)
	switch {
	case errors.Is(err, audio.ErrNoWatermarkFound):
		result.Status = "not_found"
	case err != nil:
		result.Status = "error"
		msg := err.Error()
		result.Error = &msg
		exitCode = 1
	default:
		keys, kErr := a.keys.Keys()
		if kErr != nil {
			result.Status = "error"
			msg := kErr.Error()
			result.Error = &msg
			exitCode = 1
			break
		}
		routed, rErr := detect.Route(engineResult.Message, keys)
		if rErr != nil {
			result.Status = "error"
			msg := rErr.Error()
			result.Error = &msg
			exitCode = 1
			break
		}

		slotStatus := string(routed.Status)
		result.SlotStatus = &slotStatus
		hint := routed.SlotHint
		used := routed.SlotUsed
		scanCount := routed.ScanCount
		result.DecodeSlotHint = &hint
		result.DecodeSlotUsed = &used
		result.SlotScanCount = &scanCount

		switch routed.Status {
		case detect.StatusMismatch:
			result.Status = "invalid_hmac"
			exitCode = 1
		default:
			result.Status = string(routed.Status)
		}

		if routed.Decoded != nil {
			tagStr := routed.Decoded.Tag.String()
			identity := routed.Decoded.Tag.Identity()
			version := int(routed.Decoded.Version)
			result.Tag = &tagStr
			result.Identity = &identity
			result.Version = &version
			keySlot := used
			result.KeySlot = &keySlot

			if raw, rerr := os.ReadFile(inputPath); rerr == nil {
				if pcm, perr := audio.DecodeWAV(raw); perr == nil {
					checker := clonecheck.NewChecker(a.store, a.fp)
					cc, ccErr := checker.Check(ctx, identity, used, pcm)
					if ccErr == nil {
						kind := string(cc.Kind)
						result.CloneCheck = &kind
						result.CloneScore = cc.Score
						result.CloneMatchSeconds = cc.MatchSeconds
						result.CloneMatchedEvidenceID = cc.EvidenceID
					}
				}
			}
		}
	}

	if *jsonOut {
		payload, err := json.Marshal(result)
		if err != nil {
			printError(fmt.Sprintf("marshal result: %v", err))
			os.Exit(1)
		}
		if err := schemaval.ValidateDetectResult(payload); err != nil {
			printError(fmt.Sprintf("internal error: detect result failed its own schema: %v", err))
			os.Exit(1)
		}
		os.Stdout.Write(payload)
		fmt.Println()
	} else {
		printSection("Detect result")
		fmt.Printf("  %sstatus%s %s\n", c.Dim, c.Reset, result.Status)
		if result.Identity != nil {
			fmt.Printf("  %sidentity%s %s\n", c.Dim, c.Reset, *result.Identity)
		}
		if result.CloneCheck != nil {
			fmt.Printf("  %sclone_check%s %s\n", c.Dim, c.Reset, *result.CloneCheck)
		}
		if result.Error != nil {
			fmt.Printf("  %serror%s %s\n", c.Dim, c.Reset, *result.Error)
		}
	}

	os.Exit(exitCode)
}
