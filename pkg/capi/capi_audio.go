package capi

import (
	"context"

	"awmkit/internal/audio"
)

// EmbedWithHandle runs C6's embed operation against the orchestrator held
// by handle. message must be exactly 16 bytes.
func EmbedWithHandle(handle int64, inputPath, outputPath string, msg []byte, strength int, keyFile string) Code {
	for _, s := range []string{inputPath, outputPath, keyFile} {
		if code := ValidateUTF8(s); code != Ok {
			return code
		}
	}
	if len(msg) != 16 {
		return ErrInvalidMessageLen
	}
	o := Orchestrator(handle)
	if o == nil {
		return ErrInvalidArgument
	}

	var fixed [16]byte
	copy(fixed[:], msg)

	if err := o.Embed(context.Background(), inputPath, outputPath, fixed, strength, keyFile); err != nil {
		return FromError(err)
	}
	return Ok
}

// DetectWithHandle runs C6's detect operation against the orchestrator
// held by handle, writing the candidate message bytes to msgDst.
func DetectWithHandle(handle int64, inputPath string, msgDst []byte) (Code, audio.DetectResult) {
	if code := ValidateUTF8(inputPath); code != Ok {
		return code, audio.DetectResult{}
	}
	o := Orchestrator(handle)
	if o == nil {
		return ErrInvalidArgument, audio.DetectResult{}
	}

	result, err := o.Detect(context.Background(), inputPath)
	if err != nil {
		return FromError(err), audio.DetectResult{}
	}
	if len(msgDst) >= 16 {
		copy(msgDst, result.Message[:])
	}
	return Ok, result
}
