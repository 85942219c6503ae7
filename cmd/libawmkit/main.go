// Command libawmkit builds AWMKit's core as a C-shared library (C9).
//
// Build:
//
//	go build -buildmode=c-shared -o libawmkit.so ./cmd/libawmkit
//
// Every exported function except awmkit_orchestrator_create (which
// returns an int64 handle) and awmkit_orchestrator_destroy (which returns
// nothing) returns an int32 status from awmkit_error_t (zero on success,
// negative on failure); see pkg/capi for the taxonomy.
// Strings cross the boundary as NUL-terminated UTF-8. Buffers are
// caller-allocated; functions that write a variable-length result take a
// capacity and an out-length pointer.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"awmkit/pkg/capi"
)

//export awmkit_tag_from_identity
func awmkit_tag_from_identity(identity *C.char, dst *C.char, dstCap C.int32_t, outLen *C.int32_t) C.int32_t {
	if identity == nil || dst == nil || outLen == nil {
		return C.int32_t(capi.ErrNullPointer)
	}

	buf := make([]byte, int(dstCap))
	code, n := capi.TagFromIdentity(C.GoString(identity), buf)
	if code != capi.Ok {
		return C.int32_t(code)
	}

	copyToCBuffer(dst, dstCap, buf[:n])
	*outLen = C.int32_t(n)
	return C.int32_t(capi.Ok)
}

//export awmkit_tag_parse
func awmkit_tag_parse(s *C.char) C.int32_t {
	if s == nil {
		return C.int32_t(capi.ErrNullPointer)
	}
	return C.int32_t(capi.TagParse(C.GoString(s)))
}

//export awmkit_suggest_tag
func awmkit_suggest_tag(username *C.char, dst *C.char, dstCap C.int32_t, outLen *C.int32_t) C.int32_t {
	if username == nil || dst == nil || outLen == nil {
		return C.int32_t(capi.ErrNullPointer)
	}

	buf := make([]byte, int(dstCap))
	code, n := capi.SuggestTag(C.GoString(username), buf)
	if code != capi.Ok {
		return C.int32_t(code)
	}

	copyToCBuffer(dst, dstCap, buf[:n])
	*outLen = C.int32_t(n)
	return C.int32_t(capi.Ok)
}

//export awmkit_message_encode
func awmkit_message_encode(version C.uint8_t, tagStr *C.char, key *C.uint8_t, keyLen C.int32_t, timestampMinutes C.uint32_t, hasTimestamp C.uint8_t, keySlot C.int32_t, hasKeySlot C.uint8_t, dst *C.uint8_t, dstCap C.int32_t) C.int32_t {
	if tagStr == nil || dst == nil {
		return C.int32_t(capi.ErrNullPointer)
	}

	keyBytes := C.GoBytes(unsafe.Pointer(key), keyLen)
	buf := make([]byte, int(dstCap))

	code := capi.MessageEncode(
		uint8(version),
		C.GoString(tagStr),
		keyBytes,
		uint32(timestampMinutes),
		hasTimestamp != 0,
		int(keySlot),
		hasKeySlot != 0,
		buf,
	)
	if code != capi.Ok {
		return C.int32_t(code)
	}

	copyToCBuffer((*C.char)(unsafe.Pointer(dst)), dstCap, buf[:16])
	return C.int32_t(capi.Ok)
}

//export awmkit_orchestrator_create
func awmkit_orchestrator_create(enginePath, ffmpegPath *C.char, disablePipeIO C.uint8_t) C.int64_t {
	ep, fp := "", ""
	if enginePath != nil {
		ep = C.GoString(enginePath)
	}
	if ffmpegPath != nil {
		fp = C.GoString(ffmpegPath)
	}
	return C.int64_t(capi.NewOrchestratorHandle(ep, fp, disablePipeIO != 0))
}

//export awmkit_orchestrator_destroy
func awmkit_orchestrator_destroy(handle C.int64_t) {
	capi.DestroyOrchestratorHandle(int64(handle))
}

//export awmkit_embed
func awmkit_embed(handle C.int64_t, inputPath, outputPath *C.char, msg *C.uint8_t, msgLen C.int32_t, strength C.int32_t, keyFile *C.char) C.int32_t {
	if inputPath == nil || outputPath == nil {
		return C.int32_t(capi.ErrNullPointer)
	}
	kf := ""
	if keyFile != nil {
		kf = C.GoString(keyFile)
	}
	msgBytes := C.GoBytes(unsafe.Pointer(msg), msgLen)
	code := capi.EmbedWithHandle(int64(handle), C.GoString(inputPath), C.GoString(outputPath), msgBytes, int(strength), kf)
	return C.int32_t(code)
}

//export awmkit_detect
func awmkit_detect(handle C.int64_t, inputPath *C.char, msgDst *C.uint8_t, msgDstCap C.int32_t) C.int32_t {
	if inputPath == nil {
		return C.int32_t(capi.ErrNullPointer)
	}
	buf := make([]byte, int(msgDstCap))
	code, _ := capi.DetectWithHandle(int64(handle), C.GoString(inputPath), buf)
	if code == capi.Ok && msgDstCap >= 16 {
		copyToCBuffer((*C.char)(unsafe.Pointer(msgDst)), msgDstCap, buf[:16])
	}
	return C.int32_t(code)
}

// copyToCBuffer copies src into a C-owned buffer of capacity cap,
// writing no more than cap bytes regardless of len(src).
func copyToCBuffer(dst *C.char, cap C.int32_t, src []byte) {
	out := unsafe.Slice((*byte)(unsafe.Pointer(dst)), int(cap))
	n := copy(out, src)
	_ = n
}

func main() {}
