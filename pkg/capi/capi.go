package capi

import (
	"awmkit/internal/message"
	"awmkit/internal/suggest"
	"awmkit/internal/tag"
)

// writeString copies s into dst (a caller-allocated buffer) and returns
// the number of bytes written. If dst is too small, it writes nothing and
// returns the required length negated, so callers can tell "too small"
// from "wrote N bytes" without a separate out parameter.
func writeString(dst []byte, s string) int {
	if len(dst) < len(s) {
		return -len(s)
	}
	return copy(dst, s)
}

// TagFromIdentity builds an 8-character tag string from identity and
// writes it to dst. Returns (Ok, bytesWritten) or an error code with
// bytesWritten undefined.
func TagFromIdentity(identity string, dst []byte) (Code, int) {
	if code := ValidateUTF8(identity); code != Ok {
		return code, 0
	}
	t, err := tag.FromIdentity(identity)
	if err != nil {
		return FromError(err), 0
	}
	n := writeString(dst, t.String())
	if n < 0 {
		return ErrInvalidArgument, n
	}
	return Ok, n
}

// TagParse validates s as a well-formed, checksum-correct tag string.
func TagParse(s string) Code {
	if code := ValidateUTF8(s); code != Ok {
		return code
	}
	if _, err := tag.Parse(s); err != nil {
		return FromError(err)
	}
	return Ok
}

// SuggestTag derives a deterministic tag from username and writes it to
// dst (C10).
func SuggestTag(username string, dst []byte) (Code, int) {
	if code := ValidateUTF8(username); code != Ok {
		return code, 0
	}
	t, err := suggest.FromUsername(username)
	if err != nil {
		return FromError(err), 0
	}
	n := writeString(dst, t.String())
	if n < 0 {
		return ErrInvalidArgument, n
	}
	return Ok, n
}

// MessageEncode builds a 16-byte authenticated message (C3) and writes it
// to dst, which must have capacity >= message.Size.
func MessageEncode(version uint8, tagString string, key []byte, timestampMinutes uint32, hasTimestamp bool, keySlot int, hasKeySlot bool, dst []byte) Code {
	if code := ValidateUTF8(tagString); code != Ok {
		return code
	}
	if len(dst) < message.Size {
		return ErrInvalidArgument
	}

	t, err := tag.Parse(tagString)
	if err != nil {
		return FromError(err)
	}

	opts := message.EncodeOptions{Version: version, Tag: t, Key: key}
	if hasTimestamp {
		opts.TimestampMinutes = &timestampMinutes
	}
	if hasKeySlot {
		opts.KeySlot = &keySlot
	}

	out, err := message.Encode(opts)
	if err != nil {
		return FromError(err)
	}
	copy(dst, out[:])
	return Ok
}

// MessageDecode tries candidate (exactly message.Size bytes) against keys
// in order and writes the decoded tag string to tagDst on success.
func MessageDecode(candidate []byte, keys [][]byte, tagDst []byte) (Code, message.Decoded, int) {
	if len(candidate) != message.Size {
		return ErrInvalidMessageLen, message.Decoded{}, 0
	}
	decoded, err := message.DecodeBytes(candidate, keys)
	if err != nil {
		return FromError(err), message.Decoded{}, 0
	}
	n := writeString(tagDst, decoded.Tag.String())
	if n < 0 {
		return ErrInvalidArgument, decoded, n
	}
	return Ok, decoded, n
}
