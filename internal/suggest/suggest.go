// Package suggest derives a deterministic Tag from a username, so a user
// who has never picked an identity still gets a stable, collision-resistant
// default: SHA-256(username) sliced into seven 5-bit charset indices, run
// through the Tag checksum.
package suggest

import (
	"crypto/sha256"

	"awmkit/internal/charset"
	"awmkit/internal/tag"
)

// FromUsername deterministically derives a Tag from username. The same
// username always yields the same tag; the 32^7 (~3.4e10) identity space
// makes accidental collisions between distinct usernames very rare.
func FromUsername(username string) (tag.Tag, error) {
	sum := sha256.Sum256([]byte(username))

	// Slice the first 35 bits (7 x 5 bits) off the high-order end of the
	// digest into charset indices, then run the result through the
	// ordinary Tag checksum machinery.
	var identity [7]byte
	bitOffset := 0
	for i := 0; i < 7; i++ {
		idx := extractBits(sum[:], bitOffset, 5)
		identity[i] = charset.CharAt(idx)
		bitOffset += 5
	}

	return tag.FromIdentity(string(identity[:]))
}

// extractBits reads n bits (n <= 8) starting at bitOffset from data,
// treating data as a big-endian bitstream, and returns them as an int.
func extractBits(data []byte, bitOffset, n int) int {
	value := 0
	for i := 0; i < n; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		bitIdx := 7 - (bit % 8)
		b := 0
		if byteIdx < len(data) {
			b = int(data[byteIdx]>>bitIdx) & 1
		}
		value = (value << 1) | b
	}
	return value
}
