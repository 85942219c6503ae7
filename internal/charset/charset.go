// Package charset implements the 32-symbol unambiguous alphabet used by
// AWMKit identities and tags, plus the prime-weighted check digit that
// guards against OCR and handwriting confusion.
package charset

import (
	"errors"
	"fmt"
)

// Alphabet is the 32-symbol charset. O, 0, I, 1, L are excluded to avoid
// confusion when a tag is read off a screen, printout, or handwritten note.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789_"

// Size is the number of symbols in the alphabet; each symbol packs into
// exactly 5 bits.
const Size = len(Alphabet)

// Primes are the per-position weights used by Checksum, one per content
// character (positions 0..6 of a 7-character identity).
var Primes = [7]int{3, 5, 7, 11, 13, 17, 19}

// ErrInvalidChar is returned by IndexOf when the rune is not in Alphabet.
var ErrInvalidChar = errors.New("charset: invalid character")

var indexTable [256]int8

func init() {
	for i := range indexTable {
		indexTable[i] = -1
	}
	for i := 0; i < Size; i++ {
		indexTable[Alphabet[i]] = int8(i)
	}
}

// IndexOf returns the 0..31 charset index of ch, or ErrInvalidChar.
func IndexOf(ch byte) (int, error) {
	idx := indexTable[ch]
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChar, ch)
	}
	return int(idx), nil
}

// CharAt returns the charset symbol for index i (0..31).
// Callers must ensure 0 <= i < Size; it panics otherwise, mirroring the
// corpus convention of only calling this with already-validated indices.
func CharAt(i int) byte {
	return Alphabet[i]
}

// Valid reports whether every byte of s is a member of Alphabet.
func Valid(s string) bool {
	for i := 0; i < len(s); i++ {
		if indexTable[s[i]] < 0 {
			return false
		}
	}
	return true
}

// Checksum computes the check character over exactly 7 content characters
// using CHARSET[(sum idx[i]*PRIME[i] for i=0..6) mod 32]. The caller is
// responsible for having already right-padded a short identity with '_'
// to 7 characters; the padding index (31) participates in the sum exactly
// like any other symbol.
func Checksum(content [7]byte) (byte, error) {
	sum := 0
	for i, ch := range content {
		idx, err := IndexOf(ch)
		if err != nil {
			return 0, err
		}
		sum += idx * Primes[i]
	}
	return CharAt(sum % Size), nil
}
