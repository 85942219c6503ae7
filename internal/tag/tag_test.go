package tag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromIdentityRoundTrip(t *testing.T) {
	for _, identity := range []string{"S", "SAKUZY", "SAKUZYX", "AB23"} {
		tg, err := FromIdentity(identity)
		require.NoError(t, err)
		require.Equal(t, identity, tg.Identity())

		parsed, err := Parse(tg.String())
		require.NoError(t, err)
		require.Equal(t, tg, parsed)
	}
}

func TestFromIdentityKnownVector(t *testing.T) {
	tg, err := FromIdentity("SAKUZY")
	require.NoError(t, err)
	require.Equal(t, "SAKUZY_", tg.String()[:7])
	require.Len(t, tg.String(), Length)
}

func TestFromIdentityRejectsEmpty(t *testing.T) {
	_, err := FromIdentity("")
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestFromIdentityRejectsTooLong(t *testing.T) {
	_, err := FromIdentity("ABCDEFGH")
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestFromIdentityRejectsOffCharset(t *testing.T) {
	_, err := FromIdentity("SAK0ZY")
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse("SHORT")
	require.ErrorIs(t, err, ErrInvalidTag)
}

func TestParseRejectsBadChecksum(t *testing.T) {
	tg, err := FromIdentity("SAKUZY")
	require.NoError(t, err)

	s := tg.String()
	mutated := s[:7] + flipCheckChar(s[7])

	_, err = Parse(mutated)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func flipCheckChar(c byte) string {
	if c == 'A' {
		return "B"
	}
	return "A"
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, identity := range []string{"X", "SAKUZY", "ABCDEFG"} {
		tg, err := FromIdentity(identity)
		require.NoError(t, err)

		packed, err := tg.Pack()
		require.NoError(t, err)

		unpacked, err := Unpack(packed)
		require.NoError(t, err)
		require.Equal(t, tg, unpacked)
	}
}

func TestChecksumMutationProperty(t *testing.T) {
	tg, err := FromIdentity("SAKUZY")
	require.NoError(t, err)
	s := tg.String()

	mismatches := 0
	trials := 0
	for i := 0; i < 7; i++ {
		for _, ch := range []byte(alphabetForTest) {
			if ch == s[i] {
				continue
			}
			trials++
			mutated := s[:i] + string(ch) + s[i+1:]
			if _, err := Parse(mutated); err != nil {
				mismatches++
			}
		}
	}
	require.Greater(t, mismatches, 0)
	require.Equal(t, trials, mismatches+countSameChecksum(s))
}

// countSameChecksum counts single-character mutations (across all 7
// content positions) that happen to preserve the checksum. Every prime
// weight is odd, so a single substitution always shifts the sum by a
// non-multiple of 32 and this count is zero for any valid tag.
func countSameChecksum(s string) int {
	count := 0
	for i := 0; i < 7; i++ {
		for _, ch := range []byte(alphabetForTest) {
			if ch == s[i] {
				continue
			}
			mutated := s[:i] + string(ch) + s[i+1:]
			if _, err := Parse(mutated); err == nil {
				count++
			}
		}
	}
	return count
}

const alphabetForTest = "ABCDEFGHJKMNPQRSTUVWXYZ23456789_"
