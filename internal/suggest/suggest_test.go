package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"awmkit/internal/tag"
)

func TestFromUsernameDeterministic(t *testing.T) {
	t1, err := FromUsername("alice")
	require.NoError(t, err)
	t2, err := FromUsername("alice")
	require.NoError(t, err)
	require.Equal(t, t1, t2)
}

func TestFromUsernameDiffersAcrossUsers(t *testing.T) {
	t1, err := FromUsername("alice")
	require.NoError(t, err)
	t2, err := FromUsername("bob")
	require.NoError(t, err)
	require.NotEqual(t, t1.String(), t2.String())
}

func TestFromUsernameProducesValidTag(t *testing.T) {
	tg, err := FromUsername("carol")
	require.NoError(t, err)

	parsed, err := tag.Parse(tg.String())
	require.NoError(t, err)
	require.Equal(t, tg, parsed)
}
