package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	require.Equal(t, "member@hanlove.org", Email("  Member@HanLove.org "))
}

func TestUsername(t *testing.T) {
	require.Equal(t, "deacon_kim", Username("Deacon_Kim"))
	// fullwidth latin folds to ascii
	require.Equal(t, "abc", Username("ＡＢＣ"))
}

func TestDisplayName_ComposesJamo(t *testing.T) {
	decomposed := "\u1100\u1161\u11a8  한"
	require.Equal(t, "각 한", DisplayName(decomposed))
}

func TestLooksLikeEmail(t *testing.T) {
	require.True(t, LooksLikeEmail("a@b"))
	require.False(t, LooksLikeEmail("@b"))
	require.False(t, LooksLikeEmail("a@"))
	require.False(t, LooksLikeEmail("deacon"))
}

func TestValidUsername(t *testing.T) {
	require.True(t, ValidUsername("deacon_kim"))
	require.True(t, ValidUsername("김집사"))
	require.False(t, ValidUsername("kim@church"))
	require.False(t, ValidUsername("@kim"))
	// fullwidth at sign folds to "@"
	require.False(t, ValidUsername("kim＠church"))
}
