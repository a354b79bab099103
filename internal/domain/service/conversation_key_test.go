package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droplink/pkg/errors"
)

func TestDeriveConversationKey_Commutative(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"665f1c", "12ab"},
		{"b", "a"},
		{"0190a1b2-0000-7000-8000-000000000001", "0190a1b2-0000-7000-8000-000000000002"},
	}

	for _, p := range pairs {
		ab, err := DeriveConversationKey(p[0], p[1], "item9")
		require.NoError(t, err)
		ba, err := DeriveConversationKey(p[1], p[0], "item9")
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestDeriveConversationKey_Format(t *testing.T) {
	key, err := DeriveConversationKey("zed", "amy", "item1")
	require.NoError(t, err)
	assert.Equal(t, "amy_zed_item1", key)
}

func TestDeriveConversationKey_Errors(t *testing.T) {
	tests := []struct {
		name         string
		a, b, itemID string
	}{
		{"same user", "u1", "u1", "i1"},
		{"empty user", "", "u2", "i1"},
		{"empty item", "u1", "u2", ""},
		{"separator in id", "u_1", "u2", "i1"},
		{"whitespace in id", "u 1", "u2", "i1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveConversationKey(tt.a, tt.b, tt.itemID)
			assert.True(t, errors.Is(err, errors.CodeInvalidArgument), "got %v", err)
		})
	}
}

func TestParseConversationKey(t *testing.T) {
	low, high, item, err := ParseConversationKey("amy_zed_item1")
	require.NoError(t, err)
	assert.Equal(t, "amy", low)
	assert.Equal(t, "zed", high)
	assert.Equal(t, "item1", item)

	for _, bad := range []string{"", "amy_zed", "zed_amy_item1", "amy_amy_item1", "a_b_c_d"} {
		_, _, _, err := ParseConversationKey(bad)
		assert.True(t, errors.Is(err, errors.CodeInvalidArgument), "key %q", bad)
	}
}

func TestConversationIncludes(t *testing.T) {
	ok, err := ConversationIncludes("amy_zed_item1", "zed")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ConversationIncludes("amy_zed_item1", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}
