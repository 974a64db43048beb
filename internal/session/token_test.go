package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"recharge-mcp-go/internal/errors"
)

func TestValidateTokenRejects(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		reason string
	}{
		{"empty", "", "empty"},
		{"whitespace only", "   ", "empty"},
		{"placeholder undefined", "undefined", "placeholder"},
		{"placeholder null uppercase", "NULL", "placeholder"},
		{"placeholder your_token_here", "your_token_here", "placeholder"},
		{"too short", "abcde", "too short"},
		{"contains at sign", "abc@def.ghi.jkl.mno", "characters"},
		{"contains space", "abc def ghij klmn", "characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token)
			require.Error(t, err)
			require.True(t, errors.IsKind(err, errors.KindInvalidCredential))
			require.Contains(t, strings.ToLower(err.Error()), tc.reason)
		})
	}
}

func TestValidateTokenAccepts(t *testing.T) {
	for _, tok := range []string{
		"a1b2c3d4-e5f6-g7h8", // 18 chars with hyphens
		"abcdefghij",         // exactly the minimum length
		"tok.v2_secret-0099",
	} {
		got, err := ValidateToken(tok)
		require.NoError(t, err)
		require.Equal(t, tok, got)
	}
}

func TestValidateTokenTrims(t *testing.T) {
	got, err := ValidateToken("  tok_abcdef123456  ")
	require.NoError(t, err)
	require.Equal(t, "tok_abcdef123456", got)
}

func TestValidateTokenDoesNotEchoValue(t *testing.T) {
	secretish := "sk@live_abcdef123456"
	_, err := ValidateToken(secretish)
	require.Error(t, err)
	require.NotContains(t, err.Error(), secretish)
}
