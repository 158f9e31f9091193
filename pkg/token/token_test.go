package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	cleartext, record, err := Generate("u1", "ci upload", nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cleartext, Prefix))
	assert.Equal(t, "u1", record.UserID)
	assert.NotContains(t, cleartext, record.HashedSecret)

	id, secret, err := Parse(cleartext)
	require.NoError(t, err)
	assert.Equal(t, record.ID, id)
	assert.True(t, Verify(record, secret))
	assert.False(t, Verify(record, "wrong-secret"))
}

func TestGenerateScoped(t *testing.T) {
	scope := "my-project"
	_, record, err := Generate("u1", "", &scope)
	require.NoError(t, err)
	require.NotNil(t, record.ProjectScope)
	assert.Equal(t, "my-project", *record.ProjectScope)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, cleartext := range []string{
		"",
		"wh-",
		"wh-idonly",
		"wh-.secretonly",
		"pypi-abc.def",
		"abc.def",
	} {
		_, _, err := Parse(cleartext)
		assert.ErrorIs(t, err, ErrMalformed, "token %q", cleartext)
	}
}

func TestTokensAreUnique(t *testing.T) {
	a, _, err := Generate("u1", "", nil)
	require.NoError(t, err)
	b, _, err := Generate("u1", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
