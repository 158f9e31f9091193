package packaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	valid := []string{"a", "A", "0", "requests", "zope.interface", "ruamel.yaml", "my_pkg", "my-pkg", "Py-2-go"}
	for _, name := range valid {
		assert.True(t, ValidName(name), name)
	}

	invalid := []string{"", "-requests", "requests-", ".pkg", "pkg.", "_pkg", "my pkg", "café", "a/b"}
	for _, name := range invalid {
		assert.False(t, ValidName(name), name)
	}
}

func TestNormalizeName(t *testing.T) {
	testcases := []struct {
		in, want string
	}{
		{"requests", "requests"},
		{"Django", "django"},
		{"zope.interface", "zope-interface"},
		{"my__pkg", "my-pkg"},
		{"My-._.-Pkg", "my-pkg"},
		{"friendly_bard", "friendly-bard"},
	}
	for _, tc := range testcases {
		assert.Equal(t, tc.want, NormalizeName(tc.in), tc.in)
	}
}
