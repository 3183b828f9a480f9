package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		c, err := Generate()
		require.NoError(t, err)
		require.Len(t, c, Length)
		for _, r := range c {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q in %q", r, c)
		}
	}
}

func TestAlphabet_ExcludesAmbiguousSymbols(t *testing.T) {
	assert.Len(t, Alphabet, 32)
	for _, bad := range "0O1I" {
		assert.False(t, strings.ContainsRune(Alphabet, bad), "alphabet must not contain %q", bad)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "abcde", want: "ABCDE"},
		{name: "surrounding whitespace", in: "  QR7K2 ", want: "QR7K2"},
		{name: "already normal", in: "ZZZZZ", want: "ZZZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
