package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	mod, err := NewModerator([]string{"badger", "snake", "mushroom"}, DefaultMask)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "single word keeps spacing",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "repeated word",
			input:    "badger badger",
			expected: "****** ******",
			words:    []string{"badger", "badger"},
		},
		{
			name:     "leet and punctuation inside the word",
			input:    "Look at B.4.d.g.€r now",
			expected: "Look at ********** now",
			words:    []string{"badger"},
		},
		{
			name:     "upper case with separators",
			input:    "S-N-A-K-E is here",
			expected: "********* is here",
			words:    []string{"snake"},
		},
		{
			name:     "accented text around a match",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
			words:    []string{"badger"},
		},
		{
			name:     "trailing punctuation survives",
			input:    "I love badger?",
			expected: "I love ******?",
			words:    []string{"badger"},
		},
		{
			name:     "clean text",
			input:    "Translachat is great",
			expected: "Translachat is great",
		},
		{
			name:     "empty text",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.expected, mod.Censor(tt.input))
			if tt.words == nil {
				req.Empty(mod.Matches(tt.input))
			} else {
				req.Equal(tt.words, mod.Matches(tt.input))
			}
		})
	}
}

func TestNewModerator_EmptyList(t *testing.T) {
	_, err := NewModerator(nil, DefaultMask)
	require.ErrorIs(t, err, ErrNoWords)

	_, err = NewModerator([]string{"  ", "!!", "$$"}, DefaultMask)
	require.ErrorIs(t, err, ErrNoWords)
}

func TestNewModerator_SkipsWordsWithoutLetters(t *testing.T) {
	mod, err := NewModerator([]string{"!!", "darn"}, DefaultMask)
	require.NoError(t, err)

	require.Equal(t, "Hawaii, **** it", mod.Censor("Hawaii, darn it"))
	require.Equal(t, []string{"darn"}, mod.Matches("Hawaii, darn it"))
}
