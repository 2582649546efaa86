package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "abc", truncateUTF8("abc", 10))
	assert.Equal(t, "ab", truncateUTF8("abcdef", 2))

	// "é" is two bytes; cutting at byte 3 would split the second one.
	out := truncateUTF8("éé", 3)
	assert.Equal(t, "é", out)
	assert.True(t, utf8.ValidString(out))

	long := strings.Repeat("я", maxEmbeddingInput)
	out = truncateUTF8(long, maxEmbeddingInput+1)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), maxEmbeddingInput+1)
	assert.Equal(t, maxEmbeddingInput/2, utf8.RuneCountInString(out))
}

func TestUnconfiguredGeminiService(t *testing.T) {
	svc, err := NewGeminiService(context.Background(), "", "gemini-2.5-flash", "text-embedding-004", nil)
	require.NoError(t, err)

	assert.False(t, svc.IsConfigured())
	assert.Equal(t, "gemini-2.5-flash", svc.Model())

	_, err = svc.GenerateEmbedding(context.Background(), "text")
	assert.Error(t, err)
}
