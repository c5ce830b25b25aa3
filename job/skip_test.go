package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSkip(t *testing.T) {
	assert.True(t, ShouldSkip("image/gif", []string{"image/gif"}))
	assert.False(t, ShouldSkip("image/png", []string{"image/gif"}))
	assert.False(t, ShouldSkip("", []string{"image/gif"}))
	assert.False(t, ShouldSkip("image/gif", nil))
}

func TestShouldSkipFullMatch(t *testing.T) {
	assert.False(t, ShouldSkip("image/gif-animated", []string{"image/gif"}))
	assert.False(t, ShouldSkip("image/gif", []string{"gif"}))
	assert.True(t, ShouldSkip("image/svg+xml", []string{"image/png", "image/svg.*"}))
	assert.True(t, ShouldSkip("image/png", []string{"image/(png|gif)"}))
}

func TestShouldSkipInvalidPattern(t *testing.T) {
	assert.False(t, ShouldSkip("image/png", []string{"image/(png"}))
	assert.True(t, ShouldSkip("image/png", []string{"image/(png", "image/png"}))
}

func TestShouldSkipNoPatternsNeverSkips(t *testing.T) {
	cfg, err := ParseJobConfig("dimensions:10:10")
	assert.NoError(t, err)
	for _, mt := range []string{"image/png", "image/gif", "application/pdf", ""} {
		assert.False(t, ShouldSkip(mt, cfg.SkipMimeTypes), mt)
	}
}

func TestCompileSkipPatternsKeepsNoState(t *testing.T) {
	first := compileSkipPatterns([]string{"image/gif", "image/(png", "image/svg.*"})
	assert.Len(t, first, 2)
	assert.True(t, first[1].MatchString("image/svg+xml"))
	assert.False(t, first[0].MatchString("image/gifx"))

	// nothing is retained between executions
	second := compileSkipPatterns([]string{"image/gif"})
	assert.NotSame(t, first[0], second[0])
}
