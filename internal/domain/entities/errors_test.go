package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	t.Run("cause matching reason is not repeated", func(t *testing.T) {
		err := &ParseError{Reason: "no slides found", Cause: ErrNoSlides}

		assert.Equal(t, "parse error: no slides found", err.Error())
		assert.ErrorIs(t, err, ErrNoSlides)
	})

	t.Run("distinct cause is appended", func(t *testing.T) {
		err := &ParseError{Reason: "reading document", Cause: errors.New("unexpected EOF")}
		assert.Equal(t, "parse error: reading document: unexpected EOF", err.Error())
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("import: %w", &ParseError{Reason: "document is empty"})

		assert.True(t, IsParseError(wrapped))
		assert.False(t, IsSnapshotError(wrapped))
		assert.False(t, IsParseError(errors.New("plain")))
	})
}

func TestSnapshotError(t *testing.T) {
	err := &SnapshotError{Reason: "document has no slides", Cause: ErrMissingSlides}

	assert.Equal(t, "malformed snapshot: document has no slides: missing slide sequence", err.Error())
	assert.ErrorIs(t, err, ErrMissingSlides)
	assert.True(t, IsSnapshotError(fmt.Errorf("load: %w", err)))

	bare := &SnapshotError{Reason: "duplicate slide id"}
	assert.Equal(t, "malformed snapshot: duplicate slide id", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}
