package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameError_IsMatchesCode(t *testing.T) {
	err := ErrInvalidPlayer.WithContext("player", 7)
	assert.True(t, errors.Is(err, ErrInvalidPlayer))
	assert.False(t, errors.Is(err, ErrInvalidConfig))
	assert.Empty(t, ErrInvalidPlayer.Context, "predefined error must stay untouched")

	wrapped := fmt.Errorf("submit: %w", ErrAlreadySubmitted.WithCause(errors.New("dup")))
	assert.True(t, errors.Is(wrapped, ErrAlreadySubmitted))
}

func TestExternal(t *testing.T) {
	err := External("broker unreachable")
	assert.True(t, errors.Is(err, ErrExternal))
	assert.Equal(t, "broker unreachable", err.Message)
	assert.Equal(t, "[EXTERNAL] broker unreachable", err.Error())
	assert.Equal(t, "external failure", ErrExternal.Message)
}
