package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrStorage", ErrStorage},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrNotFound tests ErrNotFound error
func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

// TestErrAlreadyExists tests ErrAlreadyExists error
func TestErrAlreadyExists(t *testing.T) {
	assert.Equal(t, "already exists", ErrAlreadyExists.Error())
	assert.True(t, errors.Is(ErrAlreadyExists, ErrAlreadyExists))
	assert.False(t, errors.Is(ErrAlreadyExists, ErrNotFound))
}

// TestErrInvalidInput tests ErrInvalidInput error
func TestErrInvalidInput(t *testing.T) {
	assert.Equal(t, "invalid input", ErrInvalidInput.Error())
	assert.True(t, errors.Is(ErrInvalidInput, ErrInvalidInput))
	assert.False(t, errors.Is(ErrInvalidInput, ErrNotFound))
}

// TestErrStorage tests ErrStorage error
func TestErrStorage(t *testing.T) {
	assert.Equal(t, "storage failure", ErrStorage.Error())
	assert.True(t, errors.Is(ErrStorage, ErrStorage))
	assert.False(t, errors.Is(ErrStorage, ErrInvalidInput))
}

// TestErrLLMUnavailable tests ErrLLMUnavailable error
func TestErrLLMUnavailable(t *testing.T) {
	assert.Equal(t, "LLM service unavailable", ErrLLMUnavailable.Error())
	assert.True(t, errors.Is(ErrLLMUnavailable, ErrLLMUnavailable))
	assert.False(t, errors.Is(ErrLLMUnavailable, ErrEmbeddingUnavailable))
}

// TestErrEmbeddingUnavailable tests ErrEmbeddingUnavailable error
func TestErrEmbeddingUnavailable(t *testing.T) {
	assert.Equal(t, "embedding service unavailable", ErrEmbeddingUnavailable.Error())
	assert.True(t, errors.Is(ErrEmbeddingUnavailable, ErrEmbeddingUnavailable))
	assert.False(t, errors.Is(ErrEmbeddingUnavailable, ErrLLMUnavailable))
}

// TestErrRateLimited tests ErrRateLimited error
func TestErrRateLimited(t *testing.T) {
	assert.Equal(t, "rate limited", ErrRateLimited.Error())
	assert.True(t, errors.Is(ErrRateLimited, ErrRateLimited))
	assert.False(t, errors.Is(ErrRateLimited, ErrStorage))
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrStorage,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrRateLimited,
	}

	// Check that each error is unique
	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	// Wrap the way services do: fmt.Errorf with %w
	wrappedErr := fmt.Errorf("%w: shard 20250105", ErrStorage)

	// Should still be identifiable as ErrStorage
	assert.True(t, errors.Is(wrappedErr, ErrStorage))
	assert.Contains(t, wrappedErr.Error(), "storage failure")

	// Joined errors keep their identity too
	joined := errors.Join(ErrNotFound, errors.New("additional context"))
	assert.True(t, errors.Is(joined, ErrNotFound))
}

// TestErrors_InSwitchStatement tests using errors in switch statements
func TestErrors_InSwitchStatement(t *testing.T) {
	testErr := fmt.Errorf("looking up shard: %w", ErrNotFound)

	var result string
	switch {
	case errors.Is(testErr, ErrNotFound):
		result = "not found"
	case errors.Is(testErr, ErrAlreadyExists):
		result = "already exists"
	default:
		result = "unknown"
	}

	assert.Equal(t, "not found", result)
}

// TestErrors_ServiceErrors tests service-related errors
func TestErrors_ServiceErrors(t *testing.T) {
	serviceErrors := []error{
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
	}

	// All should contain "unavailable" in their message
	for _, err := range serviceErrors {
		assert.Contains(t, err.Error(), "unavailable",
			"Service error %v should mention unavailable", err)
	}
}

// TestErrors_DataErrors tests data-related errors
func TestErrors_DataErrors(t *testing.T) {
	dataErrors := map[string]error{
		"not found":       ErrNotFound,
		"already exists":  ErrAlreadyExists,
		"invalid input":   ErrInvalidInput,
		"storage failure": ErrStorage,
	}

	for expectedMsg, err := range dataErrors {
		assert.Equal(t, expectedMsg, err.Error())
	}
}
