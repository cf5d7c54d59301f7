package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHippoError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	hippoErr := New(ErrCodeNotFound, "path not found: test.txt", originalErr)

	require.NotNil(t, hippoErr)
	assert.Equal(t, originalErr, errors.Unwrap(hippoErr))
	assert.True(t, errors.Is(hippoErr, originalErr))
}

func TestHippoError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     ErrCodeNotFound,
			message:  "memory not found",
			expected: "[ERR_101_NOT_FOUND] memory not found",
		},
		{
			name:     "storage error",
			code:     ErrCodeStorage,
			message:  "write failed",
			expected: "[ERR_201_STORAGE] write failed",
		},
		{
			name:     "vector error",
			code:     ErrCodeVectorUnavailable,
			message:  "backend unreachable",
			expected: "[ERR_602_VECTOR_UNAVAILABLE] backend unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestHippoError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeNotFound, "memory A not found", nil)
	err2 := New(ErrCodeNotFound, "memory B not found", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestHippoError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeNotFound, "not found", nil)
	err2 := New(ErrCodeStorage, "storage failed", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestHippoError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", nil)

	err = err.WithDetail("path", "/foo/bar.jpg")
	err = err.WithDetail("size", "1024")

	assert.Equal(t, "/foo/bar.jpg", err.Details["path"])
	assert.Equal(t, "1024", err.Details["size"])
}

func TestHippoError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeProbeTimeout, "ffprobe timed out", nil)

	err = err.WithSuggestion("Check that ffprobe is installed and on PATH")

	assert.Equal(t, "Check that ffprobe is installed and on PATH", err.Suggestion)
}

func TestHippoError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeNotFound, CategoryNotFound},
		{ErrCodeSourceNotFound, CategoryNotFound},
		{ErrCodeStorage, CategoryStorage},
		{ErrCodeIndexing, CategoryIndexing},
		{ErrCodeExtractor, CategoryExtractor},
		{ErrCodeHash, CategoryHash},
		{ErrCodeVector, CategoryVector},
		{ErrCodeWatcher, CategoryWatcher},
		{ErrCodeExternalService, CategoryExternalService},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInternal, CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestHippoError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeCorruptIndex, SeverityFatal},
		{ErrCodeDiskFull, SeverityFatal},
		{ErrCodeNotFound, SeverityError},
		{ErrCodeProbeTimeout, SeverityWarning}, // retryable, so warning
		{ErrCodeVectorUnavailable, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestHippoError_RetryableFromCode(t *testing.T) {
	tests := []struct {
		code          string
		wantRetryable bool
	}{
		{ErrCodeVectorUnavailable, true},
		{ErrCodeProbeTimeout, true},
		{ErrCodeStorageLocked, true},
		{ErrCodeNotFound, false},
		{ErrCodeInvalidInput, false},
		{ErrCodeCorruptIndex, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap_CreatesHippoErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	hippoErr := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, hippoErr)
	assert.Equal(t, ErrCodeInternal, hippoErr.Code)
	assert.Equal(t, "something went wrong", hippoErr.Message)
	assert.Equal(t, originalErr, hippoErr.Cause)
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestNotFoundError_CreatesNotFoundCategoryError(t *testing.T) {
	err := NotFoundError("memory does not exist", nil)

	assert.Equal(t, CategoryNotFound, err.Category)
}

func TestStorageError_CreatesStorageCategoryError(t *testing.T) {
	err := StorageError("cannot write row", nil)

	assert.Equal(t, CategoryStorage, err.Category)
}

func TestVectorError_UnavailableCodeIsRetryable(t *testing.T) {
	err := New(ErrCodeVectorUnavailable, "backend unreachable", nil)

	assert.True(t, IsRetryable(err))
	assert.Equal(t, CategoryVector, err.Category)
}

func TestValidationError_CreatesValidationCategoryError(t *testing.T) {
	err := ValidationError("query cannot be empty", nil)

	assert.Equal(t, CategoryValidation, err.Category)
}

func TestIsRetryable_ChecksRetryableFlag(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "retryable HippoError",
			err:      New(ErrCodeProbeTimeout, "timeout", nil),
			expected: true,
		},
		{
			name:     "non-retryable HippoError",
			err:      New(ErrCodeNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "wrapped retryable error",
			err:      Wrap(ErrCodeVectorUnavailable, errors.New("wrapped")),
			expected: true,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "fatal error",
			err:      New(ErrCodeCorruptIndex, "index corrupt", nil),
			expected: true,
		},
		{
			name:     "disk full error",
			err:      New(ErrCodeDiskFull, "no space left", nil),
			expected: true,
		},
		{
			name:     "non-fatal error",
			err:      New(ErrCodeNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}

func TestGetCode_ExtractsCode(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", nil)
	assert.Equal(t, ErrCodeNotFound, GetCode(err))
	assert.Equal(t, "", GetCode(errors.New("plain")))
}

func TestGetCategory_ExtractsCategory(t *testing.T) {
	err := New(ErrCodeVector, "vector failed", nil)
	assert.Equal(t, CategoryVector, GetCategory(err))
}
