package camunda

import (
	"errors"
	"testing"

	apperrors "xpilot-copilot/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("rpc error: code = Unavailable desc = connection refused"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("NOT_FOUND: job 12 not found"), false},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableZeebeError(tt.err))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	stdErr := MapZeebeError(errors.New("connection reset by peer"))

	assert.Equal(t, apperrors.ErrCodeInternal, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "zeebe", stdErr.Metadata["service"])
	assert.Contains(t, stdErr.Details, "connection reset")
}
