package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"source unavailable", fmt.Errorf("%w: status 500", ErrSourceUnavailable), true},
		{"sink unavailable", fmt.Errorf("%w: connection refused", ErrSinkUnavailable), true},
		{"malformed record", fmt.Errorf("%w: humidity 150%% outside [0,100]", ErrMalformedRecord), false},
		{"permanent source error", Permanent(fmt.Errorf("%w: status 401", ErrSourceUnavailable)), false},
		{"unclassified error", errors.New("something else"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Retryable(tt.err))
		})
	}
}

func TestPermanent_PreservesClass(t *testing.T) {
	err := Permanent(fmt.Errorf("%w: status 404", ErrSourceUnavailable))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
