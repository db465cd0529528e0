package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"input kind", NewRunError(KindInputMissing, errors.New("x")), ExitInputMissing},
		{"schema kind", NewRunError(KindSchemaMissing, errors.New("x")), ExitSchemaMissing},
		{"output kind", NewRunError(KindOutputWrite, errors.New("x")), ExitOutputWrite},
		{"config kind", NewRunError(KindInvalidConfig, errors.New("x")), ExitInvalidConfig},
		{"internal kind", NewRunError(KindInternal, errors.New("x")), ExitFailure},
		{"wrapped sentinel", fmt.Errorf("open: %w", ErrInputNotFound), ExitInputMissing},
		{"no csv", fmt.Errorf("scan: %w", ErrNoInputFiles), ExitInputMissing},
		{"wrapped run error", fmt.Errorf("aggregate: %w", NewRunError(KindOutputWrite, ErrOutputWrite)), ExitOutputWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestNewRunErrorNil(t *testing.T) {
	require.NoError(t, NewRunError(KindOutputWrite, nil))
}

func TestRunErrorUnwrap(t *testing.T) {
	err := NewRunError(KindSchemaMissing, fmt.Errorf("objects: %w", ErrSchemaMissing))
	require.ErrorIs(t, err, ErrSchemaMissing)
	require.Equal(t, "schema missing: objects: required columns missing", err.Error())
}
