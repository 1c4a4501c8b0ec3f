package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: DefaultExitCode},
		{name: "app error", err: New("boom"), want: 1},
		{name: "explicit code", err: WithCode(3, "boom"), want: 3},
		{name: "wrapped app error", err: fmt.Errorf("context: %w", WithCode(7, "boom")), want: 7},
		{name: "zero code falls back", err: &Error{Msg: "boom"}, want: DefaultExitCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, "Failed to parse kubectl JSON output")

	assert.Equal(t, "Failed to parse kubectl JSON output", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, DefaultExitCode, ExitCode(err))
}

func TestNewf(t *testing.T) {
	err := Newf("Pod not found: %s", "toolbox-0")
	assert.Equal(t, "Pod not found: toolbox-0", err.Error())
}

func TestExit(t *testing.T) {
	err := Exit(3)
	assert.Empty(t, err.Error())
	assert.Equal(t, 3, ExitCode(err))
}
