package output

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	testiderrors "github.com/NicabarNimble/go-testid/internal/errors"
)

func TestExitError(t *testing.T) {
	cause := errors.New("unknown provider")

	err := NewUserErrorWithCause("invalid configuration", cause)
	assert.Equal(t, "invalid configuration", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := &ExitError{Code: ExitScript, Cause: cause}
	assert.Equal(t, "unknown provider", bare.Error())

	assert.Equal(t, "--number must be at least 1", NewUserError("--number must be at least 1").Error())
}

func TestExitCode(t *testing.T) {
	provision := &testiderrors.ProvisionError{Step: testiderrors.StepClone, Err: errors.New("exit status 128")}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "explicit exit error", err: &ExitError{Code: 42}, want: 42},
		{name: "wrapped user error", err: fmt.Errorf("generate: %w", NewUserError("bad")), want: ExitUserError},
		{name: "provision", err: provision, want: ExitProvision},
		{name: "script not found", err: &testiderrors.ScriptNotFoundError{Path: "x"}, want: ExitScript},
		{name: "script failed", err: &testiderrors.ScriptExecutionError{ExitCode: 1}, want: ExitScript},
		{
			name: "cancelled during provisioning",
			err:  &testiderrors.ProvisionError{Step: testiderrors.StepClone, Err: context.Canceled},
			want: ExitInterrupted,
		},
		{name: "unclassified", err: errors.New("unknown flag: --foo"), want: ExitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
