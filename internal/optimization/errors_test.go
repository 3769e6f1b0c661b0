package optimization

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  NewError("bad input"),
			want: "bad input",
		},
		{
			name: "formatted message",
			err:  NewErrorf("negative abandon count %d", -3),
			want: "negative abandon count -3",
		},
		{
			name: "tagged",
			err:  NewError("bad input").WithComponent("cuckoo").WithOperation("validate"),
			want: "cuckoo: validate: bad input",
		},
		{
			name: "wrapped cause",
			err:  WrapError(fmt.Errorf("backend down"), "evaluating candidate").WithComponent("cuckoo"),
			want: "cuckoo: evaluating candidate: backend down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapErrorNilCause(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))
}

func TestSentinelSurvivesWrapping(t *testing.T) {
	wrapped := WrapError(ErrAbandonExceedsPopulation, "creating optimizer")
	assert.True(t, errors.Is(wrapped, ErrAbandonExceedsPopulation))

	var target *Error
	assert.True(t, errors.As(wrapped, &target))
}
