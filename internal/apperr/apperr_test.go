package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: Validation("month is required"), want: KindValidation},
		{name: "persistence", err: Persistence(cause, "failed to load roster"), want: KindPersistence},
		{name: "wrapped by fmt", err: fmt.Errorf("outer: %w", Duplicate("already uploaded")), want: KindDuplicateReport},
		{name: "plain error", err: cause, want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Persistence(cause, "failed to insert report %s", "2025-03")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to insert report 2025-03: unique violation", err.Error())
	assert.Nil(t, Wrap(nil, KindInternal, "nothing"))
}

func TestSuggestion(t *testing.T) {
	err := Parse("header not found").WithSuggestion("check the first rows")
	assert.Equal(t, "check the first rows", SuggestionOf(err))
	assert.Equal(t, "", SuggestionOf(errors.New("plain")))
	assert.False(t, Is(nil, KindParse))
	assert.True(t, Is(err, KindParse))
}

func TestStackIsRecorded(t *testing.T) {
	err := NotFound("no report")
	require.NotEmpty(t, err.StackTrace())
	assert.Contains(t, fmt.Sprintf("%+v", err), "TestStackIsRecorded")
	assert.Equal(t, "no report", fmt.Sprintf("%v", err))
}
