// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/razinkele/marbefes-eva-app/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"component not found", errors.CodeComponentNotFound, "component 'Birds' not found"},
		{"validation", errors.CodeValidation, "dataset must contain at least one subzone"},
		{"duplicate subzone", errors.CodeDuplicateSubzone, "subzone 'S1' appears twice"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestError_FormatsCodeMessageDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeValidation, "bad dataset")
	assert.Equal(t, "[COMMON_005] bad dataset", ae.Error())

	withDetail := ae.WithDetail("feature count 120 exceeds limit 100")
	assert.Equal(t, "[COMMON_005] bad dataset: feature count 120 exceeds limit 100", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_PreservesCauseChain(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("redis: connection refused")
	ae := errors.Wrap(root, errors.CodeCacheError, "failed to read memoized result")

	require.NotNil(t, ae)
	assert.Equal(t, errors.CodeCacheError, ae.Code)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, stderrors.Unwrap(ae))
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should vanish"))
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.CodeComponentNotFound, "missing")
	outer := errors.Wrap(inner, errors.CodeUnknown, "while aggregating")

	assert.Equal(t, errors.CodeComponentNotFound, outer.Code)
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	notFound := errors.New(errors.CodeComponentNotFound, "nope")
	validation := errors.NewValidation("bad input")
	conflict := errors.Conflict("already saved")

	assert.True(t, errors.IsNotFound(notFound))
	assert.True(t, errors.IsNotFound(errors.NotFound("generic")))
	assert.False(t, errors.IsNotFound(validation))

	assert.True(t, errors.IsValidation(validation))
	assert.False(t, errors.IsValidation(conflict))

	assert.True(t, errors.IsConflict(conflict))

	// Predicates must traverse wrapped chains.
	wrapped := fmt.Errorf("outer: %w", notFound)
	assert.True(t, errors.IsNotFound(wrapped))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeValidation, errors.GetCode(errors.NewValidation("x")))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, errors.StatusFor(errors.New(errors.CodeComponentNotFound, "x")))
	assert.Equal(t, http.StatusUnprocessableEntity, errors.StatusFor(errors.NewValidation("x")))
	assert.Equal(t, http.StatusInternalServerError, errors.StatusFor(fmt.Errorf("plain")))
}
