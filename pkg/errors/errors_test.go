package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Error()
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.CodeInternal, "unexpected failure"},
		{"asset not found", errors.ErrCodeAssetNotFound, "asset 42 not found"},
		{"invalid topN", errors.ErrCodeInvalidTopN, "topN must be positive"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.Stack, "errors_test.go")
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInvalidFilter, "bad filter")
	assert.Equal(t, "[ANL_001] bad filter", ae.Error())

	withDetail := ae.WithDetail("dateRange=fortnight")
	assert.Equal(t, "[ANL_001] bad filter: dateRange=fortnight", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	wrapped := errors.Wrap(fmt.Errorf("conn refused"), errors.ErrCodeDatabaseError, "list assets")
	assert.Equal(t, "[COMMON_012] list assets | conn refused", wrapped.Error())
}

func TestAppError_NilReceiverBuilders(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(fmt.Errorf("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "noop"))
}

func TestWrap_UnknownCodePreservesInner(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeAssetNotFound, "missing")
	outer := errors.Wrap(inner, errors.CodeUnknown, "load asset")

	assert.Equal(t, errors.ErrCodeAssetNotFound, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWrap_ExplicitCodeOverrides(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeAssetNotFound, "missing")
	outer := errors.Wrap(inner, errors.ErrCodeComputationFailed, "compute")

	assert.Equal(t, errors.ErrCodeComputationFailed, outer.Code)
	assert.True(t, errors.IsCode(outer, errors.ErrCodeAssetNotFound))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_ThroughStdlibWrapping(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeCacheError, "redis down")
	err := fmt.Errorf("warm cache: %w", base)

	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
	assert.False(t, errors.IsCode(err, errors.ErrCodeDatabaseError))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeCacheError))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeAssetNotFound, "x")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.Validation("x")))
	assert.True(t, errors.IsValidation(errors.InvalidParam("x")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeInvalidTopN, "x")))
	assert.False(t, errors.IsValidation(errors.Internal("x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeRateLimit, errors.GetCode(fmt.Errorf("ctx: %w", errors.RateLimit("slow down"))))
}

func TestAsAppError(t *testing.T) {
	t.Parallel()

	ae, ok := errors.AsAppError(fmt.Errorf("outer: %w", errors.NotFound("gone")))
	require.True(t, ok)
	assert.Equal(t, "gone", ae.Message)

	_, ok = errors.AsAppError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestFactories(t *testing.T) {
	t.Parallel()

	cases := map[errors.ErrorCode]*errors.AppError{
		errors.CodeNotFound:              errors.NotFound("m"),
		errors.CodeInvalidParam:          errors.InvalidParam("m"),
		errors.ErrCodeValidation:         errors.Validation("m"),
		errors.CodeInternal:              errors.Internal("m"),
		errors.CodeConflict:              errors.Conflict("m"),
		errors.CodeRateLimit:             errors.RateLimit("m"),
		errors.ErrCodeServiceUnavailable: errors.Unavailable("m"),
	}
	for code, ae := range cases {
		assert.Equal(t, code, ae.Code)
		assert.Equal(t, "m", ae.Message)
		assert.NotEmpty(t, ae.Stack)
	}
}

//Personal.AI order the ending
