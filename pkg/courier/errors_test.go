package courier_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shipdesk/logistics/pkg/courier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MessageIncludesClassification(t *testing.T) {
	err := courier.NewError("delhivery", courier.KindUpstreamRejected, "E102", "pincode not serviceable")

	assert.Contains(t, err.Error(), "delhivery")
	assert.Contains(t, err.Error(), "upstream_rejected")
	assert.Contains(t, err.Error(), "E102")
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := courier.NewError("ekart", courier.KindUpstreamTimeout, "TRANSPORT", "book failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKind_ExtractsFromWrappedChain(t *testing.T) {
	inner := courier.NewError("bluedart", courier.KindAuthFailed, "LOGIN_FAILED", "bad license key")
	wrapped := fmt.Errorf("booking aborted: %w", inner)

	assert.Equal(t, courier.KindAuthFailed, courier.Kind(wrapped))
}

func TestKind_NonAdapterError(t *testing.T) {
	assert.Equal(t, courier.ErrorKind(""), courier.Kind(errors.New("plain")))
	assert.Equal(t, courier.ErrorKind(""), courier.Kind(nil))
}

func TestIsRetryable_OnlyTimeouts(t *testing.T) {
	tests := []struct {
		kind courier.ErrorKind
		want bool
	}{
		{courier.KindUpstreamTimeout, true},
		{courier.KindUpstreamRejected, false},
		{courier.KindAuthFailed, false},
		{courier.KindInvalidResponseShape, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := courier.NewError("xpressbees", tt.kind, "X", "msg")
			assert.Equal(t, tt.want, courier.IsRetryable(err))
		})
	}
}

func TestError_IsMatchesByKind(t *testing.T) {
	a := courier.NewError("delhivery", courier.KindUpstreamTimeout, "TIMEOUT", "slow")
	b := courier.NewError("ekart", courier.KindUpstreamTimeout, "OTHER", "also slow")

	require.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, courier.NewError("ekart", courier.KindAuthFailed, "X", "y"))
}
