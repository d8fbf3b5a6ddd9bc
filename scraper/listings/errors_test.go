package listings

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status  int
		kind    Kind
		message string
	}{
		{404, KindNotFound, "API endpoint not found"},
		{500, KindServer, "server error - please try again later"},
		{503, KindServer, "server error (503) - please try again later"},
		{400, KindClient, "client error (400) - please check your request"},
		{422, KindClient, "client error (422) - please check your request"},
		{301, KindClient, "client error (301) - please check your request"},
		{304, KindClient, "client error (304) - please check your request"},
		{102, KindClient, "client error (102) - please check your request"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			fe := statusError(tt.status, "http://api/listings?page=1")
			assert.Equal(t, tt.kind, fe.Kind)
			assert.Equal(t, tt.message, fe.Error())
			assert.False(t, fe.Retryable())
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"deadline", &url.Error{Op: "Get", URL: "u", Err: context.DeadlineExceeded}, KindTimeout},
		{"timeout text", errors.New("i/o timeout"), KindTimeout},
		{"cors", errors.New("blocked by CORS policy"), KindCORS},
		{"failed to fetch", errors.New("TypeError: Failed to fetch"), KindNetwork},
		{"dial", &url.Error{Op: "Get", URL: "u", Err: opErr}, KindNetwork},
		{"generic", errors.New("boom"), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := classifyTransportError(tt.err, "u")
			assert.Equal(t, tt.kind, fe.Kind)
			assert.True(t, fe.Retryable())
			assert.ErrorIs(t, fe, tt.err)
		})
	}
}

func TestFetchErrorMessages(t *testing.T) {
	assert.Equal(t, "request timeout - please check your internet connection",
		(&FetchError{Kind: KindTimeout}).Error())
	assert.Equal(t, "CORS error - unable to connect to the server",
		(&FetchError{Kind: KindCORS}).Error())
	assert.Equal(t, "listing reports too many pages: 1000000 > 500",
		(&FetchError{Kind: KindPageLimit, Err: errors.New("1000000 > 500")}).Error())
	assert.False(t, (&FetchError{Kind: KindPageLimit}).Retryable())
	assert.Equal(t, "request failed: boom",
		(&FetchError{Kind: KindTransport, Err: errors.New("boom")}).Error())
}

func TestIsKindAndIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("page 2: %w", &FetchError{Kind: KindServer, StatusCode: 500})

	assert.True(t, IsKind(wrapped, KindServer))
	assert.False(t, IsKind(wrapped, KindClient))
	assert.False(t, IsRetryable(wrapped))
	assert.True(t, IsRetryable(&FetchError{Kind: KindNetwork}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
