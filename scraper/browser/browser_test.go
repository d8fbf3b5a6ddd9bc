package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"vehicle-market/scraper/listings"
)

func TestPageURL(t *testing.T) {
	assert.Equal(t, "http://api.local/api/listings?page=4", pageURL("http://api.local/api/listings", 4))
}

func TestStatusKind(t *testing.T) {
	assert.Equal(t, listings.KindNotFound, statusKind(404))
	assert.Equal(t, listings.KindClient, statusKind(403))
	assert.Equal(t, listings.KindClient, statusKind(304))
	assert.Equal(t, listings.KindServer, statusKind(500))
}

func TestClassifyNavError(t *testing.T) {
	tests := []struct {
		err  error
		kind listings.Kind
	}{
		{context.DeadlineExceeded, listings.KindTimeout},
		{fmt.Errorf("navigate: %w", context.DeadlineExceeded), listings.KindTimeout},
		{errors.New("page load error net::ERR_CONNECTION_TIMED_OUT"), listings.KindTimeout},
		{errors.New("page load error net::ERR_BLOCKED_BY_RESPONSE"), listings.KindCORS},
		{errors.New("page load error net::ERR_CONNECTION_REFUSED"), listings.KindNetwork},
		{errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), listings.KindNetwork},
		{errors.New("websocket closed"), listings.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			fe := classifyNavError(tt.err, "http://x")
			assert.Equal(t, tt.kind, fe.Kind)
			assert.True(t, fe.Retryable())
		})
	}
}

func TestNewSource_RejectsBadURL(t *testing.T) {
	_, err := NewSource(Options{ListingsURL: "::not-a-url"})
	assert.Error(t, err)
}
