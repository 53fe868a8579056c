// internal/common/onebuild/client_test.go
package onebuild

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient(&Config{BaseURL: "https://api.example.com", APIKey: "k"}).Configured())
	assert.False(t, NewClient(&Config{BaseURL: "https://api.example.com"}).Configured())
	assert.False(t, NewClient(&Config{APIKey: "k"}).Configured())
	assert.False(t, NewClient(&Config{}).Configured())
}

func TestGetTradePricing_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/pricing/trades/plumbing", r.URL.Path)
		assert.Equal(t, "78701", r.URL.Query().Get("zipcode"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		json.NewEncoder(w).Encode(TradePricing{
			Labor: []LaborEntry{
				{Description: "Journeyman plumber", HourlyRate: 92.5, Unit: "hour"},
			},
			Materials: []MaterialEntry{
				{Description: "Supply line", UnitPrice: 12.0, Unit: "each"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "secret"})
	pricing, err := client.GetTradePricing(context.Background(), "plumbing", "78701")

	assert.NoError(t, err)
	assert.Len(t, pricing.Labor, 1)
	assert.Equal(t, 92.5, pricing.Labor[0].HourlyRate)
	assert.Len(t, pricing.Materials, 1)
}

func TestGetTradePricing_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "secret"})
	_, err := client.GetTradePricing(context.Background(), "plumbing", "78701")

	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestGetTradePricing_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, APIKey: "secret"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetTradePricing(ctx, "plumbing", "78701")
	assert.Error(t, err)
}
