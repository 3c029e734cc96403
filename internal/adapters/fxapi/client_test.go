package fxapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetLatestRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "TRY", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"base":"USD","date":"2024-01-15","rates":{"TRY":34.50}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0)
	rate, err := client.GetLatestRate(context.Background(), "USD", "TRY")
	require.NoError(t, err)
	assert.Equal(t, "USD", rate.Base)
	assert.Equal(t, "TRY", rate.Quote)
	assert.Equal(t, "34.5", rate.Rate.String())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rate.Date)
}

func TestClient_GetHistoricalRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023-06-30", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"base":"EUR","date":"2023-06-30","rates":{"USD":1.0866}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0)
	day := time.Date(2023, 6, 30, 15, 4, 5, 0, time.UTC)
	rate, err := client.GetHistoricalRate(context.Background(), day, "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, "1.0866", rate.Rate.String())
	assert.Equal(t, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC), rate.Date)
}

func TestClient_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":106,"info":"no data for date"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0)
	_, err := client.GetLatestRate(context.Background(), "USD", "TRY")
	assert.ErrorIs(t, err, apperrors.ErrRateProvider)
	assert.Contains(t, err.Error(), "no data for date")
}

func TestClient_MissingQuoteInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"date":"2024-01-15","rates":{"EUR":0.92}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0)
	_, err := client.GetLatestRate(context.Background(), "USD", "TRY")
	assert.ErrorIs(t, err, apperrors.ErrRateProvider)
}

func TestClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0)
	_, err := client.GetLatestRate(context.Background(), "USD", "TRY")
	assert.ErrorIs(t, err, apperrors.ErrRateProvider)
}
