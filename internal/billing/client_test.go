package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-billing/internal/domain"
)

func sampleRequest() domain.BillRequest {
	balance := 40.0
	return domain.BillRequest{
		Items:         []domain.BillItem{{Name: "Tea", Price: 20, Quantity: 2, Total: 40}},
		GrandTotal:    40,
		BalanceAmount: &balance,
		Location:      "Hall A",
		Date:          "05/03/2024",
	}
}

func TestClientSubmitSendsBill(t *testing.T) {
	var got domain.BillRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate_bill", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","bill_number":"BILL-1","view_url":"/view_bill/BILL-1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithToken("tok"))
	resp, err := c.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "/view_bill/BILL-1", resp.ViewURL)

	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tea", got.Items[0].Name)
	require.NotNil(t, got.BalanceAmount)
	assert.Equal(t, 40.0, *got.BalanceAmount)
	assert.Equal(t, "Hall A", got.Location)
}

func TestClientSubmitOmitsAuthWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"success","view_url":"/view_bill/X"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
}

func TestClientSubmitErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","message":"invalid bill"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL).Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "invalid bill", resp.Message)
}

func TestClientSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error without body", http.StatusInternalServerError, ``},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`},
		{"undecodable success", http.StatusOK, `not json`},
		{"success without status", http.StatusOK, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Submit(context.Background(), sampleRequest())
			assert.Error(t, err)
		})
	}
}

func TestClientSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Submit(context.Background(), sampleRequest())
	assert.Error(t, err)
}

func TestClientMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/menu", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items":[{"id":1,"key":"tea","name":"Tea","price":15,"category":"Main"}]}`))
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, WithToken("tok")).Menu(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.MenuItem{ID: 1, Key: "tea", Name: "Tea", Price: 15, Category: "Main"}, items[0])
}

func TestClientMenuRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Menu(context.Background())
	assert.Error(t, err)
}
