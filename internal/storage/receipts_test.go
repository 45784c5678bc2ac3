package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-billing/internal/common/config"
)

func TestReceiptKey(t *testing.T) {
	assert.Equal(t, "receipts/BILL-20240101103000.txt", ReceiptKey("BILL-20240101103000"))
}

func TestNewReceiptStoreRequiresBucket(t *testing.T) {
	_, err := NewReceiptStore(context.Background(), config.Storage{Region: "auto"})
	assert.Error(t, err)
}

func TestReceiptStoreURL(t *testing.T) {
	ctx := context.Background()

	s, err := NewReceiptStore(ctx, config.Storage{Region: "auto", Bucket: "bills", AccessKey: "k", SecretKey: "s", PublicBaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/receipts/A.txt", s.URL("receipts/A.txt"))

	s, err = NewReceiptStore(ctx, config.Storage{Region: "auto", Bucket: "bills", AccessKey: "k", SecretKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bills/receipts/A.txt", s.URL("receipts/A.txt"))
}

func TestPutReceipt(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewReceiptStore(context.Background(), config.Storage{
		Endpoint:  srv.URL,
		Region:    "auto",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "bills",
	})
	require.NoError(t, err)

	url, err := s.PutReceipt(context.Background(), ReceiptKey("BILL-1"), []byte("Tea x2"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/bills/receipts/BILL-1.txt", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/bills/receipts/BILL-1.txt", path)
	assert.Contains(t, body, "Tea x2")
}
