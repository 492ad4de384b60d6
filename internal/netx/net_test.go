package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadToPresignedURL_Success(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := UploadToPresignedURL(context.Background(), srv.URL, "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "image/png", gotContentType)
	require.Equal(t, []byte{0x89, 0x50}, gotBody)
}

func TestUploadToPresignedURL_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	}))
	defer srv.Close()

	err := UploadToPresignedURL(context.Background(), srv.URL, "", []byte("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}
