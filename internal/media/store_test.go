package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStoreUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "auctions", r.FormValue("folder"))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "item.jpg", fh.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Object{PublicID: "auctions/abc", URL: "https://cdn/abc"})
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	obj, err := store.Upload(context.Background(), "auctions", "item.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, "auctions/abc", obj.PublicID)
	assert.Equal(t, "https://cdn/abc", obj.URL)
}

func TestHTTPStoreUploadFailures(t *testing.T) {
	t.Run("upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := NewHTTPStore(srv.URL).Upload(context.Background(), "profiles", "a.png", strings.NewReader("x"))
		assert.Error(t, err)
	})
	t.Run("incomplete response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(Object{PublicID: "only-id"})
		}))
		defer srv.Close()
		_, err := NewHTTPStore(srv.URL).Upload(context.Background(), "profiles", "a.png", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestStubStore(t *testing.T) {
	obj, err := StubStore{}.Upload(context.Background(), "profiles", "me.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(obj.PublicID, "profiles/"))
	assert.NotEmpty(t, obj.URL)

	other, err := StubStore{}.Upload(context.Background(), "profiles", "me.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, obj.PublicID, other.PublicID)
}
