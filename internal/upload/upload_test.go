package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/db"
	"github.com/erazemk/inventario/internal/store"
)

func TestScriptUploader(t *testing.T) {
	var got scriptRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"url": "https://drive.example/file/1"})
	}))
	defer server.Close()

	url, err := NewScriptUploader(server.URL).Upload(context.Background(), []byte("jpeg bytes"), "image/jpeg", "Drill.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example/file/1", url)

	data, err := base64.StdEncoding.DecodeString(got.Base64)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, "image/jpeg", got.Type)
	assert.Equal(t, "Drill.jpg", got.Name)
}

func TestScriptUploaderFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "permission denied", http.StatusInternalServerError)
		},
		"no url": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok"}`))
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>login</html>`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewScriptUploader(server.URL).Upload(context.Background(), []byte("x"), "image/jpeg", "x.jpg")
			assert.Error(t, err)
		})
	}
}

func TestScriptUploaderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewScriptUploader(url).Upload(context.Background(), []byte("x"), "image/jpeg", "x.jpg")
	assert.Error(t, err)
}

func TestDBUploader(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	url, err := (&DBUploader{DB: database}).Upload(ctx, []byte("jpeg bytes"), "image/jpeg", "Drill.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/photos/1", url)

	data, mime, err := store.GetPhoto(ctx, database, 1)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
	assert.Equal(t, "image/jpeg", mime)
}
