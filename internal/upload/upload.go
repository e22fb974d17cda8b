// Package upload hands item photos to a place that serves them by URL.
package upload

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erazemk/inventario/internal/store"
)

// ScriptUploader posts photos to an HTTP bridge that stores them in cloud
// file storage. The bridge takes {"base64", "type", "name"} and answers
// {"url"}.
type ScriptUploader struct {
	URL    string
	Client *http.Client
}

type scriptRequest struct {
	Base64 string `json:"base64"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

type scriptResponse struct {
	URL string `json:"url"`
}

// NewScriptUploader returns an uploader for the bridge at url.
func NewScriptUploader(url string) *ScriptUploader {
	return &ScriptUploader{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload implements inventory.Uploader.
func (u *ScriptUploader) Upload(ctx context.Context, data []byte, mime, name string) (string, error) {
	body, err := json.Marshal(scriptRequest{
		Base64: base64.StdEncoding.EncodeToString(data),
		Type:   mime,
		Name:   name,
	})
	if err != nil {
		return "", fmt.Errorf("encoding upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("upload bridge returned %s", resp.Status)
	}

	var out scriptResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload response has no url")
	}
	return out.URL, nil
}

// DBUploader keeps photos in the SQLite database and serves them under
// Prefix.
type DBUploader struct {
	DB     *sql.DB
	Prefix string
}

// PhotoPath is the URL prefix photos are served under.
const PhotoPath = "/photos/"

// Upload implements inventory.Uploader.
func (u *DBUploader) Upload(ctx context.Context, data []byte, mime, _ string) (string, error) {
	id, err := store.SavePhoto(ctx, u.DB, data, mime)
	if err != nil {
		return "", err
	}
	prefix := u.Prefix
	if prefix == "" {
		prefix = PhotoPath
	}
	return fmt.Sprintf("%s%d", prefix, id), nil
}
