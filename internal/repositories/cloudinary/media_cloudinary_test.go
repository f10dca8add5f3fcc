package cloudinary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MediaCloudinary {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := NewMediaCloudinary(CloudinaryConfig{
		BaseURL:   server.URL,
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
		Timeout:   5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.now = func() time.Time { return time.Unix(1700000000, 0) }
	return m
}

func TestSign(t *testing.T) {
	params := map[string]string{
		"timestamp": "1700000000",
		"public_id": "abc",
		"api_key":   "ignored",
	}
	// sha1("public_id=abc&timestamp=1700000000secret")
	got := Sign(params, "secret")
	assert.Len(t, got, 40)
	assert.Equal(t, got, Sign(map[string]string{"public_id": "abc", "timestamp": "1700000000"}, "secret"))
	assert.NotEqual(t, got, Sign(params, "other"))
}

func TestUploadVideo(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/video/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.Equal(t, Sign(map[string]string{"timestamp": "1700000000"}, "secret"), r.FormValue("signature"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "clip.mp4", header.Filename)
		assert.Equal(t, "video-bytes", string(body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"url":        "http://res.example.com/demo/video/upload/v1/abc.mp4",
			"secure_url": "https://res.example.com/demo/video/upload/v1/abc.mp4",
			"public_id":  "abc",
			"duration":   12.5,
		})
	})

	asset, err := m.UploadVideo(context.Background(), "clip.mp4", strings.NewReader("video-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "abc", asset.PublicID)
	assert.Equal(t, "https://res.example.com/demo/video/upload/v1/abc.mp4", asset.SecureURL)
	assert.Equal(t, 12.5, asset.Duration)
}

func TestUploadImage_Rejected(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/auto/upload", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	})

	_, err := m.UploadImage(context.Background(), "x.png", strings.NewReader("nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, repositories.ErrMediaUploadFailed))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		result  string
		wantErr bool
	}{
		{name: "ok", result: "ok"},
		{name: "already gone", result: "not found"},
		{name: "unexpected", result: "error", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/demo/video/destroy", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "lecture-1", r.FormValue("public_id"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"result":"` + tt.result + `"}`))
			})

			err := m.DeleteVideo(context.Background(), "lecture-1")
			if tt.wantErr {
				assert.True(t, errors.Is(err, repositories.ErrMediaDeleteFailed))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDelete_EmptyPublicIDSkipsRequest(t *testing.T) {
	m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	assert.NoError(t, m.DeleteImage(context.Background(), ""))
}

func TestPublicIDFromURL(t *testing.T) {
	assert.Equal(t, "abc", PublicIDFromURL("https://res.example.com/demo/image/upload/v1/abc.jpg"))
	assert.Equal(t, "abc", PublicIDFromURL("abc"))
	assert.Equal(t, "", PublicIDFromURL(""))
}
