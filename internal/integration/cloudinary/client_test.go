package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videohub/videohub-api/pkg/logger"
)

func TestExtractPublicID(t *testing.T) {
	client := NewClient(Config{CloudName: "demo"}, logger.NewNop())

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "versioned video url",
			url:  "https://res.cloudinary.com/demo/video/upload/v1712345678/videohub/abc123.mp4",
			want: "videohub/abc123",
		},
		{
			name: "image without version segment",
			url:  "https://res.cloudinary.com/demo/image/upload/avatars/user42.png",
			want: "avatars/user42",
		},
		{
			name: "nested folders",
			url:  "https://res.cloudinary.com/demo/image/upload/v1/a/b/c/d.jpg",
			want: "a/b/c/d",
		},
		{
			name: "no extension",
			url:  "https://res.cloudinary.com/demo/video/upload/v99/raw_asset",
			want: "raw_asset",
		},
		{
			name: "v-prefixed folder is not a version",
			url:  "https://res.cloudinary.com/demo/image/upload/videos/clip.jpg",
			want: "videos/clip",
		},
		{
			name: "missing upload segment",
			url:  "https://example.com/some/path/file.mp4",
			want: "",
		},
		{
			name: "nothing after upload",
			url:  "https://res.cloudinary.com/demo/image/upload",
			want: "",
		},
		{
			name: "not a url",
			url:  "definitely not a url",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.ExtractPublicID(tt.url))
		})
	}
}

func TestSignIsDeterministicAndOrderIndependent(t *testing.T) {
	client := NewClient(Config{CloudName: "demo", APISecret: "s3cret"}, logger.NewNop())

	a := client.sign(map[string]string{"timestamp": "1712345678", "folder": "videohub"})
	b := client.sign(map[string]string{"folder": "videohub", "timestamp": "1712345678"})

	assert.Equal(t, a, b)
	assert.Len(t, a, 40) // hex-encoded SHA-1
}

func TestUpload(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1 << 20))

		assert.NotEmpty(t, r.FormValue("timestamp"))
		assert.NotEmpty(t, r.FormValue("signature"))
		assert.Equal(t, "key123", r.FormValue("api_key"))
		assert.Equal(t, "videohub", r.FormValue("folder"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"public_id":"videohub/abc","secure_url":"https://res.cloudinary.com/demo/video/upload/v1/videohub/abc.mp4","format":"mp4","bytes":42}`))
	}))
	defer server.Close()

	client := NewClient(Config{CloudName: "demo", APIKey: "key123", APISecret: "s3cret", Folder: "videohub"}, logger.NewNop())
	client.baseURL = server.URL

	result, err := client.Upload(context.Background(), strings.NewReader("fake video bytes"), "clip.mp4", "video")
	require.NoError(t, err)

	assert.Equal(t, "/video/upload", gotPath)
	assert.Equal(t, "videohub/abc", result.PublicID)
	assert.Equal(t, int64(42), result.Bytes)
}

func TestUploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid signature"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{CloudName: "demo", APIKey: "key123", APISecret: "wrong"}, logger.NewNop())
	client.baseURL = server.URL

	_, err := client.Upload(context.Background(), strings.NewReader("data"), "clip.mp4", "video")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload rejected")
}

func TestDestroy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "videohub/abc", r.FormValue("public_id"))
		assert.Equal(t, "/video/destroy", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	client := NewClient(Config{CloudName: "demo", APIKey: "key123", APISecret: "s3cret"}, logger.NewNop())
	client.baseURL = server.URL

	require.NoError(t, client.Destroy(context.Background(), "videohub/abc", "video"))
}
