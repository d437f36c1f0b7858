package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartPost(t *testing.T, app *fiber.App, target, token string, fields map[string]string, fileField, fileName string, fileBytes []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileBytes)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreatePostWithImage(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")

	resp := multipartPost(t, app, "/api/create", authToken(t, s, alice),
		map[string]string{"text": "a picture says it all"},
		"image", "snapshot.png", testutil.TinyPNG(t, 4, 4))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post).Error)
	require.NotEmpty(t, post.ImagePath)
	assert.Equal(t, ".png", filepath.Ext(post.ImagePath))

	// The bytes actually landed under the media directory.
	stored := filepath.Join(s.config.MediaDir, filepath.FromSlash(post.ImagePath))
	info, err := os.Stat(stored)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRejectedCreateDiscardsUpload(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")

	resp := multipartPost(t, app, "/api/create", authToken(t, s, alice),
		map[string]string{"text": "100% forbidden #text"},
		"image", "snapshot.png", testutil.TinyPNG(t, 4, 4))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	entries, err := os.ReadDir(filepath.Join(s.config.MediaDir, "posts"))
	if err == nil {
		assert.Empty(t, entries, "rejected create must not leave files behind")
	}
}

func TestNonAuthorEditDiscardsUpload(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createPost(t, db, alice, "original text")

	resp := multipartPost(t, app, "/api/posts/1/edit", authToken(t, s, bob),
		map[string]string{"text": "hijacked"},
		"image", "snapshot.png", testutil.TinyPNG(t, 4, 4))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/posts/1", resp.Header.Get("Location"))

	entries, err := os.ReadDir(filepath.Join(s.config.MediaDir, "posts"))
	if err == nil {
		assert.Empty(t, entries, "denied edit must not leave files behind")
	}
}

func TestCreatePostRejectsNonImageUpload(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")

	resp := multipartPost(t, app, "/api/create", authToken(t, s, alice),
		map[string]string{"text": "smuggled attachment"},
		"image", "notes.png", []byte("plain text dressed as a png"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
