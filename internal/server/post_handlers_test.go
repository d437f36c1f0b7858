package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresLogin(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/api/create", "", url.Values{"text": {"hello"}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.Equal(t, "/api/auth/login?next="+url.QueryEscape("/api/create"), location)
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")

	resp := doRequest(t, app, http.MethodPost, "/api/create", authToken(t, s, alice),
		url.Values{"text": {"my first post"}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/profile/alice", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreatePostRejectsForbiddenCharacters(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")

	resp := doRequest(t, app, http.MethodPost, "/api/create", authToken(t, s, alice),
		url.Values{"text": {"profit ^ 100"}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEditPostByNonAuthorLeavesRowUntouched(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	post := createPost(t, db, alice, "original text")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/1/edit", authToken(t, s, mallory),
		url.Values{"text": {"hijacked"}})
	defer resp.Body.Close()

	// The impostor is sent to the post page, not shown an error.
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/posts/1", resp.Header.Get("Location"))

	var got models.Post
	require.NoError(t, db.First(&got, post.ID).Error)
	assert.Equal(t, "original text", got.Text)
}

func TestEditPostByAuthorKeepsCreatedAt(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice, "original text")

	var before models.Post
	require.NoError(t, db.First(&before, post.ID).Error)
	time.Sleep(10 * time.Millisecond)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/1/edit", authToken(t, s, alice),
		url.Values{"text": {"revised text"}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var after models.Post
	require.NoError(t, db.First(&after, post.ID).Error)
	assert.Equal(t, "revised text", after.Text)
	assert.Equal(t, before.CreatedAt.UnixNano(), after.CreatedAt.UnixNano(),
		"editing must not move the publication time")
}

func TestDeletePostByNonAuthorRedirectsToDetail(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	createPost(t, db, alice, "keep me")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/1/delete", authToken(t, s, mallory), url.Values{})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/posts/1", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeletePostByAuthor(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	createPost(t, db, alice, "bye")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/1/delete", authToken(t, s, alice), url.Values{})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/profile/alice", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetPostsPaginates(t *testing.T) {
	_, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	for i := 0; i < 13; i++ {
		createPost(t, db, alice, "post")
	}

	resp := doRequest(t, app, http.MethodGet, "/api/posts", "", nil)
	var page1 struct {
		Posts []models.Post `json:"posts"`
		Page  struct {
			Number     int `json:"number"`
			TotalPages int `json:"total_pages"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &page1))
	assert.Len(t, page1.Posts, 10)
	assert.Equal(t, 2, page1.Page.TotalPages)

	resp = doRequest(t, app, http.MethodGet, "/api/posts?page=2", "", nil)
	var page2 struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &page2))
	assert.Len(t, page2.Posts, 3)
}

func TestGetPostDetailIncludesComments(t *testing.T) {
	_, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	post := createPost(t, db, alice, "discussed")
	require.NoError(t, db.Create(&models.Comment{Text: "hot take", PostID: post.ID, AuthorID: alice.ID}).Error)

	resp := doRequest(t, app, http.MethodGet, "/api/posts/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail struct {
		Post            models.Post      `json:"post"`
		Comments        []models.Comment `json:"comments"`
		AuthorPostCount int64            `json:"author_post_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &detail))
	assert.Equal(t, "discussed", detail.Post.Text)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "hot take", detail.Comments[0].Text)
	assert.Equal(t, int64(1), detail.AuthorPostCount)
}

func TestGetPostUnknownIDIs404(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, http.MethodGet, "/api/posts/999", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/posts/not-a-number", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
