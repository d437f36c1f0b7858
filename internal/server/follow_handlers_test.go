package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowAndFeed(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	createPost(t, db, alice, "from alice")
	createPost(t, db, bob, "from bob")

	token := authToken(t, s, carol)

	// Before following anyone the feed is empty.
	resp := doRequest(t, app, http.MethodGet, "/api/follow", token, nil)
	var feed struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &feed))
	assert.Empty(t, feed.Posts)

	// Follow alice; the redirect lands back on her profile.
	resp = doRequest(t, app, http.MethodPost, "/api/profile/alice/follow", token, url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/profile/alice", resp.Header.Get("Location"))

	resp = doRequest(t, app, http.MethodGet, "/api/follow", token, nil)
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &feed))
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "from alice", feed.Posts[0].Text)

	// Unfollow empties the feed again.
	resp = doRequest(t, app, http.MethodPost, "/api/profile/alice/unfollow", token, url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/follow", token, nil)
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &feed))
	assert.Empty(t, feed.Posts)
}

func TestFollowIsIdempotentAndSelfFollowIsANoOp(t *testing.T) {
	s, app, db := newTestServer(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	token := authToken(t, s, bob)

	for i := 0; i < 3; i++ {
		resp := doRequest(t, app, http.MethodPost, "/api/profile/alice/follow", token, url.Values{})
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	}

	resp := doRequest(t, app, http.MethodPost, "/api/profile/bob/follow", token, url.Values{})
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "three follows of alice plus a self-follow leave one edge")
	_ = alice
}

func TestFollowUnknownUserIs404(t *testing.T) {
	s, app, db := newTestServer(t)
	bob := createUser(t, db, "bob")

	resp := doRequest(t, app, http.MethodPost, "/api/profile/ghost/follow", authToken(t, s, bob), url.Values{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFollowFeedRequiresLogin(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, http.MethodGet, "/api/follow", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/api/auth/login?next=")
}
