package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rizz-social/internal/pkg/jwtutil"
	"rizz-social/internal/testutil"
	httptransport "rizz-social/internal/transport/http"
)

const testSecret = "client-test-secret"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httptransport.NewRouter(testutil.NewApp(t, testSecret)))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_PostFlow(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	alice := New(srv.URL)
	user, err := alice.Register(ctx, "alice", "alice@example.com", "password123", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	login, err := alice.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, login.Token, alice.Tokens().Token())
	assert.True(t, login.ExpiresAt.After(time.Now()))

	post, err := alice.CreatePost(ctx, "hello", &File{Name: "pic.png", Data: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Username)
	require.NotNil(t, post.ImageURL)

	posts, err := alice.ListPosts(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	mine, err := alice.ListUserPosts(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	edited := "edited"
	post, err = alice.UpdatePost(ctx, post.ID, &edited, nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Content)
	require.NotNil(t, post.ImageURL)

	bob := New(srv.URL)
	_, err = bob.Register(ctx, "bob", "bob@example.com", "password123", nil)
	require.NoError(t, err)
	_, err = bob.Login(ctx, "bob", "password123")
	require.NoError(t, err)

	err = bob.DeletePost(ctx, post.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	got, err := bob.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, alice.DeletePost(ctx, post.ID))
	_, err = alice.GetPost(ctx, post.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Profile(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	c := New(srv.URL)
	registered, err := c.Register(ctx, "alice", "alice@example.com", "password123", &File{Name: "a.png", Data: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	require.NotNil(t, registered.ProfilePicture)

	_, err = c.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	name := "alice2"
	updated, err := c.UpdateProfile(ctx, ProfileUpdate{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, *registered.ProfilePicture, *updated.ProfilePicture)

	profile, err := c.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice2", profile.Username)

	byID, err := c.GetUser(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, byID.ID)
}

func TestClient_ExpiredSessionClearsToken(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	c := New(srv.URL)
	user, err := c.Register(ctx, "alice", "alice@example.com", "password123", nil)
	require.NoError(t, err)

	expired, _, err := jwtutil.GenerateToken(testSecret, -time.Minute, user.ID, "alice")
	require.NoError(t, err)
	c.Tokens().SetToken(expired)

	content := "x"
	_, err = c.UpdatePost(ctx, 1, &content, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Empty(t, c.Tokens().Token())
}

func TestClient_ErrorMessages(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	c := New(srv.URL)
	_, err := c.Login(ctx, "nobody", "password123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "invalid username or password", apiErr.Message)
	assert.False(t, errors.Is(err, ErrSessionExpired))

	_, err = c.GetProfile(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNAUTHENTICATED", apiErr.Code)
}

func TestDecodeAPIError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"message":"from message","error":"from error"}`, "from message"},
		{"error field", `{"error":"from error","code":"NOT_FOUND"}`, "from error"},
		{"empty body", ``, "Request failed"},
		{"not json", `<html>bad gateway</html>`, "Request failed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := decodeAPIError(http.StatusBadGateway, []byte(tc.body))
			assert.Equal(t, tc.want, err.Message)
			assert.Equal(t, http.StatusBadGateway, err.Status)
		})
	}
}
