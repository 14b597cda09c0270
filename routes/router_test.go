package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cppla/blogfeed/config"
	"github.com/cppla/blogfeed/utils"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.Set(config.AppConfig{
		JWTSecret:          "router-test-secret",
		RateLimitPerMinute: 100000,
		DBDriver:           "sqlite",
		SQLitePath:         fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		GinMode:            "test",
		GinPath:            filepath.Join(t.TempDir(), "gin.log"),
		LogLevel:           "silent",
		RedisDisabled:      true,
		FeedPageSize:       10,
	})
	db, err := config.OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return SetupRouter(db)
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup registers a user and returns an access token.
func signup(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "secret123", "password2": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/auth/token/", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]string](t, w)["access"]
	require.NotEmpty(t, token)
	return token
}

func createPost(t *testing.T, r http.Handler, token, title string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/post_create/", token, gin.H{"title": title, "body": "body of " + title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID uint `json:"id"`
	}](t, w).ID
}

type feedResponse struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
		Owner string `json:"owner"`
		Seen  bool   `json:"seen"`
	} `json:"results"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/post/5/seen/"},
		{http.MethodPost, "/api/post_create/"},
		{http.MethodPost, "/api/alice/subscribe/"},
		{http.MethodGet, "/api/feed/"},
	} {
		w := doJSON(t, r, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, 40101, decode[errorResponse](t, w).Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/feed/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40105, decode[errorResponse](t, w).Code)
}

func TestSubscribeToggle(t *testing.T) {
	r := newTestRouter(t)
	alice := signup(t, r, "alice")
	signup(t, r, "bob")

	type subscribeResponse struct {
		Profile struct {
			Subscriptions []string `json:"subscriptions"`
		} `json:"profile"`
	}

	w := doJSON(t, r, http.MethodPost, "/api/bob/subscribe/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"bob"}, decode[subscribeResponse](t, w).Profile.Subscriptions)

	w = doJSON(t, r, http.MethodPost, "/api/bob/subscribe/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[subscribeResponse](t, w).Profile.Subscriptions)
	assert.Contains(t, w.Body.String(), `"subscriptions":[]`)

	w = doJSON(t, r, http.MethodPost, "/api/alice/subscribe/", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40011, decode[errorResponse](t, w).Code)

	w = doJSON(t, r, http.MethodPost, "/api/ghost/subscribe/", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkSeenToggle(t *testing.T) {
	r := newTestRouter(t)
	author := signup(t, r, "author")
	reader := signup(t, r, "reader")
	postID := createPost(t, r, author, "hello")

	type seenResponse struct {
		Post uint `json:"post"`
		Seen bool `json:"seen"`
	}
	path := fmt.Sprintf("/api/post/%d/seen/", postID)

	w := doJSON(t, r, http.MethodPost, path, reader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, seenResponse{Post: postID, Seen: true}, decode[seenResponse](t, w))

	w = doJSON(t, r, http.MethodPost, path, reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, seenResponse{Post: postID, Seen: false}, decode[seenResponse](t, w))

	w = doJSON(t, r, http.MethodPost, "/api/post/9999/seen/", reader, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/post/abc/seen/", reader, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedPaginationAndSeen(t *testing.T) {
	r := newTestRouter(t)
	author := signup(t, r, "author")
	stranger := signup(t, r, "stranger")
	reader := signup(t, r, "reader")
	for i := 0; i < 12; i++ {
		createPost(t, r, author, fmt.Sprintf("post %02d", i))
	}
	createPost(t, r, stranger, "not followed")

	w := doJSON(t, r, http.MethodGet, "/api/feed/", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[feedResponse](t, w)
	assert.Empty(t, empty.Results)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
	assert.Contains(t, w.Body.String(), `"results":[]`)

	w = doJSON(t, r, http.MethodPost, "/api/author/subscribe/", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/feed/", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[feedResponse](t, w)
	require.Len(t, first.Results, 10)
	assert.Equal(t, "post 11", first.Results[0].Title)
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "page=2")
	assert.Nil(t, first.Previous)
	for _, it := range first.Results {
		assert.Equal(t, "author", it.Owner)
	}

	w = doJSON(t, r, http.MethodGet, "/api/feed/?page=2", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[feedResponse](t, w)
	require.Len(t, second.Results, 2)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.NotContains(t, *second.Previous, "page=")

	w = doJSON(t, r, http.MethodGet, "/api/feed/?page=5", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	past := decode[feedResponse](t, w)
	assert.Equal(t, second.Results, past.Results)

	w = doJSON(t, r, http.MethodGet, "/api/feed/?page=1000000000000000000", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	huge := decode[feedResponse](t, w)
	assert.Equal(t, second.Results, huge.Results)
	require.NotNil(t, huge.Previous)
	assert.NotContains(t, *huge.Previous, "page=")
	assert.Nil(t, huge.Next)

	seenID := second.Results[0].ID
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/post/%d/seen/", seenID), reader, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/feed/?seen=true", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	seen := decode[feedResponse](t, w)
	require.Len(t, seen.Results, 1)
	assert.Equal(t, seenID, seen.Results[0].ID)
	assert.True(t, seen.Results[0].Seen)

	w = doJSON(t, r, http.MethodGet, "/api/feed/?seen=false&page=2", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	unseen := decode[feedResponse](t, w)
	assert.Len(t, unseen.Results, 1)
	assert.False(t, unseen.Results[0].Seen)

	w = doJSON(t, r, http.MethodGet, "/api/feed/", author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[feedResponse](t, w).Results)
}

func TestCreatePostValidation(t *testing.T) {
	r := newTestRouter(t)
	author := signup(t, r, "author")

	w := doJSON(t, r, http.MethodPost, "/api/post_create/", author, gin.H{"title": strings.Repeat("t", 101), "body": "b"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[errorResponse](t, w)
	assert.Equal(t, 40010, resp.Code)
	assert.Contains(t, resp.Message, "title")

	w = doJSON(t, r, http.MethodPost, "/api/post_create/", author, gin.H{"title": "t", "body": strings.Repeat("b", 201)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/author/posts/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"posts":[]`)
}

func TestUserPostsListing(t *testing.T) {
	r := newTestRouter(t)
	author := signup(t, r, "author")
	createPost(t, r, author, "older")
	createPost(t, r, author, "newer")

	w := doJSON(t, r, http.MethodGet, "/api/author/posts/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Username string `json:"username"`
		Posts    []struct {
			Title string `json:"title"`
			Owner string `json:"owner"`
		} `json:"posts"`
	}](t, w)
	assert.Equal(t, "author", got.Username)
	require.Len(t, got.Posts, 2)
	assert.Equal(t, "newer", got.Posts[0].Title)

	w = doJSON(t, r, http.MethodGet, "/api/ghost/posts/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfilesListOrdering(t *testing.T) {
	r := newTestRouter(t)
	carol := signup(t, r, "carol")
	alice := signup(t, r, "alice")
	bob := signup(t, r, "bob")
	createPost(t, r, bob, "b1")
	createPost(t, r, bob, "b2")
	createPost(t, r, alice, "a1")
	doJSON(t, r, http.MethodPost, "/api/bob/subscribe/", carol, nil)

	type profile struct {
		Username      string   `json:"username"`
		PostsCount    int      `json:"posts_count"`
		Subscriptions []string `json:"subscriptions"`
	}
	names := func(ps []profile) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.Username)
		}
		return out
	}

	w := doJSON(t, r, http.MethodGet, "/api/profiles_list/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	byID := decode[[]profile](t, w)
	assert.Equal(t, []string{"carol", "alice", "bob"}, names(byID))
	assert.Equal(t, []string{"bob"}, byID[0].Subscriptions)

	w = doJSON(t, r, http.MethodGet, "/api/profiles_list/?ordering=-posts_count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	byCount := decode[[]profile](t, w)
	assert.Equal(t, []string{"bob", "alice", "carol"}, names(byCount))
	assert.Equal(t, 2, byCount[0].PostsCount)

	w = doJSON(t, r, http.MethodGet, "/api/profiles_list/?ordering=password", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, names(byID), names(decode[[]profile](t, w)))
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "leaver")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/feed/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40104, decode[errorResponse](t, w).Code)
}

func TestRegisterAndTokenErrors(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "taken")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{"username": "taken", "password": "secret123", "password2": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40012, decode[errorResponse](t, w).Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/token/", "", gin.H{"username": "taken", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsRouteSegments(t *testing.T) {
	r := newTestRouter(t)
	alice := signup(t, r, "alice")

	for _, name := range []string{"post", "post_create", "feed", "auth", "profiles_list"} {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{
			"username": name, "password": "secret123", "password2": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		assert.Equal(t, 40010, decode[errorResponse](t, w).Code, name)
	}

	// names that only share a prefix with a route segment stay routable
	signup(t, r, "poster")
	w := doJSON(t, r, http.MethodPost, "/api/poster/subscribe/", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"poster"`)
	w = doJSON(t, r, http.MethodGet, "/api/poster/posts/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/nope/nothing/here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
