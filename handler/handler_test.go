package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blog/config"
	"blog/domain"
	"blog/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	t     *testing.T
	h     *Handler
	e     *echo.Echo
	store *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "blog.db") + "?_pragma=foreign_keys(1)"
	s, err := store.Open(context.Background(), store.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())

	h := &Handler{
		Store:       s,
		JWTSecret:   "test-secret",
		Environment: config.DevEnv,
		TokenTTL:    time.Hour,
	}
	e := h.NewEcho()
	e.Logger.SetOutput(io.Discard)
	return &fixture{t: t, h: h, e: e, store: s}
}

// user creates a user directly in the store and returns a token for it.
func (f *fixture) user(username string, admin bool) (domain.User, string) {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(f.t, err)
	u, err := f.store.CreateUser(context.Background(), username, hash, admin)
	require.NoError(f.t, err)
	token, _, err := f.h.issueToken(u)
	require.NoError(f.t, err)
	return u, token
}

func (f *fixture) category(title string) domain.Category {
	f.t.Helper()
	c, err := f.store.CreateCategory(context.Background(), domain.Category{Title: title})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = strings.NewReader(string(data))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// createPost posts a valid payload as token and returns the created post.
func (f *fixture) createPost(token string, category int64, title string) PostDTO {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/", token, map[string]any{"title": title, "body": "b", "category": category})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[PostDTO](f.t, rec)
}

func TestCreatePostOwnedByCaller(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	f.user("bob", false)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/", alice, map[string]any{
		"title": "A", "body": "b", "category": general.ID, "owner": "bob",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[PostDTO](t, rec)
	assert.Equal(t, "alice", post.Owner)
	assert.Equal(t, "A", post.Title)
	assert.Equal(t, general.ID, post.Category)
	assert.Contains(t, post.Highlighted, "<p>b</p>")
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, fmt.Sprintf("/%d/", post.ID), rec.Header().Get(echo.HeaderLocation))

	stored, err := f.store.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner)
}

func TestCreatePostIgnoresClientTimestamps(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/", alice, map[string]any{
		"title": "A", "body": "b", "category": general.ID,
		"created_at": "2001-01-01T00:00:00Z", "highlighted": "<script>x</script>", "id": 77,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[PostDTO](t, rec)
	assert.NotEqual(t, int64(77), post.ID)
	assert.True(t, post.CreatedAt.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.NotContains(t, post.Highlighted, "script")
}

func TestHighlightSanitizesBody(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/", alice, map[string]any{
		"title": "A", "body": "# Title\n\n**bold**\n\n<script>alert(1)</script>\n", "category": general.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[PostDTO](t, rec)
	assert.Contains(t, post.Highlighted, "<strong>bold</strong>")
	assert.Contains(t, post.Highlighted, "Title</h1>")
	assert.NotContains(t, post.Highlighted, "<script>")
}

func TestCreatePostRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/", "", map[string]any{"title": "A", "body": "b", "category": general.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Equal(t, "Authentication credentials were not provided.", decode[detail](t, rec).Detail)

	posts, err := f.store.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	u, _ := f.user("alice", false)
	general := f.category("general")
	payload := map[string]any{"title": "A", "body": "b", "category": general.ID}

	rec := f.do(http.MethodPost, "/", "not-a-token", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.h.TokenTTL = -time.Minute
	expired, _, err := f.h.issueToken(u)
	require.NoError(t, err)
	rec = f.do(http.MethodPost, "/", expired, payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := &Handler{JWTSecret: "other-secret", TokenTTL: time.Hour}
	forged, _, err := other.issueToken(u)
	require.NoError(t, err)
	rec = f.do(http.MethodPost, "/", forged, payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A bad token is rejected even on reads.
	rec = f.do(http.MethodGet, "/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenOfDeletedUser(t *testing.T) {
	f := newFixture(t)
	root, rootToken := f.user("root", true)
	alice, aliceToken := f.user("alice", false)
	general := f.category("general")
	require.NoError(t, f.store.DeleteUser(context.Background(), root.ID))
	require.NoError(t, f.store.DeleteUser(context.Background(), alice.ID))

	rec := f.do(http.MethodGet, "/users/", rootToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(http.MethodDelete, fmt.Sprintf("/categories/%d/", general.ID), rootToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, err := f.store.GetCategory(context.Background(), general.ID)
	assert.NoError(t, err)

	rec = f.do(http.MethodPost, "/", aliceToken, map[string]any{"title": "A", "body": "b", "category": general.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "owner")
}

func TestAdminFlagComesFromStore(t *testing.T) {
	f := newFixture(t)
	alice, _ := f.user("alice", false)

	alice.Admin = true
	token, _, err := f.h.issueToken(alice)
	require.NoError(t, err)
	rec := f.do(http.MethodGet, "/users/", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")

	tests := []struct {
		name string
		body any
		want domain.ValidationError
	}{
		{
			name: "empty object",
			body: map[string]any{},
			want: domain.ValidationError{
				"title":    {domain.MsgRequired},
				"body":     {domain.MsgRequired},
				"category": {domain.MsgRequired},
			},
		},
		{
			name: "empty body",
			body: "",
			want: domain.ValidationError{
				"title":    {domain.MsgRequired},
				"body":     {domain.MsgRequired},
				"category": {domain.MsgRequired},
			},
		},
		{
			name: "unknown category",
			body: map[string]any{"title": "A", "body": "b", "category": 99},
			want: domain.ValidationError{"category": {`Invalid pk "99" - object does not exist.`}},
		},
		{
			name: "wrong types",
			body: map[string]any{"title": 1, "body": "b", "category": "one"},
			want: domain.ValidationError{
				"title":    {domain.MsgIncorrectType},
				"category": {domain.MsgIncorrectType},
			},
		},
		{
			name: "blank and null",
			body: map[string]any{"title": "  ", "body": nil, "category": general.ID},
			want: domain.ValidationError{
				"title": {domain.MsgBlank},
				"body":  {msgNull},
			},
		},
		{
			name: "title too long",
			body: map[string]any{"title": strings.Repeat("x", 201), "body": "b", "category": general.ID},
			want: domain.ValidationError{"title": {"Ensure this field has no more than 200 characters."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/", alice, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, decode[domain.ValidationError](t, rec))
		})
	}

	rec := f.do(http.MethodPost, "/", alice, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode[detail](t, rec).Detail, "JSON parse error"))

	rec = f.do(http.MethodPost, "/", alice, fmt.Sprintf(`{"title":"A","body":"b","category":%d} trailing`, general.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode[detail](t, rec).Detail, "JSON parse error"))

	rec = f.do(http.MethodPost, "/", alice, fmt.Sprintf(`{"title":"A","body":"b","category":%d} {}`, general.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	posts, err := f.store.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePostNormalizesInput(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/", alice, map[string]any{
		"title": "  A  ", "body": "b", "category": fmt.Sprint(general.ID),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[PostDTO](t, rec)
	assert.Equal(t, "A", post.Title)
	assert.Equal(t, general.ID, post.Category)

	stored, err := f.store.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)

	rec = f.do(http.MethodPost, "/", alice, map[string]any{"title": "A", "body": "b", "category": "99"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ValidationError{"category": {`Invalid pk "99" - object does not exist.`}},
		decode[domain.ValidationError](t, rec))

	rec = f.do(http.MethodPost, "/categories/", alice, map[string]any{"title": " news "})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "news", decode[CategoryDTO](t, rec).Title)
}

func TestOnlyOwnerWrites(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	_, bob := f.user("bob", false)
	general := f.category("general")
	post := f.createPost(alice, general.ID, "A")
	path := fmt.Sprintf("/%d/", post.ID)
	update := map[string]any{"title": "B", "body": "c", "category": general.ID}

	rec := f.do(http.MethodPut, path, bob, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(http.MethodPatch, path, bob, map[string]any{"title": "B"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(http.MethodPut, path, "", update)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	unchanged, err := f.store.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", unchanged.Title)

	rec = f.do(http.MethodPut, path, alice, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[PostDTO](t, rec)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "alice", updated.Owner)
	assert.Contains(t, updated.Highlighted, "<p>c</p>")
	assert.True(t, updated.CreatedAt.Equal(post.CreatedAt))

	rec = f.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	f.user("bob", false)
	general := f.category("general")
	other := f.category("other")
	post := f.createPost(alice, general.ID, "A")
	path := fmt.Sprintf("/%d/", post.ID)

	rec := f.do(http.MethodPatch, path, alice, map[string]any{"category": other.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[PostDTO](t, rec)
	assert.Equal(t, other.ID, patched.Category)
	assert.Equal(t, "A", patched.Title)
	assert.Equal(t, "b", patched.Body)

	rec = f.do(http.MethodPut, path, alice, map[string]any{"title": "B"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ValidationError{
		"body":     {domain.MsgRequired},
		"category": {domain.MsgRequired},
	}, decode[domain.ValidationError](t, rec))

	rec = f.do(http.MethodPut, path, alice, map[string]any{"title": "B", "body": "c", "category": general.ID, "owner": "bob"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ValidationError{"owner": {domain.MsgReadOnly}}, decode[domain.ValidationError](t, rec))

	rec = f.do(http.MethodPut, path, alice, map[string]any{"title": "B", "body": "c", "category": general.ID, "owner": "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPatch, path, alice, map[string]any{"category": 404})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[domain.ValidationError](t, rec), "category")

	rec = f.do(http.MethodPut, "/999/", alice, map[string]any{"title": "B", "body": "c", "category": general.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPosts(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")
	first := f.createPost(alice, general.ID, "first")
	second := f.createPost(alice, general.ID, "second")

	rec := f.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]PostDTO](t, rec)
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)

	again := f.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, rec.Body.String(), again.Body.String(), "reads do not change state")

	rec = f.do(http.MethodGet, fmt.Sprintf("/%d", first.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, "trailing slash is optional")
	assert.Equal(t, first, decode[PostDTO](t, rec))
}

func TestEmptyList(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestPostNotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/999/", "/abc/", "/0/", "/-1/"} {
		rec := f.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Empty(t, rec.Body.String(), path)
	}
}

func TestCategoryDeleteCascadesToPosts(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	_, root := f.user("root", true)
	general := f.category("general")
	other := f.category("other")
	doomed := f.createPost(alice, general.ID, "A")
	kept := f.createPost(alice, other.ID, "B")
	path := fmt.Sprintf("/categories/%d/", general.ID)

	rec := f.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodDelete, path, root, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, fmt.Sprintf("/%d/", doomed.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodGet, fmt.Sprintf("/%d/", kept.ID), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	_, root := f.user("root", true)

	rec := f.do(http.MethodPost, "/categories/", "", map[string]any{"title": "news"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/categories/", alice, map[string]any{"title": "news"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	news := decode[CategoryDTO](t, rec)
	assert.Equal(t, "news", news.Title)

	rec = f.do(http.MethodPost, "/categories/", alice, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "", decode[CategoryDTO](t, rec).Title)

	rec = f.do(http.MethodPost, "/categories/", alice, map[string]any{"title": strings.Repeat("x", 101)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/categories/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]CategoryDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, news.ID, list[0].ID)

	path := fmt.Sprintf("/categories/%d/", news.ID)
	rec = f.do(http.MethodPut, path, alice, map[string]any{"title": "world"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, path, root, map[string]any{"title": "world"})
	require.Equal(t, http.StatusOK, rec.Code)
	world := decode[CategoryDTO](t, rec)
	assert.Equal(t, "world", world.Title)
	assert.True(t, world.CreatedAt.Equal(news.CreatedAt))

	rec = f.do(http.MethodPut, path, root, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "world", decode[CategoryDTO](t, rec).Title, "title is kept when omitted")

	rec = f.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "world", decode[CategoryDTO](t, rec).Title)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	alice, aliceToken := f.user("alice", false)
	_, root := f.user("root", true)
	general := f.category("general")
	post := f.createPost(aliceToken, general.ID, "A")

	rec := f.do(http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = f.do(http.MethodGet, "/users/", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/users/", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]UserDTO](t, rec)
	require.Len(t, users, 2)
	assert.Equal(t, UserDTO{ID: alice.ID, Username: "alice", Posts: []int64{post.ID}}, users[0])
	assert.Equal(t, []int64{}, users[1].Posts)

	rec = f.do(http.MethodGet, fmt.Sprintf("/users/%d/", alice.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"username":"alice","posts":[%d]}`, alice.ID, post.ID), rec.Body.String())

	rec = f.do(http.MethodGet, "/users/999/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	general := f.category("general")

	rec := f.do(http.MethodPost, "/auth/signup/", "", map[string]any{"username": "carol", "password": "hunter2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	signup := decode[tokenResponse](t, rec)
	assert.Equal(t, "carol", signup.Username)
	assert.NotEmpty(t, signup.Token)

	post := f.createPost(signup.Token, general.ID, "mine")
	assert.Equal(t, "carol", post.Owner)

	rec = f.do(http.MethodPost, "/auth/signup/", "", map[string]any{"username": "carol", "password": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/auth/signup/", "", map[string]any{"username": "bad name", "password": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode[domain.ValidationError](t, rec)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")

	rec = f.do(http.MethodPost, "/auth/login/", "", map[string]any{"username": "carol", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/auth/login/", "", map[string]any{"username": "nobody", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodPost, "/auth/login/", "", map[string]any{"username": "carol"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/auth/login/", "", map[string]any{"username": "carol", "password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[tokenResponse](t, rec)
	assert.Equal(t, []int64{post.ID}, login.Posts)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, login.Token, cookie.Value)

	// The cookie authenticates on its own.
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/%d/", post.ID), strings.NewReader(`{"title":"via cookie"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(cookie)
	cookieRec := httptest.NewRecorder()
	f.e.ServeHTTP(cookieRec, req)
	require.Equal(t, http.StatusOK, cookieRec.Code, cookieRec.Body.String())
	assert.Equal(t, "via cookie", decode[PostDTO](t, cookieRec).Title)

	rec = f.do(http.MethodPost, "/auth/logout/", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Empty(t, rec.Result().Cookies()[0].Value)
}

func TestSignupDisabled(t *testing.T) {
	f := newFixture(t)
	f.h.Environment = config.ProEnv

	rec := f.do(http.MethodPost, "/auth/signup/", "", map[string]any{"username": "carol", "password": "hunter2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.h.EnableSignup = true
	rec = f.do(http.MethodPost, "/auth/signup/", "", map[string]any{"username": "carol", "password": "hunter2"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/users/1/posts/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodPost, "/users/", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHeadRoutes(t *testing.T) {
	f := newFixture(t)
	_, alice := f.user("alice", false)
	general := f.category("general")
	post := f.createPost(alice, general.ID, "A")

	for _, path := range []string{"/", fmt.Sprintf("/%d/", post.ID), "/categories/", "/users/1/"} {
		rec := f.do(http.MethodHead, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := f.do(http.MethodHead, "/999/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodHead, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}
