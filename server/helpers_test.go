package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"perch/config"
	"perch/core/auth"
	"perch/core/follow"
	"perch/model"
	"perch/repository"
	"perch/server"
	"perch/session"

	"github.com/gorilla/mux"
)

type edgeKey struct{ follower, following int64 }

// memStore is an in-memory stand-in for the MySQL repositories with the same
// duplicate-key and foreign-key behavior.
type memStore struct {
	users    map[int64]*model.User
	edges    map[edgeKey]bool
	posts    []*model.Post
	lastTags []string
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*model.User{}, edges: map[edgeKey]bool{}, nextID: 1}
}

func (m *memStore) addUser(u *model.User) *model.User {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return u
}

func (m *memStore) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return repository.ErrDuplicateUser
		}
	}
	m.addUser(user)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*model.User, error) {
	return m.users[id], nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindBySNS(_ context.Context, provider, snsID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.SNSID != nil && *u.SNSID == snsID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) AddFollowing(_ context.Context, followerID, followingID int64) error {
	if _, ok := m.users[followingID]; !ok {
		return repository.ErrNoSuchUser
	}
	e := edgeKey{followerID, followingID}
	if m.edges[e] {
		return repository.ErrDuplicateEdge
	}
	m.edges[e] = true
	return nil
}

func (m *memStore) RemoveFollowing(_ context.Context, followerID, followingID int64) error {
	delete(m.edges, edgeKey{followerID, followingID})
	return nil
}

func (m *memStore) FollowerCount(_ context.Context, userID int64) (int64, error) {
	var n int64
	for e := range m.edges {
		if e.following == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FollowingCount(_ context.Context, userID int64) (int64, error) {
	var n int64
	for e := range m.edges {
		if e.follower == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FollowingIDs(_ context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	for e := range m.edges {
		if e.follower == userID {
			ids = append(ids, e.following)
		}
	}
	return ids, nil
}

func (m *memStore) CreatePost(_ context.Context, post *model.Post, tags []string) error {
	post.ID = m.nextID
	m.nextID++
	m.posts = append(m.posts, post)
	m.lastTags = tags
	return nil
}

func (m *memStore) Latest(_ context.Context, limit int) ([]model.Post, error) {
	out := []model.Post{}
	for i := len(m.posts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.posts[i])
	}
	return out, nil
}

// postRepo adapts memStore to repository.PostRepository (Create collides
// with the user Create signature).
type postRepo struct{ *memStore }

func (p postRepo) Create(ctx context.Context, post *model.Post, tags []string) error {
	return p.memStore.CreatePost(ctx, post, tags)
}

// memSessions is an in-memory session.Store.
type memSessions struct {
	sessions map[string]int64
	next     int
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]int64{}}
}

func (m *memSessions) Create(_ context.Context, userID int64) (string, error) {
	m.next++
	token := fmt.Sprintf("tok-%d", m.next)
	m.sessions[token] = userID
	return token, nil
}

func (m *memSessions) Get(_ context.Context, token string) (int64, error) {
	userID, ok := m.sessions[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return userID, nil
}

func (m *memSessions) Destroy(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

// stubRenderer records what was rendered instead of executing templates.
type stubRenderer struct {
	lastName string
	lastData map[string]interface{}
}

func (r *stubRenderer) Render(w http.ResponseWriter, name string, data map[string]interface{}) error {
	r.lastName = name
	r.lastData = data
	_, err := io.WriteString(w, "rendered:"+name)
	return err
}

// stubUploader returns a deterministic URL without talking to storage.
type stubUploader struct{ lastObject string }

func (u *stubUploader) Upload(_ context.Context, objectName string, _ io.Reader, _ int64, _ string) (string, error) {
	u.lastObject = objectName
	return "http://storage.local/perch/" + objectName, nil
}

type testEnv struct {
	Store    *memStore
	Sessions *memSessions
	Renderer *stubRenderer
	Uploader *stubUploader
	Router   *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{CookieSecret: "testsecret", SessionTTL: time.Hour}
	store := newMemStore()
	sessions := newMemSessions()
	renderer := &stubRenderer{}
	uploader := &stubUploader{}
	signer := session.NewSigner(cfg.CookieSecret)

	handler := server.NewWebHandler(
		cfg,
		store,
		postRepo{store},
		auth.NewVerifier(store),
		auth.NewKakaoBridge("id", "secret", "http://localhost/auth/kakao/callback", cfg.CookieSecret, store),
		auth.NewSerializer(sessions, store),
		follow.NewService(store),
		signer,
		renderer,
		uploader,
	)

	return &testEnv{
		Store:    store,
		Sessions: sessions,
		Renderer: renderer,
		Uploader: uploader,
		Router:   handler.Routes(),
	}
}

// register creates a local account directly in the store.
func (env *testEnv) register(t *testing.T, email, nick, password string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return env.Store.addUser(&model.User{Email: &email, Nick: nick, Password: hash, Provider: model.ProviderLocal})
}

// postForm sends a form POST, optionally with a session cookie.
func (env *testEnv) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

// login performs a form login and returns the session cookie.
func (env *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	w := env.postForm("/auth/login", url.Values{"email": {email}, "password": {password}}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Fatalf("login redirected to %q, want /", loc)
	}
	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "perch_sid" && c.MaxAge >= 0 {
			return c
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}
