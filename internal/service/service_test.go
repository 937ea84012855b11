package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"momskitchen/internal/api"
	"momskitchen/internal/cart"
	"momskitchen/internal/logging"
	"momskitchen/internal/models"
	"momskitchen/internal/session"
)

type memSession struct {
	mu    sync.Mutex
	saved models.Session
}

func (m *memSession) Load(ctx context.Context) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, nil
}

func (m *memSession) Save(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = s
	return nil
}

func (m *memSession) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = models.Session{}
	return nil
}

type memCart struct {
	mu    sync.Mutex
	lines []models.CartLine
}

func (m *memCart) Load(ctx context.Context) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CartLine(nil), m.lines...), nil
}

func (m *memCart) Save(ctx context.Context, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append([]models.CartLine(nil), lines...)
	return nil
}

// call is one request seen by the fake backend
type call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// backend is a fake API server that records every request
type backend struct {
	mux *http.ServeMux

	mu    sync.Mutex
	calls []call
}

func newBackend() *backend {
	return &backend{mux: http.NewServeMux()}
}

func (b *backend) handle(pattern string, status int, body string) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.calls = append(b.calls, call{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	b.mu.Unlock()
	b.mux.ServeHTTP(w, r)
}

func (b *backend) recorded() []call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]call(nil), b.calls...)
}

func (b *backend) callsTo(method, path string) []call {
	var out []call
	for _, c := range b.recorded() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type harness struct {
	backend  *backend
	client   *api.Client
	sessions *session.Store
	cart     *cart.Store
}

func newHarness(t *testing.T, b *backend) *harness {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	sessions := session.NewStore(&memSession{}, logging.Discard())
	client, err := api.New(api.Config{
		BaseURL:  srv.URL,
		UserRole: "customer",
		Tokens:   sessions,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)

	cartStore := cart.NewStore(&memCart{}, logging.Discard())
	t.Cleanup(cartStore.Close)
	cartStore.Load(context.Background())

	return &harness{backend: b, client: client, sessions: sessions, cart: cartStore}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.sessions.Login(context.Background(), "access-1", "refresh-1", &models.UserProfile{ID: "u1", PhoneNumber: "9876543210"})
}

func decodeBody(t *testing.T, c call) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(c.Body, &out))
	return out
}

type fixedGate bool

func (g fixedGate) Open() bool { return bool(g) }
