package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chetan-code/todoly/internal/models"
	"github.com/chetan-code/todoly/internal/service"
	"github.com/chetan-code/todoly/internal/testutil"
)

const testSecret = "test-secret"

var (
	alice = models.Session{UserID: "google:alice", Name: "Alice", Image: "https://example.com/alice.png"}
	bob   = models.Session{UserID: "google:bob", Name: "Bob"}
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

// testApp is the full router over an in-memory store.
type testApp struct {
	store   *testutil.FakeStore
	auth    *Authenticator
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := testutil.NewFakeStore()
	tasks := service.NewTaskService(store)
	auth := NewAuthenticator(testSecret, time.Hour, false)

	h, err := NewTodoHandler(tasks, []string{"google"})
	if err != nil {
		t.Fatalf("NewTodoHandler failed: %v", err)
	}
	rpc, err := NewRPCHandler(tasks)
	if err != nil {
		t.Fatalf("NewRPCHandler failed: %v", err)
	}

	return &testApp{
		store:   store,
		auth:    auth,
		handler: Routes(h, rpc, auth, fakePinger{}),
	}
}

// do sends a request, signed in as sess unless sess is the zero Session.
func (a *testApp) do(t *testing.T, sess models.Session, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if sess.Authenticated() {
		token, err := a.auth.GenerateJWT(sess)
		if err != nil {
			t.Fatalf("GenerateJWT failed: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

var (
	formHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	htmxHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded", "HX-Request": "true"}
	jsonHeaders = map[string]string{"Content-Type": "application/json"}
)
