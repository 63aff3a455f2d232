package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/ledger"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "portal-test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// authedRouter builds a bare engine with the real bearer middleware and a
// mount callback for the handler under test.
func authedRouter(mount func(g *gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	g := r.Group("/v1", auth.Bearer(testKey, testIssuer))
	mount(g)
	return r
}

func bearerToken(t *testing.T, userID, role string) string {
	t.Helper()
	pair, err := auth.Issue(userID, role, testIssuer, testKey, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + pair.AccessToken
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// fakeLedgerStore mimics the Postgres repo: snapshots are stored as JSON so
// handler-side mutations after Save cannot leak in, and Save enforces the
// same version check.
type fakeLedgerStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int64

	failSaves int // fail this many saves with ErrVersionConflict first
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{data: map[string][]byte{}, versions: map[string]int64{}}
}

func (f *fakeLedgerStore) Load(_ context.Context, userID string) (ledger.Snapshot, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[userID]
	if !ok {
		return ledger.NewSnapshot(), 0, nil
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return ledger.Snapshot{}, 0, err
	}
	return snap, f.versions[userID], nil
}

func (f *fakeLedgerStore) Save(_ context.Context, userID string, snap ledger.Snapshot, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves > 0 {
		f.failSaves--
		return ledger.ErrVersionConflict
	}
	if f.versions[userID] != version {
		return ledger.ErrVersionConflict
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	f.data[userID] = raw
	f.versions[userID] = version + 1
	return nil
}

func statusIs(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
