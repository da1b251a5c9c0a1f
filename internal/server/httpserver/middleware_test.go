package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/statmesh/internal/core/domain"
	"github.com/yndnr/statmesh/internal/storage/memory"
	"github.com/yndnr/statmesh/internal/telemetry/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func request(h http.Handler, method, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("first"), mark("second"), mark("third"))
	request(h, http.MethodGet, "/", "")
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := request(h, http.MethodGet, "/", "")
	require.NotEmpty(t, seen)
	assert.Len(t, seen, 26)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recover(discardLogger()), RequestID())

	rec := request(h, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.ErrInternalServer.Code, rec.Header().Get("X-Error-Code"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.ErrInternalServer.Code, body["code"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["request_id"])
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(okHandler())

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/", "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/", "10.0.0.1:1001").Code)

	rec := request(h, http.MethodGet, "/", "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, domain.ErrRateLimited.Code, rec.Header().Get("X-Error-Code"))

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/", "10.0.0.2:1000").Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0)(okHandler())
	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, request(h, http.MethodGet, "/", "10.0.0.1:1").Code)
	}
}

func TestRateLimit_Concurrent(t *testing.T) {
	h := RateLimit(1000)(okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			request(h, http.MethodGet, "/", "10.0.0.9:1")
		}()
	}
	wg.Wait()
}

func TestNetworkACL(t *testing.T) {
	acl, err := NetworkACL([]string{"127.0.0.1", "10.1.0.0/16", "::1"}, discardLogger())
	require.NoError(t, err)
	h := acl(okHandler())

	tests := []struct {
		remote string
		want   int
	}{
		{"127.0.0.1:5000", http.StatusOK},
		{"10.1.2.3:5000", http.StatusOK},
		{"[::1]:5000", http.StatusOK},
		{"[::ffff:127.0.0.1]:5000", http.StatusOK},
		{"10.2.0.1:5000", http.StatusForbidden},
		{"bogus", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			rec := request(h, http.MethodGet, "/stats", tt.remote)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, domain.ErrAdminIPNotAllowed.Code, rec.Header().Get("X-Error-Code"))
			}
		})
	}
}

func TestNetworkACL_IgnoresForwardedFor(t *testing.T) {
	acl, err := NetworkACL([]string{"127.0.0.1"}, discardLogger())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.RemoteAddr = "192.0.2.1:4000"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	rec := httptest.NewRecorder()
	acl(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNetworkACL_EmptyAllowsAll(t *testing.T) {
	acl, err := NetworkACL(nil, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, request(acl(okHandler()), http.MethodGet, "/", "203.0.113.7:1").Code)
}

func TestNetworkACL_InvalidEntry(t *testing.T) {
	_, err := NetworkACL([]string{"not-an-ip"}, discardLogger())
	assert.Error(t, err)
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), RequestID(), Audit(log))

	request(h, http.MethodPost, "/reset_counters?x=1", "10.0.0.1:1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/reset_counters", entry["path"])
	assert.Equal(t, "x=1", entry["query"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "10.0.0.1", entry["client_ip"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestAudit_MutatingRequestsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Audit(log)(okHandler())

	request(h, http.MethodGet, "/stats", "")
	assert.Empty(t, buf.String())

	request(h, http.MethodPost, "/stats/recentlookups/enable", "")
	assert.Contains(t, buf.String(), `"msg":"admin request completed"`)
}

func TestInstrument(t *testing.T) {
	store := memory.New()
	store.Lookups().SetRecentLookupCapacity(10)

	h := Instrument(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	request(h, http.MethodGet, "/stats", "")
	request(h, http.MethodGet, "/stats", "")
	request(h, http.MethodGet, "/missing", "")

	assert.Equal(t, uint64(3), store.Counter(StatRequestsTotal).Value())
	assert.Equal(t, uint64(2), store.Counter("http.responses_2xx").Value())
	assert.Equal(t, uint64(1), store.Counter("http.responses_4xx").Value())
	assert.False(t, store.Counter("http.responses_5xx").Used())

	store.MergeHistograms()
	assert.Equal(t, uint64(3), store.Histogram(StatRequestDuration).CumulativeStatistics().SampleCount())
}

func TestInstrument_DoesNotRecordLookupsPerRequest(t *testing.T) {
	store := memory.New()
	mw := Instrument(store)
	store.Lookups().SetRecentLookupCapacity(10)

	h := mw(okHandler())
	request(h, http.MethodGet, "/", "")

	total := store.Lookups().RecentLookups(func(string, uint64) {})
	assert.Equal(t, uint64(0), total)
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)
	sw.WriteHeader(http.StatusCreated)
	sw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusCreated, sw.status)
	assert.Same(t, rec, sw.Unwrap())
}
