package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// keyed by a header so tests can act as several clients from one process
func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()

	r.GET("/ping", rl.RateLimiterMiddleware(func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func doPing(r *gin.Engine, client string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Client", client)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterEnforcesLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	r := limitedRouter(rl)

	for i := 0; i < 2; i++ {
		if w := doPing(r, "alice"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, w.Code)
		}
	}

	w := doPing(r, "alice")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatal("429 response missing Retry-After header")
	}

	// a different client has its own bucket
	if w := doPing(r, "bob"); w.Code != http.StatusOK {
		t.Fatalf("other client: got status %d, want 200", w.Code)
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Millisecond)
	r := limitedRouter(rl)

	if w := doPing(r, "alice"); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	if w := doPing(r, "alice"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	time.Sleep(40 * time.Millisecond)

	if w := doPing(r, "alice"); w.Code != http.StatusOK {
		t.Fatalf("after window: got status %d, want 200", w.Code)
	}
}

func TestRateLimiterEvictsExpiredBuckets(t *testing.T) {
	rl := NewRateLimiter(5, 30*time.Millisecond)
	r := limitedRouter(rl)

	for _, client := range []string{"a", "b", "c"} {
		if w := doPing(r, client); w.Code != http.StatusOK {
			t.Fatalf("client %s: got status %d, want 200", client, w.Code)
		}
	}

	time.Sleep(40 * time.Millisecond)

	// the next request sweeps the expired buckets before adding its own
	if w := doPing(r, "d"); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()

	if n != 1 {
		t.Fatalf("got %d buckets after sweep, want 1", n)
	}
}
