package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func idemRouter(lookup IdempotencyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/movies", func(c *gin.Context) {
		key, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": key, "replay": IsReplay(c)})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/movies", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_NoHeaderIsNoop(t *testing.T) {
	r := idemRouter(nil)
	if w := postWithKey(r, ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_ValidKeyStashed(t *testing.T) {
	r := idemRouter(nil)
	w := postWithKey(r, "create-dune-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body == "" || !contains(body, "create-dune-1") {
		t.Fatalf("key not stashed: %s", body)
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	cases := []struct {
		name string
		key  string
	}{
		{"too long", string(long)},
		{"illegal characters", "white space"},
		{"control characters", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := idemRouter(nil)
			if w := postWithKey(r, tc.key); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestIdempotencyValidator_ReplayMarksBypass(t *testing.T) {
	lookup := func(ctx context.Context, key string, now time.Time) (bool, error) {
		return key == "seen-before", nil
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/movies", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"replay": IsReplay(c),
			"bypass": IsRateBypass(c),
		})
	})

	w := postWithKey(r, "seen-before")
	if !contains(w.Body.String(), `"replay":true`) || !contains(w.Body.String(), `"bypass":true`) {
		t.Fatalf("replay flags not set: %s", w.Body.String())
	}

	w = postWithKey(r, "fresh-key")
	if !contains(w.Body.String(), `"replay":false`) {
		t.Fatalf("fresh key must not be a replay: %s", w.Body.String())
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
