package requestsize

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HarshaM0211/jira-software/pkg/server/router"
	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
)

// chunked hides the length of a body so only MaxBytesReader can catch it.
type chunked struct{ io.Reader }

func newRouter(limit int64, called *bool) router.Router {
	r := gorillaadapter.NewRouter()
	r.Use(Middleware(limit))
	r.POST("/projects", func(c router.Context) error {
		*called = true
		var payload map[string]interface{}
		if err := c.Bind(&payload); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		body       io.Reader
		streamed   bool
		wantStatus int
		wantCalled bool
	}{
		{"within limit", 64, strings.NewReader(`{"name":"ok"}`), false, http.StatusOK, true},
		{"declared length above limit", 8, strings.NewReader(`{"name":"too-long"}`), false, http.StatusRequestEntityTooLarge, false},
		{"streamed body above limit", 8, chunked{strings.NewReader(`{"name":"too-long"}`)}, true, http.StatusRequestEntityTooLarge, true},
		{"disabled", 0, strings.NewReader(`{"name":"anything at all"}`), false, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := newRouter(tt.limit, &called)

			req := httptest.NewRequest(http.MethodPost, "/projects", tt.body)
			if tt.streamed {
				req.ContentLength = -1
			}
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus != http.StatusRequestEntityTooLarge {
				return
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != "request_too_large" || body["code"] != "request.too_large" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}
