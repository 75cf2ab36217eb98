package requestid

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/HarshaM0211/jira-software/pkg/server/router"
	ginadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gin"
	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
)

var uuidPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)

type captured struct {
	fromContext string
	fromStore   interface{}
}

func newRouter(name string, got *captured) router.Router {
	var r router.Router
	if name == "gin" {
		r = ginadapter.NewRouter()
	} else {
		r = gorillaadapter.NewRouter()
	}
	r.Use(RequestID())
	r.GET("/projects", func(c router.Context) error {
		got.fromContext = GetRequestID(c.Request().Context())
		got.fromStore = c.Get(ContextKey)
		return c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"keeps client id", "client-id-1", true},
		{"generates when absent", "", false},
		{"generates when blank", "   ", false},
		{"generates when too long", strings.Repeat("x", maxLength+1), false},
	}
	for _, routerName := range []string{"gin", "gorilla"} {
		for _, tt := range tests {
			t.Run(routerName+"/"+tt.name, func(t *testing.T) {
				var got captured
				r := newRouter(routerName, &got)

				req := httptest.NewRequest(http.MethodGet, "/projects", nil)
				if tt.header != "" {
					req.Header.Set(RequestIDHeader, tt.header)
				}
				w := httptest.NewRecorder()
				r.ServeHTTP(w, req)

				id := w.Header().Get(RequestIDHeader)
				if tt.wantSame && id != tt.header {
					t.Fatalf("header = %q, want %q", id, tt.header)
				}
				if !tt.wantSame && !uuidPattern.MatchString(id) {
					t.Fatalf("header = %q, want a generated uuid", id)
				}
				if got.fromContext != id || got.fromStore != id {
					t.Fatalf("context = %q, store = %v, header = %q", got.fromContext, got.fromStore, id)
				}
			})
		}
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	var got captured
	r := newRouter("gorilla", &got)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))
		id := w.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Fatalf("GetRequestID = %q", id)
	}
}

func TestProperty_ClientIDIsPreserved(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genID := gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0 && len(s) <= maxLength
	})

	properties.Property("client id round-trips through header and context", prop.ForAll(
		func(id string) bool {
			var got captured
			r := newRouter("gorilla", &got)
			req := httptest.NewRequest(http.MethodGet, "/projects", nil)
			req.Header.Set(RequestIDHeader, id)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			return w.Header().Get(RequestIDHeader) == id && got.fromContext == id
		},
		genID,
	))

	properties.TestingRun(t)
}
