package i18n

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/controller"
	frameworki18n "github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
)

func newRouter(t *testing.T, locale *string) router.Router {
	t.Helper()
	catalog, err := frameworki18n.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	r := gorillaadapter.NewRouter()
	r.Use(Middleware(catalog, DefaultConfig()))
	r.GET("/projects/:id", func(c router.Context) error {
		*locale = GetLocale(c.Request().Context())
		return controller.Error(c, apperror.NotFound("project", c.Param("id")))
	})
	r.GET("/health", func(c router.Context) error {
		*locale = GetLocale(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	})
	return r
}

func TestMiddleware_ResolvesLocale(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		header         string
		acceptLanguage string
		want           string
	}{
		{"query wins", "/projects/1?lang=it", "en", "en-US", "it"},
		{"header before accept-language", "/projects/1", "it", "en", "it"},
		{"accept-language by quality", "/projects/1", "", "fr;q=0.9, it-IT;q=0.8, en;q=0.5", "it"},
		{"base locale", "/projects/1", "it_CH", "", "it"},
		{"unsupported falls back to default", "/projects/1?lang=de", "", "fr", "en"},
		{"nothing requested", "/projects/1", "", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var locale string
			r := newRouter(t, &locale)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("X-Locale", tt.header)
			}
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if locale != tt.want || w.Header().Get("Content-Language") != tt.want {
				t.Fatalf("locale = %q, Content-Language = %q, want %q", locale, w.Header().Get("Content-Language"), tt.want)
			}
			if vary := w.Header().Get("Vary"); vary != "Accept-Language, X-Locale" {
				t.Fatalf("Vary = %q", vary)
			}
		})
	}
}

func TestMiddleware_LocalisesErrors(t *testing.T) {
	var locale string
	r := newRouter(t, &locale)

	req := httptest.NewRequest(http.MethodGet, "/projects/7?lang=it", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body controller.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusNotFound || body.Message != "project con id 7 non trovato" {
		t.Fatalf("response = %d %+v", w.Code, body)
	}
}

func TestMiddleware_SkipsExcludedPaths(t *testing.T) {
	var locale string
	r := newRouter(t, &locale)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health?lang=it", nil))
	if locale != "" || w.Header().Get("Content-Language") != "" {
		t.Fatalf("excluded path resolved locale %q", locale)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	got := parseAcceptLanguage("en;q=0.2, *, it-IT, fr;q=0, de;q=0.7")
	want := []string{"it-IT", "de", "en"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
