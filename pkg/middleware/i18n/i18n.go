// Package i18n resolves the request locale and binds its translator to the
// request context.
package i18n

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	frameworki18n "github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
)

// Context key constants for i18n
const (
	// LocaleContextKey is the router.Context key for the resolved locale
	LocaleContextKey = "locale"
	// TranslatorContextKey is the router.Context key for the translator
	TranslatorContextKey = "translator"
)

// Config controls locale resolution. The supported locales and the default
// come from the catalog.
type Config struct {
	QueryParam           string
	HeaderName           string
	ExcludedPathPrefixes []string
}

// DefaultConfig resolves ?lang, then X-Locale, then Accept-Language.
func DefaultConfig() Config {
	return Config{
		QueryParam:           "lang",
		HeaderName:           "X-Locale",
		ExcludedPathPrefixes: []string{"/metrics", "/health", "/version"},
	}
}

type resolver struct {
	Config
	supported     map[string]string
	defaultLocale string
}

// Middleware resolves the request locale against catalog and stores the
// locale and its translator in both router.Context and the request context,
// where controller.MapError picks the translator up.
func Middleware(catalog *frameworki18n.Catalog, cfg Config) router.MiddlewareFunc {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.QueryParam) == "" {
		cfg.QueryParam = def.QueryParam
	}
	if strings.TrimSpace(cfg.HeaderName) == "" {
		cfg.HeaderName = def.HeaderName
	}
	res := resolver{Config: cfg, supported: map[string]string{}, defaultLocale: normalizeLocale(catalog.DefaultLocale())}
	for _, locale := range catalog.Locales() {
		res.supported[normalizeLocale(locale)] = locale
	}
	if res.defaultLocale == "" {
		res.defaultLocale = "en"
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if c.Request() == nil || isExcluded(c.Request().URL.Path, cfg.ExcludedPathPrefixes) {
				return next(c)
			}

			locale := res.resolveLocale(c.Request())
			translator := catalog.ForLocale(locale)

			ctx := c.Request().Context()
			ctx = frameworki18n.WithLocale(ctx, locale)
			ctx = frameworki18n.WithTranslator(ctx, translator)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Set(LocaleContextKey, locale)
			c.Set(TranslatorContextKey, translator)

			c.Response().Header().Set("Content-Language", locale)
			appendVary(c.Response().Header(), "Accept-Language")
			appendVary(c.Response().Header(), cfg.HeaderName)

			return next(c)
		}
	}
}

func isExcluded(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (res resolver) resolveLocale(r *http.Request) string {
	candidates := make([]string, 0, 4)
	if value := strings.TrimSpace(r.URL.Query().Get(res.QueryParam)); value != "" {
		candidates = append(candidates, value)
	}
	if value := strings.TrimSpace(r.Header.Get(res.HeaderName)); value != "" {
		candidates = append(candidates, value)
	}
	candidates = append(candidates, parseAcceptLanguage(r.Header.Get("Accept-Language"))...)

	for _, candidate := range candidates {
		norm := normalizeLocale(candidate)
		if norm == "" {
			continue
		}
		if locale, ok := res.supported[norm]; ok {
			return locale
		}
		if locale, ok := res.supported[baseLocale(norm)]; ok {
			return locale
		}
	}
	return res.defaultLocale
}

type langQ struct {
	lang string
	q    float64
}

func parseAcceptLanguage(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]langQ, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sections := strings.Split(part, ";")
		lang := strings.TrimSpace(sections[0])
		if lang == "" || lang == "*" {
			continue
		}
		q := 1.0
		for _, section := range sections[1:] {
			kv := strings.SplitN(strings.TrimSpace(section), "=", 2)
			if len(kv) != 2 || strings.ToLower(kv[0]) != "q" {
				continue
			}
			if parsed, err := strconv.ParseFloat(kv[1], 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		items = append(items, langQ{lang: lang, q: q})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].q > items[j].q
	})
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.lang)
	}
	return out
}

func appendVary(header http.Header, value string) {
	current := header.Get("Vary")
	if current == "" {
		header.Set("Vary", value)
		return
	}
	for _, part := range strings.Split(current, ",") {
		if strings.EqualFold(strings.TrimSpace(part), value) {
			return
		}
	}
	header.Set("Vary", current+", "+value)
}

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	return strings.ToLower(locale)
}

func baseLocale(locale string) string {
	if idx := strings.Index(locale, "-"); idx > 0 {
		return locale[:idx]
	}
	return locale
}

// GetLocale returns the resolved locale from request context.
func GetLocale(ctx context.Context) string {
	return frameworki18n.GetLocale(ctx)
}

// TranslatorFromContext returns the locale-bound translator from request context.
func TranslatorFromContext(ctx context.Context) frameworki18n.Translator {
	return frameworki18n.TranslatorFromContext(ctx)
}
