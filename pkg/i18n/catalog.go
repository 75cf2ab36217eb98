package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

//go:embed messages/*.yaml
var builtinMessages embed.FS

// Catalog stores locale-key translations in memory.
type Catalog struct {
	defaultLocale string
	messages      map[string]map[string]string
}

// NewCatalog creates an empty translation catalog.
func NewCatalog(defaultLocale string) *Catalog {
	return &Catalog{
		defaultLocale: normalizeLocale(defaultLocale),
		messages:      map[string]map[string]string{},
	}
}

// DefaultCatalog returns a catalog preloaded with the bundled error messages.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(builtinMessages, "messages", "en")
}

// LoadCatalog loads every <locale>.yaml / <locale>.yml file found in dir.
func LoadCatalog(files fs.FS, dir, defaultLocale string) (*Catalog, error) {
	catalog := NewCatalog(defaultLocale)

	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("read i18n catalog dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		locale := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))

		raw, err := fs.ReadFile(files, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read i18n catalog %s: %w", entry.Name(), err)
		}
		var payload map[string]interface{}
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode i18n catalog %s: %w", entry.Name(), err)
		}
		catalog.Add(locale, flattenCatalog(payload, ""))
	}
	return catalog, nil
}

// ForLocale returns a locale-bound translator.
func (c *Catalog) ForLocale(locale string) Translator {
	return localizedTranslator{catalog: c, locale: normalizeLocale(locale)}
}

// Add inserts translations for a locale.
func (c *Catalog) Add(locale string, entries map[string]string) {
	locale = normalizeLocale(locale)
	if locale == "" {
		return
	}
	if c.messages[locale] == nil {
		c.messages[locale] = map[string]string{}
	}
	for key, value := range entries {
		if strings.TrimSpace(key) == "" {
			continue
		}
		c.messages[locale][key] = value
	}
}

// Locales returns the sorted locales that have at least one message.
func (c *Catalog) Locales() []string {
	locales := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// DefaultLocale returns the locale used when nothing else matches.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

type localizedTranslator struct {
	catalog *Catalog
	locale  string
}

// T returns the template for key in the bound locale (falling back to the base
// language, then the default locale) with {param} placeholders substituted.
// Unknown keys are returned unchanged.
func (t localizedTranslator) T(key string, params Params) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	template := t.catalog.lookup(t.locale, key)
	if template == "" {
		return key
	}
	return applyTemplateParams(template, params)
}

func (c *Catalog) lookup(locale, key string) string {
	for _, candidate := range []string{locale, baseLocale(locale), c.defaultLocale} {
		if entries := c.messages[candidate]; entries != nil {
			if value, ok := entries[key]; ok {
				return value
			}
		}
	}
	return ""
}

func applyTemplateParams(template string, params Params) string {
	out := template
	for _, key := range CanonicalParams(params) {
		out = strings.ReplaceAll(out, "{"+key+"}", fmt.Sprint(params[key]))
	}
	return out
}

func flattenCatalog(payload map[string]interface{}, prefix string) map[string]string {
	out := map[string]string{}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		switch node := payload[key].(type) {
		case map[string]interface{}:
			for k, v := range flattenCatalog(node, fullKey) {
				out[k] = v
			}
		case string:
			out[fullKey] = node
		}
	}
	return out
}

var localeCleaner = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	locale = localeCleaner.ReplaceAllString(locale, "")
	return strings.ToLower(locale)
}

func baseLocale(locale string) string {
	if idx := strings.Index(locale, "-"); idx > 0 {
		return locale[:idx]
	}
	return locale
}
