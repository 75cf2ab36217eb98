// Package factory creates router implementations from configuration.
package factory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/server/router"
	ginadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gin"
	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
)

var supported = map[string]func() router.Router{
	config.RouterTypeGin:     func() router.Router { return ginadapter.NewRouter() },
	config.RouterTypeGorilla: func() router.Router { return gorillaadapter.NewRouter() },
}

// NewRouter creates a router from type. An empty type selects gorilla.
func NewRouter(routerType string) (router.Router, error) {
	rt := strings.TrimSpace(strings.ToLower(routerType))
	if rt == "" {
		rt = config.RouterTypeGorilla
	}
	if create, ok := supported[rt]; ok {
		return create(), nil
	}

	return nil, fmt.Errorf("unsupported router type %q (supported: %s)", routerType, strings.Join(SupportedTypes(), ", "))
}

// SupportedTypes returns the supported router types.
func SupportedTypes() []string {
	types := make([]string, 0, len(supported))
	for t := range supported {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
