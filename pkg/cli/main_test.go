package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/version"
)

type migrationCall struct {
	subcommand string
	steps      int
	dbType     string
}

type recorder struct {
	served     *config.Config
	migrations []migrationCall
}

func newTestCommand(rec *recorder) *cobra.Command {
	cmd := NewServiceCommand(ServiceCommandOptions{
		Name:        "jira-software",
		Description: "test service",
		RunServer: func(ctx context.Context, cfg *config.Config, log logger.Logger) error {
			rec.served = cfg
			return nil
		},
		RunMigrations: func(ctx context.Context, cfg *config.Config, log logger.Logger, subcommand string, steps int) error {
			rec.migrations = append(rec.migrations, migrationCall{subcommand: subcommand, steps: steps, dbType: cfg.Database.Type})
			return nil
		},
	})
	return cmd
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestServeAppliesFlagOverrides(t *testing.T) {
	rec := &recorder{}
	_, err := execute(t, newTestCommand(rec), "serve", "--port", "9191", "--router", "gin", "--log-level", "warn")
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.served == nil {
		t.Fatal("RunServer was not called")
	}
	if rec.served.HTTP.Port != 9191 {
		t.Fatalf("port = %d, want 9191", rec.served.HTTP.Port)
	}
	if rec.served.RouterType != config.RouterTypeGin {
		t.Fatalf("router = %q, want gin", rec.served.RouterType)
	}
	if rec.served.Observability.LogLevel != "warn" {
		t.Fatalf("log level = %q, want warn", rec.served.Observability.LogLevel)
	}
}

func TestRootCommandServesByDefault(t *testing.T) {
	rec := &recorder{}
	if _, err := execute(t, newTestCommand(rec), "--service-name", "tracker"); err != nil {
		t.Fatalf("root: %v", err)
	}
	if rec.served == nil {
		t.Fatal("RunServer was not called")
	}
	if rec.served.Service.Name != "tracker" {
		t.Fatalf("service name = %q, want tracker", rec.served.Service.Name)
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	rec := &recorder{}
	_, err := execute(t, newTestCommand(rec), "serve", "--database-type", "postgres")
	if err == nil {
		t.Fatal("expected validation error for postgres without url")
	}
	if rec.served != nil {
		t.Fatal("RunServer must not run with an invalid config")
	}
}

func TestMigrateSubcommands(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "jira.db")
	tests := []struct {
		name string
		args []string
		want migrationCall
	}{
		{name: "up", args: []string{"migrate", "up"}, want: migrationCall{subcommand: "up", dbType: "sqlite"}},
		{name: "down default steps", args: []string{"migrate", "down"}, want: migrationCall{subcommand: "down", steps: 1, dbType: "sqlite"}},
		{name: "down three steps", args: []string{"migrate", "down", "--steps", "3"}, want: migrationCall{subcommand: "down", steps: 3, dbType: "sqlite"}},
		{name: "status", args: []string{"migrate", "status"}, want: migrationCall{subcommand: "status", dbType: "sqlite"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			args := append(tt.args, "--database-type", "sqlite", "--database-url", dbFile)
			if _, err := execute(t, newTestCommand(rec), args...); err != nil {
				t.Fatalf("execute: %v", err)
			}
			if len(rec.migrations) != 1 {
				t.Fatalf("migrations calls = %d, want 1", len(rec.migrations))
			}
			if rec.migrations[0] != tt.want {
				t.Fatalf("call = %+v, want %+v", rec.migrations[0], tt.want)
			}
		})
	}
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	rec := &recorder{}
	_, err := execute(t, newTestCommand(rec), "migrate", "down", "--steps", "0")
	if err == nil || !strings.Contains(err.Error(), "--steps") {
		t.Fatalf("expected --steps error, got %v", err)
	}
	if len(rec.migrations) != 0 {
		t.Fatal("RunMigrations must not run")
	}
}

func TestMigrateOmittedWithoutCallback(t *testing.T) {
	cmd := NewServiceCommand(ServiceCommandOptions{
		Name: "jira-software",
		RunServer: func(context.Context, *config.Config, logger.Logger) error {
			return nil
		},
	})
	for _, sub := range cmd.Commands() {
		if sub.Name() == "migrate" {
			t.Fatal("migrate command registered without RunMigrations")
		}
	}
}

func TestVersionCommand(t *testing.T) {
	oldVersion := version.AppVersion
	t.Cleanup(func() { version.AppVersion = oldVersion })
	version.AppVersion = version.DevelopmentVersion

	out, err := execute(t, newTestCommand(&recorder{}), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "Service:    jira-software") || !strings.Contains(out, "(development)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = execute(t, newTestCommand(&recorder{}), "version", "--json")
	if err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Service != "jira-software" || info.Version == "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	t.Setenv("JIRA_SECRETS_FILE", "")
	os.Unsetenv("JIRA_SECRETS_FILE")

	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgFile, "database:\n  type: sqlite\n")
	writeFile(t, filepath.Join(dir, "secrets.yaml"), "database:\n  url: file:top-secret.db\n")

	out, err := execute(t, newTestCommand(&recorder{}), "config", "show", "-c", cfgFile)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "top-secret") {
		t.Fatalf("secret leaked:\n%s", out)
	}
	if !strings.Contains(out, "url: ***") {
		t.Fatalf("expected masked url:\n%s", out)
	}

	out, err = execute(t, newTestCommand(&recorder{}), "config", "show", "-c", cfgFile, "--show-secrets")
	if err != nil {
		t.Fatalf("config show --show-secrets: %v", err)
	}
	if !strings.Contains(out, "file:top-secret.db") {
		t.Fatalf("expected secret with --show-secrets:\n%s", out)
	}
}

func TestSecretFileFlag(t *testing.T) {
	t.Setenv("JIRA_SECRETS_FILE", "")
	os.Unsetenv("JIRA_SECRETS_FILE")

	dir := t.TempDir()
	secrets := filepath.Join(dir, "vault.yaml")
	writeFile(t, secrets, "database:\n  url: file:from-vault.db\n")

	rec := &recorder{}
	if _, err := execute(t, newTestCommand(rec), "serve", "--database-type", "sqlite", "--secret-file", secrets); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.served.Database.URL != "file:from-vault.db" {
		t.Fatalf("url = %q, want value from secret file", rec.served.Database.URL)
	}

	_, err := execute(t, newTestCommand(&recorder{}), "serve", "--secret-file", filepath.Join(dir, "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing secret file")
	}
}

func TestConfigValidate(t *testing.T) {
	out, err := execute(t, newTestCommand(&recorder{}), "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "configuration is valid") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCustomValidatorFailure(t *testing.T) {
	cmd := NewServiceCommand(ServiceCommandOptions{
		Name: "jira-software",
		RunServer: func(context.Context, *config.Config, logger.Logger) error {
			t.Fatal("RunServer must not run")
			return nil
		},
		ValidateConfig: func(*config.Config) error {
			return errors.New("pagination too small")
		},
	})
	_, err := execute(t, cmd, "serve")
	if err == nil || !strings.Contains(err.Error(), "pagination too small") {
		t.Fatalf("expected custom validation error, got %v", err)
	}
}

func TestCommandPolicies(t *testing.T) {
	cmd := newTestCommand(&recorder{})
	want := map[string]map[string]string{
		"serve":   {"run": "run"},
		"version": {"run": "always"},
		"migrate": {"migration": "migration"},
	}
	for _, sub := range cmd.Commands() {
		expected, ok := want[sub.Name()]
		if !ok {
			continue
		}
		got := GetCommandPolicies(sub)
		for policyContext, policy := range expected {
			if got[policyContext] != policy {
				t.Fatalf("%s policies = %v, want %v", sub.Name(), got, expected)
			}
		}
	}

	custom := &cobra.Command{Use: "reindex"}
	NewServiceCommand(ServiceCommandOptions{Name: "jira-software", CustomCommands: []*cobra.Command{custom}})
	if got := GetCommandPolicies(custom); got["run"] != string(PolicyAlways) {
		t.Fatalf("custom policies = %v, want default always", got)
	}
}

func TestSetCommandPoliciesReplacesPrevious(t *testing.T) {
	cmd := &cobra.Command{Use: "x", Annotations: map[string]string{"owner": "team"}}
	SetCommandPolicies(cmd, map[string]CommandPolicy{"run": PolicyRun, " ": PolicyOnce})
	SetCommandPolicies(cmd, map[string]CommandPolicy{"migration": PolicyOnce})

	got := GetCommandPolicies(cmd)
	if len(got) != 1 || got["migration"] != "once" {
		t.Fatalf("policies = %v", got)
	}
	if cmd.Annotations["owner"] != "team" {
		t.Fatal("non-policy annotations must be preserved")
	}
}

func TestResolveServiceNameValue(t *testing.T) {
	tests := []struct {
		name                        string
		current, fallback, override string
		want                        string
	}{
		{name: "override wins", current: "cfg", fallback: "def", override: " flag ", want: "flag"},
		{name: "config next", current: "cfg", fallback: "def", want: "cfg"},
		{name: "default next", fallback: "def", want: "def"},
		{name: "last resort", want: "app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveServiceNameValue(tt.current, tt.fallback, tt.override); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveEnvPrefix(t *testing.T) {
	if got := resolveEnvPrefix(" "); got != config.DefaultEnvPrefix {
		t.Fatalf("got %q", got)
	}
	if got := resolveEnvPrefix("tracker"); got != "TRACKER" {
		t.Fatalf("got %q", got)
	}
}
