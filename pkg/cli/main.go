// Package cli builds the cobra command tree shared by the service binary:
// serve, migrate, version and config.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/HarshaM0211/jira-software/pkg/config"
	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
	"github.com/HarshaM0211/jira-software/pkg/version"
)

const (
	policiesAnnotationPrefix = "policies."
	defaultPolicyContext     = "run"
)

// CommandPolicy tells a deployment when a command may run.
type CommandPolicy string

const (
	PolicyAlways    CommandPolicy = "always"
	PolicyRun       CommandPolicy = "run"
	PolicyOnce      CommandPolicy = "once"
	PolicyMigration CommandPolicy = "migration"
	PolicyOnDemand  CommandPolicy = "on_demand"
)

// ServiceCommandOptions defines callbacks for service-specific logic.
type ServiceCommandOptions struct {
	Name        string
	Description string
	ConfigPath  string
	EnvPrefix   string

	// Required: server startup logic.
	RunServer func(ctx context.Context, cfg *config.Config, log logger.Logger) error

	// Optional: migration logic; subcommand is up, down or status.
	RunMigrations func(ctx context.Context, cfg *config.Config, log logger.Logger, subcommand string, steps int) error

	// Optional: custom config validation, run after Config.Validate.
	ValidateConfig func(cfg *config.Config) error

	// Optional: additional custom commands.
	CustomCommands []*cobra.Command
}

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configFile  string
	secretFile  string
	serviceName string
}

// NewServiceCommand creates the CLI with serve, migrate, version and config
// subcommands. Running the binary without a subcommand serves.
//
// Cosa fa: carica la config (flag > ENV > secrets > file > default), crea il
// logger zap e delega a RunServer / RunMigrations.
// Cosa NON fa: non conosce il dominio; backend e rotte arrivano dalle callback.
// Esempio minimo: cli.Execute(cli.NewServiceCommand(cli.ServiceCommandOptions{Name: "jira-software", RunServer: app.Serve}))
func NewServiceCommand(opts ServiceCommandOptions) *cobra.Command {
	opts.EnvPrefix = resolveEnvPrefix(opts.EnvPrefix)

	rootCmd := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	SetCommandPolicies(rootCmd, map[string]CommandPolicy{defaultPolicyContext: PolicyAlways})

	flags := &rootFlags{}
	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configFile, "config-file", "c", opts.ConfigPath, "config file path")
	persistent.StringVar(&flags.secretFile, "secret-file", "", fmt.Sprintf("path to secrets file (sets %s_SECRETS_FILE)", opts.EnvPrefix))
	persistent.StringVar(&flags.serviceName, "service-name", "", "service name override")
	registerConfigFlags(persistent)

	loadConfig := func(fs *pflag.FlagSet) (*config.Config, logger.Logger, error) {
		return LoadConfigAndLogger(flags.configFile, opts.EnvPrefix, flags.secretFile, opts.ValidateConfig, fs,
			opts.Name, flags.serviceName)
	}

	rootCmd.AddCommand(newVersionCommand(opts.Name))

	if opts.RunServer != nil {
		serveCmd := &cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, log, err := loadConfig(cmd.Flags())
				if err != nil {
					return err
				}
				return opts.RunServer(cmd.Context(), cfg, log)
			},
		}
		SetCommandPolicies(serveCmd, map[string]CommandPolicy{defaultPolicyContext: PolicyRun})
		rootCmd.AddCommand(serveCmd)
		rootCmd.RunE = serveCmd.RunE
	}

	if opts.RunMigrations != nil {
		rootCmd.AddCommand(newMigrateCommand(opts, loadConfig))
	}

	rootCmd.AddCommand(newConfigCommand(opts, flags))

	for _, customCmd := range opts.CustomCommands {
		ensureDefaultPolicy(customCmd)
		rootCmd.AddCommand(customCmd)
	}

	return rootCmd
}

// registerConfigFlags declares the flags the config loader binds.
func registerConfigFlags(fs *pflag.FlagSet) {
	fs.Int("port", 0, "HTTP port (http.port)")
	fs.String("router", "", "router implementation: gorilla or gin (router_type)")
	fs.String("database-type", "", "memory, postgres, mysql, sqlite, mongodb or dynamodb (database.type)")
	fs.String("database-url", "", "database connection URL (database.url)")
	fs.String("log-level", "", "debug, info, warn or error (observability.log_level)")
	fs.String("log-format", "", "json or text (observability.log_format)")
}

func newVersionCommand(name string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), version.Current(name), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")
	SetCommandPolicies(cmd, map[string]CommandPolicy{defaultPolicyContext: PolicyAlways})
	return cmd
}

func printVersion(w io.Writer, info version.Info, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintf(w, "Service:    %s\n", info.Service)
	fmt.Fprintf(w, "Version:    %s (%s)\n", info.Version, info.Channel())
	fmt.Fprintf(w, "Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "Build Time: %s\n", info.BuildTime)
	return nil
}

type configLoaderFunc func(fs *pflag.FlagSet) (*config.Config, logger.Logger, error)

func newMigrateCommand(opts ServiceCommandOptions, loadConfig configLoaderFunc) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}
	SetCommandPolicies(migrateCmd, map[string]CommandPolicy{"migration": PolicyMigration})

	run := func(subcommand string, steps *int) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			n := 0
			if steps != nil {
				if *steps <= 0 {
					return fmt.Errorf("--steps must be greater than zero, got %d", *steps)
				}
				n = *steps
			}
			return opts.RunMigrations(cmd.Context(), cfg, log, subcommand, n)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run("up", nil),
	}
	SetCommandPolicies(upCmd, map[string]CommandPolicy{"migration": PolicyRun})

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE:  run("down", &steps),
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	SetCommandPolicies(downCmd, map[string]CommandPolicy{"migration": PolicyOnce})

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE:  run("status", nil),
	}
	SetCommandPolicies(statusCmd, map[string]CommandPolicy{"migration": PolicyRun})

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd)
	return migrateCmd
}

func newConfigCommand(opts ServiceCommandOptions, flags *rootFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}
	SetCommandPolicies(configCmd, map[string]CommandPolicy{defaultPolicyContext: PolicyAlways})

	load := func(fs *pflag.FlagSet) (*config.Config, *config.Config, error) {
		if err := applySecretFileFlag(opts.EnvPrefix, flags.secretFile); err != nil {
			return nil, nil, err
		}
		cfg, secrets, err := config.NewViperLoader(flags.configFile, opts.EnvPrefix).WithFlags(fs).LoadWithSecrets()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		applyResolvedServiceName(cfg, opts.Name, flags.serviceName)
		if opts.ValidateConfig != nil {
			if err := opts.ValidateConfig(cfg); err != nil {
				return nil, nil, fmt.Errorf("custom validation failed: %w", err)
			}
		}
		return cfg, secrets, nil
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := load(cmd.Flags()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
	SetCommandPolicies(validateCmd, map[string]CommandPolicy{defaultPolicyContext: PolicyAlways})

	var showSecrets bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, secrets, err := load(cmd.Flags())
			if err != nil {
				return err
			}
			if showSecrets {
				fmt.Fprint(cmd.OutOrStdout(), cfg.String())
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.Redacted(secrets))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show values read from the secrets file")
	SetCommandPolicies(showCmd, map[string]CommandPolicy{defaultPolicyContext: PolicyOnDemand})

	configCmd.AddCommand(validateCmd, showCmd)
	return configCmd
}

// SetCommandPolicies stores policies as command annotations using the "policies." prefix.
func SetCommandPolicies(cmd *cobra.Command, policies map[string]CommandPolicy) {
	if cmd == nil {
		return
	}
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	for _, key := range policyAnnotationKeys(cmd.Annotations) {
		delete(cmd.Annotations, key)
	}
	for policyContext, policy := range policies {
		trimmedContext := strings.TrimSpace(policyContext)
		if trimmedContext == "" {
			continue
		}
		cmd.Annotations[policiesAnnotationPrefix+trimmedContext] = string(policy)
	}
}

// GetCommandPolicies returns command policies from annotations.
func GetCommandPolicies(cmd *cobra.Command) map[string]string {
	out := map[string]string{}
	if cmd == nil {
		return out
	}
	for key, value := range cmd.Annotations {
		if !strings.HasPrefix(key, policiesAnnotationPrefix) {
			continue
		}
		policyContext := strings.TrimPrefix(key, policiesAnnotationPrefix)
		if strings.TrimSpace(policyContext) == "" {
			continue
		}
		out[policyContext] = value
	}
	return out
}

func ensureDefaultPolicy(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	if len(GetCommandPolicies(cmd)) == 0 {
		SetCommandPolicies(cmd, map[string]CommandPolicy{defaultPolicyContext: PolicyAlways})
	}
}

func policyAnnotationKeys(annotations map[string]string) []string {
	keys := make([]string, 0, len(annotations))
	for key := range annotations {
		if strings.HasPrefix(key, policiesAnnotationPrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// LoadConfigAndLogger loads and validates the configuration, then builds the
// zap logger it describes.
func LoadConfigAndLogger(
	cfgPath,
	envPrefix,
	secretFilePath string,
	customValidator func(*config.Config) error,
	flags *pflag.FlagSet,
	defaultServiceName string,
	serviceNameOverride string,
) (*config.Config, logger.Logger, error) {
	envPrefix = resolveEnvPrefix(envPrefix)
	if err := applySecretFileFlag(envPrefix, secretFilePath); err != nil {
		return nil, nil, err
	}
	cfg, _, err := config.NewViperLoader(cfgPath, envPrefix).WithFlags(flags).LoadWithSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	applyResolvedServiceName(cfg, defaultServiceName, serviceNameOverride)

	if customValidator != nil {
		if err := customValidator(cfg); err != nil {
			return nil, nil, fmt.Errorf("custom validation failed: %w", err)
		}
	}

	log, err := logger.NewZapLogger(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Observability.LogLevel)),
		Format: logger.LogFormat(strings.ToLower(cfg.Observability.LogFormat)),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	logConfigIfDebug(log, cfg)
	return cfg, log.With("service", cfg.Service.Name), nil
}

func applySecretFileFlag(envPrefix, secretFilePath string) error {
	if secretFilePath == "" {
		return nil
	}
	info, err := os.Stat(secretFilePath)
	if err != nil {
		return fmt.Errorf("secret file %s is not accessible: %w", secretFilePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("secret file %s must not be a directory", secretFilePath)
	}
	return os.Setenv(resolveEnvPrefix(envPrefix)+"_SECRETS_FILE", filepath.Clean(secretFilePath))
}

// Execute runs the command and exits with status 1 on error.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logConfigIfDebug(log logger.Logger, cfg *config.Config) {
	if log == nil || cfg == nil {
		return
	}
	if !strings.EqualFold(cfg.Observability.LogLevel, string(logger.DebugLevel)) {
		return
	}
	log.Debug("effective configuration", "config", cfg.Redacted(nil))
}

func resolveEnvPrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return config.DefaultEnvPrefix
	}
	return strings.ToUpper(trimmed)
}

func applyResolvedServiceName(cfg *config.Config, defaultServiceName, serviceNameOverride string) {
	if cfg == nil {
		return
	}
	cfg.Service.Name = resolveServiceNameValue(cfg.Service.Name, defaultServiceName, serviceNameOverride)
}

func resolveServiceNameValue(currentConfigName, defaultServiceName, serviceNameOverride string) string {
	if override := strings.TrimSpace(serviceNameOverride); override != "" {
		return override
	}
	if configured := strings.TrimSpace(currentConfigName); configured != "" {
		return configured
	}
	if fallback := strings.TrimSpace(defaultServiceName); fallback != "" {
		return fallback
	}
	return "app"
}
