package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

// DefaultTimeout bounds a migrate command when Options.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// Action names a migrate subcommand.
type Action string

const (
	ActionUp     Action = "up"
	ActionDown   Action = "down"
	ActionStatus Action = "status"
)

// Command is a validated migrate invocation. Steps only applies to down.
type Command struct {
	Action Action
	Steps  int
}

// NewCommand validates a subcommand name and its step count. Down needs at
// least one step; up and status ignore steps.
func NewCommand(action string, steps int) (Command, error) {
	switch Action(action) {
	case ActionUp, ActionStatus:
		return Command{Action: Action(action)}, nil
	case ActionDown:
		if steps <= 0 {
			return Command{}, fmt.Errorf("migrate down: steps must be greater than zero, got %d", steps)
		}
		return Command{Action: ActionDown, Steps: steps}, nil
	default:
		return Command{}, fmt.Errorf("unknown migrate command %q, want up, down or status", action)
	}
}

// PendingMigration is a script that has not been applied yet.
type PendingMigration struct {
	Version int64
	Name    string
}

// Status lists applied versions and pending scripts in version order.
type Status struct {
	AppliedVersions []int64
	Pending         []PendingMigration
}

// Operations are the migration primitives a Command runs against.
// SQLManager.Operations provides them.
type Operations struct {
	Up     func(ctx context.Context) (int, error)
	Down   func(ctx context.Context, steps int) (int, error)
	Status func(ctx context.Context) (*Status, error)
}

// Options configures how a Command is executed and reported.
type Options struct {
	ServiceName string
	// Path is the script location, only used in log entries.
	Path    string
	Timeout time.Duration
	Logger  logger.Logger
}

// Execute runs cmd bounded by both ctx and opts.Timeout, and logs its outcome.
func Execute(ctx context.Context, cmd Command, opts Options, ops Operations) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if ops.Up == nil || ops.Down == nil || ops.Status == nil {
		return errors.New("migration operations are incomplete")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := opts.Logger.With("service", opts.ServiceName, "path", opts.Path)
	switch cmd.Action {
	case ActionUp:
		applied, err := ops.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info("migrations applied", "count", applied)
	case ActionDown:
		if cmd.Steps <= 0 {
			return fmt.Errorf("migrate down: steps must be greater than zero, got %d", cmd.Steps)
		}
		reverted, err := ops.Down(ctx, cmd.Steps)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		log.Info("migrations reverted", "count", reverted, "steps", cmd.Steps)
	case ActionStatus:
		status, err := ops.Status(ctx)
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		log.Info("migration status", "applied", len(status.AppliedVersions), "pending", len(status.Pending))
		for _, version := range status.AppliedVersions {
			log.Info("migration applied", "version", version)
		}
		for _, pending := range status.Pending {
			log.Info("migration pending", "version", pending.Version, "name", pending.Name)
		}
	default:
		return fmt.Errorf("unknown migrate command %q", cmd.Action)
	}
	return nil
}

func (o Options) validate() error {
	switch {
	case o.Logger == nil:
		return errors.New("migration logger is required")
	case o.ServiceName == "":
		return errors.New("migration service name is required")
	case o.Path == "":
		return errors.New("migration path is required")
	}
	return nil
}
