package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/internal/logging"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
	"github.com/voxelgameslib/voxelgameslib/pkg/user"
)

// AnnotationPermission holds the permission node a command requires.
const AnnotationPermission = "permission"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoPermission   = errors.New("no permission")
)

// Dispatcher parses and runs chat commands.
type Dispatcher struct {
	version  string
	features *feature.Registry
	games    *game.Handler
	stats    *stats.Handler
	users    *user.Handler
	logger   *slog.Logger
	observe  func(command string)
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithFeatures(r *feature.Registry) Option {
	return func(d *Dispatcher) {
		d.features = r
	}
}

func WithGames(h *game.Handler) Option {
	return func(d *Dispatcher) {
		d.games = h
	}
}

func WithStats(h *stats.Handler) Option {
	return func(d *Dispatcher) {
		d.stats = h
	}
}

func WithUsers(h *user.Handler) Option {
	return func(d *Dispatcher) {
		d.users = h
	}
}

// WithObserver is called with the full name of every executed command.
func WithObserver(fn func(command string)) Option {
	return func(d *Dispatcher) {
		d.observe = fn
	}
}

func NewDispatcher(version string, opts ...Option) *Dispatcher {
	d := &Dispatcher{version: version, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IsCommand reports whether a chat line is a command.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "/")
}

// Execute runs one command line for sender. A leading "/" is optional.
// Usage and permission problems are reported to the sender and returned.
func (d *Dispatcher) Execute(ctx context.Context, sender Sender, line string) error {
	args := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(args) == 0 {
		return ErrUnknownCommand
	}

	root := d.tree(sender)
	out := &senderWriter{sender: sender}
	defer out.Flush()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)

	root.InitDefaultHelpCmd()
	target, _, err := root.Find(args)
	if err != nil || target == root {
		sender.SendMessage(`Unknown command. Type "/help" for help.`)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}

	d.logger.Debug("Executing command", "sender", sender.Name(), "command", target.CommandPath())
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrNoPermission) {
			sender.SendMessage(Red + err.Error())
		}
		return err
	}
	if d.observe != nil {
		d.observe(strings.TrimPrefix(target.CommandPath(), root.Name()+" "))
	}
	return nil
}

func (d *Dispatcher) tree(sender Sender) *cobra.Command {
	root := &cobra.Command{
		Use:           "/",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if node, ok := cmd.Annotations[AnnotationPermission]; ok && !sender.HasPermission(node) {
				sender.SendMessage(Red + "I'm sorry, but you do not have permission to perform this command.")
				return fmt.Errorf("%w: %s", ErrNoPermission, node)
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(d.vglCommand(sender))
	root.AddCommand(overrideCommands()...)
	return root
}

func permission(node string) map[string]string {
	return map[string]string{AnnotationPermission: node}
}
