package voxelgameslib

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/voxelgameslib/voxelgameslib/pkg/command"
)

// Runner feeds console lines to the command dispatcher.
// This allows the server console and tests to share one code path.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
}

// NewRunner creates a Runner on the given IO.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Run executes console commands until the input ends, "stop" is typed or
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context, lib *Lib) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.Input)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	sender := &ConsoleSender{w: r.Output}
	if !r.Headless {
		fmt.Fprintln(r.Output, `Type "help" for commands, "stop" to shut down.`)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "stop", "exit":
				return nil
			}
			err := lib.Commands().Execute(ctx, sender, line)
			if err != nil && !errors.Is(err, command.ErrUnknownCommand) && !errors.Is(err, command.ErrNoPermission) {
				lib.Logger().Debug("Console command failed", "line", line, "error", err)
			}
		}
	}
}

// ConsoleSender is the command sender of the server console. It holds every
// permission and prints messages without chat color codes.
type ConsoleSender struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSender(w io.Writer) *ConsoleSender { return &ConsoleSender{w: w} }

func (*ConsoleSender) Name() string              { return "CONSOLE" }
func (*ConsoleSender) HasPermission(string) bool { return true }

func (c *ConsoleSender) SendMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, StripColors(text))
}

// StripColors removes "§x" chat color codes.
func StripColors(text string) string {
	if !strings.ContainsRune(text, '§') {
		return text
	}
	var b strings.Builder
	skip := false
	for _, r := range text {
		switch {
		case skip:
			skip = false
		case r == '§':
			skip = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ command.Sender = (*ConsoleSender)(nil)
