package game

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Phase is one stage of a game, for example a lobby, the match or the podium.
type Phase struct {
	name     string
	game     *Game
	features []Feature
	ordered  []Feature
	started  []Feature

	ended     bool
	running   bool
	ticks     int64
	startedAt time.Time
}

// NewPhase creates an empty phase.
func NewPhase(name string) *Phase {
	return &Phase{name: name}
}

func (p *Phase) Name() string { return p.name }

// Game returns the game this phase belongs to, nil until it was added to one.
func (p *Phase) Game() *Game { return p.game }

// AddFeature attaches f to the phase. Features must be added before Init.
func (p *Phase) AddFeature(f Feature) {
	f.SetPhase(p)
	p.features = append(p.features, f)
}

// Feature looks up a feature by its registered name.
func (p *Phase) Feature(name string) (Feature, bool) {
	for _, f := range p.features {
		if f.Info().Name == name {
			return f, true
		}
	}
	return nil, false
}

// Features returns the features in dependency order once the phase was
// initialised, in insertion order before that.
func (p *Phase) Features() []Feature {
	src := p.ordered
	if src == nil {
		src = p.features
	}
	out := make([]Feature, len(src))
	copy(out, src)
	return out
}

// Init orders the features and initialises each one.
func (p *Phase) Init(ctx context.Context) error {
	ordered, err := OrderFeatures(p.features)
	if err != nil {
		return fmt.Errorf("phase %s: %w", p.name, err)
	}
	p.ordered = ordered
	for _, f := range p.ordered {
		if err := f.Init(ctx); err != nil {
			return fmt.Errorf("phase %s: init %s: %w", p.name, f.Info().Name, err)
		}
	}
	return nil
}

// Start starts every feature. If one fails, the already started ones are
// stopped again and the error is returned.
func (p *Phase) Start(ctx context.Context) error {
	if p.ordered == nil {
		if err := p.Init(ctx); err != nil {
			return err
		}
	}
	p.started = p.started[:0]
	for _, f := range p.ordered {
		if err := f.Start(ctx); err != nil {
			err = fmt.Errorf("phase %s: start %s: %w", p.name, f.Info().Name, err)
			return errors.Join(err, p.stopStarted(ctx))
		}
		p.started = append(p.started, f)
	}
	p.running = true
	p.startedAt = p.now()
	if p.game != nil {
		p.game.bus.Call(&PhaseStartEvent{Phase: p})
	}
	return nil
}

// Tick advances every feature by one tick.
func (p *Phase) Tick() {
	if !p.running {
		return
	}
	p.ticks++
	for _, f := range p.ordered {
		if p.ended {
			return
		}
		f.Tick()
	}
}

// Stop stops the features in reverse order and drops their event handlers.
func (p *Phase) Stop(ctx context.Context) error {
	if !p.running {
		return nil
	}
	p.running = false
	err := p.stopStarted(ctx)
	if p.game != nil {
		p.game.bus.Call(&PhaseEndEvent{Phase: p})
	}
	return err
}

func (p *Phase) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(p.started) - 1; i >= 0; i-- {
		f := p.started[i]
		if err := f.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("phase %s: stop %s: %w", p.name, f.Info().Name, err))
		}
		if p.game != nil {
			p.game.bus.Unsubscribe(f)
		}
	}
	p.started = p.started[:0]
	return errors.Join(errs...)
}

// End marks the phase as finished. The game moves on at its next tick.
func (p *Phase) End() { p.ended = true }

func (p *Phase) Ended() bool   { return p.ended }
func (p *Phase) Running() bool { return p.running }
func (p *Phase) Ticks() int64  { return p.ticks }

// Elapsed is the time since the phase started.
func (p *Phase) Elapsed() time.Duration {
	if p.startedAt.IsZero() {
		return 0
	}
	return p.now().Sub(p.startedAt)
}

func (p *Phase) now() time.Time {
	if p.game != nil {
		return p.game.now()
	}
	return time.Now()
}
