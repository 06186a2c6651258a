package stats

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

var (
	ErrUnknownTrackable   = errors.New("unknown stat type")
	ErrDuplicateTrackable = errors.New("stat type already registered")
)

// Trackable is a kind of statistic that can be tracked per user.
type Trackable interface {
	Name() string
	DisplayName() string
	DefaultValue() float64
	Format(val float64) string
}

// Stat is the default Trackable implementation.
type Stat struct {
	name    string
	display string
	def     float64
	format  func(float64) string
}

// NewStat creates a stat type. The name is the persisted identifier.
func NewStat(name, displayName string, defaultValue float64) *Stat {
	return &Stat{name: name, display: displayName, def: defaultValue}
}

// WithFormat returns a copy of s that renders values with format.
func (s *Stat) WithFormat(format func(float64) string) *Stat {
	cp := *s
	cp.format = format
	return &cp
}

func (s *Stat) Name() string          { return s.name }
func (s *Stat) DisplayName() string   { return s.display }
func (s *Stat) DefaultValue() float64 { return s.def }

func (s *Stat) Format(val float64) string {
	if s.format != nil {
		return s.format(val)
	}
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func (s *Stat) String() string { return s.name }

// Builtin stat types.
var (
	Kills       Trackable = NewStat("kills", "Kills", 0)
	Deaths      Trackable = NewStat("deaths", "Deaths", 0)
	Wins        Trackable = NewStat("wins", "Wins", 0)
	GamesPlayed Trackable = NewStat("games_played", "Games played", 0)
	JoinCount   Trackable = NewStat("join_count", "Joins", 0)
	PlayTime    Trackable = NewStat("play_time", "Play time", 0).WithFormat(func(v float64) string {
		return (time.Duration(v) * time.Second).String()
	})
)

// Builtins lists the stat types registered by NewTrackableRegistry.
func Builtins() []Trackable {
	return []Trackable{Kills, Deaths, Wins, GamesPlayed, JoinCount, PlayTime}
}

// TrackableRegistry maps persisted names to stat types.
type TrackableRegistry struct {
	mu    sync.RWMutex
	types map[string]Trackable
}

// NewTrackableRegistry returns a registry holding the builtin stat types.
func NewTrackableRegistry() *TrackableRegistry {
	r := &TrackableRegistry{types: make(map[string]Trackable)}
	for _, t := range Builtins() {
		r.types[t.Name()] = t
	}
	return r
}

// Register adds a custom stat type.
func (r *TrackableRegistry) Register(t Trackable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTrackable, t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

func (r *TrackableRegistry) Get(name string) (Trackable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// All returns every stat type sorted by name.
func (r *TrackableRegistry) All() []Trackable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Trackable, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
