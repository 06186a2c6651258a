package domain

import "sync"

const (
	// MaxHealth is the health of a fully healed player.
	MaxHealth = 20.0
	// MaxSaturation is the saturation of a fully fed player.
	MaxSaturation float32 = 20.0
	// DefaultSaturation is the saturation a fresh player spawns with.
	DefaultSaturation float32 = 5.0
)

// Message types pushed to a player's sink.
const (
	MessageChat       = "message"
	MessageScoreboard = "scoreboard"
	MessageState      = "state"
)

// Message is an outbound notification for the client connection.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Sink receives messages addressed to a player. It must not block.
type Sink func(Message)

// Player is the host side of a user: the mutable in-world state that features
// manipulate. Safe for concurrent use.
type Player struct {
	mu         sync.RWMutex
	health     float64
	saturation float32
	mode       GameMode
	location   Vector3D
	sink       Sink
}

// PlayerSnapshot is a read-only copy of a player's state.
type PlayerSnapshot struct {
	Health     float64  `json:"health"`
	Saturation float32  `json:"saturation"`
	GameMode   GameMode `json:"game_mode"`
	Location   Vector3D `json:"location"`
}

// NewPlayer returns a player at full health in survival mode.
func NewPlayer() *Player {
	return &Player{
		health:     MaxHealth,
		saturation: DefaultSaturation,
		mode:       GameModeSurvival,
	}
}

func (p *Player) Health() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// SetHealth clamps the value to [0, MaxHealth].
func (p *Player) SetHealth(health float64) {
	if health < 0 {
		health = 0
	}
	if health > MaxHealth {
		health = MaxHealth
	}
	p.mu.Lock()
	p.health = health
	p.mu.Unlock()
	p.pushState()
}

func (p *Player) Saturation() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saturation
}

// SetSaturation clamps the value to [0, MaxSaturation].
func (p *Player) SetSaturation(saturation float32) {
	if saturation < 0 {
		saturation = 0
	}
	if saturation > MaxSaturation {
		saturation = MaxSaturation
	}
	p.mu.Lock()
	p.saturation = saturation
	p.mu.Unlock()
	p.pushState()
}

func (p *Player) GameMode() GameMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

func (p *Player) SetGameMode(mode GameMode) {
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	p.pushState()
}

func (p *Player) Location() Vector3D {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// Teleport moves the player to loc.
func (p *Player) Teleport(loc Vector3D) {
	p.mu.Lock()
	p.location = loc
	p.mu.Unlock()
	p.pushState()
}

// Snapshot copies the current state.
func (p *Player) Snapshot() PlayerSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PlayerSnapshot{
		Health:     p.health,
		Saturation: p.saturation,
		GameMode:   p.mode,
		Location:   p.location,
	}
}

// Attach sets the sink for outbound messages. A nil sink detaches.
func (p *Player) Attach(sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// Send delivers msg to the attached sink, if any.
func (p *Player) Send(msg Message) {
	p.mu.RLock()
	sink := p.sink
	p.mu.RUnlock()
	if sink != nil {
		sink(msg)
	}
}

func (p *Player) pushState() {
	p.Send(Message{Type: MessageState, Data: p.Snapshot()})
}
