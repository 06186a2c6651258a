package user

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

var (
	ErrInvalidName   = errors.New("invalid player name")
	ErrAlreadyOnline = errors.New("player is already online")
	ErrNotOnline     = errors.New("player is not online")
)

// LoginEvent is fired after a user came online.
type LoginEvent struct {
	User *domain.User
}

func (*LoginEvent) Name() string { return "UserLoginEvent" }

// LogoutEvent is fired after a user went offline.
type LogoutEvent struct {
	User   *domain.User
	Online time.Duration
}

func (*LogoutEvent) Name() string { return "UserLogoutEvent" }

type session struct {
	user  *domain.User
	since time.Time
}

// Handler tracks the online users.
type Handler struct {
	mu        sync.RWMutex
	bus       *event.Bus
	online    map[uuid.UUID]session
	operators map[string]struct{}
	clock     func() time.Time
}

// Option configures the Handler.
type Option func(*Handler)

// WithOperators grants "*" to the named players on login.
func WithOperators(names ...string) Option {
	return func(h *Handler) {
		for _, n := range names {
			h.operators[strings.ToLower(n)] = struct{}{}
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(h *Handler) {
		h.clock = clock
	}
}

func NewHandler(bus *event.Bus, opts ...Option) *Handler {
	h := &Handler{
		bus:       bus,
		online:    make(map[uuid.UUID]session),
		operators: make(map[string]struct{}),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Start() error { return nil }

// Stop logs out everyone.
func (h *Handler) Stop() error {
	for _, u := range h.Online() {
		_ = h.Logout(u.UUID)
	}
	return nil
}

// ValidName reports whether name is a valid player name: 3 to 16 letters, digits or underscores.
func ValidName(name string) bool {
	if len(name) < 3 || len(name) > 16 {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// Login brings a player online under its offline-mode uuid.
func (h *Handler) Login(name string) (*domain.User, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	id := domain.OfflineUUID(name)

	h.mu.Lock()
	if _, ok := h.online[id]; ok {
		h.mu.Unlock()
		return nil, ErrAlreadyOnline
	}
	u := domain.NewUser(id, name)
	u.Grant(domain.PermissionUser)
	if _, ok := h.operators[strings.ToLower(name)]; ok {
		u.Grant(domain.PermissionAll)
	}
	h.online[id] = session{user: u, since: h.clock()}
	h.mu.Unlock()

	h.bus.Call(&LoginEvent{User: u})
	return u, nil
}

// Logout takes a player offline.
func (h *Handler) Logout(id uuid.UUID) error {
	h.mu.Lock()
	s, ok := h.online[id]
	delete(h.online, id)
	h.mu.Unlock()
	if !ok {
		return ErrNotOnline
	}
	h.bus.Call(&LogoutEvent{User: s.user, Online: h.clock().Sub(s.since)})
	return nil
}

// Get returns the online user with id, or nil. It matches stats.UserResolver.
func (h *Handler) Get(id uuid.UUID) *domain.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online[id].user
}

// ByName finds an online user by display name, ignoring case.
func (h *Handler) ByName(name string) (*domain.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.online {
		if strings.EqualFold(s.user.DisplayName, name) {
			return s.user, true
		}
	}
	return nil, false
}

// Online returns all online users sorted by name.
func (h *Handler) Online() []*domain.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*domain.User, 0, len(h.online))
	for _, s := range h.online {
		out = append(out, s.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}
