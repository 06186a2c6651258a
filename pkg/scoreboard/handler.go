package scoreboard

import "sync"

// Handler creates scoreboards and tracks the live ones.
type Handler struct {
	mu     sync.Mutex
	boards map[*Scoreboard]struct{}
}

func NewHandler() *Handler {
	return &Handler{boards: make(map[*Scoreboard]struct{})}
}

func (h *Handler) Start() error { return nil }

// Stop forgets every scoreboard.
func (h *Handler) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.boards = make(map[*Scoreboard]struct{})
	return nil
}

// CreateScoreboard returns a new empty scoreboard titled name.
func (h *Handler) CreateScoreboard(name string) *Scoreboard {
	s := newScoreboard(name)
	h.mu.Lock()
	h.boards[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Remove drops a scoreboard and hides it from its viewers.
func (h *Handler) Remove(s *Scoreboard) {
	for _, v := range s.Viewers() {
		s.RemoveViewer(v)
	}
	h.mu.Lock()
	delete(h.boards, s)
	h.mu.Unlock()
}

// Count is the number of live scoreboards.
func (h *Handler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.boards)
}
