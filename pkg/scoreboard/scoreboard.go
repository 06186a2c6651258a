package scoreboard

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

// Line is one entry of a scoreboard sidebar.
type Line struct {
	Key   string `json:"key"`
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Snapshot is what viewers receive whenever the scoreboard changes.
type Snapshot struct {
	Title string `json:"title"`
	Lines []Line `json:"lines"`
}

// Cleared is the snapshot that tells a client to hide its sidebar.
var Cleared = Snapshot{Lines: []Line{}}

// Scoreboard is a titled sidebar shown to a set of viewers.
type Scoreboard struct {
	mu      sync.Mutex
	title   string
	lines   map[string]Line
	viewers map[uuid.UUID]*domain.User
	order   []uuid.UUID
}

func newScoreboard(title string) *Scoreboard {
	return &Scoreboard{
		title:   title,
		lines:   make(map[string]Line),
		viewers: make(map[uuid.UUID]*domain.User),
	}
}

func (s *Scoreboard) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Scoreboard) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	s.push()
}

// SetLine adds or replaces the line identified by key.
func (s *Scoreboard) SetLine(key, text string, score int) {
	s.mu.Lock()
	s.lines[key] = Line{Key: key, Text: text, Score: score}
	s.mu.Unlock()
	s.push()
}

func (s *Scoreboard) RemoveLine(key string) {
	s.mu.Lock()
	_, ok := s.lines[key]
	delete(s.lines, key)
	s.mu.Unlock()
	if ok {
		s.push()
	}
}

// Lines returns the lines sorted by score descending, then by key.
func (s *Scoreboard) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Scoreboard) sortedLocked() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// AddViewer shows the scoreboard to user.
func (s *Scoreboard) AddViewer(user *domain.User) {
	s.mu.Lock()
	if _, ok := s.viewers[user.UUID]; !ok {
		s.viewers[user.UUID] = user
		s.order = append(s.order, user.UUID)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	user.Player().Send(domain.Message{Type: domain.MessageScoreboard, Data: snap})
}

// RemoveViewer hides the scoreboard from user by sending it an empty snapshot.
func (s *Scoreboard) RemoveViewer(user *domain.User) {
	s.mu.Lock()
	if _, ok := s.viewers[user.UUID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.viewers, user.UUID)
	for i, id := range s.order {
		if id == user.UUID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	user.Player().Send(domain.Message{Type: domain.MessageScoreboard, Data: Cleared})
}

// Viewers returns the viewers in the order they were added.
func (s *Scoreboard) Viewers() []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.viewers[id])
	}
	return out
}

// Snapshot returns the current title and lines.
func (s *Scoreboard) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scoreboard) snapshotLocked() Snapshot {
	return Snapshot{Title: s.title, Lines: s.sortedLocked()}
}

func (s *Scoreboard) push() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	viewers := make([]*domain.User, 0, len(s.order))
	for _, id := range s.order {
		viewers = append(viewers, s.viewers[id])
	}
	s.mu.Unlock()

	for _, v := range viewers {
		v.Player().Send(domain.Message{Type: domain.MessageScoreboard, Data: snap})
	}
}
