package stats

import (
	"sync"

	"github.com/google/uuid"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/event"
)

// UserResolver finds the online user for an id, or returns nil.
type UserResolver func(uuid.UUID) *domain.User

// StatInstance is the value of one stat type for one user.
type StatInstance struct {
	mu       sync.Mutex
	id       int64
	uuid     uuid.UUID
	val      float64
	statType Trackable

	user     *domain.User
	dirty    bool
	version  uint64
	bus      *event.Bus
	resolver UserResolver
}

// NewStatInstance creates a fresh instance for user. It is not persisted until saved.
func NewStatInstance(user *domain.User, statType Trackable, val float64, bus *event.Bus) *StatInstance {
	return &StatInstance{
		uuid:     user.UUID,
		val:      val,
		statType: statType,
		user:     user,
		bus:      bus,
	}
}

// fromRow rebuilds an instance from storage. The user is resolved lazily.
func fromRow(row domain.StatRow, statType Trackable, bus *event.Bus, resolver UserResolver) *StatInstance {
	return &StatInstance{
		id:       row.ID,
		uuid:     row.UUID,
		val:      row.Val,
		statType: statType,
		bus:      bus,
		resolver: resolver,
	}
}

func (s *StatInstance) ID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *StatInstance) UUID() uuid.UUID     { return s.uuid }
func (s *StatInstance) StatType() Trackable { return s.statType }

func (s *StatInstance) Val() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// User returns the owning user, resolving it on first use for loaded instances.
func (s *StatInstance) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil && s.resolver != nil {
		s.user = s.resolver(s.uuid)
	}
	return s.user
}

// Increment adds one.
func (s *StatInstance) Increment() { s.IncrementBy(1) }

// IncrementBy fires a PlayerIncrementStatEvent and applies its NewVal unless cancelled.
func (s *StatInstance) IncrementBy(delta float64) {
	old := s.Val()
	e := &PlayerIncrementStatEvent{User: s.User(), StatType: s.statType, OldVal: old, NewVal: old + delta, Delta: delta}
	if s.call(e) {
		s.set(e.NewVal)
	}
}

// Decrement subtracts one.
func (s *StatInstance) Decrement() { s.DecrementBy(1) }

// DecrementBy fires a PlayerDecrementStatEvent and applies its NewVal unless cancelled.
func (s *StatInstance) DecrementBy(delta float64) {
	old := s.Val()
	e := &PlayerDecrementStatEvent{User: s.User(), StatType: s.statType, OldVal: old, NewVal: old - delta, Delta: delta}
	if s.call(e) {
		s.set(e.NewVal)
	}
}

// SetVal overwrites the value without firing events.
func (s *StatInstance) SetVal(val float64) { s.set(val) }

func (s *StatInstance) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (s *StatInstance) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Row returns the persistable form.
func (s *StatInstance) Row(conv TrackableConverter) domain.StatRow {
	row, _ := s.snapshot(conv)
	return row
}

// snapshot returns the row together with the version of its value.
func (s *StatInstance) snapshot(conv TrackableConverter) (domain.StatRow, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatRow{ID: s.id, UUID: s.uuid, StatType: conv.ToColumn(s.statType), Val: s.val}, s.version
}

// markCleanIf clears the dirty flag unless the value changed after version was read.
func (s *StatInstance) markCleanIf(version uint64) {
	s.mu.Lock()
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()
}

func (s *StatInstance) setID(id int64) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

func (s *StatInstance) set(val float64) {
	s.mu.Lock()
	s.val = val
	s.dirty = true
	s.version++
	s.mu.Unlock()
}

func (s *StatInstance) call(e event.Cancellable) bool {
	if s.bus == nil {
		return !e.Cancelled()
	}
	return s.bus.Call(e)
}
