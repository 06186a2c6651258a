package stats

import "fmt"

// TrackableConverter translates stat types to and from the stat_type column.
type TrackableConverter struct {
	registry *TrackableRegistry
}

func NewTrackableConverter(registry *TrackableRegistry) TrackableConverter {
	return TrackableConverter{registry: registry}
}

// ToColumn returns the persisted name of t.
func (c TrackableConverter) ToColumn(t Trackable) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// FromColumn resolves a persisted name. Unknown names yield ErrUnknownTrackable.
func (c TrackableConverter) FromColumn(column string) (Trackable, error) {
	t, ok := c.registry.Get(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrackable, column)
	}
	return t, nil
}
