package domain

import "github.com/google/uuid"

// StatRow is the persisted form of a statistic. There is at most one row per
// (UUID, StatType).
type StatRow struct {
	ID       int64     `json:"id"`
	UUID     uuid.UUID `json:"uuid"`
	StatType string    `json:"stat_type"`
	Val      float64   `json:"val"`
}
