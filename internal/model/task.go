package model

import "time"

// Repeat cadence values.
const (
	RepeatOneTime = "one-time"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
	RepeatYearly  = "yearly"
)

// Priority values.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a single dated item in the planner. Occurrences generated from
// a recurring request are fully independent rows; no column links them
// back to a series.
type Task struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"userId"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // calendar date, YYYY-MM-DD
	Time      string    `json:"time"` // wall-clock time of day, HH:MM
	Notes     string    `json:"notes"`
	Repeat    string    `gorm:"default:one-time" json:"repeat"`
	Priority  string    `gorm:"default:medium" json:"priority"`
	Completed bool      `gorm:"default:false" json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidRepeat reports whether v is an allowed cadence.
func ValidRepeat(v string) bool {
	switch v {
	case RepeatOneTime, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// ValidPriority reports whether v is an allowed priority.
func ValidPriority(v string) bool {
	switch v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
