package service

import (
	"fmt"
	"strings"
	"time"

	"lilo-planner/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TaskTemplate is the set of task fields used as input to creation or
// expansion. Ids and timestamps are assigned by the store.
type TaskTemplate struct {
	Title    string
	Date     string
	Time     string
	Notes    string
	Repeat   string
	Priority string
}

// Validate normalizes defaults and checks the template fields.
func (t *TaskTemplate) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if _, err := time.Parse(dateLayout, t.Date); err != nil {
		return fmt.Errorf("%w: %q", model.ErrInvalidDate, t.Date)
	}
	if t.Time != "" {
		if _, err := time.Parse(timeLayout, t.Time); err != nil {
			return fmt.Errorf("%w: time %q, expected HH:MM", model.ErrValidation, t.Time)
		}
	}
	if t.Repeat == "" {
		t.Repeat = model.RepeatOneTime
	}
	if !model.ValidRepeat(t.Repeat) {
		return fmt.Errorf("%w: repeat %q", model.ErrValidation, t.Repeat)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(t.Priority) {
		return fmt.Errorf("%w: priority %q", model.ErrValidation, t.Priority)
	}
	return nil
}

func parseDate(v string) (time.Time, error) {
	return time.Parse(dateLayout, v)
}

func parseClock(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}

func (t TaskTemplate) toTask(userID string) model.Task {
	return model.Task{
		UserID:   userID,
		Title:    t.Title,
		Date:     t.Date,
		Time:     t.Time,
		Notes:    t.Notes,
		Repeat:   t.Repeat,
		Priority: t.Priority,
	}
}

// ExpandRecurring turns one template with a repeating cadence into count
// dated copies, occurrence i stepped from the base date itself:
// daily +i days, weekly +7i days, monthly +i months, yearly +i years.
// Month and year steps use normalized calendar arithmetic, so a monthly
// series based on Jan 31 spills into early March rather than clamping to
// the end of February.
func ExpandRecurring(tpl TaskTemplate, count int) ([]TaskTemplate, error) {
	base, err := time.Parse(dateLayout, tpl.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDate, tpl.Date)
	}

	out := make([]TaskTemplate, 0, count)
	for i := 0; i < count; i++ {
		var next time.Time
		switch tpl.Repeat {
		case model.RepeatDaily:
			next = base.AddDate(0, 0, i)
		case model.RepeatWeekly:
			next = base.AddDate(0, 0, 7*i)
		case model.RepeatMonthly:
			next = base.AddDate(0, i, 0)
		case model.RepeatYearly:
			next = base.AddDate(i, 0, 0)
		default:
			return nil, fmt.Errorf("%w: cadence %q does not recur", model.ErrValidation, tpl.Repeat)
		}

		occurrence := tpl
		occurrence.Date = next.Format(dateLayout)
		out = append(out, occurrence)
	}

	return out, nil
}
