package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"lilo-planner/internal/model"
	"lilo-planner/internal/repository"
)

// upcomingHorizonDays bounds the look-ahead section of the agenda.
const upcomingHorizonDays = 7

// AgendaService builds human-readable daily summaries for chat delivery.
type AgendaService struct {
	taskRepo *repository.TaskRepository
}

func NewAgendaService(taskRepo *repository.TaskRepository) *AgendaService {
	return &AgendaService{taskRepo: taskRepo}
}

// DailyAgenda renders the user's overdue, due-today and upcoming tasks as
// an HTML message. "Today" is computed in the user's configured timezone.
func (s *AgendaService) DailyAgenda(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	loc := userLocation(user)
	today := now.In(loc).Format(dateLayout)
	horizon := now.In(loc).AddDate(0, 0, upcomingHorizonDays).Format(dateLayout)

	var overdue, due, upcoming []model.Task
	for _, task := range tasks {
		if task.Completed {
			continue
		}
		switch {
		case task.Date < today:
			overdue = append(overdue, task)
		case task.Date == today:
			due = append(due, task)
		case task.Date <= horizon:
			upcoming = append(upcoming, task)
		}
	}

	sortByDateTime(overdue)
	sortByDateTime(due)
	sortByDateTime(upcoming)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today))

	builder.WriteString("⚠️ <b>Overdue</b>\n")
	writeSection(&builder, overdue, true)

	builder.WriteString("\n📌 <b>Today</b>\n")
	writeSection(&builder, due, false)

	builder.WriteString(fmt.Sprintf("\n🔜 <b>Next %d days</b>\n", upcomingHorizonDays))
	writeSection(&builder, upcoming, true)

	return strings.TrimSpace(builder.String()), nil
}

func userLocation(user model.User) *time.Location {
	if user.Timezone != "" {
		if loc, err := time.LoadLocation(user.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func sortByDateTime(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Date != tasks[j].Date {
			return tasks[i].Date < tasks[j].Date
		}
		return tasks[i].Time < tasks[j].Time
	})
}

func writeSection(builder *strings.Builder, tasks []model.Task, withDate bool) {
	if len(tasks) == 0 {
		builder.WriteString("— nothing here\n")
		return
	}
	for _, task := range tasks {
		builder.WriteString(formatAgendaLine(task, withDate))
	}
}

func formatAgendaLine(task model.Task, withDate bool) string {
	var sb strings.Builder
	sb.WriteString(priorityIcon(task.Priority))
	sb.WriteByte(' ')
	if withDate {
		sb.WriteString(task.Date)
		sb.WriteByte(' ')
	}
	if task.Time != "" {
		sb.WriteString(task.Time)
		sb.WriteByte(' ')
	}
	sb.WriteString(html.EscapeString(strings.TrimSpace(task.Title)))
	if task.Notes != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(strings.TrimSpace(task.Notes))))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func priorityIcon(priority string) string {
	switch priority {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}
