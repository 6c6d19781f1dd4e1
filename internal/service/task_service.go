package service

import (
	"context"
	"fmt"

	"lilo-planner/internal/model"
	"lilo-planner/internal/repository"
)

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title     *string
	Date      *string
	Time      *string
	Notes     *string
	Repeat    *string
	Priority  *string
	Completed *bool
}

// TaskService is the single entry point for task mutations. It enforces
// owner scoping and dispatches single versus bulk creation.
type TaskService struct {
	taskRepo       *repository.TaskRepository
	maxOccurrences int
}

func NewTaskService(taskRepo *repository.TaskRepository, maxOccurrences int) *TaskService {
	return &TaskService{taskRepo: taskRepo, maxOccurrences: maxOccurrences}
}

// List returns all tasks of the owner, most recently created first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, ownerID)
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, ownerID, taskID)
}

// Create persists the template for the owner. With expand set and a
// repeating cadence, the template is expanded into a batch of dated
// copies, inserted one at a time. A mid-batch failure aborts the rest
// and returns the already persisted prefix alongside the error; there is
// no rollback. The second return value reports whether the bulk path ran.
func (s *TaskService) Create(ctx context.Context, ownerID string, tpl TaskTemplate, expand bool) ([]model.Task, bool, error) {
	if err := tpl.Validate(); err != nil {
		return nil, false, err
	}

	if !expand || tpl.Repeat == model.RepeatOneTime {
		task := tpl.toTask(ownerID)
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return nil, false, err
		}
		return []model.Task{task}, false, nil
	}

	occurrences, err := ExpandRecurring(tpl, s.maxOccurrences)
	if err != nil {
		return nil, true, err
	}

	created := make([]model.Task, 0, len(occurrences))
	for _, occurrence := range occurrences {
		task := occurrence.toTask(ownerID)
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return created, true, fmt.Errorf("occurrence %d: %w", len(created), err)
		}
		created = append(created, task)
	}

	return created, true, nil
}

// Update merges the patch into the task identified by (id, owner). A task
// that is absent or belongs to someone else surfaces as not found.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) (*model.Task, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	applyPatch(task, patch)
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleComplete flips the completion flag. This is a plain
// read-modify-write: two concurrent toggles on the same task race and the
// last write wins.
func (s *TaskService) ToggleComplete(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task scoped by (id, owner). Deleting an id the owner
// does not have is a no-op.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	return s.taskRepo.Delete(ctx, ownerID, taskID)
}

func validatePatch(patch TaskPatch) error {
	if patch.Title != nil && *patch.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", model.ErrValidation)
	}
	if patch.Date != nil {
		if _, err := parseDate(*patch.Date); err != nil {
			return fmt.Errorf("%w: %q", model.ErrInvalidDate, *patch.Date)
		}
	}
	if patch.Time != nil && *patch.Time != "" {
		if _, err := parseClock(*patch.Time); err != nil {
			return fmt.Errorf("%w: time %q, expected HH:MM", model.ErrValidation, *patch.Time)
		}
	}
	if patch.Repeat != nil && !model.ValidRepeat(*patch.Repeat) {
		return fmt.Errorf("%w: repeat %q", model.ErrValidation, *patch.Repeat)
	}
	if patch.Priority != nil && !model.ValidPriority(*patch.Priority) {
		return fmt.Errorf("%w: priority %q", model.ErrValidation, *patch.Priority)
	}
	return nil
}

func applyPatch(task *model.Task, patch TaskPatch) {
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Date != nil {
		task.Date = *patch.Date
	}
	if patch.Time != nil {
		task.Time = *patch.Time
	}
	if patch.Notes != nil {
		task.Notes = *patch.Notes
	}
	if patch.Repeat != nil {
		task.Repeat = *patch.Repeat
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
}
