package assistant

import (
	"context"
	"errors"
	"fmt"

	"lilo-planner/internal/model"
	"lilo-planner/internal/service"
)

// fallbackReply is used when the oracle fails mid-conversation.
const fallbackReply = "I'm here to help! Could you please rephrase that?"

// ChatReply is the bridge's answer to one chat message.
type ChatReply struct {
	Response    string
	TaskCreated bool
}

// Bridge adapts a natural-language chat message into either a
// conversational reply or a one-shot task creation. The chat path never
// expands a recurring series: even when the extracted candidate carries a
// repeating cadence, exactly one occurrence is stored. This keeps an
// ambiguous instruction from bulk-creating a whole batch.
type Bridge struct {
	oracle Oracle
	tasks  *service.TaskService
}

func NewBridge(oracle Oracle, tasks *service.TaskService) *Bridge {
	return &Bridge{oracle: oracle, tasks: tasks}
}

// HandleMessage classifies the message and either creates a task or
// chats. A missing oracle credential propagates as
// model.ErrOracleUnavailable; transient oracle failures fall back to a
// static reply instead of surfacing.
func (b *Bridge) HandleMessage(ctx context.Context, ownerID, message string) (ChatReply, error) {
	tasks, err := b.tasks.List(ctx, ownerID)
	if err != nil {
		return ChatReply{}, err
	}

	result, err := b.oracle.ClassifyAndExtract(ctx, message)
	if err != nil {
		if errors.Is(err, model.ErrOracleUnavailable) {
			return ChatReply{}, err
		}
		// Extraction hiccup: treat as "no task" and try to converse.
		result = ParseResult{}
	}

	if result.ShouldCreateTask && result.Task != nil {
		tpl := service.TaskTemplate{
			Title:    result.Task.Title,
			Date:     result.Task.Date,
			Time:     result.Task.Time,
			Notes:    result.Task.Notes,
			Repeat:   result.Task.Repeat,
			Priority: result.Task.Priority,
		}
		created, _, err := b.tasks.Create(ctx, ownerID, tpl, false)
		if err != nil {
			return ChatReply{}, err
		}
		task := created[0]
		return ChatReply{
			Response:    fmt.Sprintf("Great! I've created a task: %q for %s at %s.", task.Title, task.Date, task.Time),
			TaskCreated: true,
		}, nil
	}

	reply, err := b.oracle.Converse(ctx, message, tasks)
	if err != nil {
		if errors.Is(err, model.ErrOracleUnavailable) {
			return ChatReply{}, err
		}
		return ChatReply{Response: fallbackReply}, nil
	}
	return ChatReply{Response: reply}, nil
}
