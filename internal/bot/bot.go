// Package bot is the Telegram gateway to the planner. Plain messages go
// through the assistant bridge, the same path the HTTP chat endpoint
// uses; a few commands render the task list and the daily agenda.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lilo-planner/internal/assistant"
	"lilo-planner/internal/model"
	"lilo-planner/internal/repository"
	"lilo-planner/internal/service"
)

// Bot aggregates the Telegram API with the planner services.
type Bot struct {
	api       *tgbotapi.BotAPI
	userRepo  *repository.UserRepository
	taskSvc   *service.TaskService
	agendaSvc *service.AgendaService
	bridge    *assistant.Bridge
}

func New(token string, userRepo *repository.UserRepository, taskSvc *service.TaskService, agendaSvc *service.AgendaService, bridge *assistant.Bridge) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		userRepo:  userRepo,
		taskSvc:   taskSvc,
		agendaSvc: agendaSvc,
		bridge:    bridge,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
		return b.handleCommand(ctx, user, msg)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	reply, err := b.bridge.HandleMessage(ctx, user.ID, text)
	if err != nil {
		if errors.Is(err, model.ErrOracleUnavailable) {
			return b.sendText(msg.Chat.ID, "🤖 The assistant is not configured yet. Ask the operator to set an API key.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Something went wrong: %s", html.EscapeString(err.Error())))
	}

	if err := b.sendText(msg.Chat.ID, html.EscapeString(reply.Response)); err != nil {
		return err
	}
	if reply.TaskCreated {
		return b.sendTaskList(ctx, msg.Chat.ID, user)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, user *model.User, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "tasks":
		return b.sendTaskList(ctx, msg.Chat.ID, user)
	case "today":
		return b.handleToday(ctx, msg.Chat.ID, user)
	case "help":
		return b.handleHelp(msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I'm Lilo, your scheduling assistant.</b>\n\n"+
			"Just tell me what you need to do — e.g. <i>remind me to call mom tomorrow at 5pm</i> — and I'll put it on your schedule.\n\n"+
			"Commands:\n"+
			"• /tasks — show your tasks\n"+
			"• /today — today's agenda\n"+
			"• /help — tips",
		html.EscapeString(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Tips</b>\n" +
		"• Write in plain language: <i>dentist appointment on Friday at 10am</i>\n" +
		"• /tasks — list everything on your schedule\n" +
		"• /today — overdue, due-today and upcoming items\n" +
		"• Anything else you type becomes a conversation with Lilo"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleToday(ctx context.Context, chatID int64, user *model.User) error {
	text, err := b.agendaSvc.DailyAgenda(ctx, *user, time.Now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the agenda: %s", html.EscapeString(err.Error())))
	}
	return b.sendText(chatID, text)
}

// SendDailyAgendas pushes the morning agenda to every Telegram-linked
// user.
func (b *Bot) SendDailyAgendas(ctx context.Context) error {
	users, err := b.userRepo.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.agendaSvc.DailyAgenda(ctx, user, now)
		if err != nil {
			log.Printf("build agenda for user %s: %v", user.ID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send agenda to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// ensureUser upserts the sender as a planner user. Telegram identities
// get the tg: prefix so they never collide with token subjects.
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.Upsert(ctx, &model.User{
		ID:         fmt.Sprintf("tg:%d", from.ID),
		FirstName:  from.FirstName,
		LastName:   from.LastName,
		TelegramID: from.ID,
	})
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.taskSvc.List(ctx, user.ID)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not fetch tasks: %s", html.EscapeString(err.Error())))
	}

	var open []model.Task
	for _, task := range tasks {
		if !task.Completed {
			open = append(open, task)
		}
	}
	if len(open) == 0 {
		return b.sendText(chatID, "Your schedule is clear. Tell me what to add!")
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Your tasks</b>\n\n")
	for _, task := range open {
		builder.WriteString(formatTaskLine(task))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func formatTaskLine(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(priorityBadge(task.Priority))
	sb.WriteString(fmt.Sprintf(" <b>%s</b>", html.EscapeString(strings.TrimSpace(task.Title))))
	sb.WriteString(fmt.Sprintf("\n   🗓 %s", task.Date))
	if task.Time != "" {
		sb.WriteString(fmt.Sprintf(" · ⏰ %s", task.Time))
	}
	if task.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Notes))))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func priorityBadge(priority string) string {
	switch priority {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}
