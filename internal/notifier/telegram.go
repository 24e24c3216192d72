// Package notifier posts project events to an administrators' Telegram chat and answers
// status queries from that chat.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mayurgeek/devota-backend/internal/models"
	"github.com/mayurgeek/devota-backend/internal/service"
)

const queueSize = 64

// ProjectLookup is the read side of the project service used by /status.
type ProjectLookup interface {
	Get(ctx context.Context, projectID string) (*models.Project, error)
}

// botAPI is the subset of *tgbotapi.BotAPI the notifier uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram delivers project events asynchronously. Notify never blocks; events that
// do not fit in the queue are dropped with a warning.
type Telegram struct {
	api      botAPI
	chatID   int64
	projects ProjectLookup
	events   chan service.ProjectEvent
	logger   *zap.Logger
}

var _ service.Notifier = (*Telegram)(nil)

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64, projects ProjectLookup, logger *zap.Logger) (*Telegram, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))
	return newTelegram(botAPI, chatID, projects, logger), nil
}

func newTelegram(api botAPI, chatID int64, projects ProjectLookup, logger *zap.Logger) *Telegram {
	return &Telegram{
		api:      api,
		chatID:   chatID,
		projects: projects,
		events:   make(chan service.ProjectEvent, queueSize),
		logger:   logger,
	}
}

func (t *Telegram) Notify(event service.ProjectEvent) {
	select {
	case t.events <- event:
	default:
		t.logger.Warn("Notification queue full, dropping event",
			zap.String("kind", string(event.Kind)),
			zap.String("project_id", event.Project.ProjectID),
		)
	}
}

// Start delivers queued events and handles incoming commands until ctx is done.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.api.GetUpdatesChan(u)

	t.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Telegram bot shutting down...")
			t.api.StopReceivingUpdates()
			return nil
		case event := <-t.events:
			t.sendMessage(t.chatID, formatEvent(event))
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			if update.Message != nil {
				t.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (t *Telegram) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}
	// Only the configured admin chat may query project state.
	if message.Chat == nil || message.Chat.ID != t.chatID {
		t.logger.Warn("Ignoring command from unknown chat", zap.String("command", message.Command()))
		return
	}

	switch message.Command() {
	case "start", "help":
		t.sendMessage(t.chatID, helpText)
	case "status":
		t.handleStatusCommand(ctx, strings.TrimSpace(message.CommandArguments()))
	default:
		t.sendMessage(t.chatID, "Unknown command. Use /help.")
	}
}

func (t *Telegram) handleStatusCommand(ctx context.Context, projectID string) {
	if projectID == "" {
		t.sendMessage(t.chatID, "Usage: /status <project_id>")
		return
	}

	project, err := t.projects.Get(ctx, projectID)
	switch {
	case err == nil:
		t.sendMessage(t.chatID, fmt.Sprintf("Project %s (%s): %s", project.ProjectID, project.Name, project.Status))
	case errors.Is(err, service.ErrNotFound):
		t.sendMessage(t.chatID, fmt.Sprintf("Project %s is not registered", projectID))
	default:
		t.logger.Error("Failed to get project for status command", zap.String("project_id", projectID), zap.Error(err))
		t.sendMessage(t.chatID, "Failed to look up project")
	}
}

const helpText = "Project gatekeeper bot\n\n" +
	"/status <project_id> - show the current status of a project\n" +
	"/help - this message\n\n" +
	"Blocks, unblocks and newly registered projects are reported here automatically."

func formatEvent(event service.ProjectEvent) string {
	p := event.Project
	switch event.Kind {
	case service.EventProvisioned:
		return fmt.Sprintf("New project registered by access check: %s (%s), status %s", p.ProjectID, p.Name, p.Status)
	case service.EventBlocked:
		return fmt.Sprintf("Project blocked: %s (%s)", p.ProjectID, p.Name)
	case service.EventUnblocked:
		return fmt.Sprintf("Project unblocked: %s (%s)", p.ProjectID, p.Name)
	default:
		return fmt.Sprintf("Project %s: %s", event.Kind, p.ProjectID)
	}
}

func (t *Telegram) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
