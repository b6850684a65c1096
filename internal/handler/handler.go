package handler

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"attendance-bot/internal/config"
	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	bot       telegram.Sender
	operators *service.OperatorService
	companies *service.CompanyService
	holidays  *service.HolidayService
	detailed  *service.DetailedEditor
	compact   *service.CompactEditor
	reports   *service.ReportService
	config    *config.BotConfig
	logger    *logrus.Logger

	// Open detailed editor sessions and the last grid shown, per chat.
	// Updates are handled one at a time, so no locking.
	sessions map[int64]*service.Session
	grids    map[int64]*service.Grid
}

func NewHandler(
	bot telegram.Sender,
	operators *service.OperatorService,
	companies *service.CompanyService,
	holidays *service.HolidayService,
	detailed *service.DetailedEditor,
	compact *service.CompactEditor,
	reports *service.ReportService,
	cfg *config.BotConfig,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		operators: operators,
		companies: companies,
		holidays:  holidays,
		detailed:  detailed,
		compact:   compact,
		reports:   reports,
		config:    cfg,
		logger:    logger,
		sessions:  make(map[int64]*service.Session),
		grids:     make(map[int64]*service.Grid),
	}
}

// HandleUpdates processes updates until the channel closes or ctx is cancelled.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Inline buttons of the compact grid
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, toggleCallbackPrefix):
		h.handleToggle(ctx, callback)
		return
	case strings.HasPrefix(data, pageCallbackPrefix):
		h.handleGridPage(ctx, callback)
		return
	}

	h.logger.WithField("data", data).Warn("Unknown callback data")
	h.answerCallback(callback.ID, "", false)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From != nil {
		h.logger.Infof("[%s] %s", message.From.UserName, message.Text)
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	// Plain "N sim" lines edit the open detailed session
	if _, open := h.sessions[message.Chat.ID]; open {
		h.handleSessionLine(message)
		return
	}

	h.reply(message.Chat.ID, "Use /help para ver os comandos disponíveis.")
}

// maxMessageLen is Telegram's limit for a message text. Counting bytes keeps
// parts under it whatever the encoding Telegram counts in.
const maxMessageLen = 4096

// reply sends text, split into several messages when it is too long for one.
func (h *Handler) reply(chatID int64, text string) {
	for _, part := range splitMessage(text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := h.bot.Send(msg); err != nil {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
			return
		}
	}
}

// splitMessage cuts text into parts of at most limit bytes, breaking between
// lines. A single line longer than limit is cut on a rune boundary.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}

		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()

	return parts
}

func (h *Handler) answerCallback(id, text string, alert bool) {
	cfg := tgbotapi.NewCallback(id, text)
	cfg.ShowAlert = alert
	if _, err := h.bot.Request(cfg); err != nil {
		h.logger.WithError(err).Warn("Failed to answer callback")
	}
}

// errorText maps service errors to operator facing messages.
func errorText(action string, err error) string {
	switch {
	case errors.Is(err, models.ErrForbidden):
		return "❌ Acesso negado. Seu perfil não permite esta ação."
	case errors.Is(err, models.ErrConflict):
		return "⚠️ Outro operador alterou estes dados enquanto você editava. Recarregue e tente de novo."
	case errors.Is(err, models.ErrInvalidInput):
		return "❌ Dados inválidos: " + err.Error()
	default:
		return "❌ Erro ao " + action + ": " + err.Error()
	}
}

func (h *Handler) replyError(chatID int64, action string, err error) {
	h.logger.WithError(err).WithField("chat_id", chatID).Warn("Command failed: " + action)
	h.reply(chatID, errorText(action, err))
}

// requireOperator loads the caller and tells unregistered chats how to register.
func (h *Handler) requireOperator(ctx context.Context, chatID int64) (*models.Operator, bool) {
	return h.checkAccess(chatID)(h.operators.Get(ctx, chatID))
}

func (h *Handler) requireEditor(ctx context.Context, chatID int64) (*models.Operator, bool) {
	return h.checkAccess(chatID)(h.operators.RequireEditor(ctx, chatID))
}

func (h *Handler) requireAdmin(ctx context.Context, chatID int64) (*models.Operator, bool) {
	return h.checkAccess(chatID)(h.operators.RequireAdmin(ctx, chatID))
}

func (h *Handler) checkAccess(chatID int64) func(*models.Operator, error) (*models.Operator, bool) {
	return func(operator *models.Operator, err error) (*models.Operator, bool) {
		switch {
		case err == nil:
			return operator, true
		case errors.Is(err, models.ErrNotFound):
			h.reply(chatID, "❌ Você ainda não está cadastrado. Use /register.")
		case errors.Is(err, models.ErrForbidden):
			h.reply(chatID, errorText("", err))
		default:
			h.replyError(chatID, "verificar permissões", err)
		}
		return nil, false
	}
}
