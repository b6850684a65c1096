package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data is "toggle:<yyyy-mm-dd>:<company id>" so a button keeps
// writing to the date it was drawn for. Page buttons use "page:<yyyy-mm-dd>:<page>".
const (
	toggleCallbackPrefix = "toggle:"
	pageCallbackPrefix   = "page:"
)

// gridPageSize keeps a keyboard well under Telegram's inline button limit.
const gridPageSize = 30

func toggleData(date holidays.Date, companyID uint) string {
	return fmt.Sprintf("%s%s:%d", toggleCallbackPrefix, date, companyID)
}

func pageData(date holidays.Date, page int) string {
	return fmt.Sprintf("%s%s:%d", pageCallbackPrefix, date, page)
}

func parseToggleData(data string) (holidays.Date, uint, error) {
	date, id, err := parseCallbackData(toggleCallbackPrefix, data)
	return date, uint(id), err
}

func parsePageData(data string) (holidays.Date, int, error) {
	date, page, err := parseCallbackData(pageCallbackPrefix, data)
	return date, int(page), err
}

func parseCallbackData(prefix, data string) (holidays.Date, uint64, error) {
	parts := strings.Split(strings.TrimPrefix(data, prefix), ":")
	if len(parts) != 2 {
		return holidays.Date{}, 0, fmt.Errorf("%w: callback data %q", models.ErrInvalidInput, data)
	}

	date, err := holidays.ParseDate(parts[0])
	if err != nil {
		return holidays.Date{}, 0, err
	}
	n, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return holidays.Date{}, 0, fmt.Errorf("%w: callback number %q", models.ErrInvalidInput, parts[1])
	}
	return date, n, nil
}

func gridPages(g *service.Grid) int {
	return max(1, (len(g.Cells)+gridPageSize-1)/gridPageSize)
}

// pageOf is the keyboard page that shows companyID.
func pageOf(g *service.Grid, companyID uint) int {
	for i, c := range g.Cells {
		if c.Company.ID == companyID {
			return i / gridPageSize
		}
	}
	return 0
}

func gridKeyboard(g *service.Grid, page int) tgbotapi.InlineKeyboardMarkup {
	pages := gridPages(g)
	page = min(max(page, 0), pages-1)
	start := page * gridPageSize
	end := min(start+gridPageSize, len(g.Cells))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range g.Cells[start:end] {
		mark := "❌"
		if c.WillAttend() {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+c.Company.Name, toggleData(g.Target.Date(), c.Company.ID)),
		))
	}

	if pages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page > 0 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("⬅️ %d/%d", page, pages), pageData(g.Target.Date(), page-1)))
		}
		if page < pages-1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d/%d ➡️", page+2, pages), pageData(g.Target.Date(), page+1)))
		}
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func gridText(g *service.Grid) string {
	text := formatTarget(g.Target) + "\nToque em uma empresa para alternar sim/não. Cada toque é gravado na hora."
	if g.Target.FellBack {
		text += "\nℹ️ Nenhum registro futuro encontrado, mostrando o próximo feriado."
	}
	return text
}

func (h *Handler) showGrid(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireOperator(ctx, chatID); !ok {
		return
	}

	grid, err := h.compact.Load(ctx)
	if err != nil {
		h.replyError(chatID, "carregar a grade", err)
		return
	}
	if len(grid.Cells) == 0 {
		h.reply(chatID, "📭 Nenhuma empresa cadastrada. Use /addempresa.")
		return
	}

	h.grids[chatID] = grid

	msg := tgbotapi.NewMessage(chatID, gridText(grid))
	msg.ReplyMarkup = gridKeyboard(grid, 0)
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send grid")
	}
}

// gridFor returns the grid the chat last saw for date, loading it when the
// bot no longer holds one (after a restart, or an older message).
func (h *Handler) gridFor(ctx context.Context, chatID int64, date holidays.Date) (*service.Grid, error) {
	if g, ok := h.grids[chatID]; ok && g.Target.Date() == date {
		return g, nil
	}

	g, err := h.compact.LoadFor(ctx, h.holidays.TargetOn(date, h.config.CompactStrategy))
	if err != nil {
		return nil, err
	}
	h.grids[chatID] = g
	return g, nil
}

func (h *Handler) handleToggle(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	date, companyID, err := parseToggleData(callback.Data)
	if err != nil {
		h.logger.WithError(err).Warn("Bad toggle callback")
		h.answerCallback(callback.ID, "Botão inválido.", true)
		return
	}

	operator, err := h.operators.RequireEditor(ctx, chatID)
	if err != nil {
		h.answerCallback(callback.ID, "Seu perfil não permite alterar a grade.", true)
		return
	}

	grid, err := h.gridFor(ctx, chatID, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load grid for toggle")
		h.answerCallback(callback.ID, "Erro ao carregar a grade.", true)
		return
	}

	cell, err := h.compact.Toggle(ctx, grid, companyID, operator)
	if err != nil {
		text := "Não foi possível gravar. O valor anterior foi mantido."
		if errors.Is(err, models.ErrConflict) {
			text = "Outro operador alterou esta empresa. A grade foi recarregada."
			if fresh, loadErr := h.compact.LoadFor(ctx, grid.Target); loadErr == nil {
				grid = fresh
				h.grids[chatID] = fresh
			}
		}
		h.answerCallback(callback.ID, text, true)
		h.redrawGrid(chatID, messageID, grid, pageOf(grid, companyID))
		return
	}

	answer := fmt.Sprintf("%s: %s", cell.Company.Name, cell.Status)
	h.answerCallback(callback.ID, answer, false)
	h.redrawGrid(chatID, messageID, grid, pageOf(grid, companyID))
}

// handleGridPage redraws the keyboard on another page of companies.
func (h *Handler) handleGridPage(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	date, page, err := parsePageData(callback.Data)
	if err != nil {
		h.logger.WithError(err).Warn("Bad page callback")
		h.answerCallback(callback.ID, "Botão inválido.", true)
		return
	}

	if _, err := h.operators.Get(ctx, chatID); err != nil {
		h.answerCallback(callback.ID, "Use /register para começar.", true)
		return
	}

	grid, err := h.gridFor(ctx, chatID, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load grid for page")
		h.answerCallback(callback.ID, "Erro ao carregar a grade.", true)
		return
	}

	h.answerCallback(callback.ID, "", false)
	h.redrawGrid(chatID, callback.Message.MessageID, grid, page)
}

func (h *Handler) redrawGrid(chatID int64, messageID int, grid *service.Grid, page int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, gridKeyboard(grid, page))
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to redraw grid")
	}
}
