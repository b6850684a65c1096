package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/models"
	"attendance-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func formatSession(s *service.Session) string {
	var lines []string
	lines = append(lines, formatTarget(s.Target), "")

	for i, row := range s.Rows {
		mark := "❌ Não"
		if row.WillAttend() {
			mark = "✅ Sim"
		}
		if !row.Status.Decided() {
			mark += " (sem registro)"
		}

		line := fmt.Sprintf("%d. %s: %s", i+1, row.Company.Name, mark)
		if row.URAResponsible != "" {
			line += " | URA: " + row.URAResponsible
		}
		if row.Note != "" {
			line += " | Obs: " + row.Note
		}
		lines = append(lines, line)
	}

	if len(s.Rows) == 0 {
		lines = append(lines, "📭 Nenhuma empresa cadastrada. Use /addempresa.")
	}

	lines = append(lines, "", "Altere com /linha N sim|nao, /ura N texto, /obs N texto e grave com /salvar.")
	return strings.Join(lines, "\n")
}

func (h *Handler) openSession(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireEditor(ctx, chatID); !ok {
		return
	}

	session, err := h.detailed.Load(ctx)
	if err != nil {
		h.replyError(chatID, "abrir a planilha", err)
		return
	}

	h.sessions[chatID] = session
	h.reply(chatID, formatSession(session))
}

// session returns the chat's open session or tells the user to open one.
func (h *Handler) session(chatID int64) (*service.Session, bool) {
	session, ok := h.sessions[chatID]
	if !ok {
		h.reply(chatID, "❌ Nenhuma planilha aberta. Use /editar primeiro.")
	}
	return session, ok
}

// splitRowArgs splits "N rest" into the 1-based row number and the rest.
func splitRowArgs(args string) (int, string, error) {
	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", fmt.Errorf("%w: row number %q", models.ErrInvalidInput, fields[0])
	}
	rest := ""
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return n, rest, nil
}

func (h *Handler) setSessionLine(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	session, ok := h.session(chatID)
	if !ok {
		return
	}

	n, value, err := splitRowArgs(args)
	if err != nil {
		h.reply(chatID, "❌ Use: /linha N sim|nao\nExemplo: /linha 2 nao")
		return
	}

	status, err := models.ParseStatus(value)
	if err != nil {
		h.reply(chatID, "❌ Use sim ou não.\nExemplo: /linha 2 nao")
		return
	}

	if err := session.SetAttend(n, status == models.StatusAttend); err != nil {
		h.reply(chatID, errorText("alterar a linha", err))
		return
	}

	h.reply(chatID, formatSession(session))
}

// handleSessionLine accepts "N sim" without the /linha prefix while a session is open.
func (h *Handler) handleSessionLine(message *tgbotapi.Message) {
	h.setSessionLine(message, message.Text)
}

func (h *Handler) setSessionURA(message *tgbotapi.Message, args string) {
	h.setSessionText(message, args, "/ura 1 Maria", (*service.Session).SetURA)
}

func (h *Handler) setSessionNote(message *tgbotapi.Message, args string) {
	h.setSessionText(message, args, "/obs 1 abre às 10h", (*service.Session).SetNote)
}

func (h *Handler) setSessionText(message *tgbotapi.Message, args, example string, set func(*service.Session, int, string) error) {
	chatID := message.Chat.ID
	session, ok := h.session(chatID)
	if !ok {
		return
	}

	n, text, err := splitRowArgs(args)
	if err != nil {
		h.reply(chatID, "❌ Informe o número da linha.\nExemplo: "+example)
		return
	}

	if err := set(session, n, text); err != nil {
		h.reply(chatID, errorText("alterar a linha", err))
		return
	}

	h.reply(chatID, formatSession(session))
}

func (h *Handler) saveSession(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	session, ok := h.session(chatID)
	if !ok {
		return
	}

	operator, ok := h.requireEditor(ctx, chatID)
	if !ok {
		return
	}

	result, err := h.detailed.Save(ctx, session, operator)
	if err != nil {
		var saveErr *service.SaveError
		if errors.As(err, &saveErr) {
			h.logger.WithError(err).WithField("chat_id", chatID).Warn("Detailed save stopped")
			h.reply(chatID, fmt.Sprintf("⚠️ %d linha(s) gravada(s). Parou em %s.\n%s",
				saveErr.Saved, saveErr.Company.Name, errorText("gravar", saveErr.Err)))
			if errors.Is(err, models.ErrConflict) {
				delete(h.sessions, chatID)
				h.reply(chatID, "A planilha foi fechada. Use /editar para carregar os dados atuais.")
			}
			return
		}
		h.replyError(chatID, "gravar", err)
		return
	}

	delete(h.sessions, chatID)

	text := fmt.Sprintf("✅ %d linha(s) gravada(s) para %s.", result.Saved, formatHoliday(session.Target.Holiday))
	if result.RolledOver {
		text += "\n⚠️ O feriado ativo mudou enquanto você editava. Os dados foram gravados na data que estava aberta."
	}
	h.reply(chatID, text)
}

func (h *Handler) cancelSession(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.sessions[chatID]; !ok {
		h.reply(chatID, "Nenhuma planilha aberta.")
		return
	}

	delete(h.sessions, chatID)
	h.reply(chatID, "❌ Alterações descartadas.")
}
