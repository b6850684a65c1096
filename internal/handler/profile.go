package handler

import (
	"context"
	"fmt"

	"attendance-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// register creates or refreshes the caller's operator record from their Telegram profile.
func (h *Handler) register(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if message.From == nil {
		h.reply(chatID, "❌ Não foi possível ler seu perfil do Telegram.")
		return
	}

	operator, err := h.operators.Register(ctx, chatID, message.From.UserName, message.From.FirstName, message.From.LastName)
	if err != nil {
		h.replyError(chatID, "cadastrar", err)
		return
	}

	h.reply(chatID, "✅ Cadastro atualizado!\n\n"+formatProfile(operator))
}

func (h *Handler) showProfile(ctx context.Context, message *tgbotapi.Message) {
	operator, ok := h.requireOperator(ctx, message.Chat.ID)
	if !ok {
		return
	}
	h.reply(message.Chat.ID, formatProfile(operator))
}

func formatProfile(o *models.Operator) string {
	access := "👤 Consulta (relatórios e feriados)"
	switch o.Role {
	case models.RoleSupervisor:
		access = "🛠 Supervisor (pode editar a operação)"
	case models.RoleAdmin:
		access = "👑 Administrador"
	}

	return fmt.Sprintf("📋 Seu cadastro:\n\n👤 %s\n🆔 %d\n🔑 %s", o.Identity(), o.ChatID, access)
}
