package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showOperators lists every registered operator
func (h *Handler) showOperators(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	operators, err := h.operators.List(ctx)
	if err != nil {
		h.replyError(chatID, "listar operadores", err)
		return
	}

	h.reply(chatID, h.operators.FormatOperators(operators))
}

// setOperatorRole handles /setrole ID role
func (h *Handler) setOperatorRole(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	fields := strings.Fields(args)
	if len(fields) != 2 {
		h.reply(chatID, "❌ Use: /setrole ID perfil\nPerfis: viewer, supervisor, admin\nExemplo: /setrole 123456789 supervisor")
		return
	}

	targetChatID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.reply(chatID, "❌ ID inválido.\nO ID deve ser um número.")
		return
	}

	role, err := models.ParseRole(strings.ToLower(fields[1]))
	if err != nil {
		h.reply(chatID, "❌ Perfil inválido. Use viewer, supervisor ou admin.")
		return
	}

	if err := h.operators.SetRole(ctx, chatID, targetChatID, h.config.BaseAdminChatID, role); err != nil {
		h.replyError(chatID, "alterar perfil", err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Operador %d agora tem o perfil %s.", targetChatID, role))
}

func (h *Handler) showCompanies(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireOperator(ctx, chatID); !ok {
		return
	}

	companies, err := h.companies.List(ctx)
	if err != nil {
		h.replyError(chatID, "listar empresas", err)
		return
	}

	if len(companies) == 0 {
		h.reply(chatID, "📭 Nenhuma empresa cadastrada.")
		return
	}

	lines := []string{"🏢 Empresas:", ""}
	for _, c := range companies {
		lines = append(lines, fmt.Sprintf("• %s - ID: %d", c.Name, c.ID))
	}
	h.reply(chatID, strings.Join(lines, "\n"))
}

func (h *Handler) addCompany(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	if strings.TrimSpace(args) == "" {
		h.reply(chatID, "❌ Informe o nome da empresa.\nExemplo: /addempresa Claro")
		return
	}

	company, err := h.companies.Add(ctx, args)
	if err != nil {
		h.replyError(chatID, "cadastrar empresa", err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Empresa %s cadastrada com ID %d.", company.Name, company.ID))
}
