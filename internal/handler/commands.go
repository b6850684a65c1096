package handler

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.sendStartMessage(ctx, message)
	case "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(ctx, message)
	case "register":
		h.register(ctx, message)
	case "perfil":
		h.showProfile(ctx, message)

	// Holiday calendar (everyone)
	case "feriados":
		h.listHolidays(message, args)
	case "feriado":
		h.showActiveHoliday(ctx, message)
	case "checkday":
		h.checkDay(message, args)

	// Detailed editor (supervisors and admins)
	case "editar":
		h.openSession(ctx, message)
	case "linha":
		h.setSessionLine(message, args)
	case "ura":
		h.setSessionURA(message, args)
	case "obs":
		h.setSessionNote(message, args)
	case "salvar":
		h.saveSession(ctx, message)
	case "cancelar":
		h.cancelSession(message)

	// Compact grid
	case "grade":
		h.showGrid(ctx, message)

	// Reports (everyone)
	case "relatorio":
		h.showReport(ctx, message, args)
	case "exportar":
		h.exportReport(ctx, message, args)

	// Administration
	case "operadores":
		h.showOperators(ctx, message)
	case "setrole":
		h.setOperatorRole(ctx, message, args)
	case "empresas":
		h.showCompanies(ctx, message)
	case "addempresa":
		h.addCompany(ctx, message, args)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, "❌ Comando desconhecido. Use /help para ver a lista de comandos.")
}

const helpText = `📋 Comandos disponíveis:

👤 Cadastro:
/register - Cadastrar ou atualizar seu nome
/perfil - Mostrar seu cadastro e perfil de acesso

📅 Feriados:
/feriados [ano] - Lista de feriados do ano
/feriado - Feriado em edição agora
/checkday dd.mm.aaaa - Verificar se um dia é útil
    Exemplo: /checkday 20.11.2025

📝 Edição detalhada (supervisores):
/editar - Abrir a planilha do feriado ativo
/linha N sim|nao - Definir se a empresa N vai operar
    Também vale mandar só "N sim" com a planilha aberta
/ura N texto - Responsável pela URA da empresa N
/obs N texto - Observação da empresa N
/salvar - Gravar todas as linhas
/cancelar - Descartar a planilha aberta

🔘 Grade rápida (supervisores):
/grade - Botões sim/não por empresa, cada toque grava na hora

📊 Relatórios:
/relatorio dd.mm.aaaa dd.mm.aaaa [empresa=ID] [status=sim|nao]
/exportar dd.mm.aaaa dd.mm.aaaa [empresa=ID] [status=sim|nao] [formato=xlsx|csv]

💡 Empresas sem registro aparecem como "sim" na edição detalhada e como "não" na grade rápida.`

func (h *Handler) sendStartMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From != nil {
		if _, err := h.operators.Register(ctx, message.Chat.ID, message.From.UserName, message.From.FirstName, message.From.LastName); err != nil {
			h.logger.WithError(err).Warn("Auto registration on /start failed")
		}
	}

	h.reply(message.Chat.ID, "👋 Olá! Eu organizo a operação das empresas nos feriados.\n\n"+helpText)
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.reply(message.Chat.ID, helpText)
}

func (h *Handler) sendAdminHelpMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	text := `📋 Comandos de administração:

👑 Operadores:
/operadores - Listar operadores
/setrole ID perfil - Alterar perfil (viewer, supervisor, admin)

🏢 Empresas:
/empresas - Listar empresas
/addempresa nome - Cadastrar empresa`

	if h.config.BaseAdminChatID != 0 {
		text += fmt.Sprintf("\n\n🔧 ID do administrador principal: %d", h.config.BaseAdminChatID)
	}

	h.reply(chatID, text)
}
