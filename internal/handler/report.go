package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/export"
	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxReportLines keeps report replies under Telegram's message size limit.
const maxReportLines = 40

const reportUsage = "❌ Use: /relatorio dd.mm.aaaa dd.mm.aaaa [empresa=ID] [status=sim|nao]\nExemplo: /relatorio 01.01.2025 31.12.2025 status=nao"

type reportArgs struct {
	filter service.ReportFilter
	format string
}

// parseReportArgs reads "from to [empresa=ID] [status=sim|nao] [formato=xlsx|csv]".
func parseReportArgs(args string) (reportArgs, error) {
	out := reportArgs{format: "xlsx"}

	fields := strings.Fields(args)
	if len(fields) < 2 {
		return out, fmt.Errorf("%w: expected two dates", models.ErrInvalidInput)
	}

	var err error
	if out.filter.From, err = holidays.ParseDisplayDate(fields[0]); err != nil {
		return out, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if out.filter.To, err = holidays.ParseDisplayDate(fields[1]); err != nil {
		return out, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	for _, f := range fields[2:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return out, fmt.Errorf("%w: unexpected argument %q", models.ErrInvalidInput, f)
		}

		switch strings.ToLower(key) {
		case "empresa":
			id, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return out, fmt.Errorf("%w: company id %q", models.ErrInvalidInput, value)
			}
			companyID := uint(id)
			out.filter.CompanyID = &companyID
		case "status":
			status, err := models.ParseStatus(value)
			if err != nil {
				return out, err
			}
			out.filter.Status = &status
		case "formato":
			value = strings.ToLower(value)
			if value != "xlsx" && value != "csv" {
				return out, fmt.Errorf("%w: format %q", models.ErrInvalidInput, value)
			}
			out.format = value
		default:
			return out, fmt.Errorf("%w: unknown option %q", models.ErrInvalidInput, key)
		}
	}

	return out, nil
}

func formatReport(filter service.ReportFilter, rows []service.ReportRow) string {
	header := fmt.Sprintf("📊 Operação de %s a %s", filter.From.Display(), filter.To.Display())
	if len(rows) == 0 {
		return header + "\n\n📭 Nenhum registro encontrado."
	}

	lines := []string{header, ""}
	for i, r := range rows {
		if i == maxReportLines {
			lines = append(lines, fmt.Sprintf("… e mais %d registro(s). Use /exportar para a lista completa.", len(rows)-i))
			break
		}

		mark := "❌"
		if r.WillAttend() {
			mark = "✅"
		}
		line := fmt.Sprintf("%s %s %s", r.Date.Display(), mark, r.CompanyName)
		if ura := models.StringValue(r.URAResponsible); ura != "" {
			line += " | URA: " + ura
		}
		if note := models.StringValue(r.Note); note != "" {
			line += " | Obs: " + note
		}
		if by := models.StringValue(r.AddedBy); by != "" {
			line += " | por " + by
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) queryReport(ctx context.Context, chatID int64, args string) (reportArgs, []service.ReportRow, bool) {
	if _, ok := h.requireOperator(ctx, chatID); !ok {
		return reportArgs{}, nil, false
	}

	parsed, err := parseReportArgs(args)
	if err != nil {
		h.reply(chatID, reportUsage)
		return reportArgs{}, nil, false
	}

	rows, err := h.reports.Query(ctx, parsed.filter)
	if err != nil {
		h.replyError(chatID, "gerar o relatório", err)
		return reportArgs{}, nil, false
	}
	return parsed, rows, true
}

func (h *Handler) showReport(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	parsed, rows, ok := h.queryReport(ctx, chatID, args)
	if !ok {
		return
	}
	h.reply(chatID, formatReport(parsed.filter, rows))
}

func (h *Handler) exportReport(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	parsed, rows, ok := h.queryReport(ctx, chatID, args)
	if !ok {
		return
	}

	var (
		data []byte
		err  error
	)
	if parsed.format == "csv" {
		data, err = export.CSV(rows, h.config.Location)
	} else {
		data, err = export.XLSX(rows, h.config.Location)
	}
	if err != nil {
		h.replyError(chatID, "exportar", err)
		return
	}

	name := fmt.Sprintf("operacao_feriados_%s_%s.%s", parsed.filter.From, parsed.filter.To, parsed.format)
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = fmt.Sprintf("📎 %d registro(s)", len(rows))
	if _, err := h.bot.Send(doc); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send export")
		h.reply(chatID, "❌ Erro ao enviar o arquivo.")
	}
}
