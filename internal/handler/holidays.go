package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var holidayLabels = map[string]string{
	holidays.NewYear:         "Confraternização Universal",
	holidays.CityAnniversary: "Aniversário da Cidade",
	holidays.Carnival:        "Carnaval",
	holidays.GoodFriday:      "Sexta-feira Santa",
	holidays.LaborDay:        "Dia do Trabalho",
	holidays.CorpusChristi:   "Corpus Christi",
	holidays.IndependenceDay: "Independência do Brasil",
	holidays.PatronSaintDay:  "Nossa Senhora Aparecida",
	holidays.RepublicDay:     "Proclamação da República",
	holidays.BlackAwareness:  "Dia da Consciência Negra",
	holidays.Christmas:       "Natal",
}

func holidayLabel(name string) string {
	if label, ok := holidayLabels[name]; ok {
		return label
	}
	return name
}

var weekdays = [...]string{"domingo", "segunda", "terça", "quarta", "quinta", "sexta", "sábado"}

func formatHoliday(h holidays.Holiday) string {
	return fmt.Sprintf("%s (%s, %s)", holidayLabel(h.Name), h.Date.Display(), weekdays[h.Date.Weekday()])
}

func formatTarget(t service.Target) string {
	return "📅 " + formatHoliday(t.Holiday)
}

func (h *Handler) listHolidays(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	year := h.holidays.Today().Year

	if args = strings.TrimSpace(args); args != "" {
		y, err := strconv.Atoi(args)
		if err != nil || y < 1583 || y > 9999 {
			h.reply(chatID, "❌ Ano inválido.\nExemplo: /feriados 2026")
			return
		}
		year = y
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("📅 Feriados de %d:", year), "")
	for _, hol := range h.holidays.List(year) {
		lines = append(lines, "• "+formatHoliday(hol))
	}

	h.reply(chatID, strings.Join(lines, "\n"))
}

func (h *Handler) showActiveHoliday(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	detailed, err := h.holidays.Resolve(ctx, h.config.DetailedStrategy)
	if err != nil {
		h.replyError(chatID, "buscar o feriado", err)
		return
	}
	compact, err := h.holidays.Resolve(ctx, h.config.CompactStrategy)
	if err != nil {
		h.replyError(chatID, "buscar o feriado", err)
		return
	}

	lines := []string{
		"📝 Edição detalhada: " + formatHoliday(detailed.Holiday),
		"🔘 Grade rápida: " + formatHoliday(compact.Holiday),
		"",
		"Próximos:",
	}
	for _, hol := range h.holidays.Upcoming(4)[1:] {
		lines = append(lines, "• "+formatHoliday(hol))
	}

	h.reply(chatID, strings.Join(lines, "\n"))
}

func (h *Handler) checkDay(message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	date, err := holidays.ParseDisplayDate(strings.TrimSpace(args))
	if err != nil {
		h.reply(chatID, "❌ Data inválida.\nExemplo: /checkday 20.11.2025")
		return
	}

	info := h.holidays.CheckDay(date)
	text := fmt.Sprintf("📅 %s (%s)\n", date.Display(), weekdays[date.Weekday()])
	switch {
	case info.Holiday != nil:
		text += "🎉 Feriado: " + holidayLabel(info.Holiday.Name)
	case info.Workday:
		text += "💼 Dia útil"
	default:
		text += "🛋 Fim de semana"
	}

	h.reply(chatID, text)
}
