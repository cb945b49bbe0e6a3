package messages

import (
	"fmt"
	"strings"
	"time"
)

const ParseModeHTML = "HTML"

const (
	dateLayout     = "02.01.2006"
	dateTimeLayout = "02.01.2006 15:04"
)

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func Title(text string) string {
	return fmt.Sprintf("✨ <b>%s</b>", Escape(text))
}

// Rub formats a whole-ruble price.
func Rub(rubles int64) string {
	return fmt.Sprintf("%d₽", rubles)
}

// Kopecks formats an amount kept in minor units.
func Kopecks(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d₽", sign, amount/100, amount%100)
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format(dateLayout)
}

func DateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Нет"
	}
	return t.Local().Format(dateTimeLayout)
}

func Duration(days *int) string {
	if days == nil {
		return "бессрочно"
	}
	return fmt.Sprintf("%d дн.", *days)
}

func UserRef(username string, id int64) string {
	if username != "" {
		return "@" + Escape(username)
	}
	return fmt.Sprintf("ID: %d", id)
}

func ErrorDefault() string {
	return "🚫 <b>Ошибка</b>\nПопробуйте ещё раз."
}

func ErrorBackToMenu() string {
	return "🚫 <b>Произошла ошибка</b>\nВозвращаю вас в главное меню."
}

func ErrorUnsupportedMessageType() string {
	return "🤖 <b>Я так не умею</b>\nВоспользуйтесь кнопками меню."
}

func ErrorUnknownCommand() string {
	return "❓ <b>Команда не найдена</b>"
}

func ErrorInvalidButton() string {
	return "Кнопка устарела. Откройте раздел заново."
}

func AccessDenied() string {
	return "⛔ У вас нет доступа к этому разделу."
}

// InputRejected shows a validation message; the flow stays on the same step.
func InputRejected(msg string) string {
	return "⚠️ " + Escape(msg)
}

func FlowCancelled() string {
	return "Действие отменено."
}
