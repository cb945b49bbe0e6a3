package messages

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

func AdminWelcome() string {
	return "🛠 <b>Добро пожаловать в админ-панель!</b>"
}

func AdminExit() string {
	return "Выход из админ-панели. Возвращаю вас в главное меню."
}

func AdminBackToPanel() string {
	return "Возвращаю вас в админ-панель."
}

func AdminNewCheck(payerName, username string, p *types.Payment) string {
	return fmt.Sprintf(
		"🔔 Новый чек на проверку от %s %s\n\n"+
			"Товар: %s\nТариф: %s\nСумма: %s\nEmail: %s\n\nID платежа: %d",
		Escape(payerName), UserRef(username, p.UserID), Escape(p.Product), Escape(p.Tariff), Rub(p.Price), Escape(p.Email), p.ID,
	)
}

func AdminPaymentApproved(p *types.Payment, promo *types.PromoCode, caption string) string {
	line := fmt.Sprintf("✅ Платёж %d подтверждён.\nID пользователя: %d.", p.ID, p.UserID)
	if promo != nil {
		line += fmt.Sprintf("\nВыдан промокод: <code>%s</code>", Escape(promo.Code))
	} else {
		line += "\nПромокод не выдан: нет свободных кодов."
	}
	return appendCaption(line, caption)
}

func AdminPaymentRejected(p *types.Payment, caption string) string {
	return appendCaption(fmt.Sprintf("❌ Платёж %d отклонён.\nID пользователя: %d.", p.ID, p.UserID), caption)
}

func AdminPaymentDecided(p *types.Payment, caption string) string {
	return appendCaption(fmt.Sprintf("Платёж %d уже обработан: %s.", p.ID, paymentStatus(p.Status)), caption)
}

func AdminNewWithdrawal(username string, r *types.WithdrawalRequest) string {
	return fmt.Sprintf(
		"🔔 Новая заявка на вывод средств от %s\n\nСумма: %s\nТелефон СБП: %s\nБанк: %s\nID пользователя: %d\nID запроса: %d",
		UserRef(username, r.UserID), Kopecks(r.Amount), Escape(r.Phone), Escape(r.Bank), r.UserID, r.ID,
	)
}

func AdminWithdrawalApproved(r *types.WithdrawalRequest, caption string) string {
	return appendCaption(fmt.Sprintf("✅ Заявка на вывод средств %d одобрена.\nID пользователя: %d.", r.ID, r.UserID), caption)
}

func AdminWithdrawalRejected(r *types.WithdrawalRequest, caption string) string {
	return appendCaption(fmt.Sprintf("❌ Заявка на вывод средств %d отклонена.\nID пользователя: %d. Средства возвращены на баланс.", r.ID, r.UserID), caption)
}

func AdminWithdrawalDecided(r *types.WithdrawalRequest, caption string) string {
	return appendCaption(fmt.Sprintf("Заявка на вывод средств %d уже обработана: %s.", r.ID, withdrawalStatus(r.Status)), caption)
}

func WithdrawalAlreadyDecided() string {
	return "Эта заявка уже обработана."
}

func appendCaption(line, caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return line
	}
	return line + "\n\n" + Escape(caption)
}

func paymentStatus(s types.PaymentStatus) string {
	switch s {
	case types.PaymentCompleted:
		return "подтверждён"
	case types.PaymentRejected:
		return "отклонён"
	default:
		return "ожидает проверки"
	}
}

func PaymentsChoosePeriod() string {
	return "📊 <b>Оплаты</b>\n\nВыберите период для просмотра успешных оплат:"
}

func periodName(p types.Period) string {
	switch p {
	case types.PeriodToday:
		return "за сегодня"
	case types.PeriodWeek:
		return "за неделю"
	case types.PeriodMonth:
		return "за месяц"
	default:
		return "за всё время"
	}
}

func NoPayments(p types.Period) string {
	return "Нет платежей " + periodName(p) + "."
}

// PaymentsReport lists completed payments. users maps internal user ids to
// usernames; a missing entry falls back to the id.
func PaymentsReport(p types.Period, payments []types.Payment, users map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 <b>Успешные оплаты %s:</b>\n\n", periodName(p))
	var total int64
	for i, pay := range payments {
		promo := pay.PromoCode
		if promo == "" {
			promo = "—"
		}
		fmt.Fprintf(&b,
			"%d. <b>#%d</b> | 👤 <b>%s</b> | 📦 <b>%s</b> (%s) | 🪙 <b>%s</b> | 📅 <b>%s</b>\n🔑 <b>Промокод:</b> <code>%s</code>\n\n",
			i+1, pay.ID, UserRef(users[pay.UserID], pay.UserID), Escape(pay.Product), Escape(pay.Tariff),
			Rub(pay.Price), Date(pay.CreatedAt), Escape(promo),
		)
		total += pay.Price
	}
	fmt.Fprintf(&b, "Итого: <b>%s</b> (%d шт.)", Rub(total), len(payments))
	return b.String()
}

func PaymentDetails(p *types.Payment, username string) string {
	promo := p.PromoCode
	if promo == "" {
		promo = "—"
	}
	email := p.Email
	if email == "" {
		email = "N/A"
	}
	return fmt.Sprintf(
		"<b>Платёж #%d</b>\n\nПользователь: %s\nПродукт: %s\nТариф: %s\nСумма: %s\nСтатус: %s\nEmail: %s\nПромокод: <code>%s</code>\nДата создания: %s\nДата обновления: %s",
		p.ID, UserRef(username, p.UserID), Escape(p.Product), Escape(p.Tariff), Rub(p.Price),
		paymentStatus(p.Status), Escape(email), Escape(promo), DateTime(&p.CreatedAt), DateTime(p.UpdatedAt),
	)
}

func PendingPayments(n int) string {
	if n == 0 {
		return "Нет платежей, ожидающих проверки."
	}
	return fmt.Sprintf("⏳ Платежей на проверке: %d. Чеки отправлены ниже.", n)
}

func PendingPaymentNoCheck(p *types.Payment) string {
	return fmt.Sprintf("Платёж #%d (%s, %s): чек ещё не загружен.", p.ID, Escape(p.Product), Escape(p.Tariff))
}

func PendingWithdrawals(n int) string {
	if n == 0 {
		return "Нет заявок на вывод, ожидающих решения."
	}
	return fmt.Sprintf("💸 Заявок на вывод: %d.", n)
}

func AdminProducts(empty bool) string {
	if empty {
		return "📦 Товаров пока нет. Добавьте первый."
	}
	return "📦 Выберите товар для управления или добавьте новый:"
}

func AdminProductCard(p *types.Product, plans, unusedPromos int) string {
	status := "показан на витрине"
	if !p.Active {
		status = "скрыт из витрины"
	}
	return fmt.Sprintf(
		"Управление товаром: <b>%s</b>\n\nОписание: %s\n\nСтатус: %s\nТарифов: %d\nСвободных промокодов: %d",
		Escape(p.Name), Escape(p.Description), status, plans, unusedPromos,
	)
}

func ProductEnterName() string {
	return "Введите название нового товара:"
}

func ProductEnterDescription() string {
	return "Введите описание для нового товара:"
}

func EmptyDescription() string {
	return "Описание не может быть пустым."
}

func ProductEnterPhoto() string {
	return "Теперь отправьте фото для нового товара:"
}

func ProductSendPhoto() string {
	return "Нужна фотография. Отправьте фото товара."
}

func ProductAdded(name string) string {
	return fmt.Sprintf("✅ Товар <b>%s</b> успешно добавлен!", Escape(name))
}

func ProductExists(name string) string {
	return fmt.Sprintf("Товар <b>%s</b> уже существует. Введите другое название:", Escape(name))
}

func ProductEnterNewDescription(name string) string {
	return fmt.Sprintf("Введите новое описание для товара <b>%s</b>:", Escape(name))
}

func ProductDescriptionUpdated() string {
	return "✅ Описание товара успешно обновлено!"
}

func ProductEnterNewPhoto(name string) string {
	return fmt.Sprintf("Отправьте новое фото для товара <b>%s</b>:", Escape(name))
}

func ProductPhotoUpdated() string {
	return "✅ Фото товара успешно обновлено!"
}

func ProductToggled(name string, active bool) string {
	if active {
		return fmt.Sprintf("Товар %s теперь показан на витрине.", name)
	}
	return fmt.Sprintf("Товар %s теперь скрыт из витрины.", name)
}

func ProductDeleteConfirm(name string) string {
	return fmt.Sprintf("Вы уверены, что хотите удалить товар <b>%s</b>? Это действие необратимо!", Escape(name))
}

func ProductDeleted(name string) string {
	return fmt.Sprintf("Товар <b>%s</b> успешно удалён.", Escape(name))
}

func ProductDeleteCancelled(name string) string {
	return fmt.Sprintf("Удаление товара <b>%s</b> отменено.", Escape(name))
}

func PlansList(product string, plans []types.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Тарифные планы для товара <b>%s</b>:\n", Escape(product))
	if len(plans) == 0 {
		b.WriteString("\nТарифов пока нет.")
	}
	for _, p := range plans {
		fmt.Fprintf(&b, "\n• %s (%s) - %s", Escape(p.Name), Duration(p.Days), Rub(p.Price))
	}
	return b.String()
}

func PlanEnterInput(product string) string {
	return fmt.Sprintf(
		"Введите данные для нового тарифа для товара <b>%s</b> в формате:\n\n"+
			"<code>Название тарифа;Количество дней;Цена</code>\n\n"+
			"<i>Пример: Базовый;30;1000</i>\n<i>Для бессрочного тарифа: Премиум;;2500</i>",
		Escape(product),
	)
}

func PlanAdded(name, product string) string {
	return fmt.Sprintf("✅ Тариф <b>%s</b> для товара <b>%s</b> успешно добавлен!", Escape(name), Escape(product))
}

func PlanDeleted() string {
	return "Тариф удалён."
}

func PromoEnterCodes(product string) string {
	return fmt.Sprintf("Отправьте список промокодов для товара <b>%s</b>, каждый с новой строки:", Escape(product))
}

func PromoNoneSent() string {
	return "Вы не отправили ни одного промокода. Пожалуйста, попробуйте ещё раз."
}

func PromoAdded(res types.BulkAddResult, invalid []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Добавлено %d новых промокодов.\n", res.Added)
	if len(res.Duplicates) > 0 {
		b.WriteString("\nСледующие промокоды уже существуют и не были добавлены:\n")
		for _, d := range res.Duplicates {
			fmt.Fprintf(&b, "- <code>%s</code>\n", Escape(d))
		}
	}
	if len(invalid) > 0 {
		b.WriteString("\nНеверный формат (от 3 символов: латиница, цифры, _ и -):\n")
		for _, c := range invalid {
			fmt.Fprintf(&b, "- <code>%s</code>\n", Escape(c))
		}
	}
	return strings.TrimSpace(b.String())
}

func promoFilterName(f types.PromoFilter) string {
	switch f {
	case types.PromoFilterUnused:
		return "невыданные"
	case types.PromoFilterUsed:
		return "выданные"
	default:
		return "все"
	}
}

// PromoList renders codes with their issue details. users maps internal user
// ids to usernames.
func PromoList(product string, filter types.PromoFilter, codes []types.PromoCode, users map[int64]string) string {
	if len(codes) == 0 {
		return fmt.Sprintf("Нет промокодов (%s) для товара <b>%s</b>.", promoFilterName(filter), Escape(product))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Промокоды для %s (%s):</b>\n\n", Escape(product), promoFilterName(filter))
	for _, c := range codes {
		status := "Не выдан"
		if c.Status == types.PromoIssued {
			status = "Выдан"
		}
		fmt.Fprintf(&b, "<code>%s</code> - Статус: %s\n", Escape(c.Code), status)
		if c.Status == types.PromoIssued && c.IssuedToUserID != nil {
			email := c.IssuedToEmail
			if email == "" {
				email = "N/A"
			}
			fmt.Fprintf(&b, "  Кому выдан: %s (Email: %s)\n", UserRef(users[*c.IssuedToUserID], *c.IssuedToUserID), Escape(email))
			fmt.Fprintf(&b, "  Дата выдачи: %s\n", DateTime(c.IssuedAt))
		}
	}
	return b.String()
}

func PromoDeleted() string {
	return "Промокод удалён."
}

func PromoIssuedCannotDelete() string {
	return "Выданный промокод удалить нельзя."
}

func MaterialsAdmin(product string, mats []types.Material) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Материалы для %s:</b>\n\n", Escape(product))
	if len(mats) == 0 {
		b.WriteString("Нет доступных материалов.")
	}
	for _, m := range mats {
		fmt.Fprintf(&b, "- <b>%s</b> [ID: %d]\n", Escape(m.Title), m.ID)
	}
	return b.String()
}

func MaterialEnterTitle(product string) string {
	return fmt.Sprintf("Введите заголовок для нового материала для товара <b>%s</b>:", Escape(product))
}

func MaterialEnterContent() string {
	return "Отправьте текст и/или файл для материала. Если текста нет, напишите «нет»."
}

func MaterialNeedContent() string {
	return "Вы должны предоставить либо текст, либо файл."
}

func MaterialAdded(title string) string {
	return fmt.Sprintf("✅ Материал «%s» добавлен.\n\nВыберите дальнейшее действие:", Escape(title))
}

func MaterialDeleted() string {
	return "Материал удалён."
}

func EmptyTitle() string {
	return "Заголовок не может быть пустым."
}

func Requisites(current string) string {
	if strings.TrimSpace(current) == "" {
		current = "Реквизиты ещё не установлены."
	}
	return fmt.Sprintf("💳 Текущие реквизиты:\n<code>%s</code>", Escape(current))
}

func RequisitesEnter() string {
	return "Отправьте новые реквизиты. Например: «Сбербанк: 1234 5678 9012 3456»"
}

func RequisitesUpdated() string {
	return "✅ Реквизиты обновлены!"
}

func BroadcastEnterText() string {
	return "📢 Отправьте сообщение для рассылки всем пользователям:"
}

func BroadcastPreview(text string) string {
	return fmt.Sprintf("Вы собираетесь отправить следующее сообщение:\n\n<code>%s</code>\n\nПодтвердите отправку:", Escape(text))
}

func BroadcastQueued() string {
	return "⏳ Рассылка поставлена в очередь. Я пришлю отчёт, когда она завершится."
}

func BroadcastCancelled() string {
	return "Рассылка отменена."
}

func BroadcastMissingText() string {
	return "Ошибка: текст рассылки не найден."
}

func BroadcastReport(delivered, failed int) string {
	return fmt.Sprintf("✅ <b>Рассылка завершена</b>\n\nДоставлено: %d\nНе доставлено: %d", delivered, failed)
}

func BroadcastInterrupted(delivered, total int) string {
	return fmt.Sprintf("⚠️ <b>Рассылка прервана</b> перезапуском бота.\nДоставлено: %d из %d", delivered, total)
}

func BroadcastHistory(items []types.Broadcast) string {
	if len(items) == 0 {
		return "Рассылок ещё не было."
	}
	var b strings.Builder
	b.WriteString("📜 <b>История рассылок</b>\n\n")
	for _, it := range items {
		text := []rune(it.Text)
		if len(text) > 60 {
			text = append(text[:60], '…')
		}
		fmt.Fprintf(&b, "%s: %s\nДоставлено: %d, не доставлено: %d\n\n",
			DateTime(&it.SentAt), Escape(string(text)), it.Delivered, it.Failed)
	}
	return strings.TrimSpace(b.String())
}
