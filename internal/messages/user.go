package messages

import (
	"fmt"
	"strings"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

func Welcome() string {
	return "👋 <b>Добро пожаловать!</b>\nВыберите раздел в меню ниже."
}

func MainMenuText() string {
	return "🏠 <b>Главное меню</b>"
}

func ChannelRequired() string {
	return "📣 Для доступа к этому разделу подпишитесь на наш канал. После этого нажмите кнопку ниже."
}

func ChannelConfirmed() string {
	return "✅ Вы успешно подписались! Добро пожаловать!"
}

func ChannelNotSubscribed() string {
	return "Вы ещё не подписались на канал."
}

func StoreProducts(empty bool) string {
	if empty {
		return "🛍️ <b>Витрина</b>\n\nПока нет доступных товаров."
	}
	return "🛍️ <b>Наши продукты:</b>"
}

func ProductCard(p *types.Product, hasPlans bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", Escape(p.Name))
	if p.Description != "" {
		fmt.Fprintf(&b, "Описание: %s\n\n", Escape(p.Description))
	}
	if hasPlans {
		b.WriteString("Выберите тариф:")
	} else {
		b.WriteString("Тарифы для этого товара пока не добавлены.")
	}
	return b.String()
}

func PlanButton(p types.Plan) string {
	return fmt.Sprintf("%s - %s", p.Name, Rub(p.Price))
}

func ProductNotFound() string {
	return "Такой продукт не найден."
}

func PlanNotFound() string {
	return "Такой тарифный план не найден."
}

// PurchaseEnterEmail asks for the contact email of a checkout. A known email
// is shown so the buyer can send it again or give another one.
func PurchaseEnterEmail(product, plan string, price int64, known string) string {
	text := fmt.Sprintf(
		"Для оформления подписки на <b>%s (%s)</b> стоимостью <b>%s</b>\n\n"+
			"Пожалуйста, введите ваш Email для связи. На него будет отправлена информация по подписке.",
		Escape(product), Escape(plan), Rub(price),
	)
	if known = strings.TrimSpace(known); known != "" {
		text += fmt.Sprintf("\n\nТекущий Email: <code>%s</code>", Escape(known))
	}
	return text
}

func PurchaseRequisites(product, plan string, price int64, requisites string) string {
	if strings.TrimSpace(requisites) == "" {
		requisites = "Реквизиты ещё не установлены."
	}
	return fmt.Sprintf(
		"Для оформления подписки на <b>%s</b> (%s)\n\n"+
			"<b>Сумма к оплате:</b> %s\n"+
			"<b>Реквизиты для оплаты:</b>\n<code>%s</code>\n\n"+
			"Пожалуйста, произведите оплату и нажмите кнопку «Я оплатил».",
		Escape(product), Escape(plan), Rub(price), Escape(requisites),
	)
}

func PurchaseUploadCheck() string {
	return "📎 Пожалуйста, отправьте фото чека об оплате. После проверки администратором вы получите доступ к материалам."
}

func PurchaseSendPhoto() string {
	return "Отправьте чек фотографией или нажмите «Отменить оплату»."
}

func PurchaseCheckSent() string {
	return "✅ Ваш чек отправлен на проверку админу. Ожидайте подтверждения.\nЕсли нужно, можно отправить другое фото до решения администратора."
}

func PurchaseCancelled() string {
	return "Оплата отменена."
}

func PaymentNotFound() string {
	return "Ошибка: не удалось найти платёж. Пожалуйста, попробуйте снова."
}

func PaymentAlreadyReviewed() string {
	return "Этот платёж уже проверен администратором."
}

func FreePlanActivated(product, plan string) string {
	return fmt.Sprintf("🎉 Подписка на <b>%s</b> (%s) успешно активирована!", Escape(product), Escape(plan))
}

func PaymentApproved(p *types.Payment, promo string) string {
	if promo == "" {
		promo = "Не назначен"
	}
	return fmt.Sprintf(
		"✅ Ваш платёж ID %d на сумму %s подтверждён!\n\n"+
			"Товар: <b>%s</b>\n"+
			"Тариф: <b>%s</b>\n"+
			"<b>Ваш промокод:</b> <code>%s</code>\n\n"+
			"Инструкция по активации:\n"+
			"1. Перейдите на сайт %s\n"+
			"2. Введите промокод в личном кабинете\n"+
			"3. Наслаждайтесь всеми возможностями подписки!\n\n"+
			"Если возникнут вопросы, напишите в поддержку.",
		p.ID, Rub(p.Price), Escape(p.Product), Escape(p.Tariff), Escape(promo), Escape(p.Product),
	)
}

func PaymentRejected(p *types.Payment) string {
	return fmt.Sprintf("❌ Ваш платёж ID %d на сумму %s отклонён. Пожалуйста, свяжитесь с поддержкой для уточнения.", p.ID, Rub(p.Price))
}

func SubscriptionsSummary(active int, hasHistory bool) string {
	if active == 0 && !hasHistory {
		return "У вас пока нет истории платежей и активных подписок."
	}
	return fmt.Sprintf("📂 <b>Мои подписки</b>\n\nАктивных подписок: %d\n\nНажмите «История заказов» для просмотра подробной информации.", active)
}

func ActiveSubscriptionEntry(s types.Subscription, promo string) string {
	if promo == "" {
		promo = "Не назначен"
	}
	end := "Бессрочно"
	if s.EndDate != nil {
		end = Date(*s.EndDate)
	}
	return fmt.Sprintf(
		"📦 <b>Товар:</b> %s\n💡 <b>Тариф:</b> %s\n📅 <b>Действует до:</b> %s\n🔑 <b>Промокод:</b> <code>%s</code>\n<b>Статус:</b> Активна\n",
		Escape(s.Product), Escape(s.Tariff), end, Escape(promo),
	)
}

func ExpiredPaymentEntry(p types.Payment) string {
	promo := p.PromoCode
	if promo == "" {
		promo = "Не назначен"
	}
	return fmt.Sprintf(
		"📦 <b>Товар:</b> %s\n💡 <b>Тариф:</b> %s\n💰 <b>Оплачено:</b> %s\n📅 <b>Дата оплаты:</b> %s\n🔑 <b>Промокод:</b> <code>%s</code>\n<b>Статус:</b> Истекла\n",
		Escape(p.Product), Escape(p.Tariff), Rub(p.Price), Date(p.CreatedAt), Escape(promo),
	)
}

func RejectedPaymentEntry(p types.Payment) string {
	return fmt.Sprintf(
		"• <b>Товар:</b> %s (%s)\n  <b>Цена:</b> %s\n  <b>Статус:</b> ❌ Отклонён\n  <b>Дата:</b> %s\n",
		Escape(p.Product), Escape(p.Tariff), Rub(p.Price), Date(p.CreatedAt),
	)
}

// OrderHistory joins the history sections, skipping empty ones.
func OrderHistory(active, expired, rejected []string) string {
	if len(active)+len(expired)+len(rejected) == 0 {
		return "У вас пока нет истории платежей и активных подписок."
	}
	var b strings.Builder
	b.WriteString("📜 <b>История заказов</b>\n\n")
	if len(active) > 0 {
		b.WriteString("<b>Активные подписки:</b>\n\n")
		b.WriteString(strings.Join(active, "\n"))
		b.WriteString("\n")
	}
	if len(expired) > 0 {
		b.WriteString("<b>Завершённые заказы:</b>\n\n")
		b.WriteString(strings.Join(expired, "\n"))
		b.WriteString("\n")
	}
	if len(rejected) > 0 {
		b.WriteString("<b>Отклонённые платежи:</b>\n\n")
		b.WriteString(strings.Join(rejected, "\n"))
	}
	return strings.TrimSpace(b.String())
}

func MaterialsChooseProduct(empty bool) string {
	if empty {
		return "🎁 У вас пока нет активных подписок с материалами."
	}
	return "🎁 Выберите продукт для просмотра материалов:"
}

func MaterialsForProduct(product string, empty bool) string {
	if empty {
		return fmt.Sprintf("Для <b>%s</b> пока нет материалов.", Escape(product))
	}
	return fmt.Sprintf("Материалы для <b>%s</b>:", Escape(product))
}

func MaterialCaption(m *types.Material) string {
	text := fmt.Sprintf("<b>%s</b>", Escape(m.Title))
	if m.Text != "" {
		text += "\n\n" + Escape(m.Text)
	}
	return text
}

func MaterialNoAccess() string {
	return "Материалы доступны только при активной подписке на продукт."
}

func MaterialNotFound() string {
	return "Материал не найден."
}

func ReferralInfo(link string, invited int, balance int64) string {
	return fmt.Sprintf(
		"<b>Ваша реферальная программа</b>\n\n"+
			"Приглашайте друзей и получайте бонусы!\n\n"+
			"🔗 <b>Ваша ссылка:</b>\n<code>%s</code>\n\n"+
			"👤 <b>Приглашено:</b> %d чел.\n"+
			"💰 <b>Баланс:</b> %s",
		Escape(link), invited, Kopecks(balance),
	)
}

func ReferralLink(link string) string {
	return fmt.Sprintf("Ваша реферальная ссылка: <code>%s</code>", Escape(link))
}

func ReferralBalance(balance int64) string {
	return fmt.Sprintf("Ваш текущий баланс: %s", Kopecks(balance))
}

func WithdrawEnterAmount(balance, minimum int64) string {
	return fmt.Sprintf("Ваш текущий баланс: %s\n\nВведите сумму для вывода (минимум %s):", Kopecks(balance), Kopecks(minimum))
}

func WithdrawBalanceTooLow(balance, minimum int64) string {
	return fmt.Sprintf("Минимальная сумма для вывода %s. Ваш баланс: %s.", Kopecks(minimum), Kopecks(balance))
}

func WithdrawInsufficient(balance int64) string {
	return fmt.Sprintf("Недостаточно средств на балансе. Ваш баланс: %s.", Kopecks(balance))
}

func WithdrawBelowMinimum(minimum int64) string {
	return fmt.Sprintf("Минимальная сумма для вывода: %s.", Kopecks(minimum))
}

func WithdrawEnterPhone() string {
	return "Введите номер телефона для перевода по СБП (в формате +79XXXXXXXXX):"
}

func WithdrawEnterBank() string {
	return "Введите название вашего банка:"
}

func WithdrawConfirm(amount int64, phone, bank string) string {
	return fmt.Sprintf(
		"Вы хотите вывести %s\nНомер телефона: %s\nБанк: %s\n\nПодтвердите операцию.",
		Kopecks(amount), Escape(phone), Escape(bank),
	)
}

func WithdrawCreated(amount int64) string {
	return fmt.Sprintf("Заявка на вывод %s создана и отправлена администратору. Ожидайте подтверждения.", Kopecks(amount))
}

func WithdrawCancelled() string {
	return "Вывод средств отменён."
}

func WithdrawRestart() string {
	return "Произошла ошибка. Пожалуйста, начните процесс вывода заново."
}

func withdrawalStatus(s types.WithdrawalStatus) string {
	switch s {
	case types.WithdrawalApproved:
		return "✅ Одобрено"
	case types.WithdrawalRejected:
		return "❌ Отклонено"
	default:
		return "⏳ В ожидании"
	}
}

func WithdrawHistory(reqs []types.WithdrawalRequest) string {
	if len(reqs) == 0 {
		return "У вас пока нет истории выплат."
	}
	var b strings.Builder
	b.WriteString("📜 <b>История выплат</b>\n\n")
	for _, r := range reqs {
		fmt.Fprintf(&b,
			"Сумма: <b>%s</b>\nСтатус: %s\nДата запроса: %s\nДата решения: %s\n---\n",
			Kopecks(r.Amount), withdrawalStatus(r.Status), DateTime(&r.RequestDate), DateTime(r.DecisionDate),
		)
	}
	return b.String()
}

func WithdrawApproved(r *types.WithdrawalRequest) string {
	return fmt.Sprintf("✅ Ваша заявка на вывод средств ID %d на сумму %s одобрена! Средства будут отправлены в ближайшее время.", r.ID, Kopecks(r.Amount))
}

func WithdrawRejected(r *types.WithdrawalRequest) string {
	return fmt.Sprintf("❌ Ваша заявка на вывод средств ID %d на сумму %s отклонена. Средства возвращены на ваш баланс.", r.ID, Kopecks(r.Amount))
}

func SupportText() string {
	return "💬 Если у вас возникли вопросы или проблемы, вы можете связаться с нашей службой поддержки."
}

func SettingsText(email string) string {
	if email == "" {
		email = "не указан"
	}
	return fmt.Sprintf("⚙️ <b>Настройки</b>\n\n📧 <b>Email:</b> %s", Escape(email))
}

func SettingsEnterEmail() string {
	return "Введите новый Email:"
}

func SettingsEmailSaved(email string) string {
	return fmt.Sprintf("✅ Email сохранён: %s", Escape(email))
}
