package messages

// Reply keyboard labels. Incoming text equal to a label is treated as the menu entry.
const (
	BtnStore         = "🛍️ Витрина"
	BtnSubscriptions = "📂 Мои подписки"
	BtnReferral      = "👥 Реферальная программа"
	BtnMaterials     = "🎁 Материалы"
	BtnSupport       = "💬 Поддержка"
	BtnSettings      = "⚙️ Настройки"
	BtnMainMenu      = "🏠 Главное меню"
	BtnAdminPanel    = "Админ панель"

	BtnAdminProducts   = "📦 Управление товарами"
	BtnAdminRequisites = "💳 Реквизиты"
	BtnAdminPayments   = "📊 Оплаты"
	BtnAdminBroadcast  = "📢 Рассылка"
	BtnAdminExit       = "Выход из админ-панели"
)

// Inline button labels.
const (
	BtnBack           = "🔙 Назад"
	BtnBackToStore    = "🔙 К витрине"
	BtnBackToAdmin    = "🔙 К админ-панели"
	BtnBackToProduct  = "🔙 К товару"
	BtnBackToProducts = "🔙 К списку товаров"
	BtnCancel         = "❌ Отмена"
	BtnConfirm        = "✅ Подтвердить"
	BtnApprove        = "✅ Одобрить"
	BtnReject         = "❌ Отклонить"

	BtnPaidUpload     = "✅ Я оплатил, загрузить чек"
	BtnCancelPurchase = "❌ Отменить оплату"
	BtnOrderHistory   = "История заказов"
	BtnSubscribe      = "🔗 Подписаться на канал"
	BtnCheckChannel   = "✅ Я подписался"
	BtnGetMaterials   = "🎁 Получить материалы"
	BtnWriteSupport   = "💬 Написать в поддержку"
	BtnBackToMaterial = "🔙 К выбору продукта"

	BtnReferralLink    = "🔗 Моя реферальная ссылка"
	BtnReferralBalance = "📊 Мой баланс"
	BtnWithdraw        = "💸 Вывести средства"
	BtnWithdrawHistory = "📜 История выплат"
	BtnChangeEmail     = "📧 Изменить Email"

	BtnToday           = "За сегодня"
	BtnWeek            = "За неделю"
	BtnMonth           = "За месяц"
	BtnAllTime         = "За всё время"
	BtnPendingPayments = "⏳ Ожидают проверки"
	BtnPendingPayouts  = "💸 Заявки на вывод"
	BtnBackToPayments  = "🔙 К списку платежей"

	BtnAddProduct     = "➕ Добавить товар"
	BtnEditDesc       = "📝 Изменить описание"
	BtnEditPhoto      = "📸 Изменить фото"
	BtnHide           = "❌ Скрыть из витрины"
	BtnShow           = "✅ Показать на витрине"
	BtnDeleteProduct  = "🗑️ Удалить товар (необратимо)"
	BtnPlans          = "📊 Управлять тарифами"
	BtnAddPromo       = "➕ Добавить промокоды"
	BtnPromos         = "🎟️ Промокоды"
	BtnMaterialsAdmin = "📚 Управлять материалами"
	BtnDeleteYes      = "✅ Да, удалить"
	BtnDeleteNo       = "❌ Нет, отмена"
	BtnAddPlan        = "➕ Добавить тариф"
	BtnAdd            = "➕ Добавить"
	BtnAddMaterial    = "➕ Добавить материал"
	BtnMaterialsList  = "📋 Список материалов"
	BtnPromoAll       = "Все"
	BtnPromoUnused    = "Невыданные"
	BtnPromoUsed      = "Выданные"

	BtnEditRequisites = "📝 Изменить реквизиты"
	BtnSend           = "✅ Отправить"
	BtnBroadcastLog   = "📜 История рассылок"
)
