package types

import (
	"strings"
	"time"
)

type ChatState string

const (
	StateIdle ChatState = ""

	StatePurchaseEnterEmail  ChatState = "purchase_email"
	StatePurchaseUploadCheck ChatState = "purchase_check"

	StateWithdrawEnterAmount ChatState = "withdraw_amount"
	StateWithdrawEnterPhone  ChatState = "withdraw_phone"
	StateWithdrawEnterBank   ChatState = "withdraw_bank"
	StateWithdrawConfirm     ChatState = "withdraw_confirm"

	StateSettingsEmail ChatState = "settings_email"

	StateAdminRequisites       ChatState = "admin_requisites"
	StateAdminProductName      ChatState = "admin_product_name"
	StateAdminProductDesc      ChatState = "admin_product_desc"
	StateAdminProductPhoto     ChatState = "admin_product_photo"
	StateAdminEditDesc         ChatState = "admin_edit_desc"
	StateAdminEditPhoto        ChatState = "admin_edit_photo"
	StateAdminConfirmDeletion  ChatState = "admin_confirm_deletion"
	StateAdminPlanInput        ChatState = "admin_plan_input"
	StateAdminPromoInput       ChatState = "admin_promo_input"
	StateAdminMaterialTitle    ChatState = "admin_material_title"
	StateAdminMaterialContent  ChatState = "admin_material_content"
	StateAdminBroadcastText    ChatState = "admin_broadcast_text"
	StateAdminBroadcastConfirm ChatState = "admin_broadcast_confirm"
)

// IsAdmin reports whether the state belongs to an admin flow.
func (s ChatState) IsAdmin() bool {
	return strings.HasPrefix(string(s), "admin_")
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRejected  PaymentStatus = "rejected"
)

type PromoStatus string

const (
	PromoNotIssued PromoStatus = "not issued"
	PromoIssued    PromoStatus = "issued"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type PromoFilter string

const (
	PromoFilterAll    PromoFilter = "all"
	PromoFilterUnused PromoFilter = "unused"
	PromoFilterUsed   PromoFilter = "used"
)

func ParsePromoFilter(s string) PromoFilter {
	switch PromoFilter(s) {
	case PromoFilterUnused, PromoFilterUsed:
		return PromoFilter(s)
	default:
		return PromoFilterAll
	}
}

// Period selects completed payments for the admin report.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return Period(s)
	default:
		return PeriodAll
	}
}

// Since returns the start of the period in now's location. Weeks start on Monday.
// The zero time means no lower bound.
func (p Period) Since(now time.Time) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return today
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

const (
	SettingRequisites = "requisites"
)

const (
	ClientErrorDefault string = "Произошла ошибка сервиса. Попробуйте снова."
)
