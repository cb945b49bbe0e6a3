package action

import (
	"fmt"

	"github.com/BatmanBruc/bat-bot-shop/types"
)

// Kind enumerates everything a user can do: free input, commands, reply-keyboard
// menu entries and inline buttons.
type Kind uint8

const (
	Unknown Kind = iota

	Text
	Photo
	Document
	Video

	Start
	Cancel
	AdminMenu

	MenuMain
	MenuStore
	MenuSubscriptions
	MenuReferral
	MenuMaterials
	MenuSupport
	MenuSettings

	AdminProducts
	AdminRequisites
	AdminPayments
	AdminBroadcast
	AdminExit

	StoreOpen
	StoreProduct
	SelectPlan
	PayUpload
	CancelPurchase
	BackToMain
	SubsHistory
	CheckChannel

	MaterialProducts
	MaterialList
	MaterialGet

	ReferralLink
	ReferralBalance
	WithdrawStart
	WithdrawHistory
	WithdrawConfirm
	WithdrawCancel

	SettingsEmail

	ApprovePayment
	RejectPayment
	ApproveWithdrawal
	RejectWithdrawal
	PaymentsFilter
	PaymentView
	PaymentsPending
	WithdrawalsPending
	AdminBack
	FlowCancel

	ProductsList
	ProductView
	ProductAdd
	ProductEditDesc
	ProductEditPhoto
	ProductToggle
	ProductDelete
	ProductDeleteConfirm
	ProductDeleteCancel

	PlanList
	PlanAdd
	PlanDelete

	PromoList
	PromoAdd
	PromoDelete

	MaterialAdminList
	MaterialAdd
	MaterialDelete

	RequisitesEdit

	BroadcastConfirm
	BroadcastCancel
	BroadcastHistory
)

var kindNames = map[Kind]string{
	Unknown: "unknown", Text: "text", Photo: "photo", Document: "document", Video: "video",
	Start: "start", Cancel: "cancel", AdminMenu: "admin_menu",
	MenuMain: "menu_main", MenuStore: "menu_store", MenuSubscriptions: "menu_subscriptions",
	MenuReferral: "menu_referral", MenuMaterials: "menu_materials", MenuSupport: "menu_support",
	MenuSettings: "menu_settings",
	AdminProducts: "admin_products", AdminRequisites: "admin_requisites", AdminPayments: "admin_payments",
	AdminBroadcast: "admin_broadcast", AdminExit: "admin_exit",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	if s, ok := buttons[k]; ok {
		return "cb_" + s.code
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Entity tags the payload carried by a button.
type Entity uint8

const (
	EntityNone Entity = iota
	EntityPayment
	EntityWithdrawal
	EntityProduct
	EntityPlan
	EntityMaterial
	EntityPromo
	EntityPromoQuery
	EntityPeriod
)

// Payload is the target of an action. Each concrete type names one entity kind,
// so a payment id can never be read as a withdrawal id.
type Payload interface {
	Entity() Entity
}

type (
	PaymentID    int64
	WithdrawalID int64
	PlanID       int64
	MaterialID   int64
	PromoID      int64
	ProductName  string
)

type PromoQuery struct {
	Product string
	Filter  types.PromoFilter
}

type PaymentsPeriod struct {
	Period types.Period
}

func (PaymentID) Entity() Entity      { return EntityPayment }
func (WithdrawalID) Entity() Entity   { return EntityWithdrawal }
func (PlanID) Entity() Entity         { return EntityPlan }
func (MaterialID) Entity() Entity     { return EntityMaterial }
func (PromoID) Entity() Entity        { return EntityPromo }
func (ProductName) Entity() Entity    { return EntityProduct }
func (PromoQuery) Entity() Entity     { return EntityPromoQuery }
func (PaymentsPeriod) Entity() Entity { return EntityPeriod }

type Action struct {
	Kind    Kind
	Payload Payload
}

func New(kind Kind, payload Payload) Action {
	return Action{Kind: kind, Payload: payload}
}

func (a Action) PaymentID() (int64, bool) {
	v, ok := a.Payload.(PaymentID)
	return int64(v), ok
}

func (a Action) WithdrawalID() (int64, bool) {
	v, ok := a.Payload.(WithdrawalID)
	return int64(v), ok
}

func (a Action) PlanID() (int64, bool) {
	v, ok := a.Payload.(PlanID)
	return int64(v), ok
}

func (a Action) MaterialID() (int64, bool) {
	v, ok := a.Payload.(MaterialID)
	return int64(v), ok
}

func (a Action) PromoID() (int64, bool) {
	v, ok := a.Payload.(PromoID)
	return int64(v), ok
}

func (a Action) Product() (string, bool) {
	switch v := a.Payload.(type) {
	case ProductName:
		return string(v), true
	case PromoQuery:
		return v.Product, true
	}
	return "", false
}

func (a Action) PromoQuery() (PromoQuery, bool) {
	v, ok := a.Payload.(PromoQuery)
	return v, ok
}

func (a Action) Period() types.Period {
	if v, ok := a.Payload.(PaymentsPeriod); ok {
		return v.Period
	}
	return types.PeriodAll
}

func (a Action) String() string {
	if a.Payload == nil {
		return a.Kind.String()
	}
	return fmt.Sprintf("%s(%v)", a.Kind, a.Payload)
}
