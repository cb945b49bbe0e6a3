package types

import (
	"context"
	"strconv"
	"time"
)

// Session is the per-user conversation state. Data holds the fields collected by
// the current flow and is dropped together with the state.
type Session struct {
	UserID    int64             `json:"user_id"`
	ChatID    int64             `json:"chat_id"`
	State     ChatState         `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

const (
	KeyPaymentID   = "payment_id"
	KeyProduct     = "product"
	KeyPlan        = "plan"
	KeyAmount      = "amount"
	KeyPhone       = "phone"
	KeyBank        = "bank"
	KeyDescription = "description"
	KeyTitle       = "title"
	KeyText        = "text"
)

func (s *Session) Get(key string) string {
	if s == nil || s.Data == nil {
		return ""
	}
	return s.Data[key]
}

func (s *Session) GetInt64(key string) (int64, bool) {
	v := s.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

func (s *Session) SetInt64(key string, value int64) {
	s.Set(key, strconv.FormatInt(value, 10))
}

// Transition moves the session to state, keeping collected data.
func (s *Session) Transition(state ChatState) {
	s.State = state
}

// Reset returns the session to idle and discards collected data.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Data = nil
}

type SessionStore interface {
	GetSession(ctx context.Context, userID int64) (*Session, error)
	SaveSession(ctx context.Context, session *Session) error
	ClearSession(ctx context.Context, userID int64) error
}

type UserStore interface {
	GetOrCreateUser(ctx context.Context, nu NewUser) (user *User, created bool, err error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	SetUserEmail(ctx context.Context, userID int64, email string) error
	ListUserTelegramIDs(ctx context.Context) ([]int64, error)
	CountReferrals(ctx context.Context, userID int64) (int, error)
}

type CatalogStore interface {
	CreateProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, name string) (*Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	UpdateProductDescription(ctx context.Context, name, description string) error
	UpdateProductPhoto(ctx context.Context, name, photoFileID string) error
	ToggleProductActive(ctx context.Context, name string) (active bool, err error)
	DeleteProduct(ctx context.Context, name string) error

	CreatePlan(ctx context.Context, p Plan) (*Plan, error)
	GetPlan(ctx context.Context, id int64) (*Plan, error)
	ListPlans(ctx context.Context, product string) ([]Plan, error)
	DeletePlan(ctx context.Context, id int64) error
}

type PaymentStore interface {
	Checkout(ctx context.Context, userID, planID int64) (*CheckoutResult, error)
	SetPaymentEmail(ctx context.Context, paymentID, userID int64, email string) (*Payment, error)
	AttachCheck(ctx context.Context, paymentID, userID int64, fileID string) (*Payment, error)
	CancelCheckout(ctx context.Context, paymentID, userID int64) error
	CompletePayment(ctx context.Context, paymentID int64) (*Completion, error)
	RejectPayment(ctx context.Context, paymentID int64) (*Payment, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, f PaymentFilter) ([]Payment, error)
	ListUserPayments(ctx context.Context, userID int64, limit, offset int) ([]Payment, error)
	ListUserSubscriptions(ctx context.Context, userID int64) ([]Subscription, error)
}

type PromoStore interface {
	AddPromoCodes(ctx context.Context, product string, planID *int64, codes []string) (BulkAddResult, error)
	ListPromoCodes(ctx context.Context, product string, filter PromoFilter) ([]PromoCode, error)
	CountUnusedPromoCodes(ctx context.Context, product string) (int, error)
	DeletePromoCode(ctx context.Context, id int64) error
}

type WithdrawalStore interface {
	CreateWithdrawal(ctx context.Context, userID, amount, minAmount int64, phone, bank string) (*WithdrawalRequest, error)
	ApproveWithdrawal(ctx context.Context, id int64) (*WithdrawalRequest, error)
	RejectWithdrawal(ctx context.Context, id int64) (*WithdrawalRequest, error)
	GetWithdrawal(ctx context.Context, id int64) (*WithdrawalRequest, error)
	ListUserWithdrawals(ctx context.Context, userID int64, limit int) ([]WithdrawalRequest, error)
	ListPendingWithdrawals(ctx context.Context) ([]WithdrawalRequest, error)
}

type ContentStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	AddMaterial(ctx context.Context, m Material) (*Material, error)
	GetMaterial(ctx context.Context, id int64) (*Material, error)
	ListMaterials(ctx context.Context, product string) ([]Material, error)
	DeleteMaterial(ctx context.Context, id int64) error
	ListSubscribedProducts(ctx context.Context, userID int64) ([]string, error)
}

type BroadcastStore interface {
	RecordBroadcast(ctx context.Context, text string, delivered, failed int) (*Broadcast, error)
	ListBroadcasts(ctx context.Context, limit int) ([]Broadcast, error)
}

// ShopStore is everything the bot persists.
type ShopStore interface {
	UserStore
	CatalogStore
	PaymentStore
	PromoStore
	WithdrawalStore
	ContentStore
	BroadcastStore
}

// JobStore tracks queued broadcasts so they survive a restart.
type JobStore interface {
	CreateJob(ctx context.Context, job *BroadcastJob) error
	GetJob(ctx context.Context, id string) (*BroadcastJob, error)
	UpdateJob(ctx context.Context, job *BroadcastJob) error
	ListUnfinishedJobs(ctx context.Context) ([]*BroadcastJob, error)
}
