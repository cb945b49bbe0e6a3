package types

import "time"

type User struct {
	ID              int64
	TelegramID      int64
	Username        string
	Email           string
	ReferrerID      *int64
	ReferralBalance int64
	CreatedAt       time.Time
}

// NewUser describes a first contact. ReferrerTelegramID is dropped when that user
// does not exist or is the user itself.
type NewUser struct {
	TelegramID         int64
	Username           string
	ReferrerTelegramID int64
	ReferralBonus      int64
}

type Product struct {
	Name        string
	Active      bool
	Description string
	Price       int64
	PhotoFileID string
	CreatedAt   time.Time
}

type Plan struct {
	ID      int64
	Product string
	Name    string
	Days    *int
	Price   int64
}

func (p Plan) Unlimited() bool {
	return p.Days == nil
}

type Payment struct {
	ID          int64
	UserID      int64
	Product     string
	Tariff      string
	Email       string
	Price       int64
	CheckFileID string
	Status      PaymentStatus
	PlanID      *int64
	PromoCode   string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type Subscription struct {
	ID        int64
	UserID    int64
	Product   string
	Tariff    string
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
}

// Current reports whether the subscription is active and not expired at now.
func (s Subscription) Current(now time.Time) bool {
	if !s.Active {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

type PromoCode struct {
	ID             int64
	Product        string
	PlanID         *int64
	Code           string
	Status         PromoStatus
	IssuedToUserID *int64
	IssuedToEmail  string
	IssuedAt       *time.Time
	PaymentID      *int64
}

type Material struct {
	ID       int64
	Product  string
	Title    string
	Text     string
	FileID   string
	FileKind string
}

type Broadcast struct {
	ID        int64
	Text      string
	SentAt    time.Time
	Delivered int
	Failed    int
}

type Setting struct {
	Key   string
	Value string
}
