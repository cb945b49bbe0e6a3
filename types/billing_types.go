package types

import "time"

type WithdrawalRequest struct {
	ID           int64
	UserID       int64
	Amount       int64
	Status       WithdrawalStatus
	Phone        string
	Bank         string
	RequestDate  time.Time
	DecisionDate *time.Time
}

// CheckoutResult is returned by Checkout. Subscription is set only for free plans,
// which complete at checkout.
type CheckoutResult struct {
	Payment      Payment
	Plan         Plan
	Subscription *Subscription
}

// Completion is the outcome of moving a payment to completed.
type Completion struct {
	Payment      Payment
	Subscription *Subscription
	Promo        *PromoCode
}

type BulkAddResult struct {
	Added      int
	Duplicates []string
}

type PaymentFilter struct {
	Status PaymentStatus
	Since  time.Time
	Limit  int
}

type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Finished reports whether the job needs no more work.
func (s JobState) Finished() bool {
	return s == JobDone || s == JobFailed
}

type BroadcastJob struct {
	ID          string    `json:"id"`
	AdminChatID int64     `json:"admin_chat_id"`
	Text        string    `json:"text"`
	State       JobState  `json:"state"`
	Total       int       `json:"total"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
