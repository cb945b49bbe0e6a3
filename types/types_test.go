package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodSince(t *testing.T) {
	// Thursday.
	now := time.Date(2024, 5, 16, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), PeriodToday.Since(now))
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), PeriodWeek.Since(now))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), PeriodMonth.Since(now))
	assert.True(t, PeriodAll.Since(now).IsZero())

	sunday := time.Date(2024, 5, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), PeriodWeek.Since(sunday))

	monday := time.Date(2024, 5, 13, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), PeriodWeek.Since(monday))
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
	assert.Equal(t, PeriodAll, ParsePeriod("year"))
	assert.Equal(t, PeriodAll, ParsePeriod(""))

	assert.Equal(t, PromoFilterUsed, ParsePromoFilter("used"))
	assert.Equal(t, PromoFilterAll, ParsePromoFilter("whatever"))
}

func TestSessionData(t *testing.T) {
	var nilSession *Session
	assert.Equal(t, "", nilSession.Get(KeyProduct))

	s := &Session{UserID: 1}
	_, ok := s.GetInt64(KeyPaymentID)
	assert.False(t, ok)

	s.Set(KeyProduct, "Course")
	s.SetInt64(KeyPaymentID, 15)
	s.Transition(StatePurchaseEnterEmail)

	assert.Equal(t, "Course", s.Get(KeyProduct))
	id, ok := s.GetInt64(KeyPaymentID)
	assert.True(t, ok)
	assert.Equal(t, int64(15), id)
	assert.Equal(t, StatePurchaseEnterEmail, s.State)

	s.Set(KeyAmount, "oops")
	_, ok = s.GetInt64(KeyAmount)
	assert.False(t, ok)

	s.Reset()
	assert.Equal(t, StateIdle, s.State)
	assert.Empty(t, s.Data)
}

func TestChatStateIsAdmin(t *testing.T) {
	assert.True(t, StateAdminPlanInput.IsAdmin())
	assert.False(t, StateWithdrawEnterAmount.IsAdmin())
	assert.False(t, StateIdle.IsAdmin())
}

func TestSubscriptionCurrent(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Subscription{Active: true}.Current(now))
	assert.True(t, Subscription{Active: true, EndDate: &future}.Current(now))
	assert.False(t, Subscription{Active: true, EndDate: &past}.Current(now))
	assert.False(t, Subscription{Active: false}.Current(now))
}

func TestJobStateFinished(t *testing.T) {
	assert.False(t, JobQueued.Finished())
	assert.False(t, JobRunning.Finished())
	assert.True(t, JobDone.Finished())
	assert.True(t, JobFailed.Finished())
}

func TestPlanUnlimited(t *testing.T) {
	days := 7
	assert.True(t, Plan{}.Unlimited())
	assert.False(t, Plan{Days: &days}.Unlimited())
}
