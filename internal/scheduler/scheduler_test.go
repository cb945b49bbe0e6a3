package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/BatmanBruc/bat-bot-shop/types"
)

type fakeSender struct {
	mu   sync.Mutex
	fail map[int64]bool
	sent map[int64][]string
}

func newFakeSender(failing ...int64) *fakeSender {
	s := &fakeSender{fail: map[int64]bool{}, sent: map[int64][]string{}}
	for _, id := range failing {
		s.fail[id] = true
	}
	return s
}

func (s *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[chatID] {
		return errors.New("bot was blocked by the user")
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

func (s *fakeSender) messages(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent[chatID]...)
}

type fakeAudience struct {
	mu       sync.Mutex
	ids      []int64
	recorded []types.Broadcast
}

func (a *fakeAudience) ListUserTelegramIDs(context.Context) ([]int64, error) {
	return a.ids, nil
}

func (a *fakeAudience) RecordBroadcast(_ context.Context, text string, delivered, failed int) (*types.Broadcast, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := types.Broadcast{ID: int64(len(a.recorded) + 1), Text: text, Delivered: delivered, Failed: failed}
	a.recorded = append(a.recorded, b)
	return &b, nil
}

func (a *fakeAudience) records() []types.Broadcast {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.Broadcast(nil), a.recorded...)
}

func newJobStore(t *testing.T) *store.RedisJobStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := store.NewRedisClient(context.Background(), mr.Addr(), "", 0, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisJobStore(client, 1)
}

const adminChat = 99

func TestSchedulerDeliversBroadcast(t *testing.T) {
	jobs := newJobStore(t)
	sender := newFakeSender(2)
	audience := &fakeAudience{ids: []int64{1, 2, 3}}

	s := NewScheduler(jobs, audience, sender, Config{Workers: 2})
	s.Start()
	defer s.Stop()

	job, err := s.Enqueue(context.Background(), adminChat, "Sale <today>")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(context.Background(), job.ID)
		return err == nil && got.State == types.JobDone
	}, 5*time.Second, 20*time.Millisecond)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Delivered)
	assert.Equal(t, 1, got.Failed)

	assert.Equal(t, []string{"Sale &lt;today&gt;"}, sender.messages(1))
	assert.Equal(t, []string{"Sale &lt;today&gt;"}, sender.messages(3))
	assert.Empty(t, sender.messages(2))

	require.Eventually(t, func() bool {
		return len(sender.messages(adminChat)) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, messages.BroadcastReport(2, 1), sender.messages(adminChat)[0])

	records := audience.records()
	require.Len(t, records, 1)
	assert.Equal(t, "Sale <today>", records[0].Text)

	unfinished, err := jobs.ListUnfinishedJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unfinished)
}

func TestSchedulerRecoversJobs(t *testing.T) {
	ctx := context.Background()
	jobs := newJobStore(t)

	interrupted := &types.BroadcastJob{AdminChatID: adminChat, Text: "old"}
	require.NoError(t, jobs.CreateJob(ctx, interrupted))
	interrupted.State = types.JobRunning
	interrupted.Total = 10
	interrupted.Delivered = 4
	require.NoError(t, jobs.UpdateJob(ctx, interrupted))

	pending := &types.BroadcastJob{AdminChatID: adminChat, Text: "new"}
	require.NoError(t, jobs.CreateJob(ctx, pending))

	sender := newFakeSender()
	audience := &fakeAudience{ids: []int64{1}}
	s := NewScheduler(jobs, audience, sender, Config{Workers: 1, Rate: 100})
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(ctx, pending.ID)
		return err == nil && got.State == types.JobDone
	}, 5*time.Second, 20*time.Millisecond)

	got, err := jobs.GetJob(ctx, interrupted.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobFailed, got.State)
	assert.Equal(t, "interrupted", got.Error)

	assert.Equal(t, []string{"new"}, sender.messages(1))
	require.Eventually(t, func() bool {
		return len(sender.messages(adminChat)) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, sender.messages(adminChat), messages.BroadcastInterrupted(4, 10))
}

func TestStartStopIdempotent(t *testing.T) {
	s := NewScheduler(newJobStore(t), &fakeAudience{}, newFakeSender(), Config{})
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

// gatedJobs holds ListUnfinishedJobs until release is closed.
type gatedJobs struct {
	*store.RedisJobStore
	listing chan struct{}
	release chan struct{}
}

func (g *gatedJobs) ListUnfinishedJobs(context.Context) ([]*types.BroadcastJob, error) {
	close(g.listing)
	<-g.release
	return g.RedisJobStore.ListUnfinishedJobs(context.Background())
}

func TestStopWaitsForRecovery(t *testing.T) {
	ctx := context.Background()
	base := newJobStore(t)

	interrupted := &types.BroadcastJob{AdminChatID: adminChat, Text: "old"}
	require.NoError(t, base.CreateJob(ctx, interrupted))
	interrupted.State = types.JobRunning
	interrupted.Total = 3
	interrupted.Delivered = 1
	require.NoError(t, base.UpdateJob(ctx, interrupted))

	jobs := &gatedJobs{RedisJobStore: base, listing: make(chan struct{}), release: make(chan struct{})}
	sender := newFakeSender()
	s := NewScheduler(jobs, &fakeAudience{}, sender, Config{Workers: 1})
	s.Start()
	<-jobs.listing

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while recovery was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(jobs.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after recovery finished")
	}
	assert.Equal(t, []string{messages.BroadcastInterrupted(1, 3)}, sender.messages(adminChat))
}

func TestEnqueueWhileStoppedRunsOnStart(t *testing.T) {
	ctx := context.Background()
	jobs := newJobStore(t)
	sender := newFakeSender()
	s := NewScheduler(jobs, &fakeAudience{ids: []int64{7}}, sender, Config{Workers: 1})

	job, err := s.Enqueue(ctx, adminChat, "hello")
	require.NoError(t, err)

	got, err := jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JobQueued, got.State)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		got, err := jobs.GetJob(ctx, job.ID)
		return err == nil && got.State == types.JobDone
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"hello"}, sender.messages(7))
}
