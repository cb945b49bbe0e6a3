package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/internal/messages"
	"github.com/BatmanBruc/bat-bot-shop/types"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Audience is the part of the shop store a broadcast needs.
type Audience interface {
	ListUserTelegramIDs(ctx context.Context) ([]int64, error)
	RecordBroadcast(ctx context.Context, text string, delivered, failed int) (*types.Broadcast, error)
}

// Scheduler delivers broadcasts in the background. Jobs run one at a time;
// inside a job messages are sent by up to Workers goroutines sharing one
// rate limiter.
type Scheduler struct {
	jobs     types.JobStore
	audience Audience
	sender   Sender
	workers  int
	limiter  *rate.Limiter
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	queue    chan string
}

type Config struct {
	Workers int
	// Rate is the number of messages per second across all workers.
	Rate float64
}

func NewScheduler(jobs types.JobStore, audience Audience, sender Sender, config Config) *Scheduler {
	if config.Workers <= 0 {
		config.Workers = 4
	}

	limit := rate.Inf
	burst := config.Workers
	if config.Rate > 0 {
		limit = rate.Limit(config.Rate)
		if b := int(config.Rate); b > burst {
			burst = b
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		jobs:     jobs,
		audience: audience,
		sender:   sender,
		workers:  config.Workers,
		limiter:  rate.NewLimiter(limit, burst),
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan string, 16),
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Broadcast scheduler started with %d senders", s.workers)

	s.wg.Add(2)
	go s.worker()
	go s.recoverJobs()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Println("Stopping broadcast scheduler...")
	s.cancel()
	s.wg.Wait()
	log.Println("Broadcast scheduler stopped")
}

// Enqueue stores a new broadcast job and queues it for delivery. A job stored
// while the scheduler is stopped is picked up by the next Start.
func (s *Scheduler) Enqueue(ctx context.Context, adminChatID int64, text string) (*types.BroadcastJob, error) {
	job := &types.BroadcastJob{
		AdminChatID: adminChatID,
		Text:        text,
		State:       types.JobQueued,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create broadcast job: %w", err)
	}
	s.push(job.ID)
	return job, nil
}

func (s *Scheduler) push(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case s.queue <- jobID:
		case <-s.ctx.Done():
		}
	}()
}

// recoverJobs requeues jobs that never started. A job that was running when the
// process died is marked failed: its recipients are unknown, and resending would
// duplicate messages.
func (s *Scheduler) recoverJobs() {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	jobs, err := s.jobs.ListUnfinishedJobs(ctx)
	if err != nil {
		log.Printf("Broadcast recovery: failed to list jobs: %v", err)
		return
	}

	requeued := 0
	for _, job := range jobs {
		switch job.State {
		case types.JobQueued:
			s.push(job.ID)
			requeued++
		case types.JobRunning:
			job.State = types.JobFailed
			job.Error = "interrupted"
			if err := s.jobs.UpdateJob(ctx, job); err != nil {
				log.Printf("Broadcast recovery: failed to update job %s: %v", job.ID, err)
			}
			s.notify(job.AdminChatID, messages.BroadcastInterrupted(job.Delivered, job.Total))
		}
	}
	if len(jobs) > 0 {
		log.Printf("Broadcast recovery: requeued=%d unfinished=%d", requeued, len(jobs))
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case jobID := <-s.queue:
			job, err := s.jobs.GetJob(s.ctx, jobID)
			if err != nil {
				log.Printf("Broadcast worker: error getting job %s: %v", jobID, err)
				continue
			}
			if job.State != types.JobQueued {
				continue
			}
			if err := s.processJob(job); err != nil {
				log.Printf("Broadcast worker: job %s: %v", jobID, err)
			}
		}
	}
}

func (s *Scheduler) processJob(job *types.BroadcastJob) error {
	recipients, err := s.audience.ListUserTelegramIDs(s.ctx)
	if err != nil {
		job.State = types.JobFailed
		job.Error = err.Error()
		_ = s.jobs.UpdateJob(context.Background(), job)
		s.notify(job.AdminChatID, messages.ErrorDefault())
		return fmt.Errorf("list recipients: %w", err)
	}

	job.State = types.JobRunning
	job.Total = len(recipients)
	if err := s.jobs.UpdateJob(s.ctx, job); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	delivered, failures := s.deliver(messages.Escape(job.Text), recipients)
	failed := len(recipients) - delivered
	if failures != nil {
		log.Printf("Broadcast %s: %d of %d deliveries failed: %v", job.ID, failed, len(recipients), failures)
	}

	// The process may be stopping; the bookkeeping below must still land.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.audience.RecordBroadcast(ctx, job.Text, delivered, failed); err != nil {
		log.Printf("Broadcast %s: error recording result: %v", job.ID, err)
	}

	job.Delivered = delivered
	job.Failed = failed
	job.State = types.JobDone
	if s.ctx.Err() != nil {
		job.State = types.JobFailed
		job.Error = "stopped"
	}
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}

	s.notify(job.AdminChatID, messages.BroadcastReport(delivered, failed))
	return nil
}

// deliver sends text to every recipient and returns the delivered count along
// with every delivery error.
func (s *Scheduler) deliver(text string, recipients []int64) (int, error) {
	var (
		mu        sync.Mutex
		delivered int
		errs      error
		g         errgroup.Group
	)
	g.SetLimit(s.workers)

	for _, chatID := range recipients {
		g.Go(func() error {
			err := s.limiter.Wait(s.ctx)
			if err == nil {
				ctx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
				err = s.sender.SendText(ctx, chatID, text)
				cancel()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("chat %d: %w", chatID, err))
				return nil
			}
			delivered++
			return nil
		})
	}
	_ = g.Wait()

	return delivered, errs
}

func (s *Scheduler) notify(chatID int64, text string) {
	if chatID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.sender.SendText(ctx, chatID, text); err != nil {
		log.Printf("Broadcast: failed to notify admin chat=%d: %v", chatID, err)
	}
}
