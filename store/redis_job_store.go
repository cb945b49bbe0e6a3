package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/types"
	"github.com/google/uuid"
)

type RedisJobStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisJobStore(redisClient *RedisClient, ttlHours int) *RedisJobStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 72 * time.Hour
	}

	return &RedisJobStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisJobStore) jobKey(id string) string {
	return s.client.generateKey("broadcast_job", id)
}

func (s *RedisJobStore) indexKey() string {
	return s.client.generateKey("broadcast_jobs", "unfinished")
}

func (s *RedisJobStore) CreateJob(ctx context.Context, job *types.BroadcastJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.State == "" {
		job.State = types.JobQueued
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := s.client.Set(ctx, s.jobKey(job.ID), job, s.ttl); err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, s.indexKey(), job.ID); err != nil {
		_ = s.client.Del(ctx, s.jobKey(job.ID))
		return err
	}
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, id string) (*types.BroadcastJob, error) {
	var job types.BroadcastJob
	if err := s.client.Get(ctx, s.jobKey(id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob saves job and drops it from the unfinished index once it is done.
func (s *RedisJobStore) UpdateJob(ctx context.Context, job *types.BroadcastJob) error {
	job.UpdatedAt = time.Now().UTC()
	if err := s.client.Set(ctx, s.jobKey(job.ID), job, s.ttl); err != nil {
		return err
	}
	if job.State.Finished() {
		return s.client.SRem(ctx, s.indexKey(), job.ID)
	}
	return nil
}

func (s *RedisJobStore) ListUnfinishedJobs(ctx context.Context) ([]*types.BroadcastJob, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey())
	if err != nil {
		return nil, fmt.Errorf("list broadcast jobs: %w", err)
	}

	jobs := make([]*types.BroadcastJob, 0, len(ids))
	for _, id := range ids {
		job, err := s.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				_ = s.client.SRem(ctx, s.indexKey(), id)
			}
			continue
		}
		if job.State.Finished() {
			_ = s.client.SRem(ctx, s.indexKey(), id)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
