package roadmap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"studentportal/internal/cloudinary"
	"studentportal/internal/queue"
	"studentportal/internal/store"
)

// MsgResume is the queue message type for a staged resume.
const MsgResume = "resume"

// Service accepts roadmap submissions. The resume bytes never touch the
// request path past staging: they are parked in Redis and a queue message
// hands the upload to the worker.
type Service struct {
	repo     *Repository
	redis    *store.Redis
	q        queue.Queue
	stageTTL time.Duration
}

// NewService creates a submission service.
func NewService(repo *Repository, redis *store.Redis, q queue.Queue, stageTTL time.Duration) *Service {
	if stageTTL <= 0 {
		stageTTL = time.Hour
	}
	return &Service{repo: repo, redis: redis, q: q, stageTTL: stageTTL}
}

// Submit stores the roadmap and, when a resume is attached, stages its
// bytes and enqueues the upload. Without a resume the roadmap is complete
// immediately.
func (s *Service) Submit(ctx context.Context, rm Roadmap, resume []byte) (Roadmap, error) {
	if rm.Title == "" || rm.Body == "" {
		return Roadmap{}, errors.New("title and body required")
	}
	if len(resume) == 0 {
		rm.Status = StatusProcessed
		return s.repo.Insert(ctx, rm)
	}

	rm.Status = StatusPending
	saved, err := s.repo.Insert(ctx, rm)
	if err != nil {
		return Roadmap{}, err
	}

	if err := s.redis.StageBlob(ctx, resumeKey(saved.ID), resume, s.stageTTL); err != nil {
		return Roadmap{}, fmt.Errorf("roadmap: stage resume: %w", err)
	}
	if err := s.q.Publish(ctx, queue.Message{Type: MsgResume, Body: []byte(saved.ID)}); err != nil {
		return Roadmap{}, fmt.Errorf("roadmap: enqueue resume: %w", err)
	}
	return saved, nil
}

// List exposes the repo listing to handlers.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Roadmap, error) {
	return s.repo.List(ctx, limit, offset)
}

// Get exposes the repo lookup to handlers.
func (s *Service) Get(ctx context.Context, id string) (Roadmap, error) {
	return s.repo.Get(ctx, id)
}

// Processor is the worker side: it takes a staged resume, pushes it to
// object storage and records the outcome on the roadmap row.
type Processor struct {
	repo  *Repository
	redis *store.Redis
	cdn   *cloudinary.Client
}

// NewProcessor creates a processor.
func NewProcessor(repo *Repository, redis *store.Redis, cdn *cloudinary.Client) *Processor {
	return &Processor{repo: repo, redis: redis, cdn: cdn}
}

// Process uploads the staged resume for one roadmap id. A missing blob
// (expired stage, duplicate delivery) or upload failure marks the roadmap
// failed rather than retrying forever.
func (p *Processor) Process(ctx context.Context, id string) error {
	rm, err := p.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rm.Status != StatusPending {
		log.Printf("roadmap %s already %s, skipping", id, rm.Status)
		return nil
	}

	data, err := p.redis.TakeBlob(ctx, resumeKey(id))
	if err != nil {
		_ = p.repo.SetResume(ctx, id, StatusFailed, "")
		return fmt.Errorf("roadmap: take staged resume for %s: %w", id, err)
	}

	if p.cdn == nil {
		_ = p.repo.SetResume(ctx, id, StatusFailed, "")
		return errors.New("roadmap: object storage not configured")
	}

	result, err := p.cdn.UploadRaw(data, rm.ResumeName)
	if err != nil {
		_ = p.repo.SetResume(ctx, id, StatusFailed, "")
		return fmt.Errorf("roadmap: upload resume for %s: %w", id, err)
	}
	return p.repo.SetResume(ctx, id, StatusProcessed, result.SecureURL)
}

func resumeKey(id string) string {
	return "portal:resume:" + id
}
