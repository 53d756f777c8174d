package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/domain/task"
	"degreeplan/advisor/internal/queue"
	"degreeplan/advisor/internal/repository"
	"degreeplan/advisor/internal/state"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Advisor builds one advising report.
type Advisor interface {
	Advise(req advisor.Request) (*domain.AdvisingReport, error)
}

type Service struct {
	advisor     Advisor
	repository  repository.ReportRepository
	queue       queue.Queue
	status      state.StatusStore
	groupName   string
	minIdleTime time.Duration
}

func NewService(
	advisor Advisor,
	repository repository.ReportRepository,
	queue queue.Queue,
	status state.StatusStore,
	groupName string,
	minIdleTime int,
) *Service {
	return &Service{
		advisor:     advisor,
		repository:  repository,
		queue:       queue,
		status:      status,
		groupName:   groupName,
		minIdleTime: time.Duration(minIdleTime) * time.Second,
	}
}

// Submit queues t for the workers and returns its request ID.
func (s *Service) Submit(ctx context.Context, t *task.AdviseTask) (string, error) {
	if t.RequestID == "" {
		t.RequestID = uuid.NewString()
	}

	if err := s.status.SetStatus(ctx, t.RequestID, domain.ReportStatusQueued, ""); err != nil {
		return "", err
	}
	if _, err := s.queue.AddTask(ctx, t); err != nil {
		return "", fmt.Errorf("failed to queue request %s: %w", t.RequestID, err)
	}

	log.Infof("📥 Queued advising request %s", t.RequestID)
	return t.RequestID, nil
}

// Lookup returns the status of a request and, once it is finished, its report.
func (s *Service) Lookup(ctx context.Context, id string) (*state.Status, *domain.AdvisingReport, error) {
	st, err := s.status.GetStatus(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if st.Status == domain.ReportStatusQueued {
		return st, nil, nil
	}

	report, err := s.repository.GetReport(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrReportNotFound) {
		return nil, nil, err
	}
	return st, report, nil
}

// RunWorkers consumes advising requests until ctx is cancelled.
func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, numWorkers, queue.Stream(task.AdviseTaskType))

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName string) {
	// Auto-claimer for messages left pending by dead consumers
	wg.Add(1)
	go func() {
		defer wg.Done()
		interval := s.minIdleTime
		if interval <= 0 {
			interval = time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%d", time.Now().UnixNano())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s", len(claimedMessages), streamName)
				}
				for _, msg := range claimedMessages {
					if err := s.processMessage(ctx, streamName, &msg); err != nil {
						log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("advise-worker-%d", workerID)
			log.Infof("🚀 Starting worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Worker %d stopping", workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, streamName, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

// processMessage runs one request. Advising failures are final: the request
// is stored as failed and acked. Storage failures leave the message pending
// so the auto-claimer picks it up again.
func (s *Service) processMessage(ctx context.Context, streamName string, msg *redis.XMessage) error {
	taskType, taskData, ok := task.FromValues(msg.Values)
	if !ok || taskType != task.AdviseTaskType {
		log.Warnf("⚠️ Dropping malformed message %s (type %q)", msg.ID, taskType)
		return s.ack(ctx, streamName, msg.ID)
	}

	t, err := task.UnmarshalTask[*task.AdviseTask](taskData)
	if err != nil || t.RequestID == "" {
		log.Warnf("⚠️ Dropping undecodable message %s: %v", msg.ID, err)
		return s.ack(ctx, streamName, msg.ID)
	}

	report, err := s.advisor.Advise(advisor.Request{
		ID:         t.RequestID,
		StudentID:  t.StudentID,
		Transcript: t.Transcript,
		Enrollment: []byte(t.EnrollmentHTML),
		Major:      t.Major,
	})
	if err != nil {
		log.Warnf("❌ Advising request %s failed: %v", t.RequestID, err)
		report = &domain.AdvisingReport{
			ID:        t.RequestID,
			StudentID: t.StudentID,
			Major:     t.Major,
			Status:    domain.ReportStatusFailed,
			Error:     err.Error(),
			CreatedAt: time.Now().UTC(),
		}
	}

	if err := s.repository.SaveReport(ctx, report); err != nil {
		return err
	}
	if err := s.status.SetStatus(ctx, report.ID, report.Status, report.Error); err != nil {
		return err
	}

	return s.ack(ctx, streamName, msg.ID)
}

func (s *Service) ack(ctx context.Context, streamName, msgID string) error {
	if err := s.queue.AckTask(ctx, streamName, s.groupName, msgID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msgID, err)
	}
	return nil
}
