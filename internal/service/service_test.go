package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/domain/task"
	"degreeplan/advisor/internal/repository"
	"degreeplan/advisor/internal/requirements"
	"degreeplan/advisor/internal/state"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeQueue struct {
	mu      sync.Mutex
	seq     int
	msgs    chan redis.XMessage
	acked   []string
	failAdd bool
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{msgs: make(chan redis.XMessage, 16)}
}

func (q *fakeQueue) AddTask(_ context.Context, t task.Task) (string, error) {
	if q.failAdd {
		return "", errors.New("redis down")
	}
	values, err := task.Values(t)
	if err != nil {
		return "", err
	}
	q.mu.Lock()
	q.seq++
	id := fmt.Sprintf("%d-0", q.seq)
	q.mu.Unlock()
	q.msgs <- redis.XMessage{ID: id, Values: values}
	return id, nil
}

func (q *fakeQueue) GetTask(ctx context.Context, _, _, _ string) (*redis.XMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-q.msgs:
		return &msg, nil
	case <-time.After(20 * time.Millisecond):
		return nil, nil
	}
}

func (q *fakeQueue) AckTask(_ context.Context, _, _, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) ackedIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.acked...)
}

func (q *fakeQueue) AutoClaim(context.Context, string, string, string, time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (q *fakeQueue) EnsureStreamsExist(context.Context) error { return nil }

type fakeStatus struct {
	mu sync.Mutex
	m  map[string]state.Status
}

func (s *fakeStatus) SetStatus(_ context.Context, id string, status domain.ReportStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = state.Status{ID: id, Status: status, Error: errMsg, UpdatedAt: time.Now()}
	return nil
}

func (s *fakeStatus) GetStatus(_ context.Context, id string) (*state.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok {
		return nil, state.ErrNotFound
	}
	return &st, nil
}

type fakeRepo struct {
	mu      sync.Mutex
	reports map[string]*domain.AdvisingReport
	failing bool
}

func (r *fakeRepo) EnsureSchema(context.Context) error { return nil }

func (r *fakeRepo) SaveReport(_ context.Context, report *domain.AdvisingReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("database unavailable")
	}
	r.reports[report.ID] = report
	return nil
}

func (r *fakeRepo) GetReport(_ context.Context, id string) (*domain.AdvisingReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	return report, nil
}

type fixture struct {
	svc    *Service
	queue  *fakeQueue
	status *fakeStatus
	repo   *fakeRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := requirements.Load(context.Background(), requirements.EmbeddedSource())
	require.NoError(t, err)

	f := &fixture{
		queue:  newFakeQueue(),
		status: &fakeStatus{m: make(map[string]state.Status)},
		repo:   &fakeRepo{reports: make(map[string]*domain.AdvisingReport)},
	}
	f.svc = NewService(advisor.New(reg), f.repo, f.queue, f.status, "advisor_consumer", 1)
	return f
}

const transcriptText = `MAJOR: MS Computer Science
SEMESTER FALL 2024
CS 255  DESIGN AND ANALYSIS OF ALGORITHMS  3.0  A  12.0
SEMESTER TOTAL:  3.0  12.0  4.00
ALL COLLEGE:  3.0  12.0  4.00
`

func TestWorkersProcessRequests(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.svc.RunWorkers(ctx, 3) }()

	okID, err := f.svc.Submit(ctx, &task.AdviseTask{StudentID: "s-1", Transcript: transcriptText})
	require.NoError(t, err)
	badID, err := f.svc.Submit(ctx, &task.AdviseTask{
		RequestID:      "bad-1",
		Transcript:     transcriptText,
		EnrollmentHTML: `<table><tr><th>Course</th></tr></table>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "bad-1", badID)

	require.Eventually(t, func() bool { return len(f.queue.ackedIDs()) == 2 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	st, report, err := f.svc.Lookup(context.Background(), okID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusDone, st.Status)
	require.NotNil(t, report)
	assert.Equal(t, "s-1", report.StudentID)
	assert.Equal(t, "MS Computer Science", report.Major)
	assert.Contains(t, report.Text, "Core Courses category still requires: 6 credits.")

	st, report, err = f.svc.Lookup(context.Background(), badID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusFailed, st.Status)
	assert.Contains(t, st.Error, "missing required columns")
	require.NotNil(t, report)
	assert.Equal(t, domain.ReportStatusFailed, report.Status)
}

func TestProcessMessageDropsMalformed(t *testing.T) {
	f := newFixture(t)

	err := f.svc.processMessage(context.Background(), "s", &redis.XMessage{ID: "1-0", Values: map[string]interface{}{"init": "dummy"}})
	require.NoError(t, err)
	err = f.svc.processMessage(context.Background(), "s", &redis.XMessage{ID: "2-0", Values: map[string]interface{}{
		"task_type": task.AdviseTaskType, "task_data": "{not json",
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"1-0", "2-0"}, f.queue.ackedIDs())
	assert.Empty(t, f.repo.reports)
}

func TestProcessMessageLeavesPendingOnStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failing = true

	data, err := (&task.AdviseTask{RequestID: "r-1", Transcript: transcriptText}).TaskValue()
	require.NoError(t, err)

	err = f.svc.processMessage(context.Background(), "s", &redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"task_type": task.AdviseTaskType, "task_data": string(data),
	}})
	require.Error(t, err)
	assert.Empty(t, f.queue.ackedIDs())
}

func TestSubmitQueueFailure(t *testing.T) {
	f := newFixture(t)
	f.queue.failAdd = true

	_, err := f.svc.Submit(context.Background(), &task.AdviseTask{Transcript: transcriptText})
	require.Error(t, err)
}

func TestLookupUnknown(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Lookup(context.Background(), "missing")
	require.ErrorIs(t, err, state.ErrNotFound)
}

func TestLookupQueued(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Submit(context.Background(), &task.AdviseTask{Transcript: transcriptText})
	require.NoError(t, err)

	st, report, err := f.svc.Lookup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusQueued, st.Status)
	assert.Nil(t, report)
}
