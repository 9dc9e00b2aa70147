package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/pkg/queue"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) Send(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

type fakeDeliveryLog struct {
	mu      sync.Mutex
	records []*models.EmailLog
}

func (f *fakeDeliveryLog) Record(_ context.Context, log *models.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, log)
	return nil
}

type fakeQueue struct {
	mu         sync.Mutex
	jobs       chan *queue.Job
	retried    []*queue.Job
	dequeueErr error
}

func (f *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	if f.dequeueErr != nil {
		return nil, f.dequeueErr
	}
	select {
	case job := <-f.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeQueue) Retry(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, job)
	return nil
}

func (f *fakeQueue) retryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.retried)
}

func emailJob(t *testing.T, recipient string) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.EmailPayload{
		RegistrantID: uuid.New(),
		Recipient:    recipient,
		Subject:      "Your workshop access links",
		Body:         "links",
	})
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeEmail, Payload: payload}
}

func TestProcessSendsAndLogsDelivery(t *testing.T) {
	mailer := &fakeMailer{}
	log := &fakeDeliveryLog{}
	p := NewEmailProcessor(&fakeQueue{}, mailer, log, nil)

	err := p.Process(context.Background(), emailJob(t, "a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x.com"}, mailer.sent)
	require.Len(t, log.records, 1)
	assert.Equal(t, models.EmailStatusSent, log.records[0].Status)
	assert.Equal(t, "a@x.com", log.records[0].Recipient)
	assert.Empty(t, log.records[0].Error)
}

func TestProcessSendFailureLogsFailedAttempt(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay down")}
	log := &fakeDeliveryLog{}
	p := NewEmailProcessor(&fakeQueue{}, mailer, log, nil)

	err := p.Process(context.Background(), emailJob(t, "a@x.com"))
	require.Error(t, err)

	require.Len(t, log.records, 1)
	assert.Equal(t, models.EmailStatusFailed, log.records[0].Status)
	assert.Contains(t, log.records[0].Error, "relay down")
}

func TestProcessWithoutDeliveryLog(t *testing.T) {
	p := NewEmailProcessor(&fakeQueue{}, &fakeMailer{}, nil, nil)
	assert.NoError(t, p.Process(context.Background(), emailJob(t, "a@x.com")))
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(&fakeQueue{}, &fakeMailer{}, nil, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "j1", Type: "analytics"})
	assert.Error(t, err)
}

func TestProcessRejectsMalformedPayload(t *testing.T) {
	p := NewEmailProcessor(&fakeQueue{}, &fakeMailer{}, nil, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "j1", Type: queue.JobTypeEmail, Payload: []byte("not json")})
	assert.Error(t, err)
}

func TestRunRetriesFailedJobs(t *testing.T) {
	q := &fakeQueue{jobs: make(chan *queue.Job, 1)}
	q.jobs <- emailJob(t, "a@x.com")
	p := NewEmailProcessor(q, &fakeMailer{err: errors.New("relay down")}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return q.retryCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "worker did not stop after cancellation")
	}
	assert.Equal(t, 1, q.retryCount())
}

func TestRunStopsPromptlyDuringDequeueErrors(t *testing.T) {
	q := &fakeQueue{dequeueErr: errors.New("connection refused")}
	p := NewEmailProcessor(q, &fakeMailer{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	// Cancellation must cut the backoff pause short, well under RetryBackoff.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "worker stalled in backoff after cancellation")
	}
}
