// Package queue serializes document uploads through a single worker so
// only one file is ever in flight. Jobs run strictly in arrival order.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/pipeline"
)

// Validation errors returned synchronously by Enqueue.
var (
	ErrNoFile        = errors.New("no file provided")
	ErrNoApplication = errors.New("no application id provided")
	ErrClosed        = errors.New("queue is closed")
)

// Default phase timeouts. The extraction phase covers OCR, the LLM
// calls, and indexing, so it gets the longer budget.
const (
	DefaultUploadTimeout  = 30 * time.Second
	DefaultExtractTimeout = 60 * time.Second
)

// Status is the lifecycle state of a queued job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Progress checkpoints per phase.
const (
	progressPending    = 0
	progressUploading  = 10
	progressProcessing = 50
	progressCompleted  = 100
)

// Job is a point-in-time snapshot of one queued upload.
type Job struct {
	ID            string           `json:"id"`
	Filename      string           `json:"filename"`
	ApplicationID string           `json:"application_id"`
	Status        Status           `json:"status"`
	Progress      int              `json:"progress"`
	Error         string           `json:"error,omitempty"`
	DocumentID    string           `json:"document_id,omitempty"`
	Result        *pipeline.Result `json:"result,omitempty"`
	EnqueuedAt    time.Time        `json:"enqueued_at"`
}

func (j Job) terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// FileUpload is the raw input accepted by Enqueue.
type FileUpload struct {
	OwnerID  string
	Filename string
	MimeType string
	Data     []byte
}

// Runner executes the two processing phases. *pipeline.Processor
// satisfies it.
type Runner interface {
	Upload(ctx context.Context, req pipeline.UploadRequest) (*document.Document, error)
	Process(ctx context.Context, doc *document.Document) (*pipeline.Result, error)
}

type queued struct {
	job Job
	req pipeline.UploadRequest
}

// UploadQueue owns the job list and the single worker goroutine. Job
// state is mutated only by the worker; everything else reads snapshots.
type UploadQueue struct {
	runner         Runner
	uploadTimeout  time.Duration
	extractTimeout time.Duration

	mu      sync.Mutex
	jobs    []*queued
	subs    map[int]func(Job)
	nextSub int
	closed  bool

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

// New creates the queue and starts its worker. Non-positive timeouts
// select the defaults.
func New(runner Runner, uploadTimeout, extractTimeout time.Duration) *UploadQueue {
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	if extractTimeout <= 0 {
		extractTimeout = DefaultExtractTimeout
	}
	q := &UploadQueue{
		runner:         runner,
		uploadTimeout:  uploadTimeout,
		extractTimeout: extractTimeout,
		subs:           make(map[int]func(Job)),
		wake:           make(chan struct{}, 1),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue validates the upload, appends a pending job, and wakes the
// worker. It returns the job id immediately; processing is async.
func (q *UploadQueue) Enqueue(file FileUpload, applicationID string) (string, error) {
	if file.Filename == "" || len(file.Data) == 0 {
		return "", ErrNoFile
	}
	if applicationID == "" {
		return "", ErrNoApplication
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", ErrClosed
	}
	item := &queued{
		job: Job{
			ID:            uuid.New().String(),
			Filename:      file.Filename,
			ApplicationID: applicationID,
			Status:        StatusPending,
			Progress:      progressPending,
			EnqueuedAt:    time.Now(),
		},
		req: pipeline.UploadRequest{
			OwnerID:       file.OwnerID,
			ApplicationID: applicationID,
			Filename:      file.Filename,
			MimeType:      file.MimeType,
			Data:          file.Data,
		},
	}
	q.jobs = append(q.jobs, item)
	id := item.job.ID
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return id, nil
}

// run is the worker loop. Each wakeup drains every pending job,
// including jobs appended while the drain is in progress.
func (q *UploadQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.quit:
			return
		case <-q.wake:
		}
		for {
			select {
			case <-q.quit:
				return
			default:
			}
			item := q.nextPending()
			if item == nil {
				break
			}
			q.process(item)
		}
	}
}

func (q *UploadQueue) nextPending() *queued {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.jobs {
		if item.job.Status == StatusPending {
			return item
		}
	}
	return nil
}

// process runs both phases for one job. A failed or timed-out job is
// recorded and the worker moves on; it never blocks the rest of the
// queue.
func (q *UploadQueue) process(item *queued) {
	q.update(item, func(j *Job) {
		j.Status = StatusUploading
		j.Progress = progressUploading
	})

	uploadCtx, cancelUpload := context.WithTimeout(context.Background(), q.uploadTimeout)
	doc, err := q.runner.Upload(uploadCtx, item.req)
	cancelUpload()
	if err != nil {
		q.fail(item, phaseError("upload", err, uploadCtx, q.uploadTimeout))
		return
	}

	q.update(item, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = progressProcessing
		j.DocumentID = doc.ID
	})

	extractCtx, cancelExtract := context.WithTimeout(context.Background(), q.extractTimeout)
	result, err := q.runner.Process(extractCtx, doc)
	cancelExtract()
	if err != nil {
		q.fail(item, phaseError("processing", err, extractCtx, q.extractTimeout))
		return
	}

	q.update(item, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = progressCompleted
		j.Result = result
	})
}

// phaseError turns a deadline hit into a distinguishable message so
// callers can tell a stall from a real failure.
func phaseError(phase string, err error, ctx context.Context, budget time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("%s timed out after %s", phase, budget)
	}
	return fmt.Sprintf("%s failed: %v", phase, err)
}

func (q *UploadQueue) fail(item *queued, message string) {
	log.Printf("upload job %s: %s", item.job.ID, message)
	q.update(item, func(j *Job) {
		j.Status = StatusError
		j.Progress = progressPending
		j.Error = message
	})
}

// update mutates the job under the lock and notifies subscribers with
// a snapshot outside it.
func (q *UploadQueue) update(item *queued, fn func(*Job)) {
	q.mu.Lock()
	fn(&item.job)
	snapshot := item.job
	subs := make([]func(Job), 0, len(q.subs))
	for _, sub := range q.subs {
		subs = append(subs, sub)
	}
	q.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

// Jobs returns a snapshot of every job in arrival order.
func (q *UploadQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.jobs))
	for i, item := range q.jobs {
		out[i] = item.job
	}
	return out
}

// Job returns the snapshot for one job id.
func (q *UploadQueue) Job(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.jobs {
		if item.job.ID == id {
			return item.job, true
		}
	}
	return Job{}, false
}

// IsProcessing reports whether any job is currently in flight.
func (q *UploadQueue) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.jobs {
		if item.job.Status == StatusUploading || item.job.Status == StatusProcessing {
			return true
		}
	}
	return false
}

// CompletedCount returns how many jobs finished successfully.
func (q *UploadQueue) CompletedCount() int {
	return q.countByStatus(StatusCompleted)
}

// ErrorCount returns how many jobs failed.
func (q *UploadQueue) ErrorCount() int {
	return q.countByStatus(StatusError)
}

func (q *UploadQueue) countByStatus(status Status) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, item := range q.jobs {
		if item.job.Status == status {
			n++
		}
	}
	return n
}

// ClearCompleted drops terminal jobs from the list. Pending and
// in-flight jobs are untouched.
func (q *UploadQueue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.jobs[:0]
	for _, item := range q.jobs {
		if !item.job.terminal() {
			kept = append(kept, item)
		}
	}
	q.jobs = kept
}

// Notify registers a subscriber called with a job snapshot on every
// state change, and returns a function that removes it. Subscribers
// run on the worker goroutine and must not block.
func (q *UploadQueue) Notify(fn func(Job)) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.subs, id)
	}
}

// Close stops the worker after the in-flight job finishes. Remaining
// pending jobs are not run.
func (q *UploadQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.quit)
	<-q.done
}
