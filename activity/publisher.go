package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"taskpad/domain"
)

// Sender is the subset of *azqueue.QueueClient used by the publisher.
type Sender interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
}

// Options sizes the worker pool.
type Options struct {
	Workers int
	Buffer  int
	// Timeout bounds a single enqueue call.
	Timeout time.Duration
	// Handoff is how long Publish may wait for buffer space before dropping.
	Handoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Buffer < 0 {
		o.Buffer = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Handoff < 0 {
		o.Handoff = 0
	}
	return o
}

// Publisher hands events to a pool of workers that write them to a queue.
type Publisher struct {
	q       Sender
	log     *log.Logger
	timeout time.Duration
	handoff time.Duration

	mu     sync.RWMutex
	jobs   chan domain.Event
	closed bool
	wg     sync.WaitGroup
}

var _ domain.Publisher = (*Publisher)(nil)

// New starts the worker pool.
func New(q Sender, logger *log.Logger, opts Options) *Publisher {
	if logger == nil {
		panic("Logger is not initialized")
	}
	opts = opts.withDefaults()
	p := &Publisher{
		q:       q,
		log:     logger,
		timeout: opts.Timeout,
		handoff: opts.Handoff,
		jobs:    make(chan domain.Event, opts.Buffer),
	}
	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Infof("activity publisher started, workers: %d, buffer: %d, timeout: %v, handoff: %v", opts.Workers, opts.Buffer, opts.Timeout, opts.Handoff)
	return p
}

func (p *Publisher) worker(id int) {
	defer p.wg.Done()
	for ev := range p.jobs {
		data, err := sonic.Marshal(ev)
		if err != nil {
			p.log.Errorf("encode activity failed, err: %v, type: %s", err, ev.Type)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		_, err = p.q.EnqueueMessage(ctx, string(data), nil)
		cancel()
		if err != nil {
			p.log.Errorf("enqueue activity failed, err: %v, type: %s, user: %s, worker: %d", err, ev.Type, ev.UserID, id)
		}
	}
}

// Publish never blocks longer than the handoff timeout. Events that do not
// fit are dropped with a warning.
func (p *Publisher) Publish(ev domain.Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	if trySendNonBlocking(p.jobs, ev) {
		return
	}
	if p.handoff > 0 {
		timer := time.NewTimer(p.handoff)
		defer timer.Stop()
		if sendWithTimer(p.jobs, ev, timer.C) {
			return
		}
	}
	p.log.WithFields(log.Fields{"type": ev.Type, "user": ev.UserID, "task": ev.TaskID}).Warn("activity buffer full, event dropped")
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

func trySendNonBlocking(ch chan<- domain.Event, ev domain.Event) bool {
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}

func sendWithTimer(ch chan<- domain.Event, ev domain.Event, timer <-chan time.Time) bool {
	select {
	case ch <- ev:
		return true
	case <-timer:
		return false
	}
}

// NewQueueClient connects to the named queue with the service retry policy.
func NewQueueClient(connStr, name string) (*azqueue.QueueClient, error) {
	opts := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	return azqueue.NewQueueClientFromConnectionString(connStr, name, &opts)
}

// EnsureQueue creates the named queue, ignoring one that already exists.
func EnsureQueue(ctx context.Context, connStr, name string) error {
	if name == "" {
		return nil
	}
	q, err := NewQueueClient(connStr, name)
	if err != nil {
		return err
	}
	if _, err := q.Create(ctx, nil); err != nil {
		var respErr *azcore.ResponseError
		if !(errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists") {
			return err
		}
	}
	return nil
}
