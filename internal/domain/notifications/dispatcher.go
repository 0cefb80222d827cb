package notifications

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"coffee-with-me/internal/platform/logger"
	"coffee-with-me/internal/platform/metrics"
)

var (
	ErrDispatcherClosed = errors.New("dispatcher closed")
	ErrQueueFull        = errors.New("dispatcher queue full")
)

// Publisher es lo único que ven los servicios del write path.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Consumer recibe cada evento publicado. Un error dispara reintento (acotado).
type Consumer interface {
	Name() string
	Consume(ctx context.Context, e Event) error
}

type consumerFunc struct {
	name string
	fn   func(ctx context.Context, e Event) error
}

func (c consumerFunc) Name() string                               { return c.name }
func (c consumerFunc) Consume(ctx context.Context, e Event) error { return c.fn(ctx, e) }

// NewConsumer adapta una función a Consumer.
func NewConsumer(name string, fn func(ctx context.Context, e Event) error) Consumer {
	return consumerFunc{name: name, fn: fn}
}

type DispatcherOptions struct {
	// Shards = cantidad de colas FIFO. Eventos del mismo (actor, dominio) caen siempre en la misma.
	Shards    int
	QueueSize int

	// MaxAttempts por consumer y evento (1 = sin reintento).
	MaxAttempts  int
	RetryInitial time.Duration

	Logger logger.Logger
}

// Dispatcher entrega eventos de forma asíncrona a todos los consumers registrados.
//
// Garantías:
//   - at-least-once por consumer (reintento acotado con backoff exponencial),
//   - orden FIFO por (actor, dominio); nada global,
//   - un consumer que falla o hace panic no afecta a los otros ni a quien publicó.
type Dispatcher struct {
	consumers []Consumer
	queues    []chan Event
	log       logger.Logger

	maxAttempts  int
	retryInitial time.Duration

	mu      sync.RWMutex
	closed  bool
	workers sync.WaitGroup
}

func NewDispatcher(opts DispatcherOptions, consumers ...Consumer) *Dispatcher {
	if opts.Shards <= 0 {
		opts.Shards = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 128
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	d := &Dispatcher{
		consumers:    append([]Consumer(nil), consumers...),
		queues:       make([]chan Event, opts.Shards),
		log:          opts.Logger.With(map[string]any{"component": "dispatcher"}),
		maxAttempts:  opts.MaxAttempts,
		retryInitial: opts.RetryInitial,
	}

	for i := range d.queues {
		q := make(chan Event, opts.QueueSize)
		d.queues[i] = q
		d.workers.Add(1)
		go d.run(q)
	}
	return d
}

// Publish encola el evento y vuelve enseguida; nunca espera a los consumers.
// Con la cola del shard llena devuelve ErrQueueFull y el evento se pierde.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	if !e.Valid() {
		metrics.IncEventsDropped(string(e.Kind()), "invalid")
		return ErrInvalidEvent
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.IncEventsDropped(string(e.Kind()), "closed")
		return ErrDispatcherClosed
	}
	if len(d.consumers) == 0 {
		return nil
	}

	select {
	case d.queues[d.shardFor(e)] <- e:
		metrics.IncEventsPublished(string(e.Kind()))
		return nil
	default:
		metrics.IncEventsDropped(string(e.Kind()), "queue_full")
		return ErrQueueFull
	}
}

// Close deja de aceptar eventos y espera a que se vacíen las colas (o a ctx).
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shardFor(e Event) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(e.Actor().ID, 10)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(e.Domain()))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) run(q <-chan Event) {
	defer d.workers.Done()
	for e := range q {
		d.deliver(e)
	}
}

// deliver termina con todos los consumers antes de tomar el siguiente evento de la cola.
func (d *Dispatcher) deliver(e Event) {
	ctx := context.Background()

	var wg conc.WaitGroup
	for _, c := range d.consumers {
		wg.Go(func() { d.consume(ctx, c, e) })
	}
	wg.Wait()
}

func (d *Dispatcher) consume(ctx context.Context, c Consumer, e Event) {
	log := d.log.With(map[string]any{
		"consumer": c.Name(),
		"event_id": e.ID(),
		"kind":     string(e.Kind()),
		"actor_id": e.Actor().ID,
	})

	start := time.Now()
	attempt := 0

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := invoke(ctx, c, e)
		if err == nil {
			return struct{}{}, nil
		}
		var pe *panicError
		if errors.As(err, &pe) {
			return struct{}{}, backoff.Permanent(err)
		}
		log.Warn("consumer attempt failed", map[string]any{"attempt": attempt, "error": err})
		return struct{}{}, err
	}, backoff.WithBackOff(d.newBackOff()), backoff.WithMaxTries(uint(d.maxAttempts)))

	metrics.ObserveConsumeDuration(c.Name(), string(e.Kind()), time.Since(start).Seconds())

	if err != nil {
		metrics.IncConsumerFailure(c.Name(), string(e.Kind()))
		log.Error("event dropped for consumer", map[string]any{"attempts": attempt, "error": err})
	}
}

func (d *Dispatcher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.retryInitial
	b.MaxInterval = 50 * d.retryInitial
	return b
}

type panicError struct {
	err error
}

func (p *panicError) Error() string { return fmt.Sprintf("consumer panic: %v", p.err) }
func (p *panicError) Unwrap() error { return p.err }

func invoke(ctx context.Context, c Consumer, e Event) (err error) {
	if r := panics.Try(func() { err = c.Consume(ctx, e) }); r != nil {
		return &panicError{err: r.AsError()}
	}
	return err
}
