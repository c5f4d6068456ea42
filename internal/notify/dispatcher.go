package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/farisali522/birojasaapp/internal/ports"
)

// Mailer delivers one message. Implementations must be safe for concurrent
// use by the single dispatcher worker.
type Mailer interface {
	Send(ctx context.Context, msg ports.Message) error
}

// Dispatcher queues notifications and delivers them off the critical path.
// Callers return before delivery happens; failures are logged and never
// propagate back into the state transition that triggered them.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
	queue  chan ports.Message
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(mailer Mailer, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan ports.Message, 256),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Notify enqueues without blocking. A full queue drops the message: delivery
// is best-effort by contract.
func (d *Dispatcher) Notify(msg ports.Message) {
	if msg.To == "" {
		return
	}
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping", "to", msg.To, "subject", msg.Subject)
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		if err := d.mailer.Send(context.Background(), msg); err != nil {
			d.logger.Error("notification delivery failed", "to", msg.To, "subject", msg.Subject, "err", err)
			continue
		}
		d.logger.Info("notification sent", "to", msg.To, "subject", msg.Subject, "attachment", msg.AttachmentName != "")
	}
}
