// Package events entrega notificaciones de dominio al colaborador externo.
// La entrega es best-effort: una falla se registra y se descarta, nunca revierte la transición de origen.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
)

var _ ports.Notifier = (*Dispatcher)(nil)

// DispatcherConfig parámetros de la cola de salida.
type DispatcherConfig struct {
	Buffer         int
	PublishTimeout time.Duration
	Attempts       int
	RetryDelay     time.Duration
}

func (c *DispatcherConfig) defaults() {
	if c.Buffer <= 0 {
		c.Buffer = 256
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 3 * time.Second
	}
	if c.Attempts <= 0 {
		c.Attempts = 2
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 200 * time.Millisecond
	}
}

// Dispatcher cola de salida con un worker que reenvía al EventPublisher.
type Dispatcher struct {
	pub   ports.EventPublisher
	cfg   DispatcherConfig
	log   zerolog.Logger
	queue chan ports.Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher crea la cola y arranca el worker.
func NewDispatcher(pub ports.EventPublisher, cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	cfg.defaults()
	d := &Dispatcher{
		pub:   pub,
		cfg:   cfg,
		log:   log,
		queue: make(chan ports.Event, cfg.Buffer),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify encola sin bloquear. Con la cola llena o cerrada el evento se descarta y se registra.
func (d *Dispatcher) Notify(evt ports.Event) {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("type", evt.Type).Str("event_id", evt.ID).Msg("cola de eventos cerrada, evento descartado")
		return
	}
	select {
	case d.queue <- evt:
	default:
		d.log.Warn().Str("type", evt.Type).Str("event_id", evt.ID).Msg("cola de eventos llena, evento descartado")
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt ports.Event) {
	var err error
	for attempt := 1; attempt <= d.cfg.Attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
		err = d.pub.Publish(ctx, evt)
		cancel()
		if err == nil {
			return
		}
		if attempt < d.cfg.Attempts {
			time.Sleep(d.cfg.RetryDelay)
		}
	}
	d.log.Warn().Err(err).
		Str("type", evt.Type).
		Str("event_id", evt.ID).
		Str("resource_id", evt.ResourceID).
		Msg("no se pudo publicar el evento")
}

// Close deja de aceptar eventos y espera a vaciar la cola o a que venza ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
