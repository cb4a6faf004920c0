package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Buceo-api/internal/application/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher registra los eventos en el log cuando no hay Redis configurado.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish escribe el evento con nivel info.
func (p *LogPublisher) Publish(_ context.Context, evt ports.Event) error {
	p.log.Info().
		Str("event_id", evt.ID).
		Str("type", evt.Type).
		Str("company_id", evt.CompanyID).
		Str("resource_id", evt.ResourceID).
		Interface("data", evt.Data).
		Msg("evento publicado")
	return nil
}
