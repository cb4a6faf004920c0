package ports

import (
	"context"
	"time"
)

// Tipos de evento de salida.
const (
	EventSupervisorLogSigned = "supervisorLogSigned"
	EventModuleActivated     = "moduleActivated"
	EventModuleDeactivated   = "moduleDeactivated"
	EventCrewAssigned        = "crewAssigned"
	EventCrewUnassigned      = "crewUnassigned"
	EventDocumentSigned      = "documentSigned"
	EventSignatureAnnulled   = "signatureAnnulled"
)

// Event notificación de dominio para el colaborador de notificaciones.
// La entrega es best-effort: ningún consumidor puede depender de recibirla para decidir elegibilidad.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	CompanyID  string            `json:"company_id"`
	ResourceID string            `json:"resource_id"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventPublisher puerto de salida hacia el colaborador de notificaciones (Redis Streams, log, mock).
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Notifier encola eventos sin bloquear al llamador. Lo implementa events.Dispatcher.
type Notifier interface {
	Notify(evt Event)
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

// Notify no hace nada.
func (NopNotifier) Notify(Event) {}
