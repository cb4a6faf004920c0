package entity

import (
	"encoding/json"
	"time"
)

// DocKind identifica el tipo de documento firmable.
type DocKind string

const (
	DocKindHPT           DocKind = "hpt"
	DocKindAnexoBravo    DocKind = "anexo_bravo"
	DocKindSupervisorLog DocKind = "supervisor_log"
	DocKindDiverLog      DocKind = "diver_log"
)

// IsPlanning indica si el tipo corresponde a un documento de planificación de faena.
func (k DocKind) IsPlanning() bool {
	return k == DocKindHPT || k == DocKindAnexoBravo
}

// Valid indica si el tipo es conocido.
func (k DocKind) Valid() bool {
	switch k {
	case DocKindHPT, DocKindAnexoBravo, DocKindSupervisorLog, DocKindDiverLog:
		return true
	}
	return false
}

// DocState estado del documento. "absent" no se persiste: es la ausencia de fila.
type DocState string

const (
	DocStateAbsent DocState = "absent"
	DocStateDraft  DocState = "draft"
	DocStateSigned DocState = "signed"
)

// SignerRole casilla de firma requerida por un tipo de documento.
type SignerRole string

const (
	SignerServiceSupervisor   SignerRole = "service_supervisor"
	SignerPrincipalSupervisor SignerRole = "principal_supervisor"
	SignerSupervisor          SignerRole = "supervisor"
	SignerDiver               SignerRole = "diver"
)

// Signature firma capturada por el colaborador externo. Solo importan su presencia y la casilla.
type Signature struct {
	Slot       SignerRole `json:"slot"`
	SignerID   string     `json:"signer_id"`
	SignerName string     `json:"signer_name"`
	Image      []byte     `json:"image"`
	SignedAt   time.Time  `json:"signed_at"`
}

// Document cabecera común de todo documento firmable.
type Document struct {
	ID         string
	CompanyID  string
	Kind       DocKind
	State      DocState
	Content    json.RawMessage
	Signatures []Signature
	Version    int
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SignedAt   *time.Time
}

// PlanningDocument HPT o Anexo Bravo de una faena.
type PlanningDocument struct {
	Document
	OperationID string
	CrewID      string // equipo habilitado al momento de crear el borrador
}

// SupervisorLog bitácora del supervisor de una inmersión.
type SupervisorLog struct {
	Document
	ImmersionID string
	CrewID      string
	Snapshot    []CrewMember // copia del equipo al firmar; inmutable una vez firmado
}

// DiverLog bitácora individual de un buzo; única por (inmersión, buzo).
type DiverLog struct {
	Document
	ImmersionID string
	DiverID     string
}

// DocumentAudit registro de auditoría de una anulación de firma.
type DocumentAudit struct {
	ID              string
	Kind            DocKind
	DocumentID      string
	Action          string
	ActorID         string
	Note            string
	SignatureDigest string // BLAKE2b-256 del payload de firmas descartado
	CreatedAt       time.Time
}

// AuditActionAnnul acción de anulación.
const AuditActionAnnul = "annul"
