package dto

import (
	"encoding/json"
	"time"
)

// CreateDocumentRequest contenido libre del documento (formulario).
type CreateDocumentRequest struct {
	Content json.RawMessage `json:"content"`
}

// CreateDiverLogRequest entrada de createDiverLog.
type CreateDiverLogRequest struct {
	DiverID string          `json:"diver_id" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// SignatureRequest firma entregada por el colaborador de captura. La imagen viaja en base64.
type SignatureRequest struct {
	Slot           string    `json:"slot" validate:"required"`
	SignerName     string    `json:"signer_name" validate:"required"`
	SignatureImage []byte    `json:"signature_image" validate:"required"`
	SignedAt       time.Time `json:"signed_at"`
}

// AnnulRequest entrada de annulSignature.
type AnnulRequest struct {
	Note string `json:"note"`
}

// SignatureResponse firma sin la imagen.
type SignatureResponse struct {
	Slot       string    `json:"slot"`
	SignerID   string    `json:"signer_id"`
	SignerName string    `json:"signer_name"`
	SignedAt   time.Time `json:"signed_at"`
}

// DocumentResponse estado autoritativo de un documento tras cada mutación.
type DocumentResponse struct {
	ID             string               `json:"id"`
	Kind           string               `json:"kind"`
	CompanyID      string               `json:"company_id"`
	State          string               `json:"state"`
	OperationID    string               `json:"operation_id,omitempty"`
	ImmersionID    string               `json:"immersion_id,omitempty"`
	DiverID        string               `json:"diver_id,omitempty"`
	CrewID         string               `json:"crew_id,omitempty"`
	Content        json.RawMessage      `json:"content,omitempty"`
	Signatures     []SignatureResponse  `json:"signatures"`
	MissingSigners []string             `json:"missing_signers"`
	Snapshot       []CrewMemberResponse `json:"snapshot,omitempty"`
	Version        int                  `json:"version"`
	SignedAt       *time.Time           `json:"signed_at,omitempty"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// CompletionResponse métrica de completitud de bitácoras de una inmersión.
type CompletionResponse struct {
	ImmersionID      string `json:"immersion_id"`
	SupervisorSigned bool   `json:"supervisor_signed"`
	Expected         int    `json:"expected"`
	Completed        int    `json:"completed"`
	Pending          int    `json:"pending"`
	Status           string `json:"status"`
}

// EligibleDiversResponse buzos habilitados para crear bitácora.
type EligibleDiversResponse struct {
	ImmersionID string               `json:"immersion_id"`
	Divers      []CrewMemberResponse `json:"divers"`
}

// DiverLogEligibilityResponse resultado de canCreateDiverLog.
type DiverLogEligibilityResponse struct {
	ImmersionID string `json:"immersion_id"`
	DiverID     string `json:"diver_id"`
	Allowed     bool   `json:"allowed"`
	Exists      bool   `json:"exists"`
	Reason      string `json:"reason,omitempty"`
}

// AuditEntryResponse entrada de auditoría de un documento.
type AuditEntryResponse struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	ActorID         string    `json:"actor_id"`
	Note            string    `json:"note,omitempty"`
	SignatureDigest string    `json:"signature_digest"`
	CreatedAt       time.Time `json:"created_at"`
}
