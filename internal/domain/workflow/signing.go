// Package workflow implementa la máquina de estados de los documentos firmables:
// absent → draft → signed, con anulación auditada de signed a draft.
package workflow

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// RequiredSigners casillas de firma requeridas por tipo de documento.
func RequiredSigners(kind entity.DocKind) []entity.SignerRole {
	switch kind {
	case entity.DocKindHPT:
		return []entity.SignerRole{entity.SignerServiceSupervisor}
	case entity.DocKindAnexoBravo:
		return []entity.SignerRole{entity.SignerServiceSupervisor, entity.SignerPrincipalSupervisor}
	case entity.DocKindSupervisorLog:
		return []entity.SignerRole{entity.SignerSupervisor}
	case entity.DocKindDiverLog:
		return []entity.SignerRole{entity.SignerDiver}
	}
	return nil
}

// MissingSigners casillas requeridas aún sin firma.
func MissingSigners(doc *entity.Document) []entity.SignerRole {
	filled := make(map[entity.SignerRole]bool, len(doc.Signatures))
	for _, s := range doc.Signatures {
		filled[s.Slot] = true
	}
	var out []entity.SignerRole
	for _, r := range RequiredSigners(doc.Kind) {
		if !filled[r] {
			out = append(out, r)
		}
	}
	return out
}

// ApplySignature agrega una firma a un borrador. Cuando todas las casillas quedan cubiertas
// el documento pasa a signed y devuelve true. No persiste nada.
func ApplySignature(doc *entity.Document, sig entity.Signature, now time.Time) (bool, error) {
	switch doc.State {
	case entity.DocStateDraft:
	case entity.DocStateSigned:
		return false, domain.ErrAlreadySigned
	default:
		return false, domain.ErrConflict
	}
	if len(sig.Image) == 0 || sig.SignerName == "" {
		return false, domain.ErrInvalidInput
	}
	required := false
	for _, r := range RequiredSigners(doc.Kind) {
		if r == sig.Slot {
			required = true
			break
		}
	}
	if !required {
		return false, domain.ErrInvalidInput
	}
	for _, s := range doc.Signatures {
		if s.Slot == sig.Slot {
			return false, domain.ErrDuplicate
		}
	}
	if sig.SignedAt.IsZero() {
		sig.SignedAt = now
	}
	doc.Signatures = append(doc.Signatures, sig)
	doc.UpdatedAt = now
	if len(MissingSigners(doc)) > 0 {
		return false, nil
	}
	doc.State = entity.DocStateSigned
	signedAt := now
	doc.SignedAt = &signedAt
	return true, nil
}

// Annul devuelve un documento firmado a borrador descartando las firmas.
// Requiere privilegio de anulación y produce la entrada de auditoría a persistir junto al documento.
func Annul(doc *entity.Document, actor entity.Actor, note string, now time.Time) (*entity.DocumentAudit, error) {
	if !actor.CanOverride() {
		return nil, domain.ErrForbidden
	}
	if doc.State != entity.DocStateSigned {
		return nil, domain.ErrConflict
	}
	audit := &entity.DocumentAudit{
		Kind:            doc.Kind,
		DocumentID:      doc.ID,
		Action:          entity.AuditActionAnnul,
		ActorID:         actor.ID,
		Note:            note,
		SignatureDigest: SignatureDigest(doc.Signatures),
		CreatedAt:       now,
	}
	doc.Signatures = nil
	doc.State = entity.DocStateDraft
	doc.SignedAt = nil
	doc.UpdatedAt = now
	return audit, nil
}

// SignatureDigest huella BLAKE2b-256 del payload de firmas; permite auditar sin retener la firma.
func SignatureDigest(sigs []entity.Signature) string {
	raw, err := json.Marshal(sigs)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
