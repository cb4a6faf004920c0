package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Buceo-api/internal/application/documents"
	"github.com/jhoicas/Buceo-api/internal/application/dto"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// DocumentHandler documentos de planificación, bitácoras y firmas.
type DocumentHandler struct {
	gate *documents.Gate
	errorMapper
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(gate *documents.Gate, m errorMapper) *DocumentHandler {
	return &DocumentHandler{gate: gate, errorMapper: m}
}

// docKind acepta guion o guion bajo (anexo-bravo, anexo_bravo).
func docKind(c *fiber.Ctx) (entity.DocKind, bool) {
	kind := entity.DocKind(strings.ReplaceAll(strings.ToLower(c.Params("kind")), "-", "_"))
	return kind, kind.Valid()
}

func invalidKind(c *fiber.Ctx) error {
	return validation(c, "tipo de documento inválido: hpt, anexo_bravo, supervisor_log o diver_log")
}

// CreatePlanning godoc
// @Summary      Crear HPT o Anexo Bravo de la faena
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la faena"
// @Param        kind  path  string                     true  "hpt | anexo_bravo"
// @Param        body  body  dto.CreateDocumentRequest  false "Contenido"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/operations/{id}/documents/{kind} [post]
func (h *DocumentHandler) CreatePlanning(c *fiber.Ctx) error {
	kind, ok := docKind(c)
	if !ok || !kind.IsPlanning() {
		return invalidKind(c)
	}
	var in dto.CreateDocumentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.gate.CreatePlanningDocument(c.UserContext(), GetActor(c), kind, c.Params("id"), in.Content)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Estado de un documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "Tipo"
// @Param        id    path  string  true  "ID del documento"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	kind, ok := docKind(c)
	if !ok {
		return invalidKind(c)
	}
	out, err := h.gate.GetDocument(c.UserContext(), GetActor(c), kind, c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// Sign godoc
// @Summary      Registrar firma en una casilla
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                true  "Tipo"
// @Param        id    path  string                true  "ID del documento"
// @Param        body  body  dto.SignatureRequest  true  "Firma capturada"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}/{id}/sign [post]
func (h *DocumentHandler) Sign(c *fiber.Ctx) error {
	kind, ok := docKind(c)
	if !ok {
		return invalidKind(c)
	}
	var in dto.SignatureRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Slot == "" || len(in.SignatureImage) == 0 {
		return validation(c, "slot y signature_image son requeridos")
	}
	out, err := h.gate.Sign(c.UserContext(), GetActor(c), kind, c.Params("id"), in)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// Annul godoc
// @Summary      Anular firmas (solo administrador)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string            true  "Tipo"
// @Param        id    path  string            true  "ID del documento"
// @Param        body  body  dto.AnnulRequest  false "Nota de auditoría"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/documents/{kind}/{id}/annul [post]
func (h *DocumentHandler) Annul(c *fiber.Ctx) error {
	kind, ok := docKind(c)
	if !ok {
		return invalidKind(c)
	}
	var in dto.AnnulRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.gate.Annul(c.UserContext(), GetActor(c), kind, c.Params("id"), in.Note)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// Audit godoc
// @Summary      Auditoría de anulaciones del documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "Tipo"
// @Param        id    path  string  true  "ID del documento"
// @Success      200   {array}  dto.AuditEntryResponse
// @Router       /api/documents/{kind}/{id}/audit [get]
func (h *DocumentHandler) Audit(c *fiber.Ctx) error {
	kind, ok := docKind(c)
	if !ok {
		return invalidKind(c)
	}
	list, err := h.gate.AuditTrail(c.UserContext(), GetActor(c), kind, c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	out := make([]dto.AuditEntryResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AuditEntryResponse{
			ID:              a.ID,
			Action:          a.Action,
			ActorID:         a.ActorID,
			Note:            a.Note,
			SignatureDigest: a.SignatureDigest,
			CreatedAt:       a.CreatedAt,
		})
	}
	return c.JSON(out)
}

// CreateSupervisorLog godoc
// @Summary      Crear bitácora de supervisor
// @Tags         bitacoras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la inmersión"
// @Param        body  body  dto.CreateDocumentRequest  false "Contenido"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/immersions/{id}/supervisor-log [post]
func (h *DocumentHandler) CreateSupervisorLog(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.gate.CreateSupervisorLog(c.UserContext(), GetActor(c), c.Params("id"), in.Content)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateDiverLog godoc
// @Summary      Crear bitácora de buzo
// @Tags         bitacoras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la inmersión"
// @Param        body  body  dto.CreateDiverLogRequest  true  "Buzo y contenido"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/immersions/{id}/diver-logs [post]
func (h *DocumentHandler) CreateDiverLog(c *fiber.Ctx) error {
	var in dto.CreateDiverLogRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.DiverID == "" {
		return validation(c, "diver_id es requerido")
	}
	out, err := h.gate.CreateDiverLog(c.UserContext(), GetActor(c), c.Params("id"), in.DiverID, in.Payload)
	if err != nil {
		return h.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DiverLogEligibility godoc
// @Summary      ¿Puede el buzo crear su bitácora?
// @Tags         bitacoras
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID de la inmersión"
// @Param        diverId  path  string  true  "ID del buzo"
// @Success      200  {object}  dto.DiverLogEligibilityResponse
// @Router       /api/immersions/{id}/diver-logs/{diverId}/eligibility [get]
func (h *DocumentHandler) DiverLogEligibility(c *fiber.Ctx) error {
	immersionID, diverID := c.Params("id"), c.Params("diverId")
	check, err := h.gate.DiverLogEligibility(c.UserContext(), GetCompanyID(c), immersionID, diverID)
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(dto.DiverLogEligibilityResponse{
		ImmersionID: immersionID,
		DiverID:     diverID,
		Allowed:     check.Allowed,
		Exists:      check.Exists,
		Reason:      check.Reason,
	})
}

// Completion godoc
// @Summary      Completitud de bitácoras de la inmersión
// @Tags         bitacoras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la inmersión"
// @Success      200  {object}  dto.CompletionResponse
// @Router       /api/immersions/{id}/completion [get]
func (h *DocumentHandler) Completion(c *fiber.Ctx) error {
	out, err := h.gate.Completion(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}

// EligibleDivers godoc
// @Summary      Buzos que aún pueden crear bitácora
// @Tags         bitacoras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la inmersión"
// @Success      200  {object}  dto.EligibleDiversResponse
// @Router       /api/immersions/{id}/eligible-divers [get]
func (h *DocumentHandler) EligibleDivers(c *fiber.Ctx) error {
	out, err := h.gate.EligibleDivers(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return h.write(c, err)
	}
	return c.JSON(out)
}
