package dto

// ValidateActionRequest entrada de validateAction.
type ValidateActionRequest struct {
	ActionType  string `json:"action_type" validate:"required"`
	OperationID string `json:"operation_id"`
	ImmersionID string `json:"immersion_id"`
	CrewID      string `json:"crew_id"`
	DiverID     string `json:"diver_id"`
	Date        string `json:"date"`
}

// ValidationIssue error o advertencia del validador.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateActionResponse resultado estructurado del validador.
type ValidateActionResponse struct {
	CanProceed bool              `json:"can_proceed"`
	Reason     string            `json:"reason,omitempty"`
	Errors     []ValidationIssue `json:"errors"`
	Warnings   []ValidationIssue `json:"warnings"`
	Context    map[string]any    `json:"context"`
}
