package workflow

import (
	"github.com/jhoicas/Buceo-api/internal/domain/crew"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// Estados de completitud documental de una inmersión.
const (
	StatusComplete   = "complete"
	StatusInProgress = "in_progress"
)

// Progress métrica de completitud de bitácoras de una inmersión.
type Progress struct {
	SupervisorSigned bool
	Expected         int
	Completed        int
	Pending          int
	Status           string
}

// Completion calcula expected/completed/pending a partir de la bitácora de supervisor y las de buzo.
// Solo cuentan bitácoras de buzo firmadas cuyo buzo está en el snapshot.
func Completion(sl *entity.SupervisorLog, diverLogs []*entity.DiverLog) Progress {
	p := Progress{Status: StatusInProgress}
	if sl == nil {
		return p
	}
	p.SupervisorSigned = sl.State == entity.DocStateSigned
	expected := map[string]bool{}
	for _, m := range crew.Divers(sl.Snapshot) {
		expected[m.PersonID] = true
	}
	p.Expected = len(expected)
	for _, dl := range diverLogs {
		if dl.State == entity.DocStateSigned && expected[dl.DiverID] {
			p.Completed++
		}
	}
	p.Pending = max(0, p.Expected-p.Completed)
	if p.SupervisorSigned && p.Pending == 0 && p.Expected > 0 {
		p.Status = StatusComplete
	}
	return p
}

// DiverEligibility resultado de la regla de creación de bitácora de buzo.
type DiverEligibility struct {
	Eligible bool
	Reason   string
}

// CanCreateDiverLog: bitácora de supervisor firmada y el buzo presente en su snapshot con rol distinto de supervisor.
// La existencia previa de la bitácora la resuelve la persistencia, no esta regla.
func CanCreateDiverLog(sl *entity.SupervisorLog, diverID string) DiverEligibility {
	if sl == nil {
		return DiverEligibility{Reason: "la inmersión no tiene bitácora de supervisor"}
	}
	if sl.State != entity.DocStateSigned {
		return DiverEligibility{Reason: "la bitácora de supervisor no está firmada"}
	}
	for _, m := range crew.Divers(sl.Snapshot) {
		if m.PersonID == diverID {
			return DiverEligibility{Eligible: true}
		}
	}
	return DiverEligibility{Reason: "el buzo no pertenece al equipo registrado en la bitácora de supervisor"}
}

// EligibleDivers buzos habilitados por una bitácora de supervisor firmada.
func EligibleDivers(sl *entity.SupervisorLog) []entity.CrewMember {
	if sl == nil || sl.State != entity.DocStateSigned {
		return nil
	}
	return crew.Divers(sl.Snapshot)
}
