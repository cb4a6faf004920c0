package crew

import "github.com/jhoicas/Buceo-api/internal/domain/entity"

// Composition conteo de integrantes por rol.
type Composition struct {
	Supervisors   int
	LeadDivers    int
	SupportDivers int
}

// Total integrantes del equipo.
func (c Composition) Total() int {
	return c.Supervisors + c.LeadDivers + c.SupportDivers
}

// Compose cuenta los integrantes por rol.
func Compose(members []entity.CrewMember) Composition {
	var c Composition
	for _, m := range members {
		switch m.Role {
		case entity.CrewRoleSupervisor:
			c.Supervisors++
		case entity.CrewRoleLeadDiver:
			c.LeadDivers++
		case entity.CrewRoleSupportDiver:
			c.SupportDivers++
		}
	}
	return c
}

// IsEligible: al menos un supervisor y un buzo principal.
// El directorio no lo impone; lo consumen el planificador y el flujo documental.
func IsEligible(members []entity.CrewMember) bool {
	c := Compose(members)
	return c.Supervisors >= 1 && c.LeadDivers >= 1
}

// Divers integrantes que no son supervisores (los que deben llevar bitácora de buzo).
func Divers(members []entity.CrewMember) []entity.CrewMember {
	out := make([]entity.CrewMember, 0, len(members))
	for _, m := range members {
		if m.Role != entity.CrewRoleSupervisor {
			out = append(out, m)
		}
	}
	return out
}
