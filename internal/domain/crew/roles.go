// Package crew contiene las reglas puras de composición de equipos de buceo.
package crew

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// legacyRoles mapea etiquetas históricas (ya normalizadas) al conjunto cerrado de roles.
// La etiqueta genérica "buzo" no habilita como buzo principal.
var legacyRoles = map[string]entity.CrewRole{
	"supervisor":          entity.CrewRoleSupervisor,
	"supervisor de buceo": entity.CrewRoleSupervisor,
	"supervisor buceo":    entity.CrewRoleSupervisor,
	"dive supervisor":     entity.CrewRoleSupervisor,
	"lead diver":          entity.CrewRoleLeadDiver,
	"buzo principal":      entity.CrewRoleLeadDiver,
	"buzo lider":          entity.CrewRoleLeadDiver,
	"support diver":       entity.CrewRoleSupportDiver,
	"buzo asistente":      entity.CrewRoleSupportDiver,
	"buzo de apoyo":       entity.CrewRoleSupportDiver,
	"buzo emergencia":     entity.CrewRoleSupportDiver,
	"buzo de emergencia":  entity.CrewRoleSupportDiver,
	"asistente":           entity.CrewRoleSupportDiver,
	"buzo":                entity.CrewRoleSupportDiver,
	"diver":               entity.CrewRoleSupportDiver,
}

// normalizeLabel pasa a minúsculas, quita tildes y unifica separadores.
// La cadena de transformadores guarda estado interno: se arma en cada llamada.
func normalizeLabel(s string) string {
	foldAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(foldAccents, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	out = strings.NewReplacer("_", " ", "-", " ").Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// ParseRole convierte una etiqueta de rol (canónica o histórica) al rol canónico.
// Se aplica en el borde de ingreso; dentro del dominio solo circulan roles canónicos.
func ParseRole(label string) (entity.CrewRole, error) {
	if r, ok := legacyRoles[normalizeLabel(label)]; ok {
		return r, nil
	}
	return "", domain.ErrInvalidInput
}
