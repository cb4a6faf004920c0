// Package modules resuelve qué módulos están activos para una empresa.
// Es una función pura sobre (catálogo, registro de activaciones): no consulta la DB.
package modules

import (
	"sort"
	"time"

	"github.com/jhoicas/Buceo-api/internal/domain"
	"github.com/jhoicas/Buceo-api/internal/domain/entity"
)

// Catalog módulos conocidos, indexados por nombre.
type Catalog map[string]entity.Module

// DefaultCatalog catálogo de módulos del producto.
func DefaultCatalog() Catalog {
	return NewCatalog(
		entity.Module{Name: entity.ModuleImmersions, Category: "operaciones", Core: true},
		entity.Module{Name: entity.ModuleCrews, Category: "operaciones", Core: true},
		entity.Module{Name: entity.ModuleBitacoras, Category: "documentos", Core: true},
		entity.Module{Name: entity.ModulePlanningOperations, Category: "planificacion"},
		entity.Module{Name: entity.ModuleNetworkMaintenance, Category: "mantencion", DependsOn: []string{entity.ModulePlanningOperations}},
		entity.Module{Name: entity.ModuleReports, Category: "reportes"},
	)
}

// NewCatalog construye un catálogo a partir de una lista de módulos.
func NewCatalog(mods ...entity.Module) Catalog {
	c := make(Catalog, len(mods))
	for _, m := range mods {
		c[m.Name] = m
	}
	return c
}

// Names devuelve los nombres del catálogo ordenados.
func (c Catalog) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve calcula el mapa módulo→activo. Core siempre true; opcionales según el registro
// almacenado (activo y sin vencer), false por defecto. Registros de módulos fuera del catálogo se ignoran.
func Resolve(c Catalog, rec *entity.CompanyModules, now time.Time) map[string]bool {
	out := make(map[string]bool, len(c))
	for name, m := range c {
		if m.Core {
			out[name] = true
			continue
		}
		out[name] = storedActive(rec, name, now)
	}
	return out
}

func storedActive(rec *entity.CompanyModules, name string, now time.Time) bool {
	if rec == nil {
		return false
	}
	r, ok := rec.Records[name]
	if !ok || !r.IsActive {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// CheckActivation valida que el módulo pueda activarse: existe y cada dependencia resuelve activa.
func CheckActivation(c Catalog, rec *entity.CompanyModules, name string, now time.Time) error {
	m, ok := c[name]
	if !ok {
		return domain.ErrUnknownModule
	}
	resolved := Resolve(c, rec, now)
	var missing []string
	for _, dep := range m.DependsOn {
		if !resolved[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return domain.Deny(domain.ReasonDependencyUnmet, "el módulo %s requiere activar: %v", name, missing)
	}
	return nil
}

// CheckDeactivation valida que el módulo pueda desactivarse: no es core y ningún módulo activo depende de él.
func CheckDeactivation(c Catalog, rec *entity.CompanyModules, name string, now time.Time) error {
	m, ok := c[name]
	if !ok {
		return domain.ErrUnknownModule
	}
	if m.Core {
		return domain.Deny(domain.ReasonCoreModuleProtected, "el módulo %s es core y no se puede desactivar", name)
	}
	resolved := Resolve(c, rec, now)
	for _, other := range c.Names() {
		if !resolved[other] || c[other].Core {
			continue
		}
		for _, dep := range c[other].DependsOn {
			if dep == name {
				return domain.Deny(domain.ReasonDependencyUnmet, "el módulo %s es requerido por %s", name, other)
			}
		}
	}
	return nil
}
