// Package access resuelve quién controla una entidad (dueño) y decide si un actor
// puede leerla o modificarla.
//
// Las cuatro entidades del dominio (owner, pet, vaccination, vaccine) implementan Entity
// explícitamente; el conjunto de Kind es cerrado.
package access

import (
	"reflect"
	"strings"

	"pet-vaccination-schedule/internal/platform/apperr"
)

// Kind es el tipo de entidad. Conjunto cerrado.
type Kind string

const (
	KindOwner       Kind = "owner"
	KindPet         Kind = "pet"
	KindVaccination Kind = "vaccination"
	KindVaccine     Kind = "vaccine"
)

// owned indica si la entidad tiene dueño (true) o es un recurso compartido (false).
// Un Kind fuera del mapa es un error de programación.
var owned = map[Kind]bool{
	KindOwner:       true,
	KindPet:         true,
	KindVaccination: true,
	KindVaccine:     false,
}

// OwnerRef identifica al Owner que controla una entidad y su identidad externa.
type OwnerRef struct {
	OwnerID string
	UserID  string
}

// Outcome del resolver.
type Outcome int

const (
	// Unresolved: la cadena de propiedad no está cargada o es inconsistente.
	Unresolved Outcome = iota
	// Resolved: Owner encontrado.
	Resolved
	// NoOwner: recurso compartido (catálogo de vacunas).
	NoOwner
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case NoOwner:
		return "no_owner"
	default:
		return "unresolved"
	}
}

// Resolution es el resultado de resolver el dueño de una entidad.
type Resolution struct {
	Outcome Outcome
	Owner   OwnerRef
}

// Owned construye una Resolution con dueño; sin UserID la cadena no sirve y queda Unresolved.
func Owned(ownerID, userID string) Resolution {
	ownerID, userID = strings.TrimSpace(ownerID), strings.TrimSpace(userID)
	if ownerID == "" || userID == "" {
		return Resolution{Outcome: Unresolved}
	}
	return Resolution{Outcome: Resolved, Owner: OwnerRef{OwnerID: ownerID, UserID: userID}}
}

// Shared es la Resolution de los recursos sin dueño.
func Shared() Resolution {
	return Resolution{Outcome: NoOwner}
}

// Unresolvable es la Resolution de una cadena incompleta.
func Unresolvable() Resolution {
	return Resolution{Outcome: Unresolved}
}

// Entity es la capacidad que cada entidad del dominio implementa:
// decir de qué Kind es y recorrer su propia cadena hasta el Owner.
type Entity interface {
	EntityKind() Kind
	ResolveOwner() Resolution
}

// ResolveOwner despacha sobre el Kind. Nunca falla para un Kind conocido con cadena
// incompleta (devuelve Unresolved); sólo devuelve error (*apperr.ProgrammingError) si el
// Kind no existe o si la entidad contradice su Kind (p.ej. un pet "sin dueño").
func ResolveOwner(e Entity) (Resolution, error) {
	if isNil(e) {
		return Unresolvable(), nil
	}

	kind := e.EntityKind()
	hasOwner, known := owned[kind]
	if !known {
		return Resolution{}, apperr.Programming("unknown entity kind %q (%T)", kind, e)
	}

	res := e.ResolveOwner()
	switch {
	case hasOwner && res.Outcome == NoOwner:
		return Resolution{}, apperr.Programming("entity kind %q resolved as shared resource", kind)
	case !hasOwner && res.Outcome != NoOwner:
		return Resolution{}, apperr.Programming("shared entity kind %q resolved an owner", kind)
	}
	return res, nil
}

// isNil cubre también el nil tipado, p.ej. Entity((*pets.Pet)(nil)).
func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
