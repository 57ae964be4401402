package access

import (
	"strings"

	"pet-vaccination-schedule/internal/platform/logger"
	"pet-vaccination-schedule/internal/platform/metrics"
)

// Actor es el usuario autenticado actual (lo provee la capa de auth).
type Actor struct {
	UserID     string
	Privileged bool // staff/admin: saltea chequeos de propiedad
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != ""
}

type Operation string

const (
	Read  Operation = "read"
	Write Operation = "write"
)

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Policy se elige por clase de endpoint.
type Policy string

const (
	// PolicyOwnerOrReadOnly: lectura para cualquier autenticado; escritura dueño o staff.
	PolicyOwnerOrReadOnly Policy = "owner_or_read_only"
	// PolicyOwnerStrict: lectura y escritura sólo dueño o staff.
	PolicyOwnerStrict Policy = "owner_strict"
	// PolicyAdminOrReadOnly: lectura para cualquier autenticado; escritura sólo staff.
	PolicyAdminOrReadOnly Policy = "admin_or_read_only"
)

// Engine decide Allow/Deny por instancia. Sin estado mutable: seguro para uso concurrente.
type Engine struct {
	log     logger.Logger
	metrics *metrics.Metrics
}

type EngineOption func(*Engine)

func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authorize nunca devuelve error: actor anónimo, entidad nil o cadena sin resolver => Deny.
//
// Un ProgrammingError del resolver no se convierte en Deny: se loguea y se relanza
// como panic para que el request termine en 500 (ver middleware.Recover).
func (e *Engine) Authorize(policy Policy, actor Actor, entity Entity, op Operation) Decision {
	kind := Kind("none")
	if !isNil(entity) {
		kind = entity.EntityKind()
	}

	d := e.decide(policy, actor, entity, op)

	if e.metrics != nil {
		e.metrics.AuthzDecisions.WithLabelValues(string(policy), string(kind), string(op), d.String()).Inc()
	}
	if d == Deny {
		e.log.Debug("access denied", logger.Fields{
			"policy":    string(policy),
			"kind":      string(kind),
			"operation": string(op),
			"user_id":   actor.UserID,
		})
	}
	return d
}

// Permits es Authorize como bool, para filtrar listados.
func (e *Engine) Permits(policy Policy, actor Actor, entity Entity, op Operation) bool {
	return bool(e.Authorize(policy, actor, entity, op))
}

func (e *Engine) decide(policy Policy, actor Actor, entity Entity, op Operation) Decision {
	if !actor.Authenticated() || isNil(entity) {
		return Deny
	}

	// Se resuelve siempre (aunque el actor sea staff) para que un Kind desconocido
	// no pase desapercibido.
	res, err := ResolveOwner(entity)
	if err != nil {
		e.log.Error("ownership resolution failed", logger.Fields{
			"error":  err,
			"entity": string(entity.EntityKind()),
		})
		panic(err)
	}
	// cadena incompleta: Deny incluso para lecturas
	if res.Outcome == Unresolved {
		return Deny
	}

	switch policy {
	case PolicyOwnerOrReadOnly:
		if op == Read {
			return Allow
		}
		return ownerOrPrivileged(actor, res)

	case PolicyOwnerStrict:
		return ownerOrPrivileged(actor, res)

	case PolicyAdminOrReadOnly:
		if op == Read {
			return Allow
		}
		return Decision(actor.Privileged)

	default:
		e.log.Warn("unknown policy", logger.Fields{"policy": string(policy)})
		return Deny
	}
}

// ownerOrPrivileged: staff siempre; dueño sólo si la cadena resolvió a su identidad.
// Un recurso compartido (NoOwner) sólo lo escribe staff.
func ownerOrPrivileged(actor Actor, res Resolution) Decision {
	if actor.Privileged {
		return Allow
	}
	if res.Outcome != Resolved {
		return Deny
	}
	return Decision(res.Owner.UserID == strings.TrimSpace(actor.UserID))
}
