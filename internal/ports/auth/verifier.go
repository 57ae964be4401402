package auth

import "context"

// AuthVerifier traduce un bearer token a Claims.
// Implementaciones: adapters/auth/jwt (HS256 local) y adapters/auth/odin (remoto).
// Cualquier error deja el request sin identidad; el handler responde 401.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
