// Package config carga la configuración del servicio desde variables de entorno.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AuthMode decide qué AuthVerifier se instancia.
type AuthMode string

const (
	AuthModeDev  AuthMode = "dev"  // headers X-Debug-*, sin verifier
	AuthModeJWT  AuthMode = "jwt"  // HS256 local
	AuthModeOdin AuthMode = "odin" // verificación remota
)

type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`

	// Vacío => repos in-memory.
	DBDSN          string `env:"DB_DSN"`
	MigrateOnStart bool   `env:"DB_MIGRATE_ON_START" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	AppName   string `env:"APP_NAME" envDefault:"pet-vaccination-schedule"`

	AuthMode AuthMode `env:"AUTH_MODE" envDefault:"dev"`
	// Dev con base real sólo si se pide explícitamente (X-Debug-Staff da privilegios a cualquiera).
	AllowDevWithDB bool `env:"AUTH_DEV_ALLOW_DB" envDefault:"false"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	OdinBaseURL string        `env:"ODIN_BASE_URL"`
	OdinAPIKey  string        `env:"ODIN_API_KEY"`
	OdinTimeout time.Duration `env:"ODIN_TIMEOUT" envDefault:"5s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load lee el entorno y valida combinaciones.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse lee el entorno sin validar el modo de auth; lo usan los comandos que no sirven HTTP.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr para http.Server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c Config) Validate() error {
	switch c.AuthMode {
	case AuthModeDev:
		if strings.TrimSpace(c.DBDSN) != "" && !c.AllowDevWithDB {
			return errors.New("AUTH_MODE=dev with DB_DSN requires AUTH_DEV_ALLOW_DB=true; use AUTH_MODE=jwt or odin")
		}
	case AuthModeJWT:
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	case AuthModeOdin:
		if strings.TrimSpace(c.OdinBaseURL) == "" || strings.TrimSpace(c.OdinAPIKey) == "" {
			return errors.New("ODIN_BASE_URL and ODIN_API_KEY are required when AUTH_MODE=odin")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}
