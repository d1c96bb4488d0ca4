package cli

import (
	"github.com/docchat-core/client/internal/core"
	"github.com/docchat-core/client/internal/docchat/model"
	pkgredis "github.com/docchat-core/client/pkg/redis"
)

// AppConfig defines all configurable parameters of the client, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`
	// LogFile receives logs while the terminal UI owns the screen.
	LogFile string `envconfig:"LOG_FILE" default:"docchat.log"`

	// Infrastructure
	Redis pkgredis.Config

	Remote  model.RemoteConfig
	Session model.SessionConfig
	Stub    model.StubConfig
}
