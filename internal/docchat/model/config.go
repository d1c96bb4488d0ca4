package model

import "time"

// ================ Config ================
type RemoteConfig struct {
	BaseURL string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"REMOTE_TIMEOUT" default:"120s"`
}

type SessionConfig struct {
	// ID names the journal key. Empty means a fresh random session.
	ID       string        `envconfig:"SESSION_ID"`
	TTL      time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	Language Language      `envconfig:"DOCCHAT_LANGUAGE" default:"english"`
}

type StubConfig struct {
	Addr string `envconfig:"STUB_ADDR" default:":8000"`
}
