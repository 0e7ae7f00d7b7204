package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"imagerelay/internal/infra"
	"imagerelay/internal/infra/credentials"
	"imagerelay/internal/relay"
)

const maxBodyBytes = 1 << 20

// Relayer runs the relay stages that follow authentication.
type Relayer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Action is the relay action invoked on behalf of browser clients.
type Action interface {
	Generate(ctx context.Context, prompt string) relay.Result
}

type App struct {
	Config      *infra.Config
	Logger      zerolog.Logger
	Credentials credentials.Provider
	Relay       Relayer
	Action      Action
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, creds credentials.Provider, relayer Relayer, action Action) *App {
	return &App{
		Config:      cfg,
		Logger:      logger,
		Credentials: creds,
		Relay:       relayer,
		Action:      action,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// logger returns the request-scoped logger installed by middleware.Logger,
// falling back to the application logger.
func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
