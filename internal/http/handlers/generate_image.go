package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"imagerelay/internal/relay"
)

// GenerateImage is the relay endpoint: authenticate the caller, generate the
// image upstream, store it and answer with its public URL.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	logger := a.logger(r)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("generate image panicked")
			a.json(w, http.StatusInternalServerError, relay.Failed(relay.MsgProcessingFailed))
		}
	}()

	if err := relay.Authenticate(r.Context(), a.Credentials, r.Header.Get(relay.HeaderClientAPIKey)); err != nil {
		logger.Warn().Err(err).Msg("rejected relay caller")
		a.json(w, relay.StatusCode(err), relay.Failed(relay.PublicMessage(err)))
		return
	}

	var req relay.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		err = &relay.Error{Kind: relay.KindParse, Op: "decode", Err: fmt.Errorf("invalid payload: %w", err)}
		logger.Error().Err(err).Msg("generate image failed")
		a.json(w, relay.StatusCode(err), relay.Failed(relay.PublicMessage(err)))
		return
	}
	logger.Debug().Str("prompt", req.Text).Msg("received prompt")

	url, err := a.Relay.Generate(r.Context(), req.Text)
	if err != nil {
		logger.Error().Err(err).Str("kind", relay.KindOf(err).String()).Msg("generate image failed")
		a.json(w, relay.StatusCode(err), relay.Failed(relay.PublicMessage(err)))
		return
	}
	a.json(w, http.StatusOK, relay.Succeeded(url))
}
