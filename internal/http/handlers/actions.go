package handlers

import (
	"encoding/json"
	"net/http"

	"imagerelay/internal/middleware"
	"imagerelay/internal/relay"
)

// GenerateImageAction lets the browser page invoke the relay action server
// side, so the client-facing key never reaches the browser. It always answers
// 200 with a relay.Result.
func (a *App) GenerateImageAction(w http.ResponseWriter, r *http.Request) {
	var req relay.GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		a.logger(r).Warn().Err(err).Msg("invalid action payload")
		a.json(w, http.StatusOK, relay.Failed("invalid payload"))
		return
	}
	ctx := relay.WithCallerIP(r.Context(), middleware.ClientIP(r))
	a.json(w, http.StatusOK, a.Action.Generate(ctx, req.Text))
}
