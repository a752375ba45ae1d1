package main

import (
	"errors"
	"net/http"
	"strings"
)

// liveHandler authenticates the observer and joins its websocket connection
// to the fanout hub. Browsers cannot set headers on a websocket handshake,
// so the token may arrive as a query parameter instead.
//
//	@Summary		Subscribe to live meeting updates
//	@Description	Upgrades to a websocket; every meeting mutation is pushed as {type, payload}.
//	@Tags			live
//	@Param			token	query	string	false	"Access token (alternative to the Authorization header)"
//	@Success		101
//	@Failure		401	{object}	error	"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/live [get]
func (app *application) liveHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("missing access token"))
		return
	}

	if _, err := app.userFromToken(r.Context(), token); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if err := app.hub.ServeWS(w, r); err != nil {
		app.logger.Warnw("websocket upgrade failed", "error", err)
	}
}
