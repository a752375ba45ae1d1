package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"meethub/internal/mailer"
	"meethub/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// listSellersHandler godoc
//
//	@Summary		List sellers
//	@Description	Returns every seller account, ordered by username.
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}		store.User
//	@Failure		403	{object}	error	"Forbidden"
//	@Failure		500	{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/sellers [get]
func (app *application) listSellersHandler(w http.ResponseWriter, r *http.Request) {
	sellers, err := app.store.Users.ListByRole(r.Context(), store.RoleSeller)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sellers); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateSellerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

// createSellerHandler godoc
//
//	@Summary		Create a seller
//	@Description	Creates a seller account. When an email is supplied an invitation is sent best-effort.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateSellerPayload	true	"Seller credentials"
//	@Success		201		{object}	store.User
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		409		{object}	error	"Conflict"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users [post]
func (app *application) createSellerHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSellerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		Username: payload.Username,
		Role:     store.RoleSeller,
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			app.conflictResponse(w, r, err)
		} else {
			app.internalServerError(w, r, err)
		}
		return
	}

	// The invitation is best-effort: a mail failure never fails the request.
	if payload.Email != "" {
		invitationID := uuid.New().String()
		go func() {
			vars := struct {
				Username     string
				LoginURL     string
				InvitationID string
			}{
				Username:     user.Username,
				LoginURL:     fmt.Sprintf("%s/login", app.config.frontendURL),
				InvitationID: invitationID,
			}

			status, err := app.mailer.Send(mailer.SellerInvitationTemplate, user.Username, payload.Email, vars)
			if err != nil {
				app.logger.Errorw("error sending invitation email", "username", user.Username, "invitation", invitationID, "error", err)
				return
			}
			app.logger.Infow("invitation email sent", "username", user.Username, "invitation", invitationID, "status code", status)
		}()
	}

	if err := app.jsonResponse(w, http.StatusCreated, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteSellerHandler godoc
//
//	@Summary		Delete a seller
//	@Description	Removes a seller account. Manager accounts cannot be deleted through this endpoint.
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	map[string]string
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		404		{object}	error	"Not Found"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/users/{userID} [delete]
func (app *application) deleteSellerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid userID: %w", err))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, errors.New("seller not found"))
		} else {
			app.internalServerError(w, r, err)
		}
		return
	}
	if user.Role != store.RoleSeller {
		app.notFoundResponse(w, r, errors.New("seller not found"))
		return
	}

	if err := app.store.Users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, errors.New("seller not found"))
		} else {
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "seller deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
