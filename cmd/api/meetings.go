package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"meethub/internal/events"
	"meethub/internal/params"
	"meethub/internal/store"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

type CreateMeetingPayload struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string  `json:"time" validate:"required,hhmm"`
	Agenda   string  `json:"agenda" validate:"required,max=500"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	Priority string  `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// createMeetingHandler godoc
//
//	@Summary		Create a meeting
//	@Description	Creates a meeting owned by the calling seller. Status always starts as "scheduled".
//	@Tags			meetings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateMeetingPayload	true	"Meeting fields"
//	@Success		201		{object}	store.Meeting
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		403		{object}	error	"Forbidden"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/meetings [post]
func (app *application) createMeetingHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateMeetingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	priority := store.Priority(payload.Priority)
	if priority == "" {
		priority = store.PriorityMedium
	}

	seller := getUserFromContext(r)

	meeting := &store.Meeting{
		Seller:   seller.Username,
		Date:     date,
		Time:     payload.Time,
		Status:   store.StatusScheduled,
		Agenda:   payload.Agenda,
		Location: payload.Location,
		Priority: priority,
	}

	if err := app.store.Meetings.Create(r.Context(), meeting); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	meeting.Code = app.codes.Encode(meeting.ID)
	app.broadcaster.Publish(events.MeetingCreated, meeting)

	if err := app.jsonResponse(w, http.StatusCreated, meeting); err != nil {
		app.internalServerError(w, r, err)
	}
}

// cancelMeetingHandler godoc
//
//	@Summary		Cancel a meeting
//	@Description	Sets a scheduled meeting to cancelled. Fails when the meeting is in any other status.
//	@Tags			meetings
//	@Produce		json
//	@Param			meetingID	path		int	true	"Meeting ID"
//	@Success		200			{object}	store.Meeting
//	@Failure		400			{object}	error	"Invalid Transition"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/meetings/{meetingID}/cancel [put]
func (app *application) cancelMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, err := strconv.ParseInt(chi.URLParam(r, "meetingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid meetingID: %w", err))
		return
	}

	meeting, err := app.store.Meetings.Cancel(r.Context(), meetingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, errors.New("meeting not found"))
		case errors.Is(err, store.ErrInvalidTransition):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	meeting.Code = app.codes.Encode(meeting.ID)
	app.broadcaster.Publish(events.MeetingUpdated, meeting)

	if err := app.jsonResponse(w, http.StatusOK, meeting); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateMeetingPayload struct {
	Date     *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time     *string `json:"time" validate:"omitempty,hhmm"`
	Agenda   *string `json:"agenda" validate:"omitempty,max=500"`
	Location *string `json:"location" validate:"omitempty,max=255"`
	Priority *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status   *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled rescheduled"`
	Deadline *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// updateMeetingHandler godoc
//
//	@Summary		Update a meeting
//	@Description	Applies a partial update to any meeting. Status is written as provided, there is no transition check on this path.
//	@Tags			meetings
//	@Accept			json
//	@Produce		json
//	@Param			meetingID	path		int						true	"Meeting ID"
//	@Param			payload		body		UpdateMeetingPayload	true	"Fields to change"
//	@Success		200			{object}	store.Meeting
//	@Failure		400			{object}	error	"Bad Request"
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/meetings/{meetingID} [put]
func (app *application) updateMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, err := strconv.ParseInt(chi.URLParam(r, "meetingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid meetingID: %w", err))
		return
	}

	var payload UpdateMeetingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	upd := store.MeetingUpdate{
		Time:     payload.Time,
		Agenda:   payload.Agenda,
		Location: payload.Location,
	}
	if payload.Date != nil {
		date, err := time.Parse(dateLayout, *payload.Date)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		upd.Date = &date
	}
	if payload.Deadline != nil {
		deadline, err := time.Parse(dateLayout, *payload.Deadline)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		upd.Deadline = &deadline
	}
	if payload.Priority != nil {
		priority := store.Priority(*payload.Priority)
		upd.Priority = &priority
	}
	if payload.Status != nil {
		status := store.MeetingStatus(*payload.Status)
		upd.Status = &status
	}

	meeting, err := app.store.Meetings.Update(r.Context(), meetingID, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, errors.New("meeting not found"))
		} else {
			app.internalServerError(w, r, err)
		}
		return
	}

	meeting.Code = app.codes.Encode(meeting.ID)
	app.broadcaster.Publish(events.MeetingUpdated, meeting)

	if err := app.jsonResponse(w, http.StatusOK, meeting); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMeetingHandler godoc
//
//	@Summary		Delete a meeting
//	@Description	Removes the meeting and broadcasts the record as it existed before removal.
//	@Tags			meetings
//	@Produce		json
//	@Param			meetingID	path	int	true	"Meeting ID"
//	@Success		200			{object}	map[string]string
//	@Failure		403			{object}	error	"Forbidden"
//	@Failure		404			{object}	error	"Not Found"
//	@Failure		500			{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/meetings/{meetingID} [delete]
func (app *application) deleteMeetingHandler(w http.ResponseWriter, r *http.Request) {
	meetingID, err := strconv.ParseInt(chi.URLParam(r, "meetingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid meetingID: %w", err))
		return
	}

	meeting, err := app.store.Meetings.Delete(r.Context(), meetingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, errors.New("meeting not found"))
		} else {
			app.internalServerError(w, r, err)
		}
		return
	}

	meeting.Code = app.codes.Encode(meeting.ID)
	app.broadcaster.Publish(events.MeetingDeleted, meeting)

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "meeting deleted"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type MeetingListResponse struct {
	Meetings   []store.Meeting   `json:"meetings"`
	Pagination params.Pagination `json:"pagination"`
}

// listMeetingsHandler godoc
//
//	@Summary		List meetings
//	@Description	Returns meetings ordered by ascending date, optionally narrowed to an exact status.
//	@Tags			meetings
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(scheduled, completed, cancelled, rescheduled)
//	@Param			page	query		int		false	"Page number (1-based)"		default(1)
//	@Param			limit	query		int		false	"Items per page (max 50)"	default(10)
//	@Success		200		{object}	MeetingListResponse
//	@Failure		400		{object}	error	"Bad Request"
//	@Failure		401		{object}	error	"Unauthorized"
//	@Failure		500		{object}	error	"Internal Server Error"
//	@Security		ApiKeyAuth
//	@Router			/meetings [get]
func (app *application) listMeetingsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := params.ParsePagination(q)

	filter := store.MeetingFilter{
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if statusStr := q.Get("status"); statusStr != "" {
		status := store.MeetingStatus(statusStr)
		if !status.Valid() {
			app.badRequestResponse(w, r, fmt.Errorf("unknown status: %s", statusStr))
			return
		}
		filter.Status = &status
	}

	meetings, total, err := app.store.Meetings.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	for i := range meetings {
		meetings[i].Code = app.codes.Encode(meetings[i].ID)
	}
	p.ComputeMeta(total)

	if err := app.jsonResponse(w, http.StatusOK, MeetingListResponse{Meetings: meetings, Pagination: p}); err != nil {
		app.internalServerError(w, r, err)
	}
}
