package handlers

import (
	"net/http"

	"github.com/clubstack/league-system/services"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateActivityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.CreateActivity(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.GetActivityByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activityService.ListActivities(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"activities": activities}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateActivityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	activity, err := h.activityService.UpdateActivity(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"activity": activity}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "activityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.activityService.DeleteActivity(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
