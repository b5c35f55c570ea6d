package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/clubstack/league-system/middleware"
	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/clubstack/league-system/services"
)

type TenantHandler struct {
	tenantService     services.TenantService
	membershipService services.MembershipService
}

func NewTenantHandler(tenantService services.TenantService, membershipService services.MembershipService) *TenantHandler {
	return &TenantHandler{
		tenantService:     tenantService,
		membershipService: membershipService,
	}
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTenantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		input.CreatorID = &userID
	}

	tenant, err := h.tenantService.CreateTenant(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tenant, err := h.tenantService.GetTenantByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTenantsFilter{}
	q := r.URL.Query()

	if raw := q.Get("activity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid activity_id: %q", raw))
			return
		}
		filter.ActivityID = &id
	}
	if raw := q.Get("type"); raw != "" {
		t := models.TenantType(raw)
		filter.Type = &t
	}
	if raw := q.Get("visibility"); raw != "" {
		v := models.TenantVisibility(raw)
		filter.Visibility = &v
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid limit: %q", raw))
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid offset: %q", raw))
			return
		}
		filter.Offset = offset
	}

	tenants, err := h.tenantService.ListTenants(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenants": tenants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTenantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		input.UpdaterID = &userID
	}

	tenant, err := h.tenantService.UpdateTenant(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tenantService.DeleteTenant(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	tenant, err := h.tenantService.UploadLogo(r.Context(), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tenant": tenant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// --- Членства ---

func (h *TenantHandler) Join(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.membershipService.Join(r.Context(), services.JoinTenantInput{
		UserID:      userID,
		TenantID:    tenantID,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	memberships, err := h.membershipService.ListByTenant(r.Context(), tenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"memberships": memberships}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var body struct {
		RoleID uuid.UUID `json:"role_id"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	membership, err := h.membershipService.AssignRole(r.Context(), userID, tenantID, body.RoleID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TenantHandler) SetMemberStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var body struct {
		Status models.MembershipStatus `json:"status"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.membershipService.SetStatus(r.Context(), userID, tenantID, body.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TenantHandler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	tenantID, err := getUUIDFromURL(r, "tenantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	codes, err := h.membershipService.EffectivePermissions(r.Context(), userID, tenantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"permissions": codes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
