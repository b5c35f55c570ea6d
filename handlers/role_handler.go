package handlers

import (
	"net/http"

	"github.com/clubstack/league-system/services"
)

type RoleHandler struct {
	roleService services.RoleService
}

func NewRoleHandler(roleService services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRoleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, err := h.roleService.CreateRole(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"role": role}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role, err := h.roleService.GetRoleByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"role": role}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.ListRoles(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roles": roles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getUUIDFromURL(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roleService.DeleteRole(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePermissionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	permission, err := h.roleService.CreatePermission(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"permission": permission}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.roleService.ListPermissions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"permissions": permissions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoleHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := getUUIDFromURL(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	permissionID, err := getUUIDFromURL(r, "permissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roleService.GrantPermission(r.Context(), roleID, permissionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := getUUIDFromURL(r, "roleID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	permissionID, err := getUUIDFromURL(r, "permissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roleService.RevokePermission(r.Context(), roleID, permissionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
