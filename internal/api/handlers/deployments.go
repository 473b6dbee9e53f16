package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rohits-web03/sitedrop/internal/api/middleware"
	"github.com/rohits-web03/sitedrop/internal/observability"
	"github.com/rohits-web03/sitedrop/internal/utils"
	"gorm.io/gorm"
)

const artifactURLExpiry = 15 * time.Minute

// GET /api/v1/deployments
// ListDeployments godoc
// @Summary List my deployments
// @Description Returns the caller's active deployments, newest first.
// @Tags Deployments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload{data=[]models.Deployment}
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 500 {object} utils.Payload "Failed to load deployments"
// @Router /api/v1/deployments [get]
func (h *Handler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	sites, err := h.Service.ListMySites(r.Context(), userID)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to list deployments", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to load deployments")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Deployments retrieved successfully",
		Data:    sites,
	})
}

// GET /api/v1/deployments/{slug}/artifacts/{index}
// PresignArtifact godoc
// @Summary Generate a presigned download URL for a deployed file
// @Description Returns a temporary signed URL to download one archived file (by index) of a deployment. Owners and admins only.
// @Tags Deployments
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Deployment slug"
// @Param index path int true "File index"
// @Success 200 {object} utils.Payload "Presigned download URL generated successfully"
// @Failure 400 {object} utils.Payload "Missing or invalid parameters"
// @Failure 404 {object} utils.Payload "Deployment or file not found"
// @Failure 503 {object} utils.Payload "Archiving is disabled"
// @Router /api/v1/deployments/{slug}/artifacts/{index} [get]
func (h *Handler) PresignArtifact(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	slug := r.PathValue("slug")
	index, err := strconv.Atoi(r.PathValue("index"))
	if slug == "" || err != nil || index < 0 {
		utils.JSONError(w, http.StatusBadRequest, "Missing slug or invalid index")
		return
	}

	if h.Artifacts == nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "Archiving is disabled")
		return
	}

	d, err := h.Deployments.FindBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(w, http.StatusNotFound, "Deployment not found")
			return
		}
		observability.LoggerFromContext(r.Context()).Error("failed to load deployment", "slug", slug, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to load deployment")
		return
	}
	// Other users get the same answer as a missing slug.
	if d.OwnerID != userID && !h.Service.IsAdmin(userID) {
		utils.JSONError(w, http.StatusNotFound, "Deployment not found")
		return
	}
	if index >= d.FileCount {
		utils.JSONError(w, http.StatusNotFound, "File not found")
		return
	}

	exists, err := h.Artifacts.HasArtifact(r.Context(), d.Slug, index)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to check artifact", "slug", slug, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to check archived file")
		return
	}
	if !exists {
		utils.JSONError(w, http.StatusNotFound, "File was not archived")
		return
	}

	url, err := h.Artifacts.PresignArtifact(r.Context(), d.Slug, index, artifactURLExpiry)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to presign artifact", "slug", slug, "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Presigned download URL generated successfully",
		Data: map[string]any{
			"url":        url,
			"expires_in": int(artifactURLExpiry.Seconds()),
		},
	})
}
