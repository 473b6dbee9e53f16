package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rohits-web03/sitedrop/internal/utils"
)

const healthProbeTimeout = 3 * time.Second

// GET /health
// Health godoc
// @Summary Service health
// @Description Reports uptime and, best-effort, whether the hosting API answers.
// @Tags Health
// @Produce json
// @Success 200 {object} utils.Payload
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	hostingStatus := "unknown"
	if h.Hosting != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()
		if st, err := h.Hosting.Health(ctx); err != nil {
			hostingStatus = "unreachable"
		} else {
			hostingStatus = st.Status
		}
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "OK",
		Data: map[string]any{
			"status":  "ok",
			"uptime":  time.Since(h.StartedAt).Seconds(),
			"hosting": hostingStatus,
		},
	})
}
