package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rohits-web03/sitedrop/internal/api/middleware"
	"github.com/rohits-web03/sitedrop/internal/bot"
	"github.com/rohits-web03/sitedrop/internal/utils"
)

const multipartMemory = 8 << 20

type EventFile struct {
	Name    string `json:"name"`
	Content string `json:"content"` // base64
}

// EventRequest is one chat event sent over HTTP. The conversation is always
// the authenticated user's own.
type EventRequest struct {
	Command  string     `json:"command,omitempty"`
	Callback string     `json:"callback,omitempty"`
	Text     string     `json:"text,omitempty"`
	File     *EventFile `json:"file,omitempty"`
}

// POST /api/v1/events
// PostEvent godoc
// @Summary Send a chat event
// @Description Feeds one command, button press, text message or base64 file into the caller's conversation and returns the bot reply.
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Chat event"
// @Success 200 {object} utils.Payload{data=bot.Response}
// @Failure 400 {object} utils.Payload "Invalid event"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/events [post]
func (h *Handler) PostEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	upd := bot.Update{
		UserID:   userID,
		Command:  req.Command,
		Callback: req.Callback,
		Text:     req.Text,
	}
	if req.File != nil {
		content, err := base64.StdEncoding.DecodeString(req.File.Content)
		if err != nil || req.File.Name == "" {
			utils.JSONError(w, http.StatusBadRequest, "File needs a name and base64 content")
			return
		}
		upd.File = &bot.File{
			Name:  req.File.Name,
			Size:  int64(len(content)),
			Fetch: func(context.Context) ([]byte, error) { return content, nil },
		}
	}

	h.dispatch(w, r, upd)
}

// POST /api/v1/events/file
// PostFileEvent godoc
// @Summary Send a file to the conversation
// @Description Multipart variant of the file event, for files too large to base64 comfortably.
// @Tags Events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to stage or deploy"
// @Success 200 {object} utils.Payload{data=bot.Response}
// @Failure 400 {object} utils.Payload "Invalid file upload form"
// @Failure 413 {object} utils.Payload "File too large"
// @Router /api/v1/events/file [post]
func (h *Handler) PostFileEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxFileSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.JSONError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "Invalid file upload form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	// Read before queueing: the job may outlive this request's form.
	content, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	h.dispatch(w, r, bot.Update{
		UserID: userID,
		File: &bot.File{
			Name:  header.Filename,
			Size:  header.Size,
			Fetch: func(context.Context) ([]byte, error) { return content, nil },
		},
	})
}

// dispatch runs the update on the chat's queue so HTTP events are ordered
// with any other events of the same conversation.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, upd bot.Update) {
	upd.ChatID = upd.UserID

	// A queued job still runs after the client gives up, so it gets a
	// context that outlives the request.
	jobCtx := context.WithoutCancel(r.Context())

	var resp bot.Response
	err := h.Dispatcher.Do(r.Context(), upd.ChatID, func() {
		resp = h.Router.Handle(jobCtx, upd)
	})
	if err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "Event could not be processed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Event processed",
		Data:    resp,
	})
}
