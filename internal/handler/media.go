package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"postdeck/internal/httputil"
	"postdeck/internal/model"
	"postdeck/internal/service"
	"postdeck/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
	userService  *service.UserService
}

func NewMediaHandler(mediaService *service.MediaService, userService *service.UserService) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		userService:  userService,
	}
}

// UploadAvatar handles POST /me/avatar (multipart).
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	if err := h.userService.UpdateAvatar(r.Context(), userID, upload.URL, upload.Key); err != nil {
		httputil.WriteInternalError(w, "Failed to save avatar")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

// PresignUpload handles POST /media/presign
func (h *MediaHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req model.PresignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignDraftUpload(r.Context(), &req)
	if err != nil {
		writePresignError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// PresignUploadBatch handles POST /media/presign-batch
func (h *MediaHandler) PresignUploadBatch(w http.ResponseWriter, r *http.Request) {
	var req model.PresignUploadBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignDraftUploadBatch(r.Context(), &req)
	if err != nil {
		writePresignError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func writePresignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidMediaKind):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaKind, "Unsupported media content type")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the 50MB limit")
	default:
		httputil.WriteInternalError(w, "Failed to presign upload")
	}
}
