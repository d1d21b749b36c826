package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marketplace-api/internal/application/media"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/transport/http/middleware"
)

// UploadHandler serves the media upload proxy endpoints.
type UploadHandler struct {
	svc media.Service
}

func NewUploadHandler(svc media.Service) *UploadHandler {
	return &UploadHandler{svc: svc}
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, domain.MediaClassImage)
}

func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, domain.MediaClassDocument)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request, class string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(12 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	a, err := h.svc.Upload(r.Context(), media.UploadInput{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Class:       class,
		UploaderID:  claims.AccountID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "uploaded", a)
}

func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	publicID := chi.URLParam(r, "publicId")
	isAdmin := claims.Role == domain.RoleAdmin
	if err := h.svc.Delete(r.Context(), publicID, claims.AccountID, isAdmin); err != nil {
		writeServiceError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "deleted")
}
