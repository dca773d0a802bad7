package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/attachment"
	"github.com/shopops/backoffice/internal/app/services/files"
	"github.com/shopops/backoffice/internal/httputil"
)

// saveUpload reads the multipart "file" part and stores it in the given
// folder. A folder form value, when present, wins.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request, folder string) (attachment.Attachment, bool) {
	if err := r.ParseMultipartForm(files.MaxUploadSize); err != nil {
		httputil.ValidationError(w, "invalid multipart form", "file")
		return attachment.Attachment{}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.ValidationError(w, "file is required", "file")
		return attachment.Attachment{}, false
	}
	defer file.Close()

	if f := r.FormValue("folder"); f != "" {
		folder = f
	}

	a, err := h.app.Files.Save(r.Context(), folder, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		httputil.WriteError(w, err)
		return attachment.Attachment{}, false
	}
	return a, true
}

func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.saveUpload(w, r, "general")
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) listAttachments(w http.ResponseWriter, r *http.Request) {
	attachments, err := h.app.Files.List(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if attachments == nil {
		attachments = []attachment.Attachment{}
	}
	httputil.WriteJSON(w, http.StatusOK, attachments)
}

func (h *Handler) getAttachment(w http.ResponseWriter, r *http.Request) {
	a, err := h.app.Files.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Files.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
