package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shopops/backoffice/internal/app/domain/task"
	"github.com/shopops/backoffice/internal/httputil"
)

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.app.Board.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	httputil.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if !httputil.DecodeJSON(w, r, &t) {
		return
	}
	created, err := h.app.Board.Create(r.Context(), t)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.app.Board.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if !httputil.DecodeJSON(w, r, &t) {
		return
	}
	t.ID = mux.Vars(r)["id"]
	updated, err := h.app.Board.Update(r.Context(), t)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Board.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
