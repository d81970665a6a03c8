package api

import (
	"net/http"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/service"
)

// RequestsHandler handles procurement request endpoints.
type RequestsHandler struct {
	Requests *service.Requests
}

type resolveRequest struct {
	Status model.RequestStatus `json:"status"`
}

// List handles GET /api/requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Requests.ListActive(r.Context(), Actor(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, reqs)
}

// Create handles POST /api/requests. The requester and date come from the
// session and the server clock, never from the body.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.RequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Requests.Submit(r.Context(), Actor(r.Context()), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, req)
}

// Resolve handles PUT /api/requests/{id}.
func (h *RequestsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var body resolveRequest
	if err := decodeJSON(w, r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Requests.Resolve(r.Context(), Actor(r.Context()), id, body.Status)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Archive handles GET /api/requests/archive.
func (h *RequestsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	archived, err := h.Requests.ListArchived(r.Context(), Actor(r.Context()))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if archived == nil {
		archived = []model.ArchivedRequest{}
	}
	jsonResponse(w, http.StatusOK, archived)
}
