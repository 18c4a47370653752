package catalog

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"go.opentelemetry.io/otel/trace"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(r *mux.Router, service *Service) *Handler {
	handler := &Handler{service: service}
	r.HandleFunc("/v1/addresses", handler.CreateEntry).Methods(http.MethodPost)
	r.HandleFunc("/v1/addresses/{id}", handler.GetEntry).Methods(http.MethodGet)
	return handler
}

type CreateEntryRequest struct {
	Address geo.Address `json:"address"`
	Point   *geo.LatLng `json:"point"`
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if !location.DecodeJSON(w, r, &req) {
		return
	}
	if err := location.RequirePoint("point", req.Point); err != nil {
		location.WriteError(w, r, err)
		return
	}

	entry, err := h.service.Register(r.Context(), req.Address, *req.Point)
	if err != nil {
		location.WriteError(w, r, err)
		return
	}

	location.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trace.SpanFromContext(ctx).AddEvent("GetEntry")

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		location.WriteError(w, r, fmt.Errorf("%w: invalid address id", location.ErrInvalidArgument))
		return
	}

	entry, err := h.service.Get(ctx, id)
	if err != nil {
		location.WriteError(w, r, err)
		return
	}

	location.WriteJSON(w, http.StatusOK, entry)
}
