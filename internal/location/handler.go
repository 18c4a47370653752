package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/geo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"log/slog"
	"net/http"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID middleware propagates the X-Request-ID header, generating one when
// the request has none. The id is echoed on the response and set on the span.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("http.request_id", id))

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// MaxBatchSize bounds the items of one batch request.
const MaxBatchSize = 100

type Handler struct {
	service    Service
	batchLimit int
}

// NewHandler registers the location routes. batchLimit bounds the provider
// calls in flight for one batch request.
func NewHandler(r *mux.Router, service Service, batchLimit int) *Handler {
	handler := &Handler{service: service, batchLimit: batchLimit}
	r.HandleFunc("/v1/geocode", handler.Geocode).Methods(http.MethodPost)
	r.HandleFunc("/v1/geocode/batch", handler.BatchGeocode).Methods(http.MethodPost)
	r.HandleFunc("/v1/reverse-geocode", handler.ReverseGeocode).Methods(http.MethodPost)
	r.HandleFunc("/v1/reverse-geocode/batch", handler.BatchReverseGeocode).Methods(http.MethodPost)
	r.HandleFunc("/v1/distance", handler.Distance).Methods(http.MethodPost)
	r.HandleFunc("/v1/route", handler.Route).Methods(http.MethodPost)
	r.HandleFunc("/v1/geofence/contains", handler.Contains).Methods(http.MethodPost)
	return handler
}

type PointResponse struct {
	Point geo.LatLng `json:"point"`
}

type PairRequest struct {
	From *geo.LatLng `json:"from"`
	To   *geo.LatLng `json:"to"`
}

type DistanceResponse struct {
	Meters int `json:"meters"`
}

type RouteResponse struct {
	Points []geo.LatLng `json:"points"`
}

type ContainsRequest struct {
	Point *geo.LatLng  `json:"point"`
	Fence []geo.LatLng `json:"fence"`
}

type ContainsResponse struct {
	Inside bool `json:"inside"`
}

type BatchGeocodeRequest struct {
	Addresses []geo.Address `json:"addresses"`
}

type BatchGeocodeResponse struct {
	Points []geo.LatLng `json:"points"`
}

type BatchReverseGeocodeRequest struct {
	Points []geo.LatLng `json:"points"`
}

type BatchReverseGeocodeResponse struct {
	Addresses []geo.Address `json:"addresses"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	var address geo.Address
	if !DecodeJSON(w, r, &address) {
		return
	}

	point, err := h.service.Geocode(r.Context(), address)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, PointResponse{Point: point})
}

func (h *Handler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	var point geo.LatLng
	if !DecodeJSON(w, r, &point) {
		return
	}

	address, err := h.service.ReverseGeocode(r.Context(), point)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, address)
}

func (h *Handler) BatchGeocode(w http.ResponseWriter, r *http.Request) {
	var req BatchGeocodeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := checkBatchSize(len(req.Addresses)); err != nil {
		WriteError(w, r, err)
		return
	}

	points, err := BatchGeocode(r.Context(), h.service, req.Addresses, h.batchLimit)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, BatchGeocodeResponse{Points: points})
}

func (h *Handler) BatchReverseGeocode(w http.ResponseWriter, r *http.Request) {
	var req BatchReverseGeocodeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := checkBatchSize(len(req.Points)); err != nil {
		WriteError(w, r, err)
		return
	}

	addresses, err := BatchReverseGeocode(r.Context(), h.service, req.Points, h.batchLimit)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, BatchReverseGeocodeResponse{Addresses: addresses})
}

func checkBatchSize(n int) error {
	if n == 0 || n > MaxBatchSize {
		return fmt.Errorf("%w: batch must hold 1 to %d items, got %d", ErrInvalidArgument, MaxBatchSize, n)
	}
	return nil
}

func (h *Handler) Distance(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := errors.Join(RequirePoint("from", req.From), RequirePoint("to", req.To)); err != nil {
		WriteError(w, r, err)
		return
	}

	meters, err := h.service.GetDistance(r.Context(), *req.From, *req.To)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, DistanceResponse{Meters: meters})
}

func (h *Handler) Route(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := errors.Join(RequirePoint("from", req.From), RequirePoint("to", req.To)); err != nil {
		WriteError(w, r, err)
		return
	}

	points, err := h.service.GetRoute(r.Context(), *req.From, *req.To)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, RouteResponse{Points: points})
}

func (h *Handler) Contains(w http.ResponseWriter, r *http.Request) {
	var req ContainsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := RequirePoint("point", req.Point); err != nil {
		WriteError(w, r, err)
		return
	}

	trace.SpanFromContext(r.Context()).AddEvent("geofence.contains",
		trace.WithAttributes(attribute.Int("location.fence.vertices", len(req.Fence))))

	WriteJSON(w, http.StatusOK, ContainsResponse{Inside: IsInside(*req.Point, req.Fence)})
}

// RequirePoint fails with ErrInvalidArgument when the named request field
// was absent or null.
func RequirePoint(field string, p *geo.LatLng) error {
	if p == nil {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	return nil
}

// DecodeJSON decodes the request body into v, answering 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, r, fmt.Errorf("%w: malformed request body: %v", ErrInvalidArgument, err))
		return false
	}
	return true
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Unable to write response body", config.ErrAttr(err))
	}
}

// WriteError answers with the status matching the error kind of err and
// records it on the request span.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)

	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", RequestIDFrom(r.Context())),
			config.ErrAttr(err))
		if status == http.StatusInternalServerError {
			message = http.StatusText(status)
		}
	}

	WriteJSON(w, status, ErrorResponse{Error: message})
}

// StatusCode maps an error kind to an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
