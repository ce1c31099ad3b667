// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotelhub/internal/app"
	"hotelhub/internal/domain"
)

const (
	msgHotelNotFound     = "Hotel not found"
	msgReviewNotFound    = "Review not found"
	msgHotelOrRTNotFound = "Hotel or Room Type not found"
	msgHotelAdded        = "Hotel successfully added!"
	msgHotelDeleted      = "Hotel deleted successfully"
	msgReviewDeleted     = "Review deleted successfully"
	msgRoomTypeLinked    = "Room type linked to hotel successfully"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	C     *app.CommandService
	Q     *app.QueryService
	Ready Pinger
}

type message struct {
	Message string `json:"message"`
}

type failure struct {
	Error string `json:"error"`
}

// MountHandlers registers the API under base (e.g. "/api") plus the health
// endpoints at the root.
func (s *Server) MountHandlers(base string, h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)

	s.mux.Route(base, func(r chi.Router) {
		r.Post("/hotels", h.createHotel)
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{hotelId}", h.getHotel)
		r.Delete("/hotels/{hotelId}", h.deleteHotel)

		r.Post("/hotels/{hotelId}/reviews", h.createReview)
		r.Get("/hotels/{hotelId}/reviews", h.listReviews)
		r.Delete("/hotels/{hotelId}/reviews/{reviewId}", h.deleteReview)

		r.Post("/room-types", h.createRoomType)
		r.Post("/hotels/{hotelId}/room-types/{roomTypeId}", h.linkRoomType)
		r.Get("/hotels/{hotelId}/room-types", h.listRoomTypes)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps ErrNotFound to 404 with notFound as the message; anything
// else, validation failures included, is a 500 carrying the error text.
func writeError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, message{Message: notFound})
		return
	}
	writeJSON(w, http.StatusInternalServerError, failure{Error: err.Error()})
}

// decodeBody reads a JSON object into dst. An empty body decodes as {} so
// that missing fields are reported by validation. A value of the wrong type
// is a validation failure of entity; only unparsable JSON is a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, entity string, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return true
	case errors.As(err, &typeErr):
		writeError(w, domain.TypeError(entity, typeErr.Field, typeErr.Type.Kind()), "")
		return false
	default:
		writeJSON(w, http.StatusBadRequest, failure{Error: "invalid JSON body: " + err.Error()})
		return false
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable writes v as a 200 with a weak ETag, or 304 when the client
// already holds that version.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeJSON(w, http.StatusInternalServerError, failure{Error: "encode response failed"})
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.Ready.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, failure{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "ready"})
}

// ---- hotels ----

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.HotelInput
	if !decodeBody(w, r, "hotel", &in) {
		return
	}
	if _, err := h.C.CreateHotel(r.Context(), in); err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, message{Message: msgHotelAdded})
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Q.ListHotels(r.Context())
	if err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hv, err := h.Q.GetHotel(r.Context(), chi.URLParam(r, "hotelId"))
	if err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeCacheable(w, r, hv)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := h.C.DeleteHotel(r.Context(), chi.URLParam(r, "hotelId")); err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: msgHotelDeleted})
}

// ---- reviews ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in domain.ReviewInput
	if !decodeBody(w, r, "review", &in) {
		return
	}
	rv, err := h.C.CreateReview(r.Context(), chi.URLParam(r, "hotelId"), in)
	if err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.HotelReviews(r.Context(), chi.URLParam(r, "hotelId"))
	if err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeCacheable(w, r, rs)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	err := h.C.DeleteReview(r.Context(), chi.URLParam(r, "hotelId"), chi.URLParam(r, "reviewId"))
	if err != nil {
		writeError(w, err, msgReviewNotFound)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: msgReviewDeleted})
}

// ---- room types ----

func (h *Handlers) createRoomType(w http.ResponseWriter, r *http.Request) {
	var in domain.RoomTypeInput
	if !decodeBody(w, r, "roomType", &in) {
		return
	}
	rt, err := h.C.CreateRoomType(r.Context(), in)
	if err != nil {
		writeError(w, err, msgHotelOrRTNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *Handlers) linkRoomType(w http.ResponseWriter, r *http.Request) {
	err := h.C.LinkRoomType(r.Context(), chi.URLParam(r, "hotelId"), chi.URLParam(r, "roomTypeId"))
	if err != nil {
		writeError(w, err, msgHotelOrRTNotFound)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: msgRoomTypeLinked})
}

func (h *Handlers) listRoomTypes(w http.ResponseWriter, r *http.Request) {
	rts, err := h.Q.HotelRoomTypes(r.Context(), chi.URLParam(r, "hotelId"))
	if err != nil {
		writeError(w, err, msgHotelNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rts)
}
