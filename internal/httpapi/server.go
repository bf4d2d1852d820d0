// Package httpapi exposes the knowledge base and proximity engine over a
// small JSON HTTP surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/signalsfoundry/traffic-simulator/core"
	"github.com/signalsfoundry/traffic-simulator/geom"
	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/internal/observability"
	"github.com/signalsfoundry/traffic-simulator/kb"
)

// Server answers vehicle and proximity queries against a live KB.
type Server struct {
	store     *kb.KnowledgeBase
	proximity *core.ProximityService
	log       logging.Logger
	collector *observability.ProximityCollector
}

// NewServer wires the query surface. collector may be nil; log defaults
// to a noop logger.
func NewServer(store *kb.KnowledgeBase, proximity *core.ProximityService, log logging.Logger, collector *observability.ProximityCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		store:     store,
		proximity: proximity,
		log:       log,
		collector: collector,
	}
}

// Handler builds the route table. Metrics middleware wraps each route
// with a fixed label so vehicle IDs don't leak into label values.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", s.instrument("/healthz", http.HandlerFunc(s.handleHealthz)))
	mux.Handle("GET /vehicles", s.instrument("/vehicles", http.HandlerFunc(s.handleListVehicles)))
	mux.Handle("GET /vehicles/{id}", s.instrument("/vehicles/{id}", http.HandlerFunc(s.handleGetVehicle)))
	mux.Handle("GET /vehicles/{id}/nearest", s.instrument("/vehicles/{id}/nearest", http.HandlerFunc(s.handleNearest)))
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}
	return mux
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	if s.collector == nil {
		return next
	}
	return s.collector.Middleware(route, next)
}

type poseResponse struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AngleDeg float64 `json:"angle_deg"`
}

type vehicleResponse struct {
	ID     string       `json:"id"`
	Name   string       `json:"name,omitempty"`
	Type   string       `json:"type,omitempty"`
	Width  float64      `json:"width"`
	Length float64      `json:"length"`
	Pose   poseResponse `json:"pose"`
}

type vehicleDetailResponse struct {
	vehicleResponse
	Corners [][2]float64 `json:"corners"`
}

type neighborResponse struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance_m"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := s.store.ListVehicles()
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleResponse{
			ID:     v.ID,
			Name:   v.Name,
			Type:   v.Type,
			Width:  v.Width,
			Length: v.Length,
			Pose:   poseResponse{X: v.Pose.X, Y: v.Pose.Y, AngleDeg: v.Pose.AngleDeg},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v := s.store.GetVehicle(id)
	if v == nil {
		http.Error(w, "vehicle not found", http.StatusNotFound)
		return
	}

	obb, err := geom.NewOBB(v.Pose.X, v.Pose.Y, v.Width, v.Length, v.Pose.AngleDeg)
	if err != nil {
		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		log.Error(ctx, "footprint build failed", logging.String("vehicle", id), logging.Err(err))
		http.Error(w, "invalid vehicle footprint", http.StatusInternalServerError)
		return
	}
	corners := make([][2]float64, 0, len(obb))
	for _, c := range obb {
		corners = append(corners, [2]float64{c.X, c.Y})
	}

	writeJSON(w, http.StatusOK, vehicleDetailResponse{
		vehicleResponse: vehicleResponse{
			ID:     v.ID,
			Name:   v.Name,
			Type:   v.Type,
			Width:  v.Width,
			Length: v.Length,
			Pose:   poseResponse{X: v.Pose.X, Y: v.Pose.Y, AngleDeg: v.Pose.AngleDeg},
		},
		Corners: corners,
	})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	radius := 0.0
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "radius must be a non-negative number", http.StatusBadRequest)
			return
		}
		radius = parsed
	}

	neighbors, err := s.proximity.NearestNeighbors(id, radius)
	switch {
	case errors.Is(err, kb.ErrVehicleNotFound):
		http.Error(w, "vehicle not found", http.StatusNotFound)
		return
	case errors.Is(err, geom.ErrInvalidRadius):
		http.Error(w, "invalid radius", http.StatusBadRequest)
		return
	case err != nil:
		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		log.Error(ctx, "nearest query failed", logging.String("vehicle", id), logging.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]neighborResponse, 0, len(neighbors))
	for _, kd := range neighbors {
		out = append(out, neighborResponse{ID: kd.Key, Distance: kd.Distance})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
