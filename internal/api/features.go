package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hifidac/dacbroker/internal/dac"
)

// handleHealth reports service liveness and the hardware discovery state.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.controller.BasePath() == "" {
		// Process is alive but no hardware was found; features are empty.
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"features": len(s.controller.ListSupportedFeatures()),
	})
}

// handleListFeatures returns the supported-feature catalog in probe order.
func (s *Server) handleListFeatures(w http.ResponseWriter, _ *http.Request) {
	features := s.controller.ListSupportedFeatures()
	writeJSON(w, http.StatusOK, map[string]any{
		"features": features,
		"count":    len(features),
	})
}

// handleValueSpace returns the legal value space for a feature.
func (s *Server) handleValueSpace(w http.ResponseWriter, r *http.Request) {
	feature, ok := s.featureParam(w, r)
	if !ok {
		return
	}

	space, ok := s.controller.ValueSpace(feature)
	if !ok {
		writeNotFound(w, "feature not supported on this unit")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feature": feature,
		"space":   space,
	})
}

// handleGetValue returns the current canonical value of a feature.
func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	feature, ok := s.featureParam(w, r)
	if !ok {
		return
	}
	if !s.controller.IsSupported(feature) {
		writeNotFound(w, "feature not supported on this unit")
		return
	}

	value := s.controller.GetValue(r.Context(), feature)
	writeJSON(w, http.StatusOK, map[string]any{
		"feature": feature,
		"value":   value,
	})
}

// SetValueRequest is the body for PUT /features/{feature}.
type SetValueRequest struct {
	Value int32 `json:"value"`
}

// handleSetValue writes a new value for a feature.
//
// The value is passed through unvalidated against the feature's value
// space; the hardware clamps or ignores out-of-range writes.
func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	feature, ok := s.featureParam(w, r)
	if !ok {
		return
	}
	if !s.controller.IsSupported(feature) {
		writeNotFound(w, "feature not supported on this unit")
		return
	}

	var req SetValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !s.controller.SetValue(r.Context(), feature, req.Value) {
		writeInternalError(w, "failed to persist feature value")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feature": feature,
		"value":   req.Value,
	})
}

// featureParam parses the {feature} URL parameter, writing a 404 for names
// this build does not know at all.
func (s *Server) featureParam(w http.ResponseWriter, r *http.Request) (dac.Feature, bool) {
	feature, err := dac.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		writeNotFound(w, "unknown feature")
		return "", false
	}
	return feature, true
}
