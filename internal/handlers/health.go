package handlers

import "net/http"

// EngineReporter names the database engine currently in use.
type EngineReporter interface {
	ActiveEngineName() string
}

type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

// Health reports liveness and which database engine serves requests.
func Health(engine EngineReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Engine: engine.ActiveEngineName()})
	}
}
