package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports the catalogue, search index, preference store and event stream",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// Health states, worst last.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

var severity = map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}

// ComponentHealth is one component's state.
type ComponentHealth struct {
	Status  string `json:"status" enum:"healthy,degraded,unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Time the probe took"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the worst component state plus each component.
type HealthResponse struct {
	Status     string                     `json:"status" enum:"healthy,degraded,unhealthy"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthOutput wraps HealthResponse for huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	probes := map[string]func() ComponentHealth{
		"library":     s.probeLibrary,
		"search":      s.probeSearchIndex,
		"preferences": s.probePreferences,
		"sse":         s.probeEvents,
	}

	resp := HealthResponse{
		Status:     statusHealthy,
		Version:    s.version,
		Uptime:     time.Since(s.startedAt).Truncate(time.Second).String(),
		Components: make(map[string]ComponentHealth, len(probes)),
	}
	for name, probe := range probes {
		c := probe()
		resp.Components[name] = c
		if severity[c.Status] > severity[resp.Status] {
			resp.Status = c.Status
		}
	}
	return &HealthOutput{Body: resp}, nil
}

func notConfigured(what string) ComponentHealth {
	return ComponentHealth{Status: statusDegraded, Message: what + " not configured"}
}

// timed runs check and reports unhealthy with failMsg if it errors.
func timed(check func() (string, error), failMsg string) ComponentHealth {
	start := time.Now()
	msg, err := check()
	c := ComponentHealth{Status: statusHealthy, Latency: time.Since(start).String(), Message: msg}
	if err != nil {
		c.Status = statusUnhealthy
		c.Message = failMsg
	}
	return c
}

func (s *Server) probeLibrary() ComponentHealth {
	if s.health.BookCount == nil {
		return notConfigured("library")
	}
	return ComponentHealth{Status: statusHealthy, Message: pluralize(s.health.BookCount(), "book")}
}

func (s *Server) probeSearchIndex() ComponentHealth {
	if s.health.IndexCount == nil {
		return notConfigured("search index")
	}
	return timed(func() (string, error) {
		n, err := s.health.IndexCount()
		return pluralize(int(n), "document"), err
	}, "search index unreachable")
}

func (s *Server) probePreferences() ComponentHealth {
	if s.health.Preferences == nil {
		return notConfigured("preferences")
	}
	return timed(func() (string, error) {
		return "", s.health.Preferences()
	}, "database read failed")
}

func (s *Server) probeEvents() ComponentHealth {
	if s.sseManager == nil {
		return notConfigured("event stream")
	}
	return ComponentHealth{Status: statusHealthy, Message: pluralize(s.sseManager.ClientCount(), "connected client")}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
