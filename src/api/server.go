// Package api exposes the advisory pipeline over HTTP: a JSON query
// endpoint, a Server-Sent-Events streaming variant, and an agent listing.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	superagent "github.com/agrimind/agrimind"
	"github.com/agrimind/agrimind/src/concurrent"
)

// QueryRequest is the request surface of both query endpoints.
type QueryRequest struct {
	Query     string         `json:"query"`
	Context   map[string]any `json:"context,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
}

// queryResponse is the flat envelope returned by the JSON endpoint.
type queryResponse struct {
	Success         bool                          `json:"success"`
	Response        string                        `json:"response"`
	SOP             *superagent.SynthesizedAnswer `json:"sop,omitempty"`
	SessionID       string                        `json:"session_id"`
	AgentResponses  []agentResponse               `json:"agent_responses"`
	Recommendations []string                      `json:"recommendations"`
	Warnings        []string                      `json:"warnings"`
	ExecutionTime   float64                       `json:"execution_time"`
	Timestamp       string                        `json:"timestamp"`
}

type agentResponse struct {
	AgentName     string         `json:"agent_name"`
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Server wires the pipeline to HTTP handlers. A worker pool caps the number
// of queries processed concurrently; excess requests get 503.
type Server struct {
	agent *superagent.SuperAgent
	pool  *concurrent.WorkerPool
	log   *slog.Logger
}

func NewServer(agent *superagent.SuperAgent, maxConcurrent int, log *slog.Logger) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{agent: agent, pool: concurrent.NewWorkerPool(maxConcurrent), log: log}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /super-agent/query", s.handleQuery)
	mux.HandleFunc("POST /super-agent/query/stream", s.handleQueryStream)
	mux.HandleFunc("GET /super-agent/agents", s.handleAgents)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	var resp superagent.Response
	err := s.pool.Do(r.Context(), func() error {
		resp = s.agent.ProcessQuery(r.Context(), req.Query, req.Context, req.SessionID)
		return nil
	})
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "server busy, try again shortly")
		return
	}

	answers := make([]agentResponse, 0, len(resp.AgentResults))
	for _, ar := range resp.AgentResults {
		answers = append(answers, agentResponse{
			AgentName:     ar.AgentName,
			Success:       ar.Success,
			Data:          ar.Data,
			Error:         ar.Error,
			ExecutionTime: ar.ExecutionTime.Seconds(),
		})
	}

	sop := resp.Answer
	s.writeJSON(w, http.StatusOK, queryResponse{
		Success:         resp.Success,
		Response:        resp.NaturalText,
		SOP:             &sop,
		SessionID:       resp.SessionID,
		AgentResponses:  answers,
		Recommendations: resp.Answer.Recommendations,
		Warnings:        resp.Answer.Warnings,
		ExecutionTime:   resp.ProcessingTime.Seconds(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
}

// sseFrame is one event on the streaming endpoint.
type sseFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeFrame := func(f sseFrame) {
		f.Timestamp = time.Now().UTC().Format(time.RFC3339)
		body, err := json.Marshal(f)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", body)
		flusher.Flush()
	}

	writeFrame(sseFrame{Type: "start", SessionID: req.SessionID})

	chunks, err := s.agent.StreamQuery(r.Context(), req.Query, req.Context)
	if err != nil {
		writeFrame(sseFrame{Type: "error", Error: err.Error()})
		return
	}

	for chunk := range chunks {
		if chunk.Err != nil {
			writeFrame(sseFrame{Type: "error", Error: chunk.Err.Error()})
			return
		}
		if chunk.Delta != "" {
			writeFrame(sseFrame{Type: "chunk", Content: chunk.Delta})
		}
		if chunk.Done {
			break
		}
	}
	writeFrame(sseFrame{Type: "complete", SessionID: req.SessionID})
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	type agentInfo struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Category    string   `json:"category"`
		Tools       []string `json:"tools"`
	}
	cat := s.agent.Catalog()
	agents := make([]agentInfo, 0, cat.Len())
	for _, d := range cat.All() {
		agents = append(agents, agentInfo{
			ID: d.ID, Name: d.Name, Description: d.Description,
			Category: d.Category, Tools: d.Tools,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest parses and validates the body, filling in a session id when
// the caller did not supply one.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (QueryRequest, bool) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	req.Query = strings.TrimSpace(req.Query)
	if n := len(req.Query); n < 1 || n > 1000 {
		s.writeError(w, http.StatusBadRequest, "query must be between 1 and 1000 characters")
		return req, false
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	return req, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
