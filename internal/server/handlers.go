package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Friendly messages returned to clients. Internal details never leak.
const (
	msgEmptyQuestion      = "Please enter a question to continue."
	msgTooShort           = "Your question seems too brief. Could you provide more details?"
	msgTooLong            = "Your question is quite long. Please try to be more concise."
	msgInvalidChars       = "Your question contains invalid characters. Please use standard text."
	msgServiceUnavailable = "I'm currently unable to process requests. Please try again in a moment."
	msgTimeout            = "This is taking longer than expected. Please try asking a simpler question."
	msgProcessingError    = "I encountered an issue processing your question. Please try rephrasing it."
	msgRateLimit          = "You're asking questions too quickly. Please wait a moment before trying again."
)

const (
	minQuestionLen = 5
	maxQuestionLen = 1500
)

var validQuestion = regexp.MustCompile(`^[a-zA-Z0-9\s.,?!\-()'":;/&+@#%]+$`)
var invalidChars = regexp.MustCompile(`[^a-zA-Z0-9\s.,?!\-()'":;/&+@#%]`)

type askRequest struct {
	Question string `json:"question"`
	Model    string `json:"model,omitempty"`
}

type askResponse struct {
	Answer  string `json:"answer"`
	Success bool   `json:"success"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Available bool   `json:"available"`
}

type modelInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Success: false})
}

// validateQuestion normalizes and checks a raw question. It returns the
// cleaned question, or a friendly rejection message.
func validateQuestion(raw string) (string, string) {
	q := strings.Join(strings.Fields(raw), " ")

	if q == "" {
		return "", msgEmptyQuestion
	}
	if len(q) > maxQuestionLen {
		return "", msgTooLong
	}
	if len(q) < minQuestionLen {
		return "", msgTooShort
	}
	if !validQuestion.MatchString(q) {
		q = strings.TrimSpace(invalidChars.ReplaceAllString(q, ""))
		if len(q) < minQuestionLen {
			return "", msgInvalidChars
		}
	}
	return q, ""
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.allow(clientIP(r)) {
		slog.Warn("rate limit exceeded", "client", clientIP(r))
		writeError(w, http.StatusTooManyRequests, msgRateLimit)
		return
	}

	if !s.collection.Available() {
		slog.Error("vector collection not available")
		writeError(w, http.StatusServiceUnavailable, msgServiceUnavailable)
		return
	}

	var req askRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgEmptyQuestion)
		return
	}

	question, rejection := validateQuestion(req.Question)
	if rejection != "" {
		writeError(w, http.StatusBadRequest, rejection)
		return
	}

	slog.Info("question received", "client", clientIP(r), "question", truncate(question, 100))

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	done := make(chan string, 1)
	go func() {
		done <- s.pipeline.Answer(ctx, question, req.Model)
	}()

	select {
	case answer := <-done:
		writeJSON(w, http.StatusOK, askResponse{Answer: answer, Success: true})
	case <-ctx.Done():
		slog.Error("request deadline exceeded", "client", clientIP(r))
		writeError(w, http.StatusGatewayTimeout, msgTimeout)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := s.collection.Available() && s.backend.Ping(ctx) == nil

	status := "online"
	if !healthy {
		status = "limited"
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: status, Available: healthy})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	infos := make([]modelInfo, 0, len(s.models.Registry))
	for key, entry := range s.models.Registry {
		infos = append(infos, modelInfo{
			Key:         key,
			Name:        entry.Name,
			Description: entry.Description,
			Default:     key == s.models.Default,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	writeJSON(w, http.StatusOK, infos)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
