// Package chatbot talks to an external completion endpoint for the in-app
// travel assistant. Like the rest of the app it degrades silently: when the
// endpoint is missing, slow or broken, the user gets a canned reply instead
// of an error.
package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// fallbackReply is returned whenever the completion endpoint cannot answer.
const fallbackReply = "Je ne peux pas répondre pour le moment. Consultez votre liste d'étapes pour connaître la prochaine démarche à effectuer."

// Config holds assistant configuration from environment variables. An empty
// Endpoint leaves the assistant in canned-reply mode.
type Config struct {
	Endpoint string
	APIKey   string
}

// Service sends user questions to the completion endpoint.
type Service struct {
	config Config
	client *http.Client
}

func NewService(cfg Config) *Service {
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Configured reports whether a completion endpoint is set.
func (s *Service) Configured() bool {
	return s.config.Endpoint != ""
}

type completionRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

type completionResponse struct {
	Reply string `json:"reply"`
}

// Ask sends the user's question and returns the assistant's reply. Any
// failure, including an unconfigured endpoint, yields the canned fallback.
func (s *Service) Ask(ctx context.Context, message, userContext string) string {
	if !s.Configured() {
		return fallbackReply
	}

	reply, err := s.complete(ctx, message, userContext)
	if err != nil {
		return fallbackReply
	}
	return reply
}

func (s *Service) complete(ctx context.Context, message, userContext string) (string, error) {
	body, err := json.Marshal(completionRequest{Message: message, Context: userContext})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if cr.Reply == "" {
		return "", fmt.Errorf("completion endpoint returned an empty reply")
	}
	return cr.Reply, nil
}
