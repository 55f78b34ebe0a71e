// Package boson manages access to the Boson inference endpoint: a pool of
// OpenAI-compatible clients, one per API key, shared by every model call in
// the pipeline.
package boson

import (
	"errors"
	"math/rand/v2"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Pool holds one client per configured API key. Get spreads calls randomly
// across keys so per-key rate limits do not stall the stream.
type Pool struct {
	clients []openai.Client
}

// NewPool builds one client per API key against the given base URL.
func NewPool(baseURL string, apiKeys []string) (*Pool, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("at least one Boson API key is required")
	}
	clients := make([]openai.Client, 0, len(apiKeys))
	for _, key := range apiKeys {
		clients = append(clients, openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(baseURL),
		))
	}
	return &Pool{clients: clients}, nil
}

// Get returns a randomly selected client.
func (p *Pool) Get() openai.Client {
	return p.clients[rand.IntN(len(p.clients))]
}

// Size returns the number of pooled clients.
func (p *Pool) Size() int {
	return len(p.clients)
}
