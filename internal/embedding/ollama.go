package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultOllamaURL is the default Ollama API endpoint.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultModel is the Ollama build of all-MiniLM-L6-v2, the
	// sentence-transformers model the corpus was indexed with.
	DefaultModel = "all-minilm:l6-v2"

	// DefaultDimensions is the width of an all-minilm vector.
	DefaultDimensions = 384

	// DefaultTimeout bounds a single request to Ollama.
	DefaultTimeout = 30 * time.Second

	apiPathTags  = "/api/tags"
	apiPathEmbed = "/api/embed"

	// maxErrorBody caps how much of a failed reply ends up in an error.
	maxErrorBody = 512
)

// StatusError is a non-200 reply from Ollama.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ollama returned status %d", e.Code)
	}
	return fmt.Sprintf("ollama returned status %d: %s", e.Code, e.Body)
}

// ModelMissing reports whether Ollama refused the request because the
// model has not been pulled.
func (e *StatusError) ModelMissing() bool {
	return e.Code == http.StatusNotFound
}

// OllamaProvider embeds queries and papers with a model served by Ollama.
// Input longer than the model's context is truncated by Ollama, so a long
// abstract or extracted PDF text still yields a vector.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
	limiter    *rate.Limiter // nil means unlimited
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) OllamaOption {
	return func(p *OllamaProvider) {
		p.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the embedding model.
func WithModel(model string) OllamaOption {
	return func(p *OllamaProvider) {
		p.model = model
	}
}

// WithDimensions sets the vector width every reply must have.
func WithDimensions(dims int) OllamaOption {
	return func(p *OllamaProvider) {
		p.dimensions = dims
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) OllamaOption {
	return func(p *OllamaProvider) {
		p.client.Timeout = timeout
	}
}

// WithRateLimit caps embedding requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) OllamaOption {
	return func(p *OllamaProvider) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		p.client = hc
	}
}

// NewOllamaProvider returns a provider for the all-minilm model on a local
// Ollama unless options say otherwise.
func NewOllamaProvider(opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL:    DefaultOllamaURL,
		model:      DefaultModel,
		dimensions: DefaultDimensions,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// call sends in as JSON (GET when in is nil) and decodes the reply into out.
// Non-200 replies come back as *StatusError.
func (p *OllamaProvider) call(ctx context.Context, path string, in, out interface{}) error {
	method := http.MethodGet
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		method = http.MethodPost
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Embed returns the vector for text, waiting on the rate limit first.
func (p *OllamaProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Embedding{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reply embedReply
	if err := p.call(ctx, apiPathEmbed, embedRequest{Model: p.model, Input: text, Truncate: true}, &reply); err != nil {
		return Embedding{}, err
	}
	if len(reply.Embeddings) != 1 {
		return Embedding{}, fmt.Errorf("ollama returned %d embeddings for one input", len(reply.Embeddings))
	}

	vector := reply.Embeddings[0]
	if len(vector) != p.dimensions {
		return Embedding{}, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(vector), p.dimensions)
	}
	return Embedding{Vector: vector}, nil
}

// ModelName returns the name of the embedding model.
func (p *OllamaProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *OllamaProvider) Dimensions() int {
	return p.dimensions
}

// IsAvailable checks that Ollama answers at the base URL.
func (p *OllamaProvider) IsAvailable(ctx context.Context) error {
	var tags tagsReply
	if err := p.call(ctx, apiPathTags, nil, &tags); err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	return nil
}

// HasModel reports whether the configured model has been pulled.
func (p *OllamaProvider) HasModel(ctx context.Context) (bool, error) {
	var tags tagsReply
	if err := p.call(ctx, apiPathTags, nil, &tags); err != nil {
		return false, fmt.Errorf("checking models: %w", err)
	}
	for _, m := range tags.Models {
		if sameModel(m.Name, p.model) {
			return true, nil
		}
	}
	return false, nil
}

// sameModel compares model names the way Ollama resolves them: an untagged
// name means the ":latest" tag.
func sameModel(a, b string) bool {
	withTag := func(name string) string {
		if strings.Contains(name, ":") {
			return name
		}
		return name + ":latest"
	}
	return withTag(a) == withTag(b)
}

type embedRequest struct {
	Model    string `json:"model"`
	Input    string `json:"input"`
	Truncate bool   `json:"truncate"`
}

type embedReply struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type tagsReply struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}
