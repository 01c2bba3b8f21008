package quizgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/termdojo/internal/domain"
	"github.com/abhisek/termdojo/internal/llm"
	"github.com/abhisek/termdojo/internal/metrics"
	"github.com/abhisek/termdojo/internal/store"
)

// Purpose labels question generation calls in the LLM event log.
const Purpose = llm.PurposeQuestion

const op = "quizgen.generate"

// ProviderFactory builds an llm.Provider for a resolved configuration.
type ProviderFactory func(ctx context.Context, cfg llm.Config) (llm.Provider, error)

// Generator turns a word into a validated Question using the selected
// prompt and an AI backend.
type Generator struct {
	cfg     llm.Config
	prompts PromptSource
	factory ProviderFactory
	metrics *metrics.Metrics

	group     singleflight.Group
	providers sync.Map // cache key -> llm.Provider
}

// Option configures a Generator.
type Option func(*Generator)

// WithEventRepo records every AI call in repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(g *Generator) {
		g.factory = func(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
			return llm.NewProvider(ctx, cfg, repo)
		}
	}
}

// WithProviderFactory replaces the provider constructor.
func WithProviderFactory(f ProviderFactory) Option {
	return func(g *Generator) { g.factory = f }
}

// WithMetrics records generation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a Generator for the given LLM configuration.
func New(cfg llm.Config, prompts PromptSource, opts ...Option) *Generator {
	g := &Generator{
		cfg:     cfg,
		prompts: prompts,
		factory: func(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
			return llm.NewProvider(ctx, cfg, nil)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces one question for req.Word. It makes a single provider
// call and never retries; the caller decides whether to try again.
func (g *Generator) Generate(ctx context.Context, req Request) (*Question, error) {
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return nil, domain.Validation(op, "word is required")
	}

	cfg := g.cfg.WithCredentials(req.Credential, req.Model)
	if cfg.Provider != llm.ProviderMock && cfg.APIKey() == "" {
		g.record(cfg.Provider, domain.KindConfiguration, time.Now())
		return nil, domain.Configuration(op, "no API key configured for provider %q", cfg.Provider)
	}

	pc, err := LoadPromptContext(ctx, g.prompts)
	if err != nil {
		return nil, err
	}

	provider, err := g.provider(ctx, cfg)
	if err != nil {
		g.record(cfg.Provider, domain.KindConfiguration, time.Now())
		return nil, &domain.Error{Kind: domain.KindConfiguration, Op: op, Msg: "cannot initialize AI provider", Err: err}
	}

	callCtx := llm.WithPurpose(ctx, Purpose)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, cfg.Timeout)
		defer cancel()
	}

	llmReq := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: ComposePrompt(pc, word)},
		},
	}
	if cfg.StructuredOutput {
		llmReq.Schema = QuestionSchema
	}

	start := time.Now()
	resp, err := provider.Generate(callCtx, llmReq)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			g.record(cfg.Provider, domain.KindSchemaValidation, start)
			return nil, domain.SchemaValidation(op, string(invalid.Content), err)
		}
		g.record(cfg.Provider, domain.KindUpstream, start)
		return nil, domain.Upstream(op, err)
	}

	q, err := ParseQuestion(resp.Content)
	if err != nil {
		g.record(cfg.Provider, domain.KindSchemaValidation, start)
		return nil, err
	}
	g.record(cfg.Provider, "", start)
	return q, nil
}

// ParseQuestion strips code fences from raw AI output and validates it
// against QuestionSchema.
func ParseQuestion(raw []byte) (*Question, error) {
	text := string(raw)
	cleaned := json.RawMessage(StripCodeFence(text))

	if err := llm.ValidateJSON(QuestionSchema, cleaned); err != nil {
		return nil, domain.SchemaValidation(op, text, err)
	}

	var q Question
	if err := json.Unmarshal(cleaned, &q); err != nil {
		return nil, domain.SchemaValidation(op, text, err)
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Explanation = strings.TrimSpace(q.Explanation)
	if q.Text == "" || q.Explanation == "" {
		return nil, domain.SchemaValidation(op, text, errors.New("question and explanation must not be blank"))
	}
	return &q, nil
}

// provider returns a cached provider for cfg, building it at most once
// even under concurrent first use.
func (g *Generator) provider(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
	key := cacheKey(cfg)
	if p, ok := g.providers.Load(key); ok {
		return p.(llm.Provider), nil
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		if p, ok := g.providers.Load(key); ok {
			return p, nil
		}
		p, err := g.factory(context.WithoutCancel(ctx), cfg)
		if err != nil {
			return nil, err
		}
		g.metrics.RecordProviderBuild(cfg.Provider)
		g.providers.Store(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(llm.Provider), nil
}

func cacheKey(cfg llm.Config) string {
	sum := sha256.Sum256([]byte(cfg.APIKey()))
	return cfg.Provider + "|" + cfg.Model() + "|" + hex.EncodeToString(sum[:8])
}

func (g *Generator) record(provider string, kind domain.Kind, start time.Time) {
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	g.metrics.RecordGeneration(provider, outcome, time.Since(start).Seconds())
}
