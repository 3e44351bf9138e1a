// Package reasoning refines an extracted résumé into a summary with strengths
// and gaps measured against the current job market.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobmatch/internal/config"

	"go.uber.org/zap"
)

const (
	ProviderHeuristic = "heuristic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
)

var ErrInvalidInsight = errors.New("invalid insight")

// MarketJob is the part of an active posting the reasoner sees.
type MarketJob struct {
	Title        string
	Requirements []string
}

type Request struct {
	RawText         string
	CandidateSkills []string
	ExperienceHint  string
	Market          []MarketJob
}

type Insight struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
}

type Reasoner interface {
	Analyze(ctx context.Context, req Request) (Insight, error)
}

// Generator returns a model completion expected to hold one JSON object.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ModelReasoner asks a language model for an Insight and validates the reply.
type ModelReasoner struct {
	gen    Generator
	name   string
	logger *zap.Logger
}

func NewModelReasoner(gen Generator, name string, logger *zap.Logger) *ModelReasoner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelReasoner{gen: gen, name: name, logger: logger}
}

func (r *ModelReasoner) Analyze(ctx context.Context, req Request) (Insight, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Insight{}, err
	}

	raw, err := r.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		return Insight{}, fmt.Errorf("%s: %w", r.name, err)
	}

	insight, err := Decode(raw)
	if err != nil {
		r.logger.Warn("model returned unusable insight",
			zap.String("provider", r.name),
			zap.Int("response_len", len(raw)),
			zap.Error(err),
		)
		return Insight{}, err
	}
	return insight, nil
}

// GeneratorFactory builds the model client for a configured provider.
type GeneratorFactory func(ctx context.Context, cfg config.ReasoningConfig) (Generator, error)

// New selects the reasoner named by cfg.Provider. Model providers that fail
// to initialise fall back to the heuristic reasoner.
func New(ctx context.Context, cfg config.ReasoningConfig, factories map[string]GeneratorFactory, logger *zap.Logger) Reasoner {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" || provider == ProviderHeuristic {
		return Heuristic{}
	}

	factory, ok := factories[provider]
	if !ok {
		logger.Warn("unknown reasoning provider, using heuristic", zap.String("provider", provider))
		return Heuristic{}
	}
	gen, err := factory(ctx, cfg)
	if err != nil {
		logger.Warn("reasoning provider unavailable, using heuristic", zap.String("provider", provider), zap.Error(err))
		return Heuristic{}
	}

	logger.Info("reasoning provider ready", zap.String("provider", provider))
	return NewModelReasoner(gen, provider, logger)
}
