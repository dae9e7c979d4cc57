// Package service is the prompt-to-records facade: it validates the
// request, charges quota, analyzes the prompt, resolves targets, runs
// the orchestrator and shapes the response. It never panics on user
// input; every failure becomes a structured response.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/promptscrape/internal/engine"
	"github.com/law-makers/promptscrape/internal/prompt"
	"github.com/law-makers/promptscrape/internal/quota"
	"github.com/law-makers/promptscrape/internal/resolver"
	"github.com/law-makers/promptscrape/pkg/models"
)

const (
	// MinPromptLen and MaxPromptLen bound the trimmed prompt
	MinPromptLen = 1
	MaxPromptLen = 500
	// MaxExplicitItems caps a caller-supplied max_items
	MaxExplicitItems = 100
)

// Runner executes resolved targets; satisfied by orchestrator.Orchestrator
type Runner interface {
	Run(ctx context.Context, targets []models.TargetDescriptor, reqs models.Requirements) *models.Outcome
}

// Service wires the pipeline stages behind one Scrape call
type Service struct {
	analyzer *prompt.Analyzer
	resolver *resolver.Resolver
	runner   Runner
	quota    *quota.Tracker // nil disables the quota gate
}

// New creates a Service. Pass a nil tracker to disable quota.
func New(analyzer *prompt.Analyzer, res *resolver.Resolver, runner Runner, tracker *quota.Tracker) *Service {
	return &Service{
		analyzer: analyzer,
		resolver: res,
		runner:   runner,
		quota:    tracker,
	}
}

// Analyze exposes prompt analysis without scraping, for dry runs
func (s *Service) Analyze(raw string) (models.ParsedIntent, error) {
	if err := validatePrompt(raw); err != nil {
		return models.ParsedIntent{}, err
	}
	return s.analyzer.Analyze(raw), nil
}

// Scrape runs the full pipeline for one request. The returned response
// always has Success and Message set; an error return means the
// request itself was rejected (bad prompt, quota).
func (s *Service) Scrape(ctx context.Context, req models.ScrapeRequest, reqs models.Requirements) (*models.ScrapeResponse, error) {
	if err := validatePrompt(req.Prompt); err != nil {
		return nil, err
	}

	if s.quota != nil {
		ok, err := s.quota.Spend(req.Identity, req.Admin)
		if err != nil {
			return nil, engine.NewError(engine.KindQuotaExceeded, "quota ledger unavailable", err)
		}
		if !ok {
			return nil, engine.NewError(engine.KindQuotaExceeded,
				fmt.Sprintf("daily scrape limit reached for %s", req.Identity), nil)
		}
	}

	parsed := s.analyzer.Analyze(req.Prompt)
	reqs = deriveRequirements(parsed, req, reqs)

	targets := s.resolver.Resolve(parsed)
	if len(targets) == 0 {
		log.Info().Str("prompt", req.Prompt).Msg("No targets resolved")
		return &models.ScrapeResponse{
			Results: []*models.Record{},
			Success: false,
			Message: "could not determine any website to scrape from the prompt",
		}, nil
	}

	outcome := s.runner.Run(ctx, targets, reqs)

	resp := &models.ScrapeResponse{
		Results:        outcome.Records,
		Website:        primaryWebsite(targets),
		RecordCount:    len(outcome.Records),
		FailedWebsites: outcome.Failed,
		PageSnapshots:  outcome.PageSnapshots,
	}

	if len(outcome.Records) == 0 {
		resp.Success = false
		resp.Message = "no records could be extracted from the resolved targets"
		return resp, nil
	}

	resp.Success = true
	resp.Message = fmt.Sprintf("extracted %d records from %d of %d targets",
		len(outcome.Records), outcome.Succeeded, len(targets))
	return resp, nil
}

// validatePrompt enforces the trimmed length bounds
func validatePrompt(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < MinPromptLen {
		return engine.NewError(engine.KindInvalidPrompt, "prompt is empty", nil)
	}
	if len(trimmed) > MaxPromptLen {
		return engine.NewError(engine.KindInvalidPrompt,
			fmt.Sprintf("prompt exceeds %d characters", MaxPromptLen), nil)
	}
	return nil
}

// deriveRequirements folds the parsed intent into the caller's
// requirements. Explicit settings win; the prompt's inferred field
// list fills the gap when the caller named no fields, with inferred
// image/link fields switching on the matching capture flags.
func deriveRequirements(parsed models.ParsedIntent, req models.ScrapeRequest, reqs models.Requirements) models.Requirements {
	reqs.MaxItems = reconcileMaxItems(req.MaxItems, parsed.MaxItems)

	if len(reqs.Fields) == 0 && len(parsed.Fields) > 0 {
		reqs.Fields = append([]string(nil), parsed.Fields...)
		for _, f := range parsed.Fields {
			switch f {
			case "image":
				reqs.IncludeImages = true
			case "link":
				reqs.IncludeLinks = true
			}
		}
	}
	return reqs
}

// reconcileMaxItems merges an explicit request cap with the count
// parsed from the prompt: the smaller wins, and an explicit cap is
// itself bounded
func reconcileMaxItems(explicit, parsed int) int {
	if explicit > 0 {
		if explicit > MaxExplicitItems {
			explicit = MaxExplicitItems
		}
		if parsed > 0 && parsed < explicit {
			return parsed
		}
		return explicit
	}
	if parsed > 0 {
		return prompt.ClampItems(parsed)
	}
	return prompt.DefaultMaxItems
}

// primaryWebsite is the first target's domain, the site the response
// is attributed to
func primaryWebsite(targets []models.TargetDescriptor) string {
	if len(targets) == 0 {
		return ""
	}
	return targets[0].Domain
}
