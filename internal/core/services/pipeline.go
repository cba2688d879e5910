package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forgefit-labs/discovery/internal/core/domain"
	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
	"github.com/forgefit-labs/discovery/internal/logger"
)

// Pipeline bounds. Chosen to keep latency and cost deterministic: at most
// two generate/refine rounds and one repair cycle per candidate.
const (
	maxGenerationRounds = 2
	maxRepairAttempts   = 1
	minBatchCount       = 1
	maxBatchCount       = 5
	maxContextDocs      = 3
	liveFanout          = 2
)

// Tool names on the remote endpoint.
const (
	toolGenerateWorkout = "generate_workout"
	toolRefineWorkout   = "refine_workout"
	toolValidateWorkout = "validate_workout"
)

// candidateDraft is the in-flight shape a candidate takes between tool
// calls. Drafts are replaced, never mutated in place, so an accepted
// candidate is immutable from the moment validation passes.
type candidateDraft struct {
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	Markdown    string         `json:"markdown"`
	Explanation string         `json:"explanation"`
	Sections    []draftSection `json:"sections"`
}

type draftSection struct {
	Title  string      `json:"title"`
	Detail string      `json:"detail,omitempty"`
	Items  []draftItem `json:"items"`
}

type draftItem struct {
	Name         string `json:"name"`
	Prescription string `json:"prescription,omitempty"`
}

// validationResult is what validate_workout reports. Consumed only to
// drive repair.
type validationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// GenerationPipeline executes the bounded generate, refine, validate,
// repair loop against the live tool-calling service, topping up from the
// deterministic fallback so an invocation always yields usable output
// unless both paths are exhausted.
type GenerationPipeline struct {
	tools      driven.ToolCaller
	capability driven.CapabilitySignal
	fallback   *fallbackGenerator
}

// NewGenerationPipeline creates a pipeline. tools may be nil and capability
// may be nil or report false; either disables the live path entirely.
func NewGenerationPipeline(tools driven.ToolCaller, capability driven.CapabilitySignal) *GenerationPipeline {
	return &GenerationPipeline{
		tools:      tools,
		capability: capability,
		fallback:   newFallbackGenerator(),
	}
}

// liveAvailable reports whether the live path may be attempted.
func (p *GenerationPipeline) liveAvailable() bool {
	if p.tools == nil {
		return false
	}
	if p.capability != nil && !p.capability.LiveGenerationAvailable() {
		return false
	}
	return true
}

// Generate produces count validated candidates (count clamped to [1,5]),
// merging live and fallback sources. The batch always reports whether any
// fallback material was used; an error is returned only when zero
// candidates survive both paths.
func (p *GenerationPipeline) Generate(
	ctx context.Context,
	query string,
	trigger domain.GenerationTrigger,
	count int,
	contextDocs []domain.WorkoutDocument,
) (*domain.GenerationBatch, error) {
	if count < minBatchCount {
		count = minBatchCount
	}
	if count > maxBatchCount {
		count = maxBatchCount
	}

	logger.Section("Generation")
	logger.Debug("Generating %d candidates for %q (trigger=%s)", count, query, trigger)

	var live []domain.GeneratedCandidate
	if p.liveAvailable() {
		live = p.generateLive(ctx, query, count, contextDocs)
	} else {
		logger.Debug("Live generation unavailable, using fallback path")
	}

	candidates := live
	if shortfall := count - len(live); shortfall > 0 {
		candidates = append(candidates, p.fallback.generate(query, shortfall)...)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates survived generation for %q: %w", query, domain.ErrGenerationFailed)
	}

	batch := &domain.GenerationBatch{
		Candidates:   candidates,
		Trigger:      trigger,
		UsedFallback: len(live) < len(candidates),
		Note:         fmt.Sprintf("%d/%d live", len(live), count),
	}
	logger.Info("Generation batch: %s (fallback=%t)", batch.Note, batch.UsedFallback)
	return batch, nil
}

// generateLive fans out one generate/refine/validate/repair chain per
// requested candidate. Chains are independent; only the result append is
// shared, guarded by a mutex. Individual failures shrink the result rather
// than failing the batch.
func (p *GenerationPipeline) generateLive(
	ctx context.Context,
	query string,
	count int,
	contextDocs []domain.WorkoutDocument,
) []domain.GeneratedCandidate {
	var (
		mu   sync.Mutex
		live []domain.GeneratedCandidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(liveFanout)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			candidate, err := p.liveCandidate(gctx, query, contextDocs)
			if err != nil {
				logger.Warn("Live candidate failed: %v", err)
				return nil // degrade, never abort the batch
			}
			mu.Lock()
			live = append(live, *candidate)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("Live path produced %d/%d candidates", len(live), count)
	return live
}

// liveCandidate runs the bounded chain for one candidate:
// generate, refine x(maxGenerationRounds-1), validate, then at most
// maxRepairAttempts repair+revalidate cycles. Candidates that stay invalid
// are dropped, never force-accepted.
func (p *GenerationPipeline) liveCandidate(
	ctx context.Context,
	query string,
	contextDocs []domain.WorkoutDocument,
) (*domain.GeneratedCandidate, error) {
	draft, err := p.callGenerate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	picked := selectContextDocs(query, draft.Title, contextDocs, maxContextDocs)
	round := 1
	for ; round < maxGenerationRounds; round++ {
		refined, err := p.callRefine(ctx, query, draft, picked, nil)
		if err != nil {
			// Refinement is an improvement pass; keep the prior draft.
			logger.Warn("Refine round %d failed, keeping draft: %v", round+1, err)
			break
		}
		draft = refined
	}

	result, err := p.callValidate(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	repairs := 0
	for !result.Valid && repairs < maxRepairAttempts {
		repairs++
		logger.Debug("Repair attempt %d: %v", repairs, result.Issues)
		repaired, err := p.callRefine(ctx, query, draft, picked, result.Issues)
		if err != nil {
			return nil, fmt.Errorf("repair: %w", err)
		}
		draft = repaired
		result, err = p.callValidate(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("revalidate: %w", err)
		}
	}
	if !result.Valid {
		return nil, fmt.Errorf("candidate %q invalid after %d repair attempts: %v", draft.Title, repairs, result.Issues)
	}

	contextIDs := make([]string, len(picked))
	for i := range picked {
		contextIDs[i] = picked[i].ID
	}
	baseID := ""
	if len(picked) > 0 {
		baseID = picked[0].ID
	}

	now := time.Now()
	return &domain.GeneratedCandidate{
		ID:          uuid.New().String(),
		Title:       draft.Title,
		Summary:     draft.Summary,
		Content:     draft.content(),
		Explanation: draft.Explanation,
		CreatedAt:   now,
		Provenance: domain.Provenance{
			OriginQuery:       query,
			BaseWorkoutID:     baseID,
			ContextWorkoutIDs: contextIDs,
			GenerationRound:   round,
			RepairAttempts:    repairs,
			CreatedAt:         now,
		},
	}, nil
}

// content converts a draft body to domain content.
func (d candidateDraft) content() domain.WorkoutContent {
	sections := make([]domain.WorkoutSection, 0, len(d.Sections))
	for _, s := range d.Sections {
		items := make([]domain.WorkoutItem, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, domain.WorkoutItem{Name: item.Name, Prescription: item.Prescription})
		}
		sections = append(sections, domain.WorkoutSection{Title: s.Title, Detail: s.Detail, Items: items})
	}
	return domain.WorkoutContent{Markdown: d.Markdown, Sections: sections}
}

// draftSchema is the JSON schema the generate and refine tools must
// populate.
var draftSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"summary":     map[string]any{"type": "string"},
		"markdown":    map[string]any{"type": "string"},
		"explanation": map[string]any{"type": "string"},
		"sections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":  map[string]any{"type": "string"},
					"detail": map[string]any{"type": "string"},
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name":         map[string]any{"type": "string"},
								"prescription": map[string]any{"type": "string"},
							},
							"required": []string{"name"},
						},
					},
				},
				"required": []string{"title", "items"},
			},
		},
	},
	"required": []string{"title", "sections"},
}

// validationSchema is the JSON schema the validate tool must populate.
var validationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"valid":  map[string]any{"type": "boolean"},
		"issues": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []string{"valid"},
}

func (p *GenerationPipeline) callGenerate(ctx context.Context, query string) (candidateDraft, error) {
	args, err := p.tools.CallTool(ctx, driven.ToolCall{
		Name:        toolGenerateWorkout,
		Description: "Generate a complete workout matching the user's request.",
		Schema:      draftSchema,
		Payload:     "Create a workout for: " + query,
	})
	if err != nil {
		return candidateDraft{}, err
	}
	return decodeDraft(args)
}

// refinePayload carries the draft plus optional repair issues and context
// document excerpts into a refine_workout call.
type refinePayload struct {
	Query   string           `json:"query"`
	Draft   candidateDraft   `json:"draft"`
	Context []contextExcerpt `json:"context,omitempty"`
	Issues  []string         `json:"issues,omitempty"`
}

type contextExcerpt struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

func (p *GenerationPipeline) callRefine(
	ctx context.Context,
	query string,
	draft candidateDraft,
	contextDocs []domain.WorkoutDocument,
	issues []string,
) (candidateDraft, error) {
	payload := refinePayload{Query: query, Draft: draft, Issues: issues}
	for _, doc := range contextDocs {
		payload.Context = append(payload.Context, contextExcerpt{ID: doc.ID, Title: doc.Title, Summary: doc.Summary})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return candidateDraft{}, fmt.Errorf("marshal refine payload: %w", err)
	}

	args, err := p.tools.CallTool(ctx, driven.ToolCall{
		Name:        toolRefineWorkout,
		Description: "Refine the draft workout, addressing any listed issues.",
		Schema:      draftSchema,
		Payload:     string(body),
	})
	if err != nil {
		return candidateDraft{}, err
	}
	return decodeDraft(args)
}

func (p *GenerationPipeline) callValidate(ctx context.Context, draft candidateDraft) (validationResult, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return validationResult{}, fmt.Errorf("marshal draft: %w", err)
	}

	args, err := p.tools.CallTool(ctx, driven.ToolCall{
		Name:        toolValidateWorkout,
		Description: "Validate the workout's structure and report any issues.",
		Schema:      validationSchema,
		Payload:     string(body),
	})
	if err != nil {
		return validationResult{}, err
	}

	var result validationResult
	if err := json.Unmarshal(args, &result); err != nil {
		return validationResult{}, fmt.Errorf("%w: %v", domain.ErrToolMalformed, err)
	}
	return result, nil
}

// decodeDraft parses tool arguments into a draft.
func decodeDraft(args json.RawMessage) (candidateDraft, error) {
	var draft candidateDraft
	if err := json.Unmarshal(args, &draft); err != nil {
		return candidateDraft{}, fmt.Errorf("%w: %v", domain.ErrToolMalformed, err)
	}
	if strings.TrimSpace(draft.Title) == "" && len(draft.Sections) == 0 {
		return candidateDraft{}, fmt.Errorf("%w: empty draft", domain.ErrToolMalformed)
	}
	return draft, nil
}

// selectContextDocs picks up to limit documents with the highest
// shared-token overlap against the query, boosting documents whose text
// mentions the candidate's title. Documents with no overlap are skipped.
func selectContextDocs(query, candidateTitle string, docs []domain.WorkoutDocument, limit int) []domain.WorkoutDocument {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || len(docs) == 0 {
		return nil
	}
	title := strings.ToLower(strings.TrimSpace(candidateTitle))

	type scored struct {
		doc   domain.WorkoutDocument
		score int
	}
	candidates := make([]scored, 0, len(docs))
	for _, doc := range docs {
		text := buildKeywordText(doc)
		set := tokenSet(text)
		overlap := 0
		for _, tok := range queryTokens {
			if _, ok := set[tok]; ok {
				overlap++
			}
		}
		if title != "" && strings.Contains(text, title) {
			overlap += 2
		}
		if overlap > 0 {
			candidates = append(candidates, scored{doc: doc, score: overlap})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return strings.ToLower(candidates[i].doc.Title) < strings.ToLower(candidates[j].doc.Title)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	picked := make([]domain.WorkoutDocument, len(candidates))
	for i := range candidates {
		picked[i] = candidates[i].doc
	}
	return picked
}
