package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/clients/openai"
	"github.com/storyarc/narrative-backend/internal/config"
	"github.com/storyarc/narrative-backend/internal/discovery"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/repos"
	"github.com/storyarc/narrative-backend/internal/types"
)

type NarrativeService interface {
	// Generate runs the gated initial synthesis: entitlement check, one
	// generation call, then exactly one ledger charge on success.
	Generate(ctx context.Context, userID uuid.UUID, answers types.AnswerSet, format types.OutputFormat) (*types.StoryResult, *types.User, error)
	// Refine re-runs synthesis with the same answers and format plus a tone
	// directive. Refinements do not consume a ledger unit.
	Refine(ctx context.Context, userID uuid.UUID, answers types.AnswerSet, format types.OutputFormat, tone types.RefinementTone) (*types.StoryResult, error)
}

type narrativeService struct {
	db        *gorm.DB
	log       *logger.Logger
	cfg       *config.Config
	userRepo  repos.UserRepo
	genRepo   repos.GenerationLogRepo
	generator openai.Client
}

func NewNarrativeService(db *gorm.DB, log *logger.Logger, cfg *config.Config, userRepo repos.UserRepo, genRepo repos.GenerationLogRepo, generator openai.Client) NarrativeService {
	return &narrativeService{
		db:        db,
		log:       log.With("service", "NarrativeService"),
		cfg:       cfg,
		userRepo:  userRepo,
		genRepo:   genRepo,
		generator: generator,
	}
}

func (ns *narrativeService) Generate(ctx context.Context, userID uuid.UUID, answers types.AnswerSet, format types.OutputFormat) (*types.StoryResult, *types.User, error) {
	if err := discovery.ValidateAnswerSet(answers); err != nil {
		return nil, nil, err
	}
	if !format.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown output format %q", apperr.ErrInvalidInput, format)
	}

	// The gate is evaluated fresh on every attempt; the ledger may have moved
	// since the last one.
	if err := ns.userRepo.ResetUsageIfStale(ctx, nil, userID, time.Now()); err != nil {
		return nil, nil, fmt.Errorf("reset usage: %w", err)
	}
	user, err := ns.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, nil, err
	}
	switch EvaluateUserEntitlement(user) {
	case DecisionAllow:
	case DecisionRequireUpgrade:
		return nil, nil, fmt.Errorf("%w: an active plan is required for synthesis", apperr.ErrForbidden)
	case DecisionRequireUsageReset:
		return nil, nil, apperr.ErrQuotaExceeded
	default:
		return nil, nil, apperr.ErrUnauthenticated
	}

	result, latency, err := ns.synthesize(ctx, answers, format, nil)
	if err != nil {
		return nil, nil, err
	}

	// The request only becomes billable after the generation service has
	// returned a usable result. The conditional update still enforces the
	// ceiling if a concurrent request charged the ledger in the meantime.
	if err := ns.userRepo.ConsumeToken(ctx, nil, userID); err != nil {
		return nil, nil, err
	}
	updated, err := ns.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, nil, err
	}

	ns.recordLog(ctx, userID, format, nil, false, result, latency)
	return result, updated, nil
}

func (ns *narrativeService) Refine(ctx context.Context, userID uuid.UUID, answers types.AnswerSet, format types.OutputFormat, tone types.RefinementTone) (*types.StoryResult, error) {
	if err := discovery.ValidateAnswerSet(answers); err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown output format %q", apperr.ErrInvalidInput, format)
	}
	if !tone.Valid() {
		return nil, fmt.Errorf("%w: unknown refinement tone %q", apperr.ErrInvalidInput, tone)
	}

	// A refinement is free of charge but still a paid feature: it reuses
	// answers the identity already paid a unit to synthesize, so the plan
	// gate applies even though the ledger check does not.
	user, err := ns.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPaid {
		return nil, fmt.Errorf("%w: an active plan is required for refinement", apperr.ErrForbidden)
	}

	result, latency, err := ns.synthesize(ctx, answers, format, &tone)
	if err != nil {
		return nil, err
	}
	ns.recordLog(ctx, userID, format, &tone, true, result, latency)
	return result, nil
}

// synthesize performs the single outbound generation call, bounded by the
// configured timeout and cancelled with the caller's context.
func (ns *narrativeService) synthesize(ctx context.Context, answers types.AnswerSet, format types.OutputFormat, tone *types.RefinementTone) (*types.StoryResult, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, ns.cfg.GenerateTimeout)
	defer cancel()

	started := time.Now()
	raw, err := ns.generator.GenerateJSON(callCtx, systemInstruction, buildUserPrompt(answers, format, tone), "story_result", storySchema())
	latency := time.Since(started)
	if err != nil {
		ns.log.Warn("Synthesis failed", "error", err, "latency_ms", latency.Milliseconds())
		return nil, latency, err
	}

	var result types.StoryResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, latency, fmt.Errorf("%w: malformed service output: %v", apperr.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, latency, fmt.Errorf("%w: service returned no content", apperr.ErrGenerationFailed)
	}
	return &result, latency, nil
}

// recordLog persists the synthesis history row. Failures are logged and
// swallowed; history must never fail a generation the user already paid for.
func (ns *narrativeService) recordLog(ctx context.Context, userID uuid.UUID, format types.OutputFormat, tone *types.RefinementTone, refinement bool, result *types.StoryResult, latency time.Duration) {
	entry := &types.GenerationLog{
		ID:           uuid.New(),
		UserID:       userID,
		Format:       string(format),
		IsRefinement: refinement,
		Content:      result.Content,
		LatencyMS:    latency.Milliseconds(),
	}
	if tone != nil {
		t := string(*tone)
		entry.Tone = &t
	}
	if result.Insights != nil {
		if raw, err := json.Marshal(result.Insights); err == nil {
			entry.Insights = datatypes.JSON(raw)
		}
	}
	if err := ns.genRepo.Create(ctx, nil, entry); err != nil {
		ns.log.Warn("Failed to record generation log", "error", err, "user_id", userID)
	}
}
