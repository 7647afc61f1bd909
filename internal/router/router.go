// internal/router/router.go
package router

import (
	"log/slog"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/types"
)

/*
 * Pathway routing.
 *
 * Evaluates a pathway's rules in authored order against an immutable
 * variable context and returns the first rule whose condition is true.
 * A rule whose condition fails to parse or evaluate is treated as not
 * matched and evaluation continues with the next rule: a single malformed
 * or data-missing rule must never block the rules behind it, and a learner
 * must never see a routing failure as a hard error. Exhaustion (no rule
 * matched) is a valid terminal state, not an error; fallback navigation is
 * the caller's concern.
 *
 * Rule errors are surfaced two ways: logged per the configured policy, and
 * returned as diagnostics so the dispatcher can persist them for
 * content-quality monitoring.
 */

// ErrorPolicy selects how the router reports skipped-rule errors.
// Skipping itself is not configurable; only the reporting is.
type ErrorPolicy int

const (
	// LogAndSkip logs each rule error at WARN before continuing (default).
	LogAndSkip ErrorPolicy = iota

	// SkipSilently continues without logging; diagnostics are still
	// returned to the caller.
	SkipSilently
)

// Config carries evaluation limits and the error reporting policy.
type Config struct {
	Limits condition.Limits
	Policy ErrorPolicy
}

// DefaultConfig returns the standard router configuration.
func DefaultConfig() Config {
	return Config{Limits: condition.DefaultLimits(), Policy: LogAndSkip}
}

// RuleError is a per-rule evaluation diagnostic from one routing pass.
type RuleError struct {
	RuleIndex int
	Condition string
	Err       error
}

// Router evaluates pathways against variable contexts. Safe for
// concurrent use: the AST cache is the only shared state.
type Router struct {
	cache  *condition.Cache
	logger *slog.Logger
	cfg    Config
}

// NewRouter creates a router sharing the given AST cache.
func NewRouter(cache *condition.Cache, logger *slog.Logger, cfg Config) *Router {
	if cache == nil {
		cache = condition.NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{cache: cache, logger: logger, cfg: cfg}
}

// Route evaluates pathway rules in authored order and returns the first
// match, or nil when no rule matches. The returned diagnostics list every
// rule skipped due to a parse or evaluation error.
func (r *Router) Route(p *types.Pathway, ctx *condition.VariableContext) (*types.RouteDecision, []RuleError) {
	var ruleErrs []RuleError

	for i, rule := range p.Rules {
		ast, err := r.cache.Get(rule.Condition)
		if err != nil {
			// Parse failure at runtime means the document bypassed
			// authoring validation; skip the rule, keep routing.
			ruleErrs = append(ruleErrs, RuleError{RuleIndex: i, Condition: rule.Condition, Err: err})
			r.logRuleError(p, i, rule, err)
			continue
		}

		matched, err := condition.EvaluateWithLimits(ast, ctx, r.cfg.Limits)
		if err != nil {
			ruleErrs = append(ruleErrs, RuleError{RuleIndex: i, Condition: rule.Condition, Err: err})
			r.logRuleError(p, i, rule, err)
			continue
		}

		if matched {
			return &types.RouteDecision{
				DestinationID: rule.DestinationID,
				PathwayType:   rule.PathwayType,
				RuleIndex:     i,
			}, ruleErrs
		}
	}

	return nil, ruleErrs
}

func (r *Router) logRuleError(p *types.Pathway, idx int, rule types.Rule, err error) {
	if r.cfg.Policy == SkipSilently {
		return
	}
	r.logger.Warn("rule skipped",
		"container_id", p.ContainerID,
		"rule_index", idx,
		"condition", rule.Condition,
		"error", err,
	)
}
