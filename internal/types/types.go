// Package types provides domain models shared across Wayfinder components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so embedding hosts (LMS runtimes, authoring tools) can consume the
// routing contract without pulling in storage or CLI dependencies. ID
// utilities in ids.go import uuid but are isolated for selective inclusion.
package types

import "time"

// TriggerType identifies the event class that fires a pathway.
// String values are part of the published document format and must match
// the authored spelling exactly.
type TriggerType string

const (
	// TriggerOnCompletion fires when a content container is completed.
	TriggerOnCompletion TriggerType = "onCompletion"

	// TriggerOnAssessment fires when a specific assessment is submitted.
	TriggerOnAssessment TriggerType = "onAssessment"
)

// Trigger describes when a pathway's rules are evaluated.
// SourceID references the assessment block supplying context variables and
// is required iff Type == TriggerOnAssessment.
type Trigger struct {
	Type     TriggerType `yaml:"type" json:"type"`
	SourceID string      `yaml:"sourceId,omitempty" json:"sourceId,omitempty"`
}

// Validate enforces the trigger/sourceId invariant.
func (t Trigger) Validate() error {
	switch t.Type {
	case TriggerOnCompletion:
		if t.SourceID != "" {
			return ErrUnexpectedSourceID
		}
	case TriggerOnAssessment:
		if t.SourceID == "" {
			return ErrMissingSourceID
		}
	default:
		return ErrUnknownTriggerType
	}
	return nil
}

// Rule is a single (condition, destination) pair within a pathway.
// Condition holds the raw expression string verbatim; it is the bit-exact
// interoperability surface and is never normalized. PathwayType is a
// semantic tag (remedial/standard/enrichment) used only for downstream UX
// messaging and is inert to evaluation.
type Rule struct {
	Condition     string `yaml:"condition" json:"condition"`
	DestinationID string `yaml:"destination" json:"destination"`
	PathwayType   string `yaml:"pathwayType,omitempty" json:"pathwayType,omitempty"`
}

// Pathway is an authored, ordered set of routing rules attached to one
// content container. Immutable once published; rule order is significant
// (first-match-wins) and preserved exactly as authored.
type Pathway struct {
	ContainerID string  `yaml:"-" json:"containerId"`
	Trigger     Trigger `yaml:"trigger" json:"trigger"`
	Rules       []Rule  `yaml:"rules" json:"rules"`
}

// Validate checks structural invariants: a valid trigger, a non-empty
// ordered rule list, and per-rule required fields. Condition syntax is
// validated separately by the condition package (authoring channel).
func (p *Pathway) Validate() error {
	if err := p.Trigger.Validate(); err != nil {
		return err
	}
	if len(p.Rules) == 0 {
		return ErrNoRules
	}
	if len(p.Rules) > MaxRulesPerPathway {
		return ErrTooManyRules
	}
	for _, r := range p.Rules {
		if r.Condition == "" {
			return ErrEmptyCondition
		}
		if len(r.Condition) > MaxConditionLength {
			return ErrConditionTooLong
		}
		if r.DestinationID == "" {
			return ErrMissingDestination
		}
	}
	return nil
}

// RouteDecision is the router's answer: where to send the learner next.
// RuleIndex records which authored rule matched (diagnostics only).
type RouteDecision struct {
	DestinationID string `json:"destinationId"`
	PathwayType   string `json:"pathwayType,omitempty"`
	RuleIndex     int    `json:"ruleIndex"`
}

// Progress is the per-session state the dispatcher assembles variable
// contexts from. Mutated only by the dispatcher, one event at a time per
// session; the router only ever sees the immutable snapshot built from it.
type Progress struct {
	SessionID     SessionID
	Completed     []string           // container ids completed, in order
	ObjectivesMet []string           // objective ids satisfied so far
	Attempts      map[string]int     // assessment id -> submission count
	Scores        map[string]float64 // assessment id -> latest score
	UpdatedAt     time.Time
}

// Resource limits enforced on authored pathways. Limits on condition AST
// shape (depth, node count) live with the evaluator where they are applied.
const (
	// MaxRulesPerPathway bounds per-decision-point evaluation work.
	// 128 rules is far beyond any sane authored branch table.
	MaxRulesPerPathway = 128

	// MaxConditionLength bounds lexer input per condition.
	// 4KB accommodates deeply parenthesized authored expressions.
	MaxConditionLength = 4096
)
