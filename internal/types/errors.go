package types

import "errors"

// Sentinel errors for pathway and trigger validation.
var (
	// ErrNoRules indicates a pathway with an empty rule list.
	ErrNoRules = errors.New("pathway has no rules")

	// ErrTooManyRules indicates a pathway exceeds MaxRulesPerPathway.
	ErrTooManyRules = errors.New("pathway exceeds maximum rule count")

	// ErrEmptyCondition indicates a rule with an empty condition string.
	ErrEmptyCondition = errors.New("rule condition is empty")

	// ErrConditionTooLong indicates a condition exceeds MaxConditionLength.
	ErrConditionTooLong = errors.New("rule condition exceeds maximum length")

	// ErrMissingDestination indicates a rule without a destination id.
	ErrMissingDestination = errors.New("rule destination is empty")

	// ErrUnknownTriggerType indicates a trigger type outside the fixed set.
	ErrUnknownTriggerType = errors.New("unknown trigger type")

	// ErrMissingSourceID indicates an onAssessment trigger without a source.
	ErrMissingSourceID = errors.New("onAssessment trigger requires sourceId")

	// ErrUnexpectedSourceID indicates a sourceId on an onCompletion trigger.
	ErrUnexpectedSourceID = errors.New("sourceId only valid for onAssessment triggers")

	// ErrUnknownDestination indicates a rule destination that does not
	// resolve to any container or block in the document.
	ErrUnknownDestination = errors.New("destination not found in document")

	// ErrUnknownSource indicates an assessment sourceId that does not
	// resolve to an assessment block in the document.
	ErrUnknownSource = errors.New("assessment source not found in document")

	// ErrSessionNotFound indicates no progress state exists for a session.
	ErrSessionNotFound = errors.New("session not found")
)
