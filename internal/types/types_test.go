// internal/types/types_test.go
package types

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validPathway() *Pathway {
	return &Pathway{
		ContainerID: "unit-1",
		Trigger:     Trigger{Type: TriggerOnCompletion},
		Rules: []Rule{
			{Condition: "score >= 80", DestinationID: "unit-2"},
		},
	}
}

func TestTrigger_Validate(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		wantErr error
	}{
		{
			name:    "completion without source",
			trigger: Trigger{Type: TriggerOnCompletion},
			wantErr: nil,
		},
		{
			name:    "completion with source",
			trigger: Trigger{Type: TriggerOnCompletion, SourceID: "quiz-1"},
			wantErr: ErrUnexpectedSourceID,
		},
		{
			name:    "assessment with source",
			trigger: Trigger{Type: TriggerOnAssessment, SourceID: "quiz-1"},
			wantErr: nil,
		},
		{
			name:    "assessment without source",
			trigger: Trigger{Type: TriggerOnAssessment},
			wantErr: ErrMissingSourceID,
		},
		{
			name:    "unknown type",
			trigger: Trigger{Type: "onSchedule"},
			wantErr: ErrUnknownTriggerType,
		},
		{
			name:    "case sensitive type",
			trigger: Trigger{Type: "oncompletion"},
			wantErr: ErrUnknownTriggerType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.trigger.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPathway_Validate(t *testing.T) {
	if err := validPathway().Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	p := validPathway()
	p.Rules = nil
	if err := p.Validate(); !errors.Is(err, ErrNoRules) {
		t.Errorf("Validate() error = %v, want ErrNoRules", err)
	}

	p = validPathway()
	p.Rules[0].Condition = ""
	if err := p.Validate(); !errors.Is(err, ErrEmptyCondition) {
		t.Errorf("Validate() error = %v, want ErrEmptyCondition", err)
	}

	p = validPathway()
	p.Rules[0].DestinationID = ""
	if err := p.Validate(); !errors.Is(err, ErrMissingDestination) {
		t.Errorf("Validate() error = %v, want ErrMissingDestination", err)
	}

	p = validPathway()
	p.Rules[0].Condition = strings.Repeat("a", MaxConditionLength+1)
	if err := p.Validate(); !errors.Is(err, ErrConditionTooLong) {
		t.Errorf("Validate() error = %v, want ErrConditionTooLong", err)
	}

	p = validPathway()
	p.Rules = make([]Rule, MaxRulesPerPathway+1)
	for i := range p.Rules {
		p.Rules[i] = Rule{Condition: "true", DestinationID: "x"}
	}
	if err := p.Validate(); !errors.Is(err, ErrTooManyRules) {
		t.Errorf("Validate() error = %v, want ErrTooManyRules", err)
	}
}

func TestSessionID_RoundTrip(t *testing.T) {
	id := NewSessionID()
	parsed, err := ParseSessionID(string(id))
	if err != nil {
		t.Fatalf("ParseSessionID() error = %v, want nil", err)
	}
	if parsed != id {
		t.Errorf("ParseSessionID() = %v, want %v", parsed, id)
	}

	if _, err := ParseSessionID("not-a-uuid"); err == nil {
		t.Errorf("ParseSessionID(not-a-uuid) error = nil, want error")
	}
}

func TestDecisionID_Ordering(t *testing.T) {
	// UUIDv7 ids embed a timestamp, so consecutive ids sort by creation.
	first := NewDecisionID()
	second := NewDecisionID()
	if string(first) >= string(second) {
		t.Errorf("decision ids not monotonic: %s >= %s", first, second)
	}
}

func TestDecisionIDTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewDecisionID()
	after := time.Now().Add(time.Second)

	ts := DecisionIDTime(id)
	if ts.Before(before) || ts.After(after) {
		t.Errorf("DecisionIDTime() = %v, want within [%v, %v]", ts, before, after)
	}

	if !DecisionIDTime("garbage").IsZero() {
		t.Errorf("DecisionIDTime(garbage) not zero")
	}
}
