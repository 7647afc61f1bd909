// internal/document/validate.go
package document

import (
	"fmt"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/types"
)

/*
 * Authoring-time validation.
 *
 * Lex and parse errors in conditions are authoring defects: always fatal
 * to the one rule, and meant to be caught here, before publication, never
 * at runtime. Validation therefore collects every problem in the document
 * instead of stopping at the first, so authors fix a publish candidate in
 * one pass.
 *
 * Checks per pathway: trigger invariants, non-empty ordered rules, every
 * condition parses under the grammar, every destination resolves to a
 * container or block in the document, and every onAssessment source
 * resolves to an assessment block.
 */

// Issue is one validation finding, locatable by container and rule.
type Issue struct {
	ContainerID string
	RuleIndex   int // -1 for pathway-level issues
	Err         error
}

func (i Issue) String() string {
	if i.RuleIndex < 0 {
		return fmt.Sprintf("container %q: %v", i.ContainerID, i.Err)
	}
	return fmt.Sprintf("container %q rule %d: %v", i.ContainerID, i.RuleIndex, i.Err)
}

// Validate checks every pathway in the document and returns all findings.
// An empty slice means the document is publishable.
func Validate(d *Document) []Issue {
	var issues []Issue

	containers := d.containerIDs()
	blocks := d.blockIDs()

	for _, p := range d.Pathways() {
		if err := p.Validate(); err != nil {
			issues = append(issues, Issue{ContainerID: p.ContainerID, RuleIndex: -1, Err: err})
			continue
		}

		if p.Trigger.Type == types.TriggerOnAssessment {
			if kind, ok := blocks[p.Trigger.SourceID]; !ok || kind != "assessment" {
				issues = append(issues, Issue{ContainerID: p.ContainerID, RuleIndex: -1, Err: types.ErrUnknownSource})
			}
		}

		for i, rule := range p.Rules {
			if _, err := condition.Parse(rule.Condition); err != nil {
				issues = append(issues, Issue{ContainerID: p.ContainerID, RuleIndex: i, Err: err})
			}
			if !containers[rule.DestinationID] {
				if _, ok := blocks[rule.DestinationID]; !ok {
					issues = append(issues, Issue{ContainerID: p.ContainerID, RuleIndex: i, Err: types.ErrUnknownDestination})
				}
			}
		}
	}

	return issues
}
