// internal/condition/context.go
package condition

/*
 * Variable context: the immutable snapshot of named values supplied to one
 * evaluation.
 *
 * The constructor copies the caller's map, so a context can never observe
 * later mutation of dispatcher state; the router neither retains nor
 * mutates contexts. Unknown variables are undefined, not zero or empty:
 * lookup failure is reported as absence, and only exists() may observe
 * absence without raising.
 *
 * Child contexts implement the all/any loop binding as an immutable
 * overlay on the parent instead of a closure over mutable state, keeping
 * evaluation pure and each nested scope independently inspectable.
 */

// VariableContext maps dotted variable paths to values for one evaluation.
type VariableContext struct {
	vars   map[string]Value
	parent *VariableContext
}

// NewContext snapshots vars into an immutable context. The map is copied;
// callers may reuse or mutate their map afterwards.
func NewContext(vars map[string]Value) *VariableContext {
	snapshot := make(map[string]Value, len(vars))
	for k, v := range vars {
		snapshot[k] = v
	}
	return &VariableContext{vars: snapshot}
}

// Lookup resolves a dotted path, consulting parent scopes for loop
// bindings. The boolean result distinguishes absence from any value.
func (c *VariableContext) Lookup(path string) (Value, bool) {
	for scope := c; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[path]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// bind returns a child context with one extra variable layered over c.
// The parent is shared, not copied: contexts are read-only after creation.
func (c *VariableContext) bind(name string, v Value) *VariableContext {
	return &VariableContext{vars: map[string]Value{name: v}, parent: c}
}

// Len reports the number of variables in this scope (diagnostics only).
func (c *VariableContext) Len() int {
	return len(c.vars)
}
