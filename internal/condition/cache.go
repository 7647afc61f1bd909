// internal/condition/cache.go
package condition

import "sync"

/*
 * AST cache keyed by exact condition string.
 *
 * Pathway rules carry raw condition strings that are evaluated many times
 * per document lifetime (retries, repeated triggers, many sessions). The
 * cache is read-mostly shared state across sessions: reads take an RLock,
 * population is idempotent. Parsing is a pure function of the string, so
 * two identical strings always yield structurally identical trees; if two
 * goroutines parse the same uncached string concurrently, whichever result
 * lands in the map is equivalent and correctness is unaffected.
 *
 * Only successful parses are cached. Parse errors are authoring-time
 * defects that validation keeps out of published documents; re-parsing the
 * rare malformed rule is cheaper than carrying negative entries.
 */

// Cache memoizes parsed condition ASTs for the lifetime of a loaded
// document. Safe for concurrent use.
type Cache struct {
	mu   sync.RWMutex
	asts map[string]Node
}

// NewCache returns an empty AST cache.
func NewCache() *Cache {
	return &Cache{asts: make(map[string]Node)}
}

// Get returns the AST for cond, parsing and caching it on first use.
func (c *Cache) Get(cond string) (Node, error) {
	c.mu.RLock()
	ast, ok := c.asts[cond]
	c.mu.RUnlock()
	if ok {
		return ast, nil
	}

	// Parse outside the lock: parsing is pure, so duplicate concurrent
	// work is wasted effort at worst, never an inconsistency.
	ast, err := Parse(cond)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.asts[cond]; ok {
		return existing, nil
	}
	c.asts[cond] = ast
	return ast, nil
}

// Len reports the number of cached ASTs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.asts)
}
