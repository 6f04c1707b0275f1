package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
)

// Registry collects every resolved declaration set used by a compiled
// document so the renderer can emit one deduplicated stylesheet. Rule class
// names are content-hashed: the same shorthand chain always produces the
// same class, across files and across builds.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]DeclSet // hashed class name -> declarations
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]DeclSet)}
}

// Add registers a declaration set and returns its rule class name, a short
// content hash of the declarations (`_a1b2c3`). An empty set yields "".
func (r *Registry) Add(set DeclSet) string {
	if len(set) == 0 {
		return ""
	}
	name := ruleClass(set)
	r.mu.Lock()
	r.rules[name] = set
	r.mu.Unlock()
	return name
}

// CSS returns the stylesheet for every registered rule, sorted by class
// name so output is deterministic.
func (r *Registry) CSS() string {
	r.mu.RLock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteByte('.')
		sb.WriteString(name)
		sb.WriteString(" { ")
		sb.WriteString(r.rules[name].CSS())
		sb.WriteString(" }\n")
	}
	r.mu.RUnlock()
	return sb.String()
}

// Len reports the number of distinct rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

func ruleClass(set DeclSet) string {
	h := sha256.New()
	for _, d := range set {
		h.Write([]byte(d.Property))
		h.Write([]byte{':'})
		h.Write([]byte(d.Value))
		h.Write([]byte{';'})
	}
	return "_" + hex.EncodeToString(h.Sum(nil))[:6]
}
