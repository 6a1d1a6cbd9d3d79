package supervisor

import "github.com/ojashyadav101/lucy-sub000/internal/tools"

// ToolFilter narrows a tools.Registry to an allow/block subset, grounded on
// features/policy/basic/engine.go's Engine.isAllowed/applyRetryHint: a
// REPLAN or INTERVENE decision may restrict the next turn to a smaller
// toolset (e.g. "only retry with this one tool") without touching the
// underlying registry the rest of the run shares.
type ToolFilter struct {
	allow map[tools.ID]struct{}
	block map[tools.ID]struct{}
}

// NewToolFilter builds a filter from explicit allow/block lists. A nil or
// empty allow list means "no allowlist restriction" (block list still
// applies), matching the teacher's isAllowed precedence.
func NewToolFilter(allow, block []tools.ID) ToolFilter {
	f := ToolFilter{}
	if len(allow) > 0 {
		f.allow = make(map[tools.ID]struct{}, len(allow))
		for _, id := range allow {
			f.allow[id] = struct{}{}
		}
	}
	if len(block) > 0 {
		f.block = make(map[tools.ID]struct{}, len(block))
		for _, id := range block {
			f.block[id] = struct{}{}
		}
	}
	return f
}

// RestrictToSingle builds a filter allowing only one tool, the shape a
// RetryHint.RestrictToTool consequence needs.
func RestrictToSingle(name tools.ID) ToolFilter {
	return NewToolFilter([]tools.ID{name}, nil)
}

func (f ToolFilter) isAllowed(id tools.ID) bool {
	if _, blocked := f.block[id]; blocked {
		return false
	}
	if len(f.allow) > 0 {
		_, ok := f.allow[id]
		return ok
	}
	return true
}

// Apply wraps base in a Registry that only resolves tools the filter allows.
func (f ToolFilter) Apply(base tools.Registry) tools.Registry {
	return filteredRegistry{base: base, filter: f}
}

type filteredRegistry struct {
	base   tools.Registry
	filter ToolFilter
}

func (r filteredRegistry) Lookup(name tools.ID) (tools.Spec, bool) {
	if !r.filter.isAllowed(name) {
		return tools.Spec{}, false
	}
	return r.base.Lookup(name)
}

func (r filteredRegistry) List() []tools.Spec {
	all := r.base.List()
	out := make([]tools.Spec, 0, len(all))
	for _, s := range all {
		if r.filter.isAllowed(s.Name) {
			out = append(out, s)
		}
	}
	return out
}
