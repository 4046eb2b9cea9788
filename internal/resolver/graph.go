package resolver

import (
	"maps"
	"slices"
	"strings"

	"bennypowers.dev/dtsc/internal/parser/common"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/internal/tokens"
)

// AliasGraph links each token to the tokens its value refers to with
// {group.name} references. Referenced names need not be defined.
type AliasGraph struct {
	refs   map[string][]string
	usedBy map[string][]string
	names  []string
}

// NewAliasGraph indexes the references of every token in list
func NewAliasGraph(list []*tokens.Token) *AliasGraph {
	g := &AliasGraph{
		refs:   map[string][]string{},
		usedBy: map[string][]string{},
	}
	defined := make(map[string]struct{}, len(list))
	for _, tok := range list {
		defined[tok.Name] = struct{}{}
		targets := aliasTargets(tok.Value)
		if len(targets) == 0 {
			continue
		}
		g.refs[tok.Name] = targets
		for _, target := range targets {
			g.usedBy[target] = append(g.usedBy[target], tok.Name)
		}
	}
	g.names = slices.Sorted(maps.Keys(defined))
	return g
}

// aliasTargets returns the distinct token names referenced by value in
// order of appearance: "{space.1} {space.2}" gives space-1, space-2
func aliasTargets(value string) []string {
	var out []string
	for _, m := range common.CurlyBraceReferenceRegexp.FindAllStringSubmatch(value, -1) {
		if name := referenceName(m[1]); !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func referenceName(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), ".", "-")
}

// References returns the names name refers to
func (g *AliasGraph) References(name string) []string {
	return slices.Clone(g.refs[name])
}

// ReferencedBy returns the names whose values refer to name
func (g *AliasGraph) ReferencedBy(name string) []string {
	return slices.Clone(g.usedBy[name])
}

// Cycle returns a reference loop such as [a b c a], or nil. Tokens are
// walked in name order so the loop reported is stable.
func (g *AliasGraph) Cycle() []string {
	_, cycle := g.walk()
	return cycle
}

// Order lists every name, referenced names included, so that each comes
// after everything it refers to. A loop fails with a
// CircularReferenceError carrying the loop.
func (g *AliasGraph) Order() ([]string, error) {
	order, cycle := g.walk()
	if cycle != nil {
		return nil, stylesheet.NewCircularReferenceError("", cycle)
	}
	return order, nil
}

const (
	unvisited = iota
	onPath
	done
)

// walk is a post-order depth-first search. It stops at the first edge back
// onto the current path and returns the loop it closes.
func (g *AliasGraph) walk() (order, cycle []string) {
	state := map[string]int{}
	var path []string

	var visit func(name string) bool
	visit = func(name string) bool {
		switch state[name] {
		case done:
			return false
		case onPath:
			start := slices.Index(path, name)
			cycle = append(slices.Clone(path[start:]), name)
			return true
		}
		state[name] = onPath
		path = append(path, name)
		for _, target := range g.refs[name] {
			if visit(target) {
				return true
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		order = append(order, name)
		return false
	}

	for _, name := range g.names {
		if visit(name) {
			return nil, cycle
		}
	}
	return order, nil
}
