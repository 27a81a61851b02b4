package openapi

import (
	"iter"
	"strings"
)

// RefResolver resolves a $ref to its schema, or nil when it cannot be resolved.
type RefResolver func(ref string) *Schema

// Traverse iterates over s and every schema nested in its items and properties.
// Each node is yielded once, even when it is shared. When resolver is not nil,
// references are followed.
func Traverse(s *Schema, resolver RefResolver) iter.Seq[*Schema] {
	return func(yield func(*Schema) bool) {
		visited := make(map[*Schema]struct{})
		traverse(s, resolver, yield, visited)
	}
}

// TraverseDefinitions iterates over every schema of every definition in defs.
func TraverseDefinitions(defs *Definitions) iter.Seq[*Schema] {
	return func(yield func(*Schema) bool) {
		visited := make(map[*Schema]struct{})
		for _, def := range defs.All() {
			if !traverse(def, nil, yield, visited) {
				return
			}
		}
	}
}

// Resolver returns a RefResolver looking references up in defs after trimming prefix.
func Resolver(defs *Definitions, prefix string) RefResolver {
	return func(ref string) *Schema {
		title, ok := strings.CutPrefix(ref, prefix)
		if !ok {
			return nil
		}
		s, _ := defs.Get(title)
		return s
	}
}

func traverse(s *Schema, resolver RefResolver, yield func(*Schema) bool, visited map[*Schema]struct{}) bool {
	if s == nil {
		return true
	}
	if _, ok := visited[s]; ok {
		return true
	}
	visited[s] = struct{}{}

	if !yield(s) {
		return false
	}

	if s.Ref != "" && resolver != nil {
		if !traverse(resolver(s.Ref), resolver, yield, visited) {
			return false
		}
	}

	if !traverse(s.Items, resolver, yield, visited) {
		return false
	}
	for _, p := range s.Properties.All() {
		if !traverse(p, resolver, yield, visited) {
			return false
		}
	}
	return true
}
