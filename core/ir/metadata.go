package ir

import (
	"sort"
	"strings"
)

// ValueSeparator separates the individual values of a multi-valued metadata
// entry.
const ValueSeparator = " | "

// StructuralKeys describe the containing unit rather than the leaf. When a
// child and its parent both carry one of these keys the parent's value wins.
// The set is fixed.
var StructuralKeys = map[string]bool{
	"id":      true,
	"tei-tag": true,
}

// MergeChild merges child metadata over its parent: the result contains
// every key of both maps with the child's value, except for structural keys
// present on both sides which keep the parent's value. Neither input is
// modified.
func MergeChild(parent, child Metadata) Metadata {
	result := make(Metadata, len(parent)+len(child))
	for k, v := range parent {
		result[k] = v
	}
	for k, v := range child {
		if _, ok := parent[k]; ok && StructuralKeys[k] {
			continue
		}
		result[k] = v
	}
	return result
}

// MergeSibling merges the metadata of two adjacent spans. Keys present on
// both sides get the sorted, de-duplicated union of their " | " separated
// values; keys present on one side pass through unchanged. Neither input is
// modified.
func MergeSibling(prev, current Metadata) Metadata {
	result := make(Metadata, len(prev)+len(current))
	for k, v := range prev {
		result[k] = v
	}
	for k, v := range current {
		p, ok := prev[k]
		if !ok {
			result[k] = v
			continue
		}
		result[k] = MetadataValue{
			Value: unionValues(p.Value, v.Value),
			Kind:  KindText,
		}
	}
	return result
}

// AppendValue adds value to an existing multi-valued entry without
// de-duplicating, preserving source order. Used when an element repeats an
// attribute.
func AppendValue(m Metadata, key, value string) {
	if existing, ok := m[key]; ok {
		m[key] = MetadataValue{Value: existing.Value + ValueSeparator + value, Kind: existing.Kind}
		return
	}
	m[key] = Text(value)
}

func unionValues(a, b string) string {
	seen := make(map[string]bool)
	var values []string
	for _, part := range append(strings.Split(a, ValueSeparator), strings.Split(b, ValueSeparator)...) {
		if seen[part] {
			continue
		}
		seen[part] = true
		values = append(values, part)
	}
	sort.Strings(values)
	return strings.Join(values, ValueSeparator)
}
