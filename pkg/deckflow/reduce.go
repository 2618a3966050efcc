package deckflow

import "cmp"

// Reduce policies for building commutative MergeFunc implementations.
//
// A fan-out merger combines branch states field by field. These helpers
// cover the common per-field policies so a state type's merge function
// reads as a short list of field assignments:
//
//	g.SetMerger(func(parent, branch PipelineState) PipelineState {
//	    parent.Claims = deckflow.AppendDedupeFunc(parent.Claims, branch.Claims, claimKey)
//	    parent.MaxAttempt = deckflow.Max(parent.MaxAttempt, branch.MaxAttempt)
//	    parent.Summary = deckflow.LatestNonEmpty(parent.Summary, branch.Summary)
//	    return parent
//	})
//
// All policies except LatestNonEmpty are commutative and associative.
// LatestNonEmpty prefers the branch value, so use it only for fields
// where at most one branch writes a value.

// LatestNonEmpty returns branch if it is non-empty, else parent.
// Not commutative when both sides are non-empty: the branch wins.
func LatestNonEmpty(parent, branch string) string {
	if branch != "" {
		return branch
	}
	return parent
}

// Max returns the larger of the two values.
func Max[T cmp.Ordered](parent, branch T) T {
	if branch > parent {
		return branch
	}
	return parent
}

// First returns parent if it is non-zero, else branch.
// Keeps the first value written and ignores later ones.
func First[T comparable](parent, branch T) T {
	var zero T
	if parent != zero {
		return parent
	}
	return branch
}

// AppendDedupe appends branch elements to parent, skipping elements
// already present. Order of first appearance is preserved.
func AppendDedupe[T comparable](parent, branch []T) []T {
	if len(branch) == 0 {
		return parent
	}
	seen := make(map[T]struct{}, len(parent)+len(branch))
	out := make([]T, 0, len(parent)+len(branch))
	for _, v := range parent {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range branch {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AppendDedupeFunc appends branch elements to parent, using key to
// decide identity. Elements whose key is already present are skipped.
// Order of first appearance is preserved.
func AppendDedupeFunc[T any, K comparable](parent, branch []T, key func(T) K) []T {
	if len(branch) == 0 {
		return parent
	}
	seen := make(map[K]struct{}, len(parent)+len(branch))
	out := make([]T, 0, len(parent)+len(branch))
	for _, v := range parent {
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	for _, v := range branch {
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
