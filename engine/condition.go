// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

// ResourceExists is true while a resource of type T is present.
func ResourceExists[T any]() Condition {
	return func(w *World) bool { return Has[T](w) }
}

// ResourceEquals is true while the resource of type T equals v.
func ResourceEquals[T comparable](v T) Condition {
	return func(w *World) bool {
		got, ok := Get[T](w)
		return ok && got == v
	}
}

// Not inverts a condition.
func Not(c Condition) Condition {
	return func(w *World) bool { return !c(w) }
}

// And holds when every condition holds.
func And(conds ...Condition) Condition {
	return func(w *World) bool { return allow(w, conds) }
}

// Or holds when any condition holds. Evaluation stops at the first true one.
func Or(conds ...Condition) Condition {
	return func(w *World) bool {
		for _, c := range conds {
			if c(w) {
				return true
			}
		}
		return false
	}
}
