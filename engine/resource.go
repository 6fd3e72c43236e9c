// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"
	"reflect"
)

// Insert stores v as the singleton resource of type T, replacing any
// previous value.
func Insert[T any](w *World, v T) {
	w.resources[reflect.TypeFor[T]()] = v
}

// Get returns the resource of type T.
// The second result is false when no such resource exists.
func Get[T any](w *World) (T, bool) {
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustGet returns the resource of type T or panics.
func MustGet[T any](w *World) T {
	v, ok := Get[T](w)
	if !ok {
		panic(fmt.Sprintf("engine: %s world has no resource %s", w.name, reflect.TypeFor[T]()))
	}
	return v
}

// Remove deletes the resource of type T and returns it.
// Removing an absent resource is not an error.
func Remove[T any](w *World) (T, bool) {
	key := reflect.TypeFor[T]()
	v, ok := w.resources[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, key)
	return v.(T), true
}

// Has reports whether a resource of type T exists.
func Has[T any](w *World) bool {
	_, ok := w.resources[reflect.TypeFor[T]()]
	return ok
}
