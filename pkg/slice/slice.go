// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package slice complements the standard [slices] package with generic folds.
*/
package slice

// Reduce folds input into a single value, left to right.
func Reduce[T any, U any](input []T, initial U, reducer func(accumulator U, current T) U) U {
	result := initial
	for _, v := range input {
		result = reducer(result, v)
	}
	return result
}
