// Copyright (c) 2026 Herdcount. All rights reserved.

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herdcount/herdcount/pkg/slice"
)

func TestReduce(t *testing.T) {
	sum := func(acc int64, v int64) int64 { return acc + v }

	assert.Equal(t, int64(6), slice.Reduce([]int64{1, 2, 3}, int64(0), sum))
	assert.Equal(t, int64(7), slice.Reduce(nil, int64(7), sum))
	assert.Equal(t, "abc", slice.Reduce([]string{"a", "b", "c"}, "", func(acc, v string) string { return acc + v }))
}
