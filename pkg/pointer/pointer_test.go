// Copyright (c) 2026 Herdcount. All rights reserved.

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herdcount/herdcount/pkg/pointer"
)

func TestFallback(t *testing.T) {
	assert.Equal(t, "Field device", pointer.Fallback(nil, "Field device"))
	assert.Equal(t, "", pointer.Fallback(pointer.To(""), "Field device"))
	assert.Equal(t, int64(0), pointer.Fallback(pointer.To(int64(0)), 7))
}
