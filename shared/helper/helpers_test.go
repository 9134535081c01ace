package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/fleeting_state/shared/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = helper.GetTypedValueOf[int](func() (any, error) { return "3", nil })
	assert.ErrorContains(t, err, "unexpected type: string")

	sentinel := errors.New("missing")
	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestGetTypedValueOf2(t *testing.T) {
	v, ok := helper.GetTypedValueOf2[string](func() (any, bool) { return "x", true })
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return 1, true })
	assert.False(t, ok)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return nil, false })
	assert.False(t, ok)
}

func TestMustGetTypedValue_Panics(t *testing.T) {
	assert.Panics(t, func() {
		helper.MustGetTypedValue[int](func() (any, error) { return "nope", nil })
	})
	assert.NotPanics(t, func() {
		helper.MustGetTypedValue[int](func() (any, error) { return 1, nil })
	})
}
