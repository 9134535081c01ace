package store_test

import (
	"testing"

	"github.com/on-the-ground/fleeting_state/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
}

type customer struct {
	Name    string
	Address address
	Tags    []string
	secret  string
	address
}

func TestField_ResolvesDirectField(t *testing.T) {
	lens, err := store.Field[profile, string]("Name")
	require.NoError(t, err)
	assert.Equal(t, "Name", lens.Name())

	old := profile{Name: "Alice", Age: 30}
	updated := lens.Set(old, "Bob")

	assert.Equal(t, profile{Name: "Bob", Age: 30}, updated)
	assert.Equal(t, profile{Name: "Alice", Age: 30}, old, "the original value must not change")
	assert.Equal(t, "Bob", lens.Get(updated))
}

func TestField_PointerOwnerCopiesOnWrite(t *testing.T) {
	lens, err := store.Field[*profile, int]("Age")
	require.NoError(t, err)

	old := &profile{Name: "Alice", Age: 30}
	updated := lens.Set(old, 31)

	assert.NotSame(t, old, updated)
	assert.Equal(t, 30, old.Age)
	assert.Equal(t, &profile{Name: "Alice", Age: 31}, updated)

	var missing *profile
	assert.Equal(t, 0, lens.Get(missing))
	assert.Equal(t, &profile{Age: 5}, lens.Set(missing, 5))
}

func TestField_InvalidSelectors(t *testing.T) {
	cases := map[string]func() error{
		"computed expression": func() error {
			_, err := store.Field[profile, string]("Name + Age")
			return err
		},
		"nested path": func() error {
			_, err := store.Field[customer, string]("Address.City")
			return err
		},
		"promoted field": func() error {
			_, err := store.Field[customer, string]("City")
			return err
		},
		"unexported field": func() error {
			_, err := store.Field[customer, string]("secret")
			return err
		},
		"missing field": func() error {
			_, err := store.Field[profile, string]("Email")
			return err
		},
		"type mismatch": func() error {
			_, err := store.Field[profile, string]("Age")
			return err
		},
		"empty name": func() error {
			_, err := store.Field[profile, string]("")
			return err
		},
		"non-struct owner": func() error {
			_, err := store.Field[int, int]("Value")
			return err
		},
	}
	for name, resolve := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, resolve(), store.ErrInvalidSelector)
		})
	}
}

func TestField_SliceFieldKeepsOtherFields(t *testing.T) {
	lens := store.MustField[customer, []string]("Tags")
	old := customer{Name: "Ann", Tags: []string{"a"}, Address: address{City: "Oslo"}}

	updated := lens.Set(old, []string{"b", "c"})
	assert.Equal(t, []string{"a"}, old.Tags)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "Oslo", updated.Address.City)
}

func TestMustField_Panics(t *testing.T) {
	assert.Panics(t, func() {
		store.MustField[profile, string]("Nope")
	})
}

func TestNewLens(t *testing.T) {
	get := func(p profile) int { return p.Age }
	set := func(p profile, age int) profile {
		p.Age = age
		return p
	}

	lens, err := store.NewLens("Age", get, set)
	require.NoError(t, err)
	assert.Equal(t, profile{Name: "A", Age: 2}, lens.Set(profile{Name: "A", Age: 1}, 2))

	_, err = store.NewLens("", get, set)
	assert.ErrorIs(t, err, store.ErrInvalidSelector)
	_, err = store.NewLens[profile, int]("Age", nil, set)
	assert.ErrorIs(t, err, store.ErrInvalidSelector)
	_, err = store.NewLens[profile, int]("Age", get, nil)
	assert.ErrorIs(t, err, store.ErrInvalidSelector)
}
