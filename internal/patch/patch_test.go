package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namePatch struct {
	Name *string
	Age  *int
}

func (p namePatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("name cannot be blank")
	}
	return nil
}

func (p namePatch) Fields() Fields {
	f := Fields{}
	Set(f, "name", p.Name)
	Set(f, "age", p.Age)
	return f
}

func TestPrepare_OnlyPresentFields(t *testing.T) {
	name := "Ada"
	fields, err := Prepare(namePatch{Name: &name})
	require.NoError(t, err)

	assert.True(t, fields.Has("name"))
	assert.False(t, fields.Has("age"))
	assert.Equal(t, "Ada", fields["name"])
}

func TestPrepare_Empty(t *testing.T) {
	fields, err := Prepare(namePatch{})
	require.NoError(t, err)
	assert.True(t, fields.Empty())
}

func TestPrepare_ValidationError(t *testing.T) {
	blank := ""
	_, err := Prepare(namePatch{Name: &blank})
	assert.Error(t, err)
}

func TestSetFunc(t *testing.T) {
	f := Fields{}
	n := 3
	SetFunc(f, "double", &n, func(v int) any { return v * 2 })
	SetFunc[int](f, "missing", nil, func(v int) any { return v })

	assert.Equal(t, 6, f["double"])
	assert.False(t, f.Has("missing"))
}
