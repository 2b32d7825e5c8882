package classutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type english struct{}

func (english) Greet() string { return "hello" }

type french struct{}

func (french) Greet() string { return "bonjour" }

func TestRegistry(t *testing.T) {
	r := NewRegistry[greeter]("greeter")
	r.Register("English", func() greeter { return english{} })
	r.Register("french", func() greeter { return french{} })

	g, err := r.New("ENGLISH")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	assert.True(t, r.Has("French"))
	assert.False(t, r.Has("german"))
	assert.Equal(t, []string{"English", "french"}, r.Names())

	_, err = r.New("german")
	var unknown *UnknownNameError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "german", unknown.Name)
	assert.Equal(t, []string{"English", "french"}, unknown.Available)
	assert.True(t, strings.HasPrefix(err.Error(), `unknown greeter "german"`))
}

type person struct {
	Name    string
	Age     int
	Score   float64
	Active  bool
	private string
}

func (p *person) Describe(prefix string) string {
	return prefix + p.Name
}

func (p *person) Fail() (int, error) {
	return 0, errors.New("boom")
}

func (p *person) Sum(nums ...int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}

func TestGetSetProperty(t *testing.T) {
	p := &person{Name: "Ann", Age: 30, private: "x"}

	v, err := GetProperty(p, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)

	_, err = GetProperty(p, "private")
	var perr *PropertyError
	assert.ErrorAs(t, err, &perr)

	require.NoError(t, SetProperty(p, "age", "42"))
	assert.Equal(t, 42, p.Age)

	require.NoError(t, SetProperty(p, "Score", "1.5"))
	assert.InDelta(t, 1.5, p.Score, 1e-9)

	require.NoError(t, SetProperty(p, "active", "true"))
	assert.True(t, p.Active)

	require.NoError(t, SetProperty(p, "Name", 7))
	assert.Equal(t, "7", p.Name)

	assert.Error(t, SetProperty(p, "age", "not a number"))
	assert.ErrorIs(t, SetProperty(*p, "age", 1), ErrNotStruct)
	assert.ErrorIs(t, SetProperty(42, "age", 1), ErrNotStruct)
}

func TestProperties(t *testing.T) {
	props, err := Properties(person{Name: "Bob", Age: 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Name": "Bob", "Age": 5, "Score": 0.0, "Active": false}, props)

	_, err = Properties("string")
	assert.ErrorIs(t, err, ErrNotStruct)
}

func TestCallMethod(t *testing.T) {
	p := &person{Name: "Cy"}

	out, err := CallMethod(p, "Describe", "Dr. ")
	require.NoError(t, err)
	assert.Equal(t, []any{"Dr. Cy"}, out)

	out, err = CallMethod(p, "Sum", 1, "2", 3)
	require.NoError(t, err)
	assert.Equal(t, []any{6}, out)

	out, err = CallMethod(p, "Fail")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []any{0}, out)

	_, err = CallMethod(p, "Missing")
	assert.Error(t, err)

	_, err = CallMethod(p, "Describe")
	assert.Error(t, err)
}
