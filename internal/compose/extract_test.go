package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"plain", "nginx", "nginx", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"number", 80, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsString(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsStringArray(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
		ok   bool
	}{
		{"strings", []any{"80:80", "443"}, []string{"80:80", "443"}, true},
		{"typed strings", []string{"a", "", "b"}, []string{"a", "b"}, true},
		{"numbers kept as text", []any{80, float64(8080)}, []string{"80", "8080"}, true},
		{"empty items dropped", []any{"", "  ", "x"}, []string{"x"}, true},
		{"booleans dropped", []any{true}, nil, false},
		{"empty sequence", []any{}, nil, false},
		{"not a sequence", "80", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsStringArray(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsStringMap(t *testing.T) {
	got, ok := AsStringMap(map[string]any{"A": "1", "B": 2, "C": true, "D": nil, "": "x", "E": []any{"no"}})
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"A": "1", "B": "2", "C": "true", "D": ""}, got)

	_, ok = AsStringMap(map[string]any{})
	assert.False(t, ok)
	_, ok = AsStringMap([]any{"A=1"})
	assert.False(t, ok)
}

func TestAsRestartPolicy(t *testing.T) {
	tests := []struct {
		in   any
		want RestartPolicy
		ok   bool
	}{
		{"no", RestartNo, true},
		{"always", RestartAlways, true},
		{"on-failure", RestartOnFailure, true},
		{"unless-stopped", RestartUnlessStopped, true},
		{"on-failure:3", RestartPolicy("on-failure:3"), true},
		{"on-failure:x", "", false},
		{"sometimes", "", false},
		{"", "", false},
		{true, "", false},
	}
	for _, tt := range tests {
		got, ok := AsRestartPolicy(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestAsEnvironment(t *testing.T) {
	env, ok := AsEnvironment([]any{"A=1", "B=2"})
	assert.True(t, ok)
	assert.Equal(t, Environment{List: []string{"A=1", "B=2"}}, env)
	assert.Equal(t, []any{"A=1", "B=2"}, env.Data())

	env, ok = AsEnvironment(map[string]any{"A": "1"})
	assert.True(t, ok)
	assert.Equal(t, Environment{Map: map[string]string{"A": "1"}}, env)
	assert.Equal(t, map[string]any{"A": "1"}, env.Data())

	_, ok = AsEnvironment(map[string]any{})
	assert.False(t, ok)
	_, ok = AsEnvironment("A=1")
	assert.False(t, ok)
}

func TestAsInt(t *testing.T) {
	for _, in := range []any{3, int64(3), uint64(3), float64(3)} {
		n, ok := AsInt(in)
		assert.True(t, ok, "%T", in)
		assert.Equal(t, 3, n)
	}
	_, ok := AsInt(3.5)
	assert.False(t, ok)
	_, ok = AsInt("3")
	assert.False(t, ok)
}

func TestAsStringOrList(t *testing.T) {
	v, ok := AsStringOrList("npm start")
	assert.True(t, ok)
	assert.Equal(t, "npm start", v.Data())

	v, ok = AsStringOrList([]any{"npm", "start"})
	assert.True(t, ok)
	assert.Equal(t, []any{"npm", "start"}, v.Data())

	_, ok = AsStringOrList([]any{})
	assert.False(t, ok)
	_, ok = AsStringOrList(" ")
	assert.False(t, ok)
}

func TestAsMapAndBool(t *testing.T) {
	_, ok := AsMap(map[string]any{})
	assert.False(t, ok)
	m, ok := AsMap(map[string]any{"a": 1})
	assert.True(t, ok)
	assert.Len(t, m, 1)

	b, ok := AsBool(false)
	assert.True(t, ok)
	assert.False(t, b)
	_, ok = AsBool("true")
	assert.False(t, ok)
}
