package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xolan/timetracker/internal/entry"
)

func TestProjects(t *testing.T) {
	p := NewProjects("Kevin", "acme", "Kevin", "", "  ")
	assert.Equal(t, []string{entry.NoProject, "Kevin", "acme"}, p.Names())

	assert.True(t, p.Add("kevin"), "comparison is case sensitive")
	assert.False(t, p.Add("acme"))
	assert.True(t, p.Has("kevin"))

	assert.True(t, p.Remove("acme"))
	assert.False(t, p.Remove("acme"))
	assert.False(t, p.Remove(entry.NoProject))
	assert.Equal(t, 3, p.Len())
}

func TestProjects_EncodeDecode(t *testing.T) {
	p := NewProjects("a", "b;c", "d")
	encoded := p.Encode()
	assert.Equal(t, "(no project);;a;;b;c;;d", encoded)

	decoded := DecodeProjects(encoded)
	assert.Equal(t, p.Names(), decoded.Names())

	assert.Equal(t, []string{entry.NoProject}, DecodeProjects("").Names())
	assert.Equal(t, []string{entry.NoProject, "x"}, DecodeProjects("x").Names(), "placeholder is restored when missing")
}

func TestProjects_RejectsDelimiter(t *testing.T) {
	p := NewProjects("a")
	assert.False(t, p.Add("b;;c"))
	assert.False(t, Registrable("x;;"))
	assert.True(t, Registrable("b;c"))

	decoded := DecodeProjects(p.Encode())
	assert.Equal(t, []string{entry.NoProject, "a"}, decoded.Names())
}
