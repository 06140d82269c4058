package datastructure

import (
	"testing"

	"github.com/lintang-b-s/gridnav/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodePoolGenerateIsIdempotentWithinSearch(t *testing.T) {
	p := NewNodePool(5000)
	p.NewSearch()

	assert.Nil(t, p.Get(42))
	n := p.Generate(42)
	require.NotNil(t, n)
	assert.Equal(t, Index(42), n.GetId())
	assert.Equal(t, pkg.INF_WEIGHT, n.GetG())
	assert.Equal(t, INVALID_ID, n.GetParent())

	n.Init(3, 4, 7)
	again := p.Generate(42)
	assert.Same(t, n, again)
	assert.Equal(t, 3.0, again.GetG())
	assert.Equal(t, 7.0, again.GetF())
	assert.Equal(t, 1, p.NumAllocatedBlocks())
}

func TestNodePoolNewSearchInvalidatesLazily(t *testing.T) {
	p := NewNodePool(3000)
	p.NewSearch()
	n := p.Generate(2500)
	n.Init(10, 0, 1)
	assert.True(t, p.IsGenerated(2500))

	p.NewSearch()
	assert.False(t, p.IsGenerated(2500))
	assert.Nil(t, p.Get(2500))

	fresh := p.Generate(2500)
	assert.Same(t, n, fresh, "the arena slot is reused")
	assert.Equal(t, pkg.INF_WEIGHT, fresh.GetG())
	assert.Equal(t, INVALID_ID, fresh.GetParent())
}

func TestNodePoolOutOfRange(t *testing.T) {
	p := NewNodePool(10)
	p.NewSearch()
	assert.Nil(t, p.Generate(10))
	assert.Nil(t, p.Get(INVALID_ID))
}

func TestNodePoolStampWrapAround(t *testing.T) {
	p := NewNodePool(10)
	p.searchID = ^uint32(0) - 1
	p.NewSearch()
	p.Generate(3)
	p.NewSearch()
	assert.Equal(t, uint32(1), p.GetSearchID())
	assert.False(t, p.IsGenerated(3))
}

func TestStampSet(t *testing.T) {
	s := NewStampSet(16)
	s.Add(3)
	s.Add(100)
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(4))
	assert.False(t, s.Contains(100))

	s.Reset()
	assert.False(t, s.Contains(3))

	s.epoch = ^uint32(0)
	s.Add(5)
	s.Reset()
	assert.False(t, s.Contains(5))
	assert.Equal(t, uint32(1), s.epoch)
}
