// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package crawler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// =============================================================================
// Path Unit Tests
// =============================================================================

func TestPath_PushPop(t *testing.T) {
	root := component.NewBuilder(component.TypeView, 1).MustBuild()
	sub := component.NewBuilder(component.TypeSubView, 2).MustBuild()

	p := newPath[string]()
	p.push(root)
	p.SetCurrentValue("root")

	assert.True(t, p.IsRoot())
	assert.Equal(t, 1, p.Depth())
	_, ok := p.Parent()
	assert.False(t, ok)
	_, ok = p.ParentValue()
	assert.False(t, ok)

	p.push(sub)
	assert.Equal(t, "", p.CurrentValue())
	p.SetCurrentValue("sub")

	assert.False(t, p.IsRoot())
	assert.Equal(t, 2, p.Depth())
	assert.Same(t, sub, p.Current())
	assert.Same(t, root, p.Root())
	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Same(t, root, parent)
	pv, ok := p.ParentValue()
	require.True(t, ok)
	assert.Equal(t, "root", pv)
	assert.Equal(t, "root", p.RootValue())
	assert.Equal(t, []int{2, 1}, p.AncestorKeys())

	elems := p.Elements()
	require.Len(t, elems, 2)
	assert.Equal(t, "sub", elems[0].Value)
	assert.Equal(t, "root", elems[1].Value)

	v, err := p.ValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, "root", v)
	v, err = p.ValueAt(2)
	require.NoError(t, err)
	assert.Equal(t, "sub", v)
	_, err = p.ValueAt(0)
	assert.ErrorIs(t, err, ErrDepthOutOfRange)
	_, err = p.ValueAt(3)
	assert.ErrorIs(t, err, ErrDepthOutOfRange)

	p.pop()
	assert.Same(t, root, p.Current())
	assert.Equal(t, "root", p.CurrentValue())
}

func TestPath_ElementsIsCopy(t *testing.T) {
	p := newPath[int]()
	p.push(component.NewBuilder(component.TypeView, 1).MustBuild())
	p.SetCurrentValue(7)

	elems := p.Elements()
	elems[0].Value = 99
	assert.Equal(t, 7, p.CurrentValue())
}

// =============================================================================
// Accumulator Tests
// =============================================================================

// depthVisitor writes the parent's value + 1 into each frame (top-down) and
// records what it saw.
type depthVisitor struct {
	BaseVisitor[int]
	seen map[int]int
}

func (v *depthVisitor) VisitAny(c *component.Component, path *Path[int]) error {
	parent, ok := path.ParentValue()
	if !ok {
		parent = 0
	}
	path.SetCurrentValue(parent + 1)
	v.seen[c.Key()] = path.CurrentValue()
	return nil
}

func TestPath_TopDownPropagation(t *testing.T) {
	v := &depthVisitor{seen: map[int]int{}}
	c, err := New[int](v, Config{Order: PreOrder})
	require.NoError(t, err)
	require.NoError(t, c.Visit(context.Background(), buildViewsTree(t)))

	assert.Equal(t, 1, v.seen[1])
	assert.Equal(t, 2, v.seen[12])
	assert.Equal(t, 3, v.seen[111])
	assert.Equal(t, 4, v.seen[1121])
	assert.Equal(t, 5, v.seen[12111])
}

type counter struct{ n int }

// leafCountVisitor counts leaves bottom-up through pointer accumulators.
type leafCountVisitor struct {
	BaseVisitor[*counter]
	totals map[int]int
}

func (v *leafCountVisitor) NewElement(*component.Component, *Path[*counter]) *counter {
	return &counter{}
}

func (v *leafCountVisitor) VisitAny(c *component.Component, path *Path[*counter]) error {
	// VisitAny runs before the type hook, so leaves add themselves here.
	if c.Type().IsLeaf() {
		path.CurrentValue().n = 1
	}
	v.totals[c.Key()] = path.CurrentValue().n
	if parent, ok := path.ParentValue(); ok {
		parent.n += path.CurrentValue().n
	}
	return nil
}

func TestPath_BottomUpAggregation(t *testing.T) {
	v := &leafCountVisitor{totals: map[int]int{}}
	c, err := New[*counter](v, Config{Order: PostOrder})
	require.NoError(t, err)
	require.NoError(t, c.Visit(context.Background(), buildViewsTree(t)))

	assert.Equal(t, 4, v.totals[1])
	assert.Equal(t, 3, v.totals[11])
	assert.Equal(t, 2, v.totals[111])
	assert.Equal(t, 1, v.totals[112])
	assert.Equal(t, 1, v.totals[12])
	assert.Equal(t, 1, v.totals[1211])
	assert.Equal(t, 1, v.totals[1111])
}

func TestPath_BottomUpAggregation_WithCutoff(t *testing.T) {
	v := &leafCountVisitor{totals: map[int]int{}}
	c, err := New[*counter](v, Config{Order: PostOrder, MaxDepth: LimitTo(component.TypeSubView)})
	require.NoError(t, err)
	require.NoError(t, c.Visit(context.Background(), buildViewsTree(t)))

	// Leaves are pruned, so nothing is counted.
	assert.Equal(t, 0, v.totals[1])
	_, visited := v.totals[1111]
	assert.False(t, visited)
}

// namingFactory seeds each frame with the qualified name of the component,
// reading its parent's frame.
type namingFactory struct {
	BaseVisitor[string]
	names []string
}

func (f *namingFactory) NewElement(c *component.Component, path *Path[string]) string {
	if path.Current() != c {
		panic("factory called before push")
	}
	parent, ok := path.ParentValue()
	if !ok {
		return c.Name()
	}
	return parent + "/" + c.Name()
}

func (f *namingFactory) VisitAny(_ *component.Component, path *Path[string]) error {
	f.names = append(f.names, path.CurrentValue())
	return nil
}

func TestElementFactory_SeedsFrames(t *testing.T) {
	f := &namingFactory{}
	c, err := New[string](f, Config{Order: PreOrder, MaxDepth: LimitTo(component.TypeSubView)})
	require.NoError(t, err)
	require.NoError(t, c.Visit(context.Background(), buildViewsTree(t)))

	assert.Equal(t, []string{"1", "1/11", "1/11/111", "1/11/112", "1/12", "1/12/121", "1/12/121/1211"}, f.names)
	for _, n := range f.names {
		assert.True(t, strings.HasPrefix(n, "1"))
	}
}

// pathInspector checks that ancestor values are visible in post-order too.
type pathInspector struct {
	BaseVisitor[int]
	t *testing.T
}

func (p *pathInspector) NewElement(c *component.Component, _ *Path[int]) int {
	return c.Key()
}

func (p *pathInspector) VisitAny(c *component.Component, path *Path[int]) error {
	keys := path.AncestorKeys()
	elems := path.Elements()
	require.Len(p.t, elems, len(keys))
	for i, e := range elems {
		assert.Equal(p.t, keys[i], e.Component.Key())
		assert.Equal(p.t, keys[i], e.Value)
		v, err := path.ValueAt(len(keys) - i)
		require.NoError(p.t, err)
		assert.Equal(p.t, keys[i], v)
	}
	assert.Equal(p.t, c.Key(), keys[0])
	return nil
}

func TestPath_AncestorValuesMatchKeys(t *testing.T) {
	for _, order := range []Order{PreOrder, PostOrder} {
		c, err := New[int](&pathInspector{t: t}, Config{Order: order})
		require.NoError(t, err)
		require.NoError(t, c.Visit(context.Background(), buildViewsTree(t)))
	}
}
