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
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// CallRecord captures one hook invocation and the path seen by it.
type CallRecord struct {
	// Method is the hook name, e.g. "VisitAny" or "VisitSubView".
	Method string

	// Key is the key of the visited component.
	Key int

	// ParentKey is the key of the parent, nil at the root.
	ParentKey *int

	// RootKey is the key of the traversal root.
	RootKey int

	// Path holds the ancestor keys, current first.
	Path []int
}

// String renders the record as "VisitSubView 111 parent=11 root=1 path=[111 11 1]".
func (r CallRecord) String() string {
	parent := "-"
	if r.ParentKey != nil {
		parent = strconv.Itoa(*r.ParentKey)
	}
	keys := make([]string, len(r.Path))
	for i, k := range r.Path {
		keys[i] = strconv.Itoa(k)
	}
	return fmt.Sprintf("%s %d parent=%s root=%d path=[%s]",
		r.Method, r.Key, parent, r.RootKey, strings.Join(keys, " "))
}

// Recorder is a Visitor that records every hook call in order.
//
// It carries no accumulator and is used to inspect traversal order, for
// example by the walk command.
type Recorder struct {
	records []CallRecord
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Records returns the recorded calls in invocation order.
func (r *Recorder) Records() []CallRecord {
	out := make([]CallRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Reset drops all records.
func (r *Recorder) Reset() {
	r.records = r.records[:0]
}

func (r *Recorder) record(method string, c *component.Component, path *Path[struct{}]) error {
	rec := CallRecord{
		Method:  method,
		Key:     c.Key(),
		RootKey: path.Root().Key(),
		Path:    path.AncestorKeys(),
	}
	if parent, ok := path.Parent(); ok {
		key := parent.Key()
		rec.ParentKey = &key
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *Recorder) VisitAny(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitAny", c, path)
}

func (r *Recorder) VisitProject(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitProject", c, path)
}

func (r *Recorder) VisitModule(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitModule", c, path)
}

func (r *Recorder) VisitDirectory(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitDirectory", c, path)
}

func (r *Recorder) VisitFile(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitFile", c, path)
}

func (r *Recorder) VisitView(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitView", c, path)
}

func (r *Recorder) VisitSubView(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitSubView", c, path)
}

func (r *Recorder) VisitProjectView(c *component.Component, path *Path[struct{}]) error {
	return r.record("VisitProjectView", c, path)
}

var _ Visitor[struct{}] = (*Recorder)(nil)
