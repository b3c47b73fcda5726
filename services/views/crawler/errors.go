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
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// Sentinel errors for crawler operations.
var (
	// ErrNilVisitor is returned by New when no visitor is given.
	ErrNilVisitor = errors.New("nil visitor")

	// ErrUnknownOrder is returned when an Order is neither PreOrder nor
	// PostOrder, or cannot be parsed.
	ErrUnknownOrder = errors.New("unknown traversal order")

	// ErrDepthOutOfRange is returned by Path.ValueAt for a depth that is not
	// on the live path.
	ErrDepthOutOfRange = errors.New("depth out of range")

	// ErrFlavorMismatch is returned when the depth limit belongs to another
	// tree flavor than the root being visited.
	ErrFlavorMismatch = errors.New("depth limit flavor does not match tree flavor")
)

// VisitError reports a failing visitor hook.
//
// Description:
//
//	Hooks signal failures by returning an error. The crawler stops at the
//	first failure and returns a *VisitError naming the hook and component.
//	The original error is available through errors.Is / errors.As.
type VisitError struct {
	// Hook is the visitor method that failed, e.g. "VisitSubView".
	Hook string

	// Key is the key of the component being visited.
	Key int

	// Type is the type of the component being visited.
	Type component.Type

	// Err is the error returned by the hook.
	Err error
}

// Error implements error.
func (e *VisitError) Error() string {
	return fmt.Sprintf("%s of %s:%d failed: %v", e.Hook, e.Type, e.Key, e.Err)
}

// Unwrap returns the hook error.
func (e *VisitError) Unwrap() error {
	return e.Err
}
