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
	"strings"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// =============================================================================
// Order
// =============================================================================

// Order selects when hooks fire relative to a component's children.
type Order int

const (
	// PreOrder fires a component's hooks before any hook of its descendants.
	PreOrder Order = iota

	// PostOrder fires a component's hooks after every hook of its descendants.
	PostOrder
)

// String returns "PRE_ORDER", "POST_ORDER" or "UNKNOWN".
func (o Order) String() string {
	switch o {
	case PreOrder:
		return "PRE_ORDER"
	case PostOrder:
		return "POST_ORDER"
	default:
		return "UNKNOWN"
	}
}

// ParseOrder accepts "pre", "post", "pre_order", "post-order" and friends.
func ParseOrder(s string) (Order, error) {
	normalized := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "pre", "preorder":
		return PreOrder, nil
	case "post", "postorder":
		return PostOrder, nil
	default:
		return PreOrder, fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// =============================================================================
// DepthLimit
// =============================================================================

// DepthLimit is the optional cutoff type of a traversal.
//
// Description:
//
//	With a cutoff C, every component of type C or higher is visited and no
//	component strictly deeper than C is. Components of type C nested under
//	each other (SUBVIEW under SUBVIEW) are all visited. The zero value is
//	unlimited: the whole tree is visited.
type DepthLimit struct {
	typ component.Type
}

// Unlimited returns a limit that visits the whole tree.
func Unlimited() DepthLimit {
	return DepthLimit{}
}

// LimitTo returns a limit with cutoff t.
//
// Panics if t is not a valid type.
func LimitTo(t component.Type) DepthLimit {
	if !t.Valid() {
		panic(fmt.Errorf("%w: invalid depth limit %d", component.ErrUnknownType, int(t)))
	}
	return DepthLimit{typ: t}
}

// ParseDepthLimit parses a type name. "", "LEAVES" and "UNLIMITED" give an
// unlimited limit.
func ParseDepthLimit(s string) (DepthLimit, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LEAVES", "UNLIMITED":
		return Unlimited(), nil
	}
	t, err := component.ParseType(s)
	if err != nil {
		return DepthLimit{}, err
	}
	return LimitTo(t), nil
}

// IsUnlimited reports whether no cutoff is configured.
func (d DepthLimit) IsUnlimited() bool {
	return d.typ == component.TypeUnspecified
}

// Type returns the cutoff type, or TypeUnspecified when unlimited.
func (d DepthLimit) Type() component.Type {
	return d.typ
}

// Excludes reports whether a component of type t lies strictly below the
// cutoff and must not be visited.
//
// Panics if t is invalid or belongs to another flavor than the cutoff.
func (d DepthLimit) Excludes(t component.Type) bool {
	return !d.IsUnlimited() && t.IsDeeperThan(d.typ)
}

// String returns the cutoff type name or "UNLIMITED".
func (d DepthLimit) String() string {
	if d.IsUnlimited() {
		return "UNLIMITED"
	}
	return d.typ.String()
}

// =============================================================================
// Config
// =============================================================================

// Config is the traversal configuration of a Crawler.
type Config struct {
	// Order selects pre-order or post-order hook timing.
	Order Order

	// MaxDepth is the inclusive cutoff type. Zero value: unlimited.
	MaxDepth DepthLimit
}

// Validate checks that the order is known.
func (c Config) Validate() error {
	if c.Order != PreOrder && c.Order != PostOrder {
		return fmt.Errorf("%w: %d", ErrUnknownOrder, int(c.Order))
	}
	return nil
}
