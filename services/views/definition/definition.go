// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package definition loads component trees from YAML view definitions.
//
// A definition names the flavor of the tree and nests nodes under a single
// root:
//
//	flavor: views
//	root:
//	  type: VIEW
//	  key: 1
//	  name: portfolio
//	  children:
//	    - type: PROJECT_VIEW
//	      key: 11
//	      measure: 4.5
//
// Structural rules (field presence, known types) are checked with
// go-playground/validator; hierarchy rules are enforced by component.Builder.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianViews/services/views/component"
	"github.com/AleutianAI/AleutianViews/services/views/measure"
)

// MaxDefinitionBytes caps the size of a definition file.
const MaxDefinitionBytes = 1 << 20

var (
	// ErrInvalidDefinition indicates the document failed structural validation.
	ErrInvalidDefinition = errors.New("invalid view definition")

	// ErrDefinitionTooLarge indicates the file exceeds MaxDefinitionBytes.
	ErrDefinitionTooLarge = errors.New("view definition too large")

	// ErrRootFlavor indicates the root type does not belong to the declared flavor.
	ErrRootFlavor = errors.New("root type does not match definition flavor")
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("flavor", validateFlavor)
	_ = validate.RegisterValidation("componenttype", validateComponentType)
}

func validateFlavor(fl validator.FieldLevel) bool {
	_, err := component.ParseFlavor(fl.Field().String())
	return err == nil
}

func validateComponentType(fl validator.FieldLevel) bool {
	_, err := component.ParseType(fl.Field().String())
	return err == nil
}

// =============================================================================
// Types
// =============================================================================

// Definition is a parsed view definition document.
type Definition struct {
	// Flavor is "views" or "report".
	Flavor string `yaml:"flavor" validate:"required,flavor"`

	// Root is the top node of the tree.
	Root Node `yaml:"root"`
}

// Node is one component of a definition.
type Node struct {
	Type     string   `yaml:"type" validate:"required,componenttype"`
	Key      int      `yaml:"key" validate:"gte=0"`
	Name     string   `yaml:"name,omitempty" validate:"max=256"`
	Measure  *float64 `yaml:"measure,omitempty"`
	Children []Node   `yaml:"children,omitempty" validate:"dive"`
}

// =============================================================================
// Loading
// =============================================================================

// Parse decodes and validates a definition.
//
// Description:
//
//	Unknown fields are rejected. The result passes structural validation,
//	but hierarchy rules are only checked by Build.
//
// Outputs:
//
//	*Definition - The parsed document.
//	error - Wraps ErrInvalidDefinition on decode or validation failure.
func Parse(data []byte) (*Definition, error) {
	if len(data) > MaxDefinitionBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrDefinitionTooLarge, len(data))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := validate.Struct(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// Load reads and parses the definition at path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definition: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDefinitionBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes the definition back to YAML.
func (d *Definition) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// =============================================================================
// Building
// =============================================================================

// Build converts the definition into an immutable component tree.
//
// Outputs:
//
//	*component.Component - The root of the tree.
//	error - ErrRootFlavor, or a component builder error naming the offending node.
func (d *Definition) Build() (*component.Component, error) {
	flavor, err := component.ParseFlavor(d.Flavor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	rootType, err := component.ParseType(d.Root.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if rootType.Flavor() != flavor {
		return nil, fmt.Errorf("%w: %s in %s definition", ErrRootFlavor, rootType, flavor)
	}
	return buildNode(&d.Root)
}

func buildNode(n *Node) (*component.Component, error) {
	t, err := component.ParseType(n.Type)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", n.Key, err)
	}

	children := make([]*component.Component, 0, len(n.Children))
	for i := range n.Children {
		child, err := buildNode(&n.Children[i])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	c, err := component.NewBuilder(t, n.Key).WithName(n.Name).AddChildren(children...).Build()
	if err != nil {
		return nil, fmt.Errorf("node %s:%d: %w", t, n.Key, err)
	}
	return c, nil
}

// Measures collects the measure values declared on the nodes.
func (d *Definition) Measures() measure.MapSource {
	src := make(measure.MapSource)
	stack := []*Node{&d.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Measure != nil {
			src[n.Key] = *n.Measure
		}
		for i := range n.Children {
			stack = append(stack, &n.Children[i])
		}
	}
	return src
}
