// Copyright 2026 The Memgrid Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"errors"
	"fmt"
)

// ErrStructure reports a grid whose node structure is inconsistent:
// a child visited before its parent, a duplicated path, or a node with
// the wrong number of values. It signals malformed upstream input and
// is never retryable.
var ErrStructure = errors.New("inconsistent grid structure")

// StructureError describes one structural violation. It matches
// ErrStructure under errors.Is.
type StructureError struct {
	Path   string
	Parent string
	Reason string
}

func (e *StructureError) Error() string {
	if e.Parent != "" {
		return fmt.Sprintf("grid node %q (parent %q): %s", e.Path, e.Parent, e.Reason)
	}
	return fmt.Sprintf("grid node %q: %s", e.Path, e.Reason)
}

func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}
