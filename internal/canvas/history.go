// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import "standpress/internal/models"

// DefaultHistoryDepth is the number of undo steps kept per editor.
const DefaultHistoryDepth = 50

// History is a bounded undo/redo stack of element list snapshots.
type History struct {
	depth int
	undo  [][]models.Element
	redo  [][]models.Element
}

// NewHistory creates a history keeping at most depth undo steps.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records the element list as it was before a committed change.
// Any new change invalidates the redo stack.
func (h *History) Push(before []models.Element) {
	h.undo = append(h.undo, clone(before))
	if len(h.undo) > h.depth {
		// drop the oldest entries
		h.undo = append([][]models.Element{}, h.undo[len(h.undo)-h.depth:]...)
	}
	h.redo = nil
}

// Undo returns the previous element list and remembers current for Redo.
func (h *History) Undo(current []models.Element) ([]models.Element, bool) {
	n := len(h.undo)
	if n == 0 {
		return nil, false
	}
	prev := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, clone(current))
	return prev, true
}

// Redo reapplies the most recently undone element list.
func (h *History) Redo(current []models.Element) ([]models.Element, bool) {
	n := len(h.redo)
	if n == 0 {
		return nil, false
	}
	next := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, clone(current))
	return next, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undo steps held.
func (h *History) Len() int { return len(h.undo) }

func clone(elements []models.Element) []models.Element {
	out := make([]models.Element, len(elements))
	copy(out, elements)
	return out
}
