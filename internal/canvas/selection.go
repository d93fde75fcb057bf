// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

// State is the observable state of the selection machine.
type State string

const (
	StateIdle     State = "idle"
	StateSelected State = "selected"
	StateLocked   State = "locked"
)

// TargetKind identifies what a click landed on.
type TargetKind string

const (
	TargetElement    TargetKind = "element"
	TargetBackground TargetKind = "background"
	TargetToolbar    TargetKind = "toolbar"
)

// Target is the destination of a pointer click on the designer surface.
type Target struct {
	Kind      TargetKind `json:"kind"`
	ElementID string     `json:"elementId,omitempty"`
}

// Selection tracks which element is active and whether the pointer is over
// the floating toolbar. The locked flag keeps the selection alive while the
// user operates toolbar controls that would otherwise register as a click on
// the canvas background.
type Selection struct {
	id     string
	locked bool
}

// State derives the machine state from the selection fields.
func (s Selection) State() State {
	switch {
	case s.id == "":
		return StateIdle
	case s.locked:
		return StateLocked
	default:
		return StateSelected
	}
}

// ID returns the selected element id, or "" when idle.
func (s Selection) ID() string {
	return s.id
}

// Locked reports whether the toolbar lock is held.
func (s Selection) Locked() bool {
	return s.id != "" && s.locked
}

func (s *Selection) selectElement(id string) {
	s.id = id
	s.locked = false
}

// clickBackground deselects unless the toolbar lock is held.
func (s *Selection) clickBackground() {
	if s.locked {
		return
	}
	s.clear()
}

func (s *Selection) enterToolbar() {
	if s.id == "" {
		return
	}
	s.locked = true
}

func (s *Selection) leaveToolbar() {
	s.locked = false
}

func (s *Selection) clear() {
	s.id = ""
	s.locked = false
}
