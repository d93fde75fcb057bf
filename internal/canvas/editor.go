// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import (
	"errors"
	"slices"

	"standpress/internal/models"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrNoSelection     = errors.New("no element selected")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrNoGesture       = errors.New("no drag or resize in progress")
	ErrUnknownTarget   = errors.New("unknown click target")
)

type gestureKind int

const (
	gestureDrag gestureKind = iota + 1
	gestureResize
)

type gesture struct {
	kind   gestureKind
	id     string
	before []models.Element
}

// Toolbar is the floating toolbar view of the selected element. Values are
// read from the store on every call, so the toolbar never shows stale data.
type Toolbar struct {
	Element models.Element `json:"element"`
	Locked  bool           `json:"locked"`
}

// Snapshot is the full observable editor state sent to clients.
type Snapshot struct {
	State      State            `json:"state"`
	SelectedID string           `json:"selectedId,omitempty"`
	Toolbar    *Toolbar         `json:"toolbar,omitempty"`
	Elements   []models.Element `json:"elements"`
	CanUndo    bool             `json:"canUndo"`
	CanRedo    bool             `json:"canRedo"`
	Revision   int              `json:"revision"`
}

// Editor combines the element store, the selection machine and the undo
// history of one design being edited.
type Editor struct {
	store     *Store
	selection Selection
	history   *History
	gesture   *gesture
	revision  int
}

// NewEditor wraps store in an editor with an empty selection and history.
func NewEditor(store *Store) *Editor {
	if store == nil {
		store = NewStore(0, 0)
	}
	return &Editor{store: store, history: NewHistory(DefaultHistoryDepth)}
}

// Store exposes the underlying element store.
func (e *Editor) Store() *Store {
	return e.store
}

// Revision increments on every committed element change. It is used to
// detect unsaved work.
func (e *Editor) Revision() int {
	return e.revision
}

// AddElement appends a new element bound to variable and selects it.
func (e *Editor) AddElement(variable string, kind models.ElementKind) models.Element {
	e.commitGesture()
	before := e.store.List()
	el := e.store.Add(variable, kind)
	e.record(before)
	e.selection.selectElement(el.ID)
	return el
}

// UpdateElement applies patch to the element with the given id.
func (e *Editor) UpdateElement(id string, patch ElementPatch) (models.Element, error) {
	e.commitGesture()
	before := e.store.List()
	el, ok := e.store.Update(id, patch)
	if !ok {
		return models.Element{}, ErrElementNotFound
	}
	if !slices.Equal(before, e.store.elements) {
		e.record(before)
	}
	return el, nil
}

// RemoveElement deletes an element. Removing the selected element returns
// the machine to idle.
func (e *Editor) RemoveElement(id string) error {
	e.commitGesture()
	before := e.store.List()
	if !e.store.Remove(id) {
		return ErrElementNotFound
	}
	e.record(before)
	if e.selection.id == id {
		e.selection.clear()
	}
	return nil
}

// Click routes a pointer click to the selection machine.
func (e *Editor) Click(t Target) error {
	switch t.Kind {
	case TargetElement:
		if _, ok := e.store.Get(t.ElementID); !ok {
			return ErrElementNotFound
		}
		e.selection.selectElement(t.ElementID)
	case TargetBackground:
		e.selection.clickBackground()
	case TargetToolbar:
		// Clicks inside the toolbar never change the selection.
	default:
		return ErrUnknownTarget
	}
	return nil
}

// ToolbarEnter takes the toolbar lock. It is ignored when nothing is selected.
func (e *Editor) ToolbarEnter() {
	e.selection.enterToolbar()
}

// ToolbarLeave releases the toolbar lock.
func (e *Editor) ToolbarLeave() {
	e.selection.leaveToolbar()
}

// Escape clears the selection and the lock.
func (e *Editor) Escape() {
	e.selection.clear()
}

// ApplyStyle applies a toolbar command to the selected element.
func (e *Editor) ApplyStyle(patch ElementPatch) (models.Element, error) {
	if e.selection.id == "" {
		return models.Element{}, ErrNoSelection
	}
	return e.UpdateElement(e.selection.id, patch)
}

// BeginDrag starts a move gesture on an element. Moves within the gesture
// produce a single undo step. The selection is not affected.
func (e *Editor) BeginDrag(id string) error {
	return e.begin(gestureDrag, id)
}

// DragMove moves the element of the active drag gesture.
func (e *Editor) DragMove(x, y float64) error {
	if e.gesture == nil || e.gesture.kind != gestureDrag {
		return ErrNoGesture
	}
	if _, ok := e.store.Update(e.gesture.id, ElementPatch{X: &x, Y: &y}); !ok {
		e.gesture = nil
		return ErrElementNotFound
	}
	return nil
}

// EndDrag commits the active drag gesture.
func (e *Editor) EndDrag() error {
	if e.gesture == nil || e.gesture.kind != gestureDrag {
		return ErrNoGesture
	}
	e.commitGesture()
	return nil
}

// BeginResize starts a resize gesture on an element.
func (e *Editor) BeginResize(id string) error {
	return e.begin(gestureResize, id)
}

// ResizeMove sets the geometry of the element of the active resize gesture.
// Resizing from the top or left edge moves the origin as well.
func (e *Editor) ResizeMove(x, y, width, height float64) error {
	if e.gesture == nil || e.gesture.kind != gestureResize {
		return ErrNoGesture
	}
	patch := ElementPatch{X: &x, Y: &y, Width: &width, Height: &height}
	if _, ok := e.store.Update(e.gesture.id, patch); !ok {
		e.gesture = nil
		return ErrElementNotFound
	}
	return nil
}

// EndResize commits the active resize gesture.
func (e *Editor) EndResize() error {
	if e.gesture == nil || e.gesture.kind != gestureResize {
		return ErrNoGesture
	}
	e.commitGesture()
	return nil
}

func (e *Editor) begin(kind gestureKind, id string) error {
	e.commitGesture()
	if _, ok := e.store.Get(id); !ok {
		return ErrElementNotFound
	}
	e.gesture = &gesture{kind: kind, id: id, before: e.store.List()}
	return nil
}

// commitGesture records an in-flight gesture as one history entry.
func (e *Editor) commitGesture() {
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil
	if !slices.Equal(g.before, e.store.elements) {
		e.record(g.before)
	}
}

// Undo restores the element list before the last committed change.
func (e *Editor) Undo() error {
	e.commitGesture()
	prev, ok := e.history.Undo(e.store.List())
	if !ok {
		return ErrNothingToUndo
	}
	e.restore(prev)
	return nil
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() error {
	e.commitGesture()
	next, ok := e.history.Redo(e.store.List())
	if !ok {
		return ErrNothingToRedo
	}
	e.restore(next)
	return nil
}

func (e *Editor) restore(elements []models.Element) {
	e.store.replace(elements)
	e.revision++
	if _, ok := e.store.Get(e.selection.id); !ok {
		e.selection.clear()
	}
}

func (e *Editor) record(before []models.Element) {
	e.history.Push(before)
	e.revision++
}

// State returns the current selection state.
func (e *Editor) State() State {
	return e.selection.State()
}

// SelectedID returns the id of the selected element, or "".
func (e *Editor) SelectedID() string {
	return e.selection.id
}

// Selected returns the current values of the selected element.
func (e *Editor) Selected() (models.Element, bool) {
	if e.selection.id == "" {
		return models.Element{}, false
	}
	return e.store.Get(e.selection.id)
}

// Toolbar returns the toolbar view, or nil when idle.
func (e *Editor) Toolbar() *Toolbar {
	el, ok := e.Selected()
	if !ok {
		return nil
	}
	return &Toolbar{Element: el, Locked: e.selection.Locked()}
}

// Snapshot returns a copy of the full editor state.
func (e *Editor) Snapshot() Snapshot {
	return Snapshot{
		State:      e.State(),
		SelectedID: e.selection.id,
		Toolbar:    e.Toolbar(),
		Elements:   e.store.List(),
		CanUndo:    e.history.CanUndo(),
		CanRedo:    e.history.CanRedo(),
		Revision:   e.revision,
	}
}
