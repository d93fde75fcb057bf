// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package canvas holds the authoritative state of a cover-page design while
// it is being edited: the element store, the selection and toolbar-lock
// state machine, and the undo history. Nothing in this package is safe for
// concurrent use; callers serialise events through a single goroutine.
package canvas

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"standpress/internal/models"
)

// Default geometry and style for newly added elements.
const (
	defaultX          = 50
	defaultY          = 50
	defaultOffsetStep = 20
	textWidth         = 300
	textHeight        = 50
	imageSize         = 150
	defaultFontFamily = "Arial"
	defaultColor      = "#000000"
)

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ElementPatch is a partial element update. Nil fields are left unchanged.
type ElementPatch struct {
	Variable        *string  `json:"variable,omitempty"`
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
	Width           *float64 `json:"width,omitempty"`
	Height          *float64 `json:"height,omitempty"`
	FontSize        *int     `json:"fontSize,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty"`
	FontWeight      *string  `json:"fontWeight,omitempty"`
	FontStyle       *string  `json:"fontStyle,omitempty"`
	TextDecoration  *string  `json:"textDecoration,omitempty"`
	Color           *string  `json:"color,omitempty"`
	TextAlign       *string  `json:"textAlign,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ElementPatch) IsEmpty() bool {
	return p == ElementPatch{}
}

// Store is the ordered element collection of one design. Insertion order is
// paint order.
type Store struct {
	elements []models.Element
	nextSeq  int
	width    float64
	height   float64
}

// NewStore creates an empty store for a canvas of the given size. Non-positive
// dimensions fall back to the A4 canvas.
func NewStore(width, height int) *Store {
	s := &Store{nextSeq: 1}
	s.setSize(width, height)
	return s
}

// Load replaces the store contents with previously saved elements. Elements
// are normalised the same way Update normalises them, and duplicate ids are
// renumbered so ids stay unique.
func Load(elements []models.Element, nextSeq, width, height int) *Store {
	s := NewStore(width, height)
	if nextSeq > s.nextSeq {
		s.nextSeq = nextSeq
	}
	for _, el := range elements {
		if n, ok := parseSeq(el.ID); ok && n >= s.nextSeq {
			s.nextSeq = n + 1
		}
	}

	seen := make(map[string]bool, len(elements))
	s.elements = make([]models.Element, 0, len(elements))
	for _, el := range elements {
		if el.ID == "" || seen[el.ID] {
			el.ID = s.newID()
		}
		seen[el.ID] = true

		d := defaults(el.Type)
		if el.Width <= 0 {
			el.Width = d.Width
		}
		if el.Height <= 0 {
			el.Height = d.Height
		}
		if el.FontSize == 0 {
			el.FontSize = d.FontSize
		}
		s.elements = append(s.elements, s.normalize(el, d))
	}
	return s
}

func (s *Store) setSize(width, height int) {
	if width <= 0 {
		width = models.CanvasWidth
	}
	if height <= 0 {
		height = models.CanvasHeight
	}
	s.width = float64(width)
	s.height = float64(height)
}

// Size returns the canvas dimensions in logical pixels.
func (s *Store) Size() (width, height int) {
	return int(s.width), int(s.height)
}

// NextSeq returns the sequence number the next element id will use.
func (s *Store) NextSeq() int {
	return s.nextSeq
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Add appends a new element bound to variable and returns it. Each new
// element is offset from the previous default position so stacked additions
// stay visible.
func (s *Store) Add(variable string, kind models.ElementKind) models.Element {
	if kind != models.ElementImage {
		kind = models.ElementText
	}
	el := defaults(kind)
	el.ID = s.newID()
	el.Variable = variable

	offset := float64(defaultOffsetStep * len(s.elements))
	el.X = defaultX + offset
	el.Y = defaultY + offset

	el = s.normalize(el, el)
	s.elements = append(s.elements, el)
	return el
}

// Update merges patch into the element with the given id. It returns false
// and changes nothing when the id is unknown.
func (s *Store) Update(id string, patch ElementPatch) (models.Element, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Element{}, false
	}
	prev := s.elements[i]
	next := prev

	if patch.Variable != nil {
		next.Variable = *patch.Variable
	}
	if patch.X != nil {
		next.X = *patch.X
	}
	if patch.Y != nil {
		next.Y = *patch.Y
	}
	if patch.Width != nil {
		next.Width = *patch.Width
	}
	if patch.Height != nil {
		next.Height = *patch.Height
	}
	if patch.FontSize != nil {
		next.FontSize = *patch.FontSize
	}
	if patch.FontFamily != nil {
		next.FontFamily = *patch.FontFamily
	}
	if patch.FontWeight != nil {
		next.FontWeight = *patch.FontWeight
	}
	if patch.FontStyle != nil {
		next.FontStyle = *patch.FontStyle
	}
	if patch.TextDecoration != nil {
		next.TextDecoration = *patch.TextDecoration
	}
	if patch.Color != nil {
		next.Color = *patch.Color
	}
	if patch.TextAlign != nil {
		next.TextAlign = *patch.TextAlign
	}
	if patch.BackgroundColor != nil {
		next.BackgroundColor = *patch.BackgroundColor
	}

	s.elements[i] = s.normalize(next, prev)
	return s.elements[i], true
}

// Remove deletes the element with the given id. Unknown ids are a no-op.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

// Get returns a copy of the element with the given id.
func (s *Store) Get(id string) (models.Element, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Element{}, false
	}
	return s.elements[i], true
}

// List returns a snapshot of all elements in insertion order.
func (s *Store) List() []models.Element {
	out := make([]models.Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// replace swaps the whole element list, used by undo and redo.
func (s *Store) replace(elements []models.Element) {
	s.elements = make([]models.Element, len(elements))
	copy(s.elements, elements)
}

func (s *Store) index(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) newID() string {
	id := fmt.Sprintf("el-%d", s.nextSeq)
	s.nextSeq++
	return id
}

func parseSeq(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "el-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func defaults(kind models.ElementKind) models.Element {
	el := models.Element{
		Type:            kind,
		Width:           textWidth,
		Height:          textHeight,
		FontSize:        models.DefaultFontSize,
		FontFamily:      defaultFontFamily,
		FontWeight:      models.FontWeightNormal,
		FontStyle:       models.FontStyleNormal,
		TextDecoration:  models.TextDecorationNone,
		Color:           defaultColor,
		TextAlign:       models.TextAlignLeft,
		BackgroundColor: models.ColorTransparent,
	}
	if kind == models.ElementImage {
		el.Width = imageSize
		el.Height = imageSize
	}
	return el
}

// normalize enforces the element invariants on el. Invalid style values fall
// back to the value in prev.
func (s *Store) normalize(el, prev models.Element) models.Element {
	if el.Type != models.ElementImage {
		el.Type = models.ElementText
	}

	el.Width = clamp(el.Width, 1, s.width, prev.Width)
	el.Height = clamp(el.Height, 1, s.height, prev.Height)
	el.X = clamp(el.X, 0, s.width-el.Width, prev.X)
	el.Y = clamp(el.Y, 0, s.height-el.Height, prev.Y)

	el.FontSize = ClampFontSize(el.FontSize)

	el.FontFamily = strings.TrimSpace(el.FontFamily)
	if el.FontFamily == "" {
		el.FontFamily = fallback(prev.FontFamily, defaultFontFamily)
	}
	el.FontWeight = oneOf(el.FontWeight, prev.FontWeight, models.FontWeightNormal, models.FontWeightBold)
	el.FontStyle = oneOf(el.FontStyle, prev.FontStyle, models.FontStyleNormal, models.FontStyleItalic)
	el.TextDecoration = oneOf(el.TextDecoration, prev.TextDecoration, models.TextDecorationNone, models.TextDecorationUnderline)
	el.TextAlign = oneOf(el.TextAlign, prev.TextAlign, models.TextAlignLeft, models.TextAlignCenter, models.TextAlignRight)

	el.Color = color(el.Color, prev.Color, defaultColor)
	el.BackgroundColor = color(el.BackgroundColor, prev.BackgroundColor, models.ColorTransparent)
	return el
}

// ClampFontSize limits size to the supported font size range.
func ClampFontSize(size int) int {
	if size < models.MinFontSize {
		return models.MinFontSize
	}
	if size > models.MaxFontSize {
		return models.MaxFontSize
	}
	return size
}

func clamp(v, lo, hi, prev float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = prev
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = lo
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

func oneOf(v, prev string, allowed ...string) string {
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	for _, a := range allowed {
		if prev == a {
			return prev
		}
	}
	return allowed[0]
}

// IsColor reports whether v is a hex colour or the transparent keyword.
func IsColor(v string) bool {
	return v == models.ColorTransparent || hexColorRe.MatchString(v)
}

func color(v, prev, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if IsColor(v) {
		return v
	}
	if IsColor(prev) {
		return prev
	}
	return def
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
