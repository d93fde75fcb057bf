// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ElementKind distinguishes text placeholders from image placeholders.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
)

// Cover canvas geometry. The canvas is an A4 portrait page (210 x 297 mm)
// expressed in logical pixels at CanvasDPI.
const (
	CanvasDPI    = 96
	CanvasWidth  = 794
	CanvasHeight = 1123
)

// Font size bounds applied on every element mutation.
const (
	MinFontSize     = 8
	MaxFontSize     = 200
	DefaultFontSize = 24
)

// Text style values accepted by the designer toolbar.
const (
	FontWeightNormal = "normal"
	FontWeightBold   = "bold"

	FontStyleNormal = "normal"
	FontStyleItalic = "italic"

	TextDecorationNone      = "none"
	TextDecorationUnderline = "underline"

	TextAlignLeft   = "left"
	TextAlignCenter = "center"
	TextAlignRight  = "right"

	ColorTransparent = "transparent"
)

// CustomBackground is the SelectedTemplate sentinel for a design whose
// background was uploaded by the user instead of picked from the library.
const CustomBackground = "custom"

// Element is a positioned, styled placeholder on the cover canvas. Only the
// symbolic Variable token is stored; the value it resolves to is computed
// at render time.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementKind `json:"type"`
	Variable string      `json:"variable"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	FontSize        int    `json:"fontSize"`
	FontFamily      string `json:"fontFamily"`
	FontWeight      string `json:"fontWeight"`
	FontStyle       string `json:"fontStyle"`
	TextDecoration  string `json:"textDecoration"`
	Color           string `json:"color"`
	TextAlign       string `json:"textAlign"`
	BackgroundColor string `json:"backgroundColor"`
}

// IsText reports whether the element renders a text value.
func (e *Element) IsText() bool {
	return e.Type != ElementImage
}

// Design is the saved cover page of a proposal: a background plus the
// ordered element list. Element order is also paint order.
type Design struct {
	ID                    uuid.UUID     `json:"id"`
	TenantID              uuid.UUID     `json:"-"`
	ProposalID            uuid.UUID     `json:"proposalId"`
	SelectedTemplate      string        `json:"selectedTemplate"`
	CustomBackgroundImage string        `json:"customBackgroundImage,omitempty"`
	BackgroundImage       string        `json:"backgroundImage,omitempty"`
	Elements              []Element     `json:"elements"`
	CanvasWidth           int           `json:"canvasWidth"`
	CanvasHeight          int           `json:"canvasHeight"`
	NextSeq               int           `json:"nextSeq"`
	Version               int           `json:"version"`
	UpdatedBy             uuid.NullUUID `json:"-"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// NewDesign returns the blank default design for a proposal that has not
// been designed yet.
func NewDesign(tenantID, proposalID uuid.UUID) *Design {
	return &Design{
		TenantID:     tenantID,
		ProposalID:   proposalID,
		Elements:     []Element{},
		CanvasWidth:  CanvasWidth,
		CanvasHeight: CanvasHeight,
	}
}

// UsesCustomBackground reports whether the background is a user upload.
func (d *Design) UsesCustomBackground() bool {
	return d.SelectedTemplate == CustomBackground
}

// IsSaved reports whether the design has been persisted at least once.
func (d *Design) IsSaved() bool {
	return d.ID != uuid.Nil
}
