// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export renders a cover design to a single-page PDF with every
// placeholder resolved against the proposal.
//
// Canvas coordinates are logical pixels at 96 DPI; the PDF uses points, so
// every coordinate is scaled by 72/96. The 794 x 1123 canvas becomes an A4
// page. The page origin is top-left, like the canvas.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"standpress/internal/imaging"
	"standpress/internal/models"
	"standpress/internal/variables"
)

// pxToPt converts canvas pixels to PDF points.
const pxToPt = 72.0 / models.CanvasDPI

const (
	lineSpacing   = 1.2
	utf8Family    = "cover"
	placeholderBG = 235
	placeholderFG = 140
)

// ImageLoader fetches image bytes referenced by a URL or data URI.
type ImageLoader interface {
	Load(ctx context.Context, src string) ([]byte, error)
}

// Renderer produces cover PDFs.
type Renderer struct {
	images   ImageLoader
	fontPath string
}

// NewRenderer creates a renderer. fontPath optionally points to a UTF-8 TTF
// font; without it the core PDF fonts are used and characters outside
// Windows-1252 are transliterated.
func NewRenderer(images ImageLoader, fontPath string) *Renderer {
	return &Renderer{images: images, fontPath: fontPath}
}

// CoverPDF renders design with values from rec and returns the PDF bytes.
func (r *Renderer) CoverPDF(ctx context.Context, design *models.Design, rec variables.Record, loc variables.Locale) ([]byte, error) {
	w, h := design.CanvasWidth, design.CanvasHeight
	if w <= 0 || h <= 0 {
		w, h = models.CanvasWidth, models.CanvasHeight
	}
	pageW := float64(w) * pxToPt
	pageH := float64(h) * pxToPt

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("StandPress", true)
	if rec.ProposalNumber != "" {
		pdf.SetTitle("Kapak "+rec.ProposalNumber, true)
	}

	tw := r.textWriter(pdf)
	pdf.AddPage()

	if design.BackgroundImage != "" {
		if err := r.drawImage(ctx, pdf, "background", design.BackgroundImage, 0, 0, pageW, pageH, false); err != nil {
			slog.Warn("cover background skipped", "design_id", design.ID, "error", err)
		}
	}

	for i, el := range design.Elements {
		value := variables.SubstituteLocale(el.Variable, rec, loc)
		x, y := el.X*pxToPt, el.Y*pxToPt
		bw, bh := el.Width*pxToPt, el.Height*pxToPt

		if rgb, ok := parseHex(el.BackgroundColor); ok {
			pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
			pdf.Rect(x, y, bw, bh, "F")
		}

		if el.Type == models.ElementImage {
			if isImageSource(value) {
				err := r.drawImage(ctx, pdf, "el-"+strconv.Itoa(i), value, x, y, bw, bh, true)
				if err == nil {
					continue
				}
				slog.Warn("cover image skipped", "element", el.ID, "error", err)
				if v, ok := variables.Lookup(el.Variable); ok {
					value = v.Fallback
				}
			}
			r.drawPlaceholder(pdf, tw, value, x, y, bw, bh)
			continue
		}

		r.drawText(pdf, tw, el, value, x, y, bw, bh)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// textWriter selects the font set and returns the string transform that
// matches it.
func (r *Renderer) textWriter(pdf *gofpdf.Fpdf) func(string) string {
	if r.fontPath != "" {
		for _, style := range []string{"", "B", "I", "BI"} {
			pdf.AddUTF8Font(utf8Family, style, r.fontPath)
		}
		return func(s string) string { return s }
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(s string) string { return tr(transliterate.Replace(s)) }
}

// transliterate maps Turkish letters missing from Windows-1252 to their
// closest Latin forms.
var transliterate = strings.NewReplacer(
	"ş", "s", "Ş", "S",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
)

func (r *Renderer) family(name string) string {
	if r.fontPath != "" {
		return utf8Family
	}
	return coreFamily(name)
}

// coreFamily maps a CSS font family to one of the PDF core fonts.
func coreFamily(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "courier"), strings.Contains(n, "mono"):
		return "Courier"
	case strings.Contains(n, "times"), strings.Contains(n, "georgia"),
		strings.Contains(n, "garamond"), n == "serif":
		return "Times"
	default:
		return "Helvetica"
	}
}

func fontStyle(el models.Element) string {
	var s string
	if el.FontWeight == models.FontWeightBold {
		s += "B"
	}
	if el.FontStyle == models.FontStyleItalic {
		s += "I"
	}
	if el.TextDecoration == models.TextDecorationUnderline {
		s += "U"
	}
	return s
}

func alignment(a string) string {
	switch a {
	case models.TextAlignCenter:
		return "C"
	case models.TextAlignRight:
		return "R"
	default:
		return "L"
	}
}

func (r *Renderer) drawText(pdf *gofpdf.Fpdf, tw func(string) string, el models.Element, value string, x, y, w, h float64) {
	size := float64(el.FontSize) * pxToPt
	pdf.SetFont(r.family(el.FontFamily), fontStyle(el), size)
	rgb, ok := parseHex(el.Color)
	if !ok {
		rgb = [3]int{0, 0, 0}
	}
	pdf.SetTextColor(rgb[0], rgb[1], rgb[2])

	pdf.ClipRect(x, y, w, h, false)
	pdf.SetXY(x, y)
	pdf.MultiCell(w, size*lineSpacing, tw(value), "", alignment(el.TextAlign), false)
	pdf.ClipEnd()
}

func (r *Renderer) drawPlaceholder(pdf *gofpdf.Fpdf, tw func(string) string, label string, x, y, w, h float64) {
	pdf.SetFillColor(placeholderBG, placeholderBG, placeholderBG)
	pdf.SetDrawColor(placeholderFG, placeholderFG, placeholderFG)
	pdf.SetLineWidth(0.5)
	pdf.SetDashPattern([]float64{3, 2}, 0)
	pdf.Rect(x, y, w, h, "FD")
	pdf.SetDashPattern([]float64{}, 0)

	size := min(12.0, h/2)
	pdf.SetFont(r.family(""), "", size)
	pdf.SetTextColor(placeholderFG, placeholderFG, placeholderFG)
	pdf.SetXY(x, y+(h-size)/2)
	pdf.CellFormat(w, size, tw(label), "", 0, "C", false, 0, "")
}

// drawImage places an image in the box. With keepAspect the image is fitted
// and centred inside the box; otherwise it is stretched to fill it.
func (r *Renderer) drawImage(ctx context.Context, pdf *gofpdf.Fpdf, name, src string, x, y, w, h float64, keepAspect bool) error {
	if r.images == nil {
		return fmt.Errorf("no image loader configured")
	}
	data, err := r.images.Load(ctx, src)
	if err != nil {
		return err
	}
	data, kind, err := imaging.EncodeForPDF(data)
	if err != nil {
		return err
	}

	opts := gofpdf.ImageOptions{ImageType: kind}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil || pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return fmt.Errorf("register image: %w", err)
	}

	if keepAspect {
		iw, ih := info.Width(), info.Height()
		if iw > 0 && ih > 0 {
			scale := min(w/iw, h/ih)
			dw, dh := iw*scale, ih*scale
			x += (w - dw) / 2
			y += (h - dh) / 2
			w, h = dw, dh
		}
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func isImageSource(v string) bool {
	return imaging.IsDataURI(v) || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// parseHex converts #rgb or #rrggbb to RGB components. Transparent and
// malformed values report false.
func parseHex(c string) ([3]int, bool) {
	s, ok := strings.CutPrefix(c, "#")
	if !ok {
		return [3]int{}, false
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return [3]int{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [3]int{}, false
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}
