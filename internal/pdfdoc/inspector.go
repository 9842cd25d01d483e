// Package pdfdoc reads PDF structure with pdfcpu (page count, AcroForm
// presence, widget inventory) and printed text lines with ledongthuc/pdf.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// ErrNotPDF is returned when the bytes cannot be parsed as a PDF document
var ErrNotPDF = errors.New("not a readable PDF document")

// ButtonType is the AcroForm type of checkboxes, radios and push buttons
const ButtonType = "Btn"

// Info summarizes a document
type Info struct {
	PageCount   int  `json:"pageCount"`
	HasAcroForm bool `json:"hasAcroForm"`
	FieldCount  int  `json:"fieldCount"`
}

// FieldInfo locates one widget annotation. Coordinates are in PDF user space
// with the origin at the bottom-left of the page.
type FieldInfo struct {
	Field  string  `json:"field"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Type   string  `json:"type"`
}

// Inspector reads documents held in memory
type Inspector struct {
	logger *zap.Logger
}

// NewInspector creates an Inspector
func NewInspector(logger *zap.Logger) *Inspector {
	return &Inspector{logger: logger}
}

func (i *Inspector) read(pdf []byte) (*model.Context, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotPDF)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

// Inspect returns the page count and AcroForm summary of pdf
func (i *Inspector) Inspect(pdf []byte) (*Info, error) {
	ctx, err := i.read(pdf)
	if err != nil {
		return nil, err
	}

	info := &Info{PageCount: ctx.PageCount}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return info, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return info, nil
	}
	info.HasAcroForm = true

	if fieldsObj, found := acroFormDict.Find("Fields"); found {
		fields, err := ctx.DereferenceArray(fieldsObj)
		if err != nil {
			return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
		}
		info.FieldCount = len(fields)
	}

	return info, nil
}

// ListFields walks every page's widget annotations in page order
func (i *Inspector) ListFields(pdf []byte) ([]FieldInfo, error) {
	ctx, err := i.read(pdf)
	if err != nil {
		return nil, err
	}

	var fields []FieldInfo
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageDict, _, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNr, err)
		}
		if pageDict == nil {
			continue
		}

		annotsObj, found := pageDict.Find("Annots")
		if !found {
			continue
		}
		annots, err := ctx.DereferenceArray(annotsObj)
		if err != nil {
			i.logger.Warn("Skipping unreadable annotations",
				zap.Int("page", pageNr),
				zap.Error(err))
			continue
		}

		for _, annotObj := range annots {
			annot, err := ctx.DereferenceDict(annotObj)
			if err != nil || annot == nil {
				continue
			}
			if subtype, found := annot.Find("Subtype"); found {
				if name, err := ctx.DereferenceName(subtype, model.V10, nil); err == nil && string(name) != "Widget" {
					continue
				}
			}
			fields = append(fields, widgetInfo(ctx, annot, pageNr))
		}
	}

	return fields, nil
}

func widgetInfo(ctx *model.Context, annot types.Dict, pageNr int) FieldInfo {
	fi := FieldInfo{
		Field: inheritedString(ctx, annot, "T"),
		Page:  pageNr,
		Type:  inheritedName(ctx, annot, "FT"),
	}

	if rectObj, found := annot.Find("Rect"); found {
		if rect, err := ctx.DereferenceArray(rectObj); err == nil && len(rect) == 4 {
			coords := make([]float64, 4)
			for n, c := range rect {
				if f, err := ctx.DereferenceNumber(c); err == nil {
					coords[n] = f
				}
			}
			fi.X = math.Min(coords[0], coords[2])
			fi.Y = math.Min(coords[1], coords[3])
			fi.Width = math.Abs(coords[2] - coords[0])
			fi.Height = math.Abs(coords[3] - coords[1])
		}
	}

	return fi
}

// inheritedString reads key from d, falling back to its Parent chain
func inheritedString(ctx *model.Context, d types.Dict, key string) string {
	for depth := 0; d != nil && depth < 32; depth++ {
		if obj, found := d.Find(key); found {
			if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
				return s
			}
		}
		d = parent(ctx, d)
	}
	return ""
}

func inheritedName(ctx *model.Context, d types.Dict, key string) string {
	for depth := 0; d != nil && depth < 32; depth++ {
		if obj, found := d.Find(key); found {
			if n, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
				return string(n)
			}
		}
		d = parent(ctx, d)
	}
	return ""
}

func parent(ctx *model.Context, d types.Dict) types.Dict {
	obj, found := d.Find("Parent")
	if !found {
		return nil
	}
	p, err := ctx.DereferenceDict(obj)
	if err != nil {
		return nil
	}
	return p
}

// ExampleData builds a sample fill payload: "/" for buttons and
// "Ejemplo de <name>" for everything else. Unnamed widgets are skipped.
func ExampleData(fields []FieldInfo) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Field == "" {
			continue
		}
		if f.Type == ButtonType {
			out[f.Field] = "/"
		} else {
			out[f.Field] = "Ejemplo de " + f.Field
		}
	}
	return out
}
