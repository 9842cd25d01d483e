// Package review renders the read-only summary shown before signing, and
// exports it as a spreadsheet.
package review

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/esign-wizard/internal/domain/form"
)

// SheetName is the worksheet holding the summary
const SheetName = "Revision"

// Checkbox display values
const (
	Yes = "Sí"
	No  = "No"
)

// Projector is the part of projection.Projector the summary needs
type Projector interface {
	Schema() *form.Schema
	Project(state form.State) form.State
}

// Row is one label/value line
type Row struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section groups the rows of one wizard step
type Section struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Build lists every step but the last (the review step itself), skipping
// fields marked hideOnRevision. Values come from the projected state, except
// checkboxes, which show Sí/No from the raw state.
func Build(p Projector, state form.State) []Section {
	schema := p.Schema()
	if len(schema.Steps) < 2 {
		return nil
	}
	projected := p.Project(state)

	steps := schema.Steps[:len(schema.Steps)-1]
	sections := make([]Section, 0, len(steps))
	for _, step := range steps {
		sec := Section{Title: step.Title}
		for _, f := range step.Fields {
			if f.HideOnRevision {
				continue
			}
			sec.Rows = append(sec.Rows, Row{
				Field: f.Name,
				Label: f.Label,
				Value: displayValue(f, state, projected),
			})
		}
		sections = append(sections, sec)
	}
	return sections
}

func displayValue(f form.Field, state, projected form.State) string {
	if f.Type == form.TypeCheckbox {
		if state.Bool(f.Name) {
			return Yes
		}
		return No
	}
	v, ok := projected[f.Name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// WriteXLSX writes sections as a two-column workbook headed by title
func WriteXLSX(w io.Writer, title string, sections []Section) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F3A5F"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return fmt.Errorf("create label style: %w", err)
	}

	row := 1
	if err := setRow(f, row, title, "", titleStyle); err != nil {
		return err
	}
	row += 2

	for _, sec := range sections {
		if err := setRow(f, row, sec.Title, "", headerStyle); err != nil {
			return err
		}
		if err := f.MergeCell(SheetName, cell("A", row), cell("B", row)); err != nil {
			return fmt.Errorf("merge section header: %w", err)
		}
		row++
		for _, r := range sec.Rows {
			if err := setRow(f, row, r.Label, r.Value, labelStyle); err != nil {
				return err
			}
			row++
		}
		row++
	}

	if err := f.SetColWidth(SheetName, "A", "A", 45); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 60); err != nil {
		return fmt.Errorf("set width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// setRow writes label into column A with style and value into column B
func setRow(f *excelize.File, row int, label, value string, style int) error {
	if err := f.SetCellValue(SheetName, cell("A", row), label); err != nil {
		return fmt.Errorf("set cell A%d: %w", row, err)
	}
	if err := f.SetCellStyle(SheetName, cell("A", row), cell("A", row), style); err != nil {
		return fmt.Errorf("style cell A%d: %w", row, err)
	}
	if value != "" {
		if err := f.SetCellValue(SheetName, cell("B", row), value); err != nil {
			return fmt.Errorf("set cell B%d: %w", row, err)
		}
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
