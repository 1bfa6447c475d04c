package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	scratchSheet = "__case_atlas_tmp"
)

type Config struct {
	MaxColumnWidth float64
	ColumnPadding  int
	FreezeCell     string
}

func DefaultConfig() Config {
	return Config{
		MaxColumnWidth: 60,
		ColumnPadding:  3,
		FreezeCell:     "A2",
	}
}

// Writer renders sheets into an XLSX workbook. Writing into an existing workbook replaces
// same-named sheets and keeps the others.
type Writer struct {
	config Config
}

func NewWriter() *Writer {
	return &Writer{config: DefaultConfig()}
}

func NewWriterWithConfig(config Config) *Writer {
	return &Writer{config: config}
}

type styles struct {
	header    int
	text      int
	number    int
	boldText  int
	boldValue int
}

func (w *Writer) Write(ctx context.Context, path string, sheets []domain.Sheet) error {
	logger := zerolog.Ctx(ctx)

	f, created, err := open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	names := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		if err := w.writeSheet(f, st, sheet); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sheet.Name, err)
		}
		names = append(names, sheet.Name)
	}

	if created && !slices.Contains(names, defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}
	if len(names) > 0 {
		if idx, err := f.GetSheetIndex(names[0]); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Info().
		Str("path", path).
		Strs("sheets", names).
		Bool("created", created).
		Msg("workbook written")
	return nil
}

func open(path string) (*excelize.File, bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat workbook: %w", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, false, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	defs := []struct {
		target *int
		bold   bool
		align  string
	}{
		{&st.header, true, "left"},
		{&st.text, false, "left"},
		{&st.number, false, "right"},
		{&st.boldText, true, "left"},
		{&st.boldValue, true, "right"},
	}
	for _, d := range defs {
		id, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: d.bold},
			Alignment: &excelize.Alignment{Horizontal: d.align, Vertical: "center"},
		})
		if err != nil {
			return styles{}, err
		}
		*d.target = id
	}
	return st, nil
}

// replaceSheet gives name a fresh, empty worksheet. The scratch sheet is created before the
// old one is deleted because excelize keeps the last remaining sheet of a workbook.
func replaceSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		_, err = f.NewSheet(name)
		return err
	}
	if _, err := f.NewSheet(scratchSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet(name); err != nil {
		return err
	}
	return f.SetSheetName(scratchSheet, name)
}

func (w *Writer) writeSheet(f *excelize.File, st styles, sheet domain.Sheet) error {
	if err := replaceSheet(f, sheet.Name); err != nil {
		return err
	}

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}
	if len(sheet.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, st.header); err != nil {
			return err
		}
	}

	widths := make([]int, len(sheet.Header))
	for i, h := range sheet.Header {
		widths[i] = utf8.RuneCountInString(h)
	}

	for r, row := range sheet.Rows {
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, start, &values); err != nil {
			return err
		}

		bold := slices.Contains(sheet.Emphasis, r)
		for c, v := range row {
			if v == nil {
				continue
			}
			if c >= len(widths) {
				widths = append(widths, make([]int, c-len(widths)+1)...)
			}
			text := fmt.Sprint(v)
			widths[c] = max(widths[c], utf8.RuneCountInString(text))

			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, st.pick(v, bold)); err != nil {
				return err
			}
		}
	}

	for c, width := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.Name, col, col, w.columnWidth(width)); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: w.config.FreezeCell,
		ActivePane:  "bottomLeft",
	})
}

func (w *Writer) columnWidth(chars int) float64 {
	return min(float64(chars+w.config.ColumnPadding), w.config.MaxColumnWidth)
}

func (st styles) pick(v any, bold bool) int {
	numeric := isNumber(v)
	switch {
	case bold && numeric:
		return st.boldValue
	case bold:
		return st.boldText
	case numeric:
		return st.number
	default:
		return st.text
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
