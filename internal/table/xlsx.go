package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet whose first row is the header. The sheet is
// chosen by opt.Sheet, defaulting to the first sheet in the workbook.
func LoadXLSX(path string, opt LoadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return New(nil), nil
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return New(nil), nil
	}
	cols := NormalizeHeaders(rows[0])
	missing := missingSet(opt.MissingTokens)
	b := NewBuilder(cols, len(rows)-1)
	for _, rec := range rows[1:] {
		// excelize trims trailing empty cells; parseRecord pads them back.
		b.Append(parseRecord(rec, len(cols), missing))
	}
	return b.Table(), nil
}
