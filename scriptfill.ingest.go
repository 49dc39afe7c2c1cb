package scriptfill

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load summary formats
const (
	LoadSummaryWithProducts    = "loaded %d product types, %d placeholder fields"
	LoadSummaryDefaultProducts = "loaded %d placeholder fields; no product columns detected, using default product types"
)

// LoadResult is the outcome of reading a spreadsheet into libraries.
type LoadResult struct {
	// Library holds every non-empty column keyed by its header.
	Library *ValueLibrary
	// Actions holds product-type columns, or the defaults when none were detected.
	Actions *ActionLibrary
	// ProductColumns lists the headers recognised as product types.
	ProductColumns []string
	// DefaultActions reports that no product column was found.
	DefaultActions bool
	// Source is the path the data was read from, if any.
	Source string
}

// Summary returns a one-line human readable description of the load
func (r *LoadResult) Summary() string {
	if r.DefaultActions {
		return fmt.Sprintf(LoadSummaryDefaultProducts, r.Library.Len())
	}
	return fmt.Sprintf(LoadSummaryWithProducts, len(r.ProductColumns), r.Library.Len())
}

// LoadLibraryFile reads a spreadsheet, dispatching on the file extension.
// Supported: .xlsx and .xlsm (first sheet) and .csv.
func LoadLibraryFile(path string) (*LoadResult, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		result *LoadResult
		err    error
	)
	switch ext {
	case ExtXLSX, ExtXLSM:
		result, err = LoadLibraryXLSX(path)
	case ExtCSV:
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, NewReadLibraryError(path, err)
		}
		result, err = ReadLibraryCSV(bytes.NewReader(data))
	default:
		return nil, NewUnsupportedFormatError(path, ext)
	}
	if err != nil {
		return nil, NewReadLibraryError(path, err)
	}

	result.Source = path
	return result, nil
}

// LoadLibraryXLSX reads the first sheet of an Excel workbook
func LoadLibraryXLSX(path string) (*LoadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f)
}

// ReadLibraryXLSX reads the first sheet of an Excel workbook from r
func ReadLibraryXLSX(r io.Reader) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*LoadResult, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(ErrMsgEmptySheet)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return BuildLibrary(rows)
}

// ReadLibraryCSV reads comma-separated records from r; the first record is the header
func ReadLibraryCSV(r io.Reader) (*LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return BuildLibrary(records)
}

// BuildLibrary turns header + data rows into libraries.
// Each column becomes a field named by its trimmed header; blank cells are skipped
// and columns with no values are dropped. Rows may be ragged.
// Columns whose header contains a product keyword also become action lists.
func BuildLibrary(rows [][]string) (*LoadResult, error) {
	if len(rows) == 0 {
		return nil, errors.New(ErrMsgEmptySheet)
	}

	header := rows[0]
	order := make([]string, 0, len(header))
	values := make(map[string][]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for col, raw := range header {
		name := cleanHeader(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			order = append(order, name)
		}
		for _, row := range rows[1:] {
			if col < len(row) {
				values[name] = append(values[name], row[col])
			}
		}
	}

	library := NewValueLibrary(order, values)

	var productColumns []string
	for _, field := range library.Fields() {
		if isProductColumn(field) {
			productColumns = append(productColumns, field)
		}
	}

	result := &LoadResult{
		Library:        library,
		ProductColumns: productColumns,
	}
	if len(productColumns) == 0 {
		result.Actions = DefaultActionLibrary()
		result.DefaultActions = true
	} else {
		result.Actions = NewActionLibrary(productColumns, library.Map())
	}
	return result, nil
}

func cleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.TrimSpace(s)
}

func isProductColumn(header string) bool {
	lower := strings.ToLower(header)
	for _, kw := range ProductColumnKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
