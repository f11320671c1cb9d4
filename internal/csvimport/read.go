// Package csvimport turns uploaded spreadsheets into validated rows.
//
// Parsing problems (unreadable bytes, broken quoting, missing columns) abort
// the whole file. Validation problems are per row: each row is judged on its
// own and either lands in the valid set or in the error list.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile       = errors.New("ファイルにデータがありません")
	ErrUnsupportedType = errors.New("CSVまたはXLSXファイルを指定してください")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads records from a CSV or XLSX upload, chosen by file extension.
func ReadFile(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return ReadCSV(r)
	case ".xlsx":
		return ReadXLSX(r)
	default:
		return nil, ErrUnsupportedType
	}
}

// ReadCSV reads comma separated records. UTF-8 (with or without BOM) and
// Shift_JIS input are accepted.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decode shift_jis: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// encoding/csv skips blank lines. They are kept as empty records so that
	// row numbers match the file, the same as the XLSX reader.
	var records [][]string
	var consumed int
	var offset int64
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSVの解析に失敗しました: %w", err)
		}
		start, _ := reader.FieldPos(0)
		for line := consumed + 1; line < start && len(records) > 0; line++ {
			records = append(records, nil)
		}
		records = append(records, record)
		next := reader.InputOffset()
		consumed += bytes.Count(data[offset:next], []byte{'\n'})
		offset = next
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return records, nil
}

// ReadXLSX reads the first worksheet of a workbook.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("XLSXの解析に失敗しました: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("XLSXの解析に失敗しました: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}
