package csvimport

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

type Kind int

// MaxNumber bounds numeric cells so they convert to integers exactly.
const MaxNumber = 1 << 53

const (
	Text Kind = iota
	Number
	Bool
	JSON
	YearMonth
)

// Field describes one column.
type Field struct {
	Name     string
	Label    string
	Aliases  []string
	Kind     Kind
	Required bool
}

// Schema is the set of columns one import understands.
type Schema struct {
	Name   string
	Fields []Field
}

// Row is a validated data row. Values hold string, float64, bool or
// json.RawMessage depending on the field kind. JSON values are always objects.
type Row struct {
	Index  int
	Values map[string]any
}

// RowError explains why one row was rejected. Index is 1-based over data rows.
type RowError struct {
	Index  int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("%d行目: %s", e.Index, e.Reason)
}

// Outcome partitions the rows of one file.
type Outcome struct {
	Valid   []Row
	Invalid []RowError
}

// Messages renders the rejected rows for display.
func (o Outcome) Messages() []string {
	out := make([]string, 0, len(o.Invalid))
	for _, e := range o.Invalid {
		out = append(out, e.Error())
	}
	return out
}

// Process maps the header of records onto schema and validates every data row.
// A missing header or a missing required column fails the whole file.
func (s Schema) Process(records [][]string) (Outcome, error) {
	if len(records) == 0 {
		return Outcome{}, ErrEmptyFile
	}
	columns, err := s.mapHeader(records[0])
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		index := i + 1
		raw := make(map[string]string, len(columns))
		for name, col := range columns {
			if col < len(record) {
				raw[name] = record[col]
			}
		}
		row, reasons := s.ValidateRow(raw)
		if len(reasons) > 0 {
			out.Invalid = append(out.Invalid, RowError{Index: index, Reason: strings.Join(reasons, "、")})
			continue
		}
		row.Index = index
		out.Valid = append(out.Valid, row)
	}
	if len(out.Valid) == 0 && len(out.Invalid) == 0 {
		return Outcome{}, ErrEmptyFile
	}
	return out, nil
}

// ValidateRow checks one row given as column name to raw text.
func (s Schema) ValidateRow(raw map[string]string) (Row, []string) {
	row := Row{Values: make(map[string]any, len(s.Fields))}
	var reasons []string
	for _, f := range s.Fields {
		v, reason := f.parse(raw[f.Name])
		if reason != "" {
			reasons = append(reasons, reason)
			continue
		}
		row.Values[f.Name] = v
	}
	return row, reasons
}

func (s Schema) mapHeader(header []string) (map[string]int, error) {
	lookup := make(map[string]string)
	for _, f := range s.Fields {
		lookup[normalizeHeader(f.Name)] = f.Name
		for _, alias := range f.Aliases {
			lookup[normalizeHeader(alias)] = f.Name
		}
	}

	columns := make(map[string]int)
	for i, h := range header {
		name, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var missing []string
	for _, f := range s.Fields {
		if _, ok := columns[f.Name]; !ok && f.Required {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("必須列がありません: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func (f Field) parse(value string) (any, string) {
	value = strings.TrimSpace(value)
	switch f.Kind {
	case Number:
		if value == "" {
			if f.Required {
				return nil, f.Label + "が空です"
			}
			return 0.0, ""
		}
		n, ok := ParseNumber(value)
		if !ok {
			return nil, f.Label + "が数値ではありません"
		}
		if math.Abs(n) > MaxNumber {
			return nil, f.Label + "が大きすぎます"
		}
		return n, ""
	case Bool:
		switch strings.ToLower(value) {
		case "true":
			return true, ""
		case "false":
			return false, ""
		}
		if value == "" && !f.Required {
			return false, ""
		}
		return nil, f.Label + "はtrueまたはfalseで指定してください"
	case JSON:
		if !strings.HasPrefix(value, "{") || !json.Valid([]byte(value)) {
			return json.RawMessage("{}"), ""
		}
		return json.RawMessage(value), ""
	case YearMonth:
		if value == "" {
			return nil, f.Label + "が空です"
		}
		ym, ok := ParseYearMonth(value)
		if !ok {
			return nil, f.Label + "はYYYY-MM形式で入力してください"
		}
		return ym, ""
	default:
		if value == "" && f.Required {
			return nil, f.Label + "が空です"
		}
		return value, ""
	}
}

// ParseNumber reads a finite number. Full-width digits, thousands separators
// and yen marks are tolerated.
func ParseNumber(s string) (float64, bool) {
	s = width.Narrow.String(strings.TrimSpace(s))
	s = strings.NewReplacer(",", "", "¥", "", "\\", "", "円", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ParseYearMonth accepts YYYY-MM, YYYY/MM and single digit months and
// returns the canonical YYYY-MM form.
func ParseYearMonth(s string) (string, bool) {
	s = width.Narrow.String(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) == 0 || len(parts[1]) > 2 {
		return "", false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 {
		return "", false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", year, month), true
}

func normalizeHeader(h string) string {
	h = width.Narrow.String(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(h)
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r Row) Text(name string) string {
	s, _ := r.Values[name].(string)
	return s
}

func (r Row) Float(name string) float64 {
	n, _ := r.Values[name].(float64)
	return n
}

// Int64 rounds the numeric value to the nearest integer.
func (r Row) Int64(name string) int64 {
	return int64(math.Round(r.Float(name)))
}

func (r Row) Int(name string) int {
	return int(r.Int64(name))
}

func (r Row) Bool(name string) bool {
	b, _ := r.Values[name].(bool)
	return b
}

func (r Row) JSON(name string) json.RawMessage {
	raw, _ := r.Values[name].(json.RawMessage)
	if raw == nil {
		return json.RawMessage("{}")
	}
	return raw
}
