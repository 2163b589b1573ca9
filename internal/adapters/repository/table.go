package repository

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/fplcoach/internal/domain/model"
)

// columnAliases maps upstream column names onto the ones the decoders read.
// An alias applies only when the target column is absent.
var columnAliases = map[string]string{
	"web_name":     model.ColName,
	"player":       model.ColName,
	"team":         model.ColTeamID,
	"element_type": model.ColPosition,
	"ep_next":      model.ColPredictedPoints,
}

func applyAliases(t *model.Table) {
	for from, to := range columnAliases {
		if !t.Has(from) || t.Has(to) {
			continue
		}
		t.Columns = append(t.Columns, to)
		for _, r := range t.Rows {
			if v, ok := r[from]; ok {
				r[to] = v
			}
		}
	}
}

// parseCell converts a text cell to the canonical row value kinds.
func parseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// DecodeCSV reads a header row followed by records.
func DecodeCSV(name string, r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewTable(name), nil
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	t := model.NewTable(name, cols...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		row := make(model.Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = parseCell(rec[i])
			} else {
				row[c] = nil
			}
		}
		t.Rows = append(t.Rows, row)
	}
	applyAliases(t)
	return t, nil
}

// DecodeJSON reads an array of flat objects. Nested values are dropped.
func DecodeJSON(name string, r io.Reader) (*model.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrInvalidFormat, err)
	}
	t := model.NewTable(name)
	for _, obj := range raw {
		row := make(model.Row, len(obj))
		for k, v := range obj {
			row[k] = jsonCell(v)
		}
		t.Append(row)
	}
	applyAliases(t)
	return t, nil
}

func jsonCell(v any) any {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case string:
		if p := parseCell(x); p != nil {
			if f, ok := p.(float64); ok {
				return f
			}
		}
		return x
	case bool, nil:
		return x
	default:
		return nil
	}
}

// EncodeCSV writes t with its declared columns as the header.
func EncodeCSV(t *model.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	rec := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			switch v := r[c].(type) {
			case nil:
				rec[i] = ""
			case bool:
				rec[i] = strconv.FormatBool(v)
			default:
				rec[i] = r.String(c)
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
