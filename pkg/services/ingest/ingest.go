// Package ingest decodes uploaded payloads (CSV, JSON or plain text) into the
// strings, balance sheets and tables an analysis request carries.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/de-tools/viability/pkg/models/domain"
)

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

func isJSON(name string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func readCSV(data []byte) (header []string, records [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	header, err = r.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty CSV", domain.ErrInvalidRequest)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed CSV: %v", domain.ErrInvalidRequest, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	records, err = r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed CSV: %v", domain.ErrInvalidRequest, err)
	}
	return header, records, nil
}

// Text decodes an upload for use in prompts. CSV files become one line per
// row of "column: value" pairs; anything else must be UTF-8 text.
func Text(name string, data []byte) (string, error) {
	if !isCSV(name) {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrInvalidRequest, name)
		}
		return strings.TrimSpace(string(data)), nil
	}

	header, records, err := readCSV(data)
	if err != nil {
		return "", err
	}
	return renderRecords(header, records), nil
}

func renderRecords(header []string, records [][]string) string {
	var b strings.Builder
	for i, rec := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range rec {
			if j > 0 {
				b.WriteString(", ")
			}
			col := fmt.Sprintf("column%d", j+1)
			if j < len(header) {
				col = header[j]
			}
			b.WriteString(col + ": " + strings.TrimSpace(v))
		}
	}
	return b.String()
}

// BalanceSheet decodes a JSON object, a two-column field,value CSV or a
// single-row CSV into the numeric record plus its prompt text. Non-numeric
// fields stay in the text only.
func BalanceSheet(name string, data []byte) (domain.BalanceSheet, string, error) {
	sheet := domain.BalanceSheet{}

	switch {
	case isCSV(name):
		header, records, err := readCSV(data)
		if err != nil {
			return nil, "", err
		}
		if len(header) == 2 && strings.EqualFold(header[0], "field") {
			for _, rec := range records {
				if len(rec) == 2 {
					addNumeric(sheet, rec[0], rec[1])
				}
			}
		} else {
			if len(records) != 1 {
				return nil, "", fmt.Errorf("%w: balance sheet CSV needs exactly one data row, got %d",
					domain.ErrInvalidRequest, len(records))
			}
			for i, col := range header {
				if i < len(records[0]) {
					addNumeric(sheet, col, records[0][i])
				}
			}
		}
		text := renderRecords(header, records)
		return sheet, text, nil

	case isJSON(name, data):
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, "", fmt.Errorf("%w: balance sheet must be a JSON object: %v", domain.ErrInvalidRequest, err)
		}
		for k, v := range raw {
			switch n := v.(type) {
			case float64:
				sheet[strings.ToLower(k)] = n
			case string:
				addNumeric(sheet, k, n)
			}
		}
		return sheet, strings.TrimSpace(string(data)), nil

	default:
		return nil, "", fmt.Errorf("%w: balance sheet must be CSV or JSON", domain.ErrInvalidRequest)
	}
}

func addNumeric(sheet domain.BalanceSheet, key, value string) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return
	}
	sheet[strings.ToLower(strings.TrimSpace(key))] = v
}

// MarketData decodes a CSV of numeric columns, one of them named target.
func MarketData(name string, data []byte, target string) (domain.Table, string, error) {
	if !isCSV(name) {
		return domain.Table{}, "", fmt.Errorf("%w: market data must be CSV", domain.ErrInvalidRequest)
	}
	header, records, err := readCSV(data)
	if err != nil {
		return domain.Table{}, "", err
	}

	rows := make([][]float64, 0, len(records))
	for i, rec := range records {
		row := make([]float64, len(rec))
		for j, v := range rec {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return domain.Table{}, "", fmt.Errorf("%w: market data row %d column %d is not numeric",
					domain.ErrInvalidRequest, i+1, j+1)
			}
			row[j] = f
		}
		rows = append(rows, row)
	}

	table, err := domain.NewTable(header, rows, target)
	if err != nil {
		return domain.Table{}, "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return table, renderRecords(header, records), nil
}

// CashFlows accepts a JSON array or a comma-separated list. Blank input is an
// empty series.
func CashFlows(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var elems []*float64
		if err := json.Unmarshal([]byte(raw), &elems); err != nil {
			return nil, fmt.Errorf("%w: cash_flows: %v", domain.ErrInvalidRequest, err)
		}
		out := make([]float64, len(elems))
		for i, v := range elems {
			if v == nil {
				return nil, fmt.Errorf("%w: cash_flows: element %d is null", domain.ErrInvalidRequest, i)
			}
			out[i] = *v
		}
		return out, nil
	}

	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: cash_flows: %q is not a finite number", domain.ErrInvalidRequest, p)
		}
		out = append(out, v)
	}
	return out, nil
}

// Amount parses a required positive scalar form field.
func Amount(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidRequest, field)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s must be finite", domain.ErrInvalidRequest, field)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidRequest, field)
	}
	return v, nil
}

// TableText renders a table loaded from elsewhere the way MarketData renders
// an uploaded CSV.
func TableText(t domain.Table, target string) string {
	if target == "" {
		target = domain.DefaultTargetColumn
	}
	header := append(append([]string{}, t.Features...), target)
	records := make([][]string, 0, t.Len())
	for i, row := range t.Rows {
		rec := make([]string, 0, len(header))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if i < len(t.Target) {
			rec = append(rec, strconv.FormatFloat(t.Target[i], 'f', -1, 64))
		}
		records = append(records, rec)
	}
	return renderRecords(header, records)
}
