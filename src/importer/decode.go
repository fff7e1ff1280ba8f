// backend/src/importer/decode.go
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/expensetracker/backend/src/models"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DecodeCSV reads a header row followed by data rows. The delimiter is a comma,
// or a semicolon when the header contains semicolons and no commas. The second
// result holds the file line number of each record.
func DecodeCSV(r io.Reader) ([]models.RawRecord, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV upload: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrContainer)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record
	reader.Comma = detectDelimiter(data)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read CSV header: %v", ErrContainer, err)
	}

	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: malformed CSV: %v", ErrContainer, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return tableToRecords(header, rows, lines)
}

func detectDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Contains(firstLine, []byte(";")) && !bytes.Contains(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

// tableToRecords pairs each row with the header labels. lines[i] is the
// physical row number of rows[i]. Blank rows are dropped but keep their number
// out of the sequence, so later rows still report where they are in the file.
func tableToRecords(header []string, rows [][]string, lines []int) ([]models.RawRecord, []int, error) {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if isRowEmpty(header) {
		return nil, nil, fmt.Errorf("%w: header row is empty", ErrContainer)
	}

	records := make([]models.RawRecord, 0, len(rows))
	numbers := make([]int, 0, len(rows))
	for n, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		rec := make(models.RawRecord, len(header))
		for i, label := range header {
			if label == "" || i >= len(row) {
				continue
			}
			if _, dup := rec[label]; dup {
				continue
			}
			rec[label] = row[i]
		}
		records = append(records, rec)
		numbers = append(numbers, lines[n])
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: file contains no data rows", ErrContainer)
	}
	return records, numbers, nil
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// DecodeJSON accepts either an object whose "data" member is an array of
// purchases, as written by the JSON export, or a bare array. Records are
// numbered by their 1-based position in the array.
func DecodeJSON(r io.Reader) ([]models.RawRecord, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read JSON upload: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("%w: file is empty", ErrContainer)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed JSON: %v", ErrContainer, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: unexpected data after JSON value", ErrContainer)
	}

	items, ok := root.([]any)
	if obj, isObj := root.(map[string]any); isObj {
		items, ok = obj["data"].([]any)
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: file must contain an array of purchases", ErrContainer)
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: file contains no purchases", ErrContainer)
	}

	records := make([]models.RawRecord, len(items))
	numbers := make([]int, len(items))
	for i, item := range items {
		numbers[i] = i + FormatJSON.RowOffset()
		// non-object elements become empty records and fail validation on their own row
		obj, _ := item.(map[string]any)
		records[i] = models.RawRecord(obj)
		if records[i] == nil {
			records[i] = models.RawRecord{}
		}
	}
	return records, numbers, nil
}

// DecodeXLSX reads the first worksheet of a workbook. The first non-empty row
// holds the labels. Records are numbered by their worksheet row.
func DecodeXLSX(r io.Reader) ([]models.RawRecord, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open workbook: %v", ErrContainer, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrContainer)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read rows: %v", ErrContainer, err)
	}

	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, nil, fmt.Errorf("%w: worksheet is empty", ErrContainer)
	}
	lines := make([]int, len(rows)-start-1)
	for i := range lines {
		// GetRows keeps blank rows in place, so index+1 is the worksheet row
		lines[i] = start + i + 2
	}
	return tableToRecords(rows[start], rows[start+1:], lines)
}
