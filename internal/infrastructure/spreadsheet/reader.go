package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	wfmodel "tga-report-ai-api/internal/workflow/model"
)

// ReadTable 将上传的表格文件解析为键值行。
// 首行作为表头，支持 .xlsx 与 .csv；其他扩展名视为不可解析。
func ReadTable(r io.Reader, filename string) ([]wfmodel.TableRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", filepath.Ext(filename))
	}
}

func readXLSX(r io.Reader) ([]wfmodel.TableRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	// 取第一个工作表
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rowsToTable(rows)
}

func readCSV(r io.Reader) ([]wfmodel.TableRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsToTable(records)
}

func rowsToTable(rows [][]string) ([]wfmodel.TableRow, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("table is empty")
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}

	out := make([]wfmodel.TableRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		entry := make(wfmodel.TableRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				entry[h] = strings.TrimSpace(row[i])
			} else {
				entry[h] = ""
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
