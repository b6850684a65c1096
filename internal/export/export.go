// Package export renders attendance reports as downloadable files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/service"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Feriados"

// Header is the column order shared by every export format.
var Header = []string{"Data", "Empresa", "Vai operar", "Responsável URA", "Observação", "Quem adicionou", "Atualizado em"}

// record renders one row. UpdatedAt is shown in loc, the operators' civil time.
func record(r service.ReportRow, loc *time.Location) []string {
	return []string{
		r.Date.Display(),
		r.CompanyName,
		r.Status.String(),
		models.StringValue(r.URAResponsible),
		models.StringValue(r.Note),
		models.StringValue(r.AddedBy),
		r.UpdatedAt.In(loc).Format("02.01.2006 15:04"),
	}
}

// XLSX writes rows to a single-sheet workbook. Timestamps are shown in loc.
func XLSX(rows []service.ReportRow, loc *time.Location) ([]byte, error) {
	loc = orUTC(loc)
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, 1, Header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := writeRow(f, i+2, record(r, loc)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "B", "G", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

// CSV writes rows as comma separated values with a header line. Timestamps are shown in loc.
func CSV(rows []service.ReportRow, loc *time.Location) ([]byte, error) {
	loc = orUTC(loc)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(record(r, loc)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
