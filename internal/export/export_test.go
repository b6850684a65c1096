package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/holidays"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []service.ReportRow {
	updated := time.Date(2025, 12, 20, 14, 30, 0, 0, time.UTC)
	return []service.ReportRow{
		{
			AttendanceOverride: models.AttendanceOverride{
				Date:           holidays.NewDate(2025, time.December, 25),
				CompanyID:      2,
				Status:         models.StatusAbsent,
				AddedBy:        models.StringPtr("Ana Souza (@ana)"),
				URAResponsible: models.StringPtr("Marcos"),
				Note:           models.StringPtr("fechado, \"sem\" plantão"),
				UpdatedAt:      updated,
			},
			CompanyName: "Tim",
		},
		{
			AttendanceOverride: models.AttendanceOverride{
				Date:      holidays.NewDate(2025, time.November, 20),
				CompanyID: 1,
				Status:    models.StatusAttend,
				UpdatedAt: updated,
			},
			CompanyName: "Claro",
		},
	}
}

var brt = time.FixedZone("BRT", -3*60*60)

// Stored at 14:30 UTC, shown at 11:30 in Brasília.
var expected = [][]string{
	Header,
	{"25.12.2025", "Tim", "Não", "Marcos", "fechado, \"sem\" plantão", "Ana Souza (@ana)", "20.12.2025 11:30"},
	{"20.11.2025", "Claro", "Sim", "", "", "", "20.12.2025 11:30"},
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sampleRows(), brt)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, sheetName, f.GetSheetName(0))

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, expected[0], rows[0])
	assert.Equal(t, expected[1], rows[1])
	// GetRows trims trailing empty cells.
	assert.Equal(t, expected[2][:3], rows[2][:3])
	assert.Equal(t, "20.12.2025 11:30", rows[2][len(rows[2])-1])
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleRows(), brt)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, expected, records)
}

func TestEmptyReport(t *testing.T) {
	data, err := CSV(nil, brt)
	require.NoError(t, err)
	assert.Equal(t, "Data,Empresa,Vai operar,Responsável URA,Observação,Quem adicionou,Atualizado em\n", string(data))

	_, err = XLSX(nil, nil)
	assert.NoError(t, err)
}

func TestUpdatedAtLocation(t *testing.T) {
	row := sampleRows()[1]

	tests := map[string]struct {
		loc  *time.Location
		want string
	}{
		"brasilia":   {loc: brt, want: "20.12.2025 11:30"},
		"utc":        {loc: time.UTC, want: "20.12.2025 14:30"},
		"nil is utc": {loc: nil, want: "20.12.2025 14:30"},
		"crosses midnight": {
			loc:  time.FixedZone("NZDT", 13*60*60),
			want: "21.12.2025 03:30",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := record(row, orUTC(tt.loc))
			assert.Equal(t, tt.want, got[len(got)-1])
		})
	}
}
