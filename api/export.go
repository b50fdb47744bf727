/*
export.go - Spreadsheet and calendar downloads

PURPOSE:
  Offline copies of the board for people who do not open the web UI:
    - month listing as an .xlsx workbook (excelize)
    - one login's shifts as an iCalendar feed (golang-ical)

SEE ALSO:
  - handlers.go: ExportMonth, ExportCalendar
*/
package api

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/warp/overtime-board/overtime"
	"github.com/xuri/excelize/v2"
)

const monthSheet = "Overtime"

var monthHeader = []string{"Date", "Login", "Name", "Shift"}

// buildMonthWorkbook renders the month listing, one row per entry.
func buildMonthWorkbook(month int, entries []overtime.MonthEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(monthSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(monthSheet, "A", "A", 12)
	f.SetColWidth(monthSheet, "B", "B", 16)
	f.SetColWidth(monthSheet, "C", "C", 28)
	f.SetColWidth(monthSheet, "D", "D", 8)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range monthHeader {
		f.SetCellValue(monthSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(monthSheet, "A1", cell(colName(len(monthHeader)-1), 1), headerStyle)

	row := 2
	for _, e := range entries {
		f.SetCellValue(monthSheet, cell("A", row), e.WorkDate.Format(overtime.DateLayout))
		f.SetCellValue(monthSheet, cell("B", row), e.Login)
		f.SetCellValue(monthSheet, cell("C", row), e.Name)
		f.SetCellValue(monthSheet, cell("D", row), e.Shift.String())
		row++
	}
	f.SetDocProps(&excelize.DocProperties{Title: fmt.Sprintf("Overtime month %02d", month)})

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// buildCalendar renders one all-day event per entry.
func buildCalendar(login, name string, entries []overtime.Entry, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//overtime-board//EN")
	calName := login
	if name != "" {
		calName = name
	}
	cal.SetXWRCalName("Overtime: " + calName)

	for _, e := range entries {
		day := overtime.Date(e.WorkDate)
		ev := cal.AddEvent(fmt.Sprintf("%s-%s@overtime-board", e.Login, day.Format("20060102")))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("Overtime (%s shift)", e.Shift))
	}
	return cal.Serialize()
}
