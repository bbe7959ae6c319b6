package leavehandler

import (
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"leavedesk/internal/domain/leave"
)

func buildBalanceReportPDF(rows []leave.BalanceReportRow) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Leave Balance Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Leave Balance Report")
	pdf.Ln(12)

	const (
		colEmployee = 60
		colPolicy   = 45
		colYear     = 20
		colEntitled = 30
		colTaken    = 30
	)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(colEmployee, 7, "Employee", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colPolicy, 7, "Policy", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colYear, 7, "Year", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colEntitled, 7, "Entitlement", "1", 0, "R", true, 0, "")
		pdf.CellFormat(colTaken, 7, "Days Taken", "1", 1, "R", true, 0, "")
		pdf.SetFont("Arial", "", 9)
	}
	header()

	for _, row := range rows {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			header()
		}
		pdf.CellFormat(colEmployee, 6, row.EmployeeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colPolicy, 6, row.PolicyName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colYear, 6, strconv.Itoa(row.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colEntitled, 6, strconv.Itoa(row.Entitlement), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTaken, 6, fmt.Sprintf("%.1f", row.DaysTaken), "1", 1, "R", false, 0, "")
	}

	if len(rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(colEmployee+colPolicy+colYear+colEntitled+colTaken, 6, "No balances recorded for this year.", "1", 1, "C", false, 0, "")
	}

	return pdf
}
