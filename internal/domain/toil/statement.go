package toil

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

type StatementData struct {
	FirstName string
	LastName  string
	Email     string
	Year      int
	Balance   BalanceSummary
	Accruals  []Accrual
}

// RenderStatement produces a PDF summary of a user's TOIL position: the
// current balance and the accrual history with expiry dates.
func RenderStatement(data StatementData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "TOIL Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Staff member: %s %s", data.FirstName, data.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", data.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Year: %d", data.Year))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Current balance: %s hours (%s days)", data.Balance.BalanceHours, data.Balance.BalanceDays))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 8, "Week ending", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 8, "Logged", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Contracted", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Accrued", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Expires", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Expired", "1", 1, "", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, rec := range data.Accruals {
		expires := "-"
		if rec.ExpiryDate != nil {
			expires = rec.ExpiryDate.Format("2006-01-02")
		}
		expired := "no"
		if rec.Expired {
			expired = "yes"
		}
		pdf.CellFormat(30, 8, rec.WeekEnding.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 8, rec.LoggedHours.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, rec.ContractedHours.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, rec.HoursAccrued.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, expires, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, expired, "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
