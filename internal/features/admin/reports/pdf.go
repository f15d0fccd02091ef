// Package reports renders the admin PDF exports.
package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	depositmodels "polygreen-backend/internal/features/deposit/models"
	machinemodels "polygreen-backend/internal/features/machine/models"
	usermodels "polygreen-backend/internal/features/user/models"
)

const timeLayout = "2006-01-02 15:04"

func newDoc(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated "+time.Now().Format(timeLayout))
	pdf.Ln(10)
	return pdf
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, titles []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 240, 230)
	for i, t := range titles {
		pdf.CellFormat(widths[i], 7, t, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string) {
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func render(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Users renders the full account listing.
func Users(users []*usermodels.User) ([]byte, error) {
	pdf := newDoc("PolyGreen Users Report")

	widths := []float64{35, 45, 35, 25, 25, 25}
	tableHeader(pdf, widths, []string{"User ID", "Name", "Mobile", "Points", "Bottles", "Joined"})
	for _, u := range users {
		tableRow(pdf, widths, []string{
			u.ID, u.Name, u.Mobile,
			fmt.Sprintf("%d", u.Points),
			fmt.Sprintf("%d", u.Bottles),
			u.CreatedAt.Format("2006-01-02"),
		})
	}
	return render(pdf)
}

// User renders one account with its transaction history.
func User(user *usermodels.User, history []*depositmodels.Transaction) ([]byte, error) {
	pdf := newDoc("PolyGreen User Report: " + user.Name)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("User ID: %s    Mobile: %s", user.ID, user.Mobile))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Points: %d    Bottles recycled: %d", user.Points, user.Bottles))
	pdf.Ln(10)

	transactionTable(pdf, history)
	return render(pdf)
}

// Machines renders the machine registry with fill levels.
func Machines(machines []*machinemodels.Machine) ([]byte, error) {
	pdf := newDoc("PolyGreen Machines Report")

	widths := []float64{30, 40, 30, 25, 25, 20, 20}
	tableHeader(pdf, widths, []string{"Machine", "Name", "City", "Current", "Capacity", "Fill %", "Full"})
	for _, m := range machines {
		full := "no"
		if m.IsFull {
			full = "yes"
		}
		tableRow(pdf, widths, []string{
			m.ID, m.Name, m.City,
			fmt.Sprintf("%d", m.CurrentBottles),
			fmt.Sprintf("%d", m.MaxCapacity),
			fmt.Sprintf("%.0f", m.FillPercentage()),
			full,
		})
	}
	return render(pdf)
}

// Machine renders one machine with its deposit history.
func Machine(machine *machinemodels.Machine, history []*depositmodels.Transaction) ([]byte, error) {
	pdf := newDoc("PolyGreen Machine Report: " + machine.Name)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Machine ID: %s    City: %s", machine.ID, machine.City))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Fill: %d/%d (%.0f%%)    Lifetime bottles: %d",
		machine.CurrentBottles, machine.MaxCapacity, machine.FillPercentage(), machine.TotalBottles))
	pdf.Ln(6)
	if machine.LastEmptied != nil {
		pdf.Cell(0, 6, "Last emptied: "+machine.LastEmptied.Format(timeLayout))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	transactionTable(pdf, history)
	return render(pdf)
}

// Transactions renders the full ledger.
func Transactions(history []*depositmodels.Transaction) ([]byte, error) {
	pdf := newDoc("PolyGreen Transactions Report")
	transactionTable(pdf, history)
	return render(pdf)
}

func transactionTable(pdf *gofpdf.Fpdf, history []*depositmodels.Transaction) {
	widths := []float64{15, 35, 20, 20, 20, 35, 35}
	tableHeader(pdf, widths, []string{"ID", "User", "Type", "Points", "Bottles", "Machine", "When"})
	for _, t := range history {
		machineID := ""
		if t.MachineID != nil {
			machineID = *t.MachineID
		}
		tableRow(pdf, widths, []string{
			fmt.Sprintf("%d", t.ID),
			t.UserID,
			string(t.Kind),
			fmt.Sprintf("%d", t.Points),
			fmt.Sprintf("%d", t.Bottles),
			machineID,
			t.CreatedAt.Format(timeLayout),
		})
	}
}
