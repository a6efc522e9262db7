package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// BookingRow is one line of the landlord booking export.
type BookingRow struct {
	BookingNumber string
	HostelName    string
	CustomerName  string
	CustomerEmail string
	CheckIn       string
	CheckOut      string
	Nights        int
	Guests        int
	Status        string
	TotalPrice    float64
	Currency      string
	CreatedAt     string
}

var headers = []string{
	"Booking #", "Hostel", "Customer", "Email", "Check-in", "Check-out",
	"Nights", "Guests", "Status", "Total", "Currency", "Created",
}

// WriteBookings renders rows into an xlsx workbook and writes it to w.
func WriteBookings(w io.Writer, title string, rows []BookingRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	_ = f.SetCellValue(sheetName, "A1", title)
	_ = f.MergeCell(sheetName, "A1", "L1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range rows {
		values := []interface{}{
			r.BookingNumber, r.HostelName, r.CustomerName, r.CustomerEmail, r.CheckIn, r.CheckOut,
			r.Nights, r.Guests, r.Status, r.TotalPrice, r.Currency, r.CreatedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "L", 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
