package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	ledgerSheet  = "Ledger"
)

// WriteXLSX renders the report as a workbook with a summary and a ledger
// sheet.
func WriteXLSX(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	row := 1
	put := func(label string, value any) {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), label)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), value)
		row++
	}
	for _, c := range Categories {
		put(string(c), rep.Totals[c].InexactFloat64())
	}
	put("online_total", rep.OnlineTotal.InexactFloat64())
	put("total_income", rep.TotalIncome.InexactFloat64())
	put("total_expenses", rep.TotalExpenses.InexactFloat64())
	put("balance", rep.Balance.InexactFloat64())
	put("outstanding_debt", rep.OutstandingDebt.InexactFloat64())

	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return err
	}
	headers := []string{"Date", "Category", "ID", "Method", "Amount", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ledgerSheet, cell, h)
	}
	for i, e := range rep.Ledger {
		r := i + 2
		f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", r), e.Date)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", r), string(e.Category))
		f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", r), e.ID)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", r), e.Method)
		f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", r), e.Amount.InexactFloat64())
		f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", r), e.Description)
	}

	return f.Write(w)
}
