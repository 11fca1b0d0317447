package service

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/domain/entity"
)

// ExportSheet is the worksheet name of the bills export
const ExportSheet = "Notes de frais"

var exportHeaders = []string{
	"Date", "Type", "Nom", "Montant", "TVA", "%", "Statut", "Commentaire", "Justificatif",
}

// ExportService writes bill ledgers as xlsx workbooks
type ExportService interface {
	WriteBills(w io.Writer, bills []*entity.Bill) error
}

type exportServiceImpl struct {
	logger Logger
}

// NewExportService creates a new ExportService
func NewExportService(logger Logger) ExportService {
	return &exportServiceImpl{logger: logger}
}

// WriteBills writes one row per bill in the given order, after a header row
func (s *exportServiceImpl) WriteBills(w io.Writer, bills []*entity.Bill) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ExportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		s.setCell(f, cell, header)
	}

	for r, bill := range bills {
		date, err := entity.FormatDate(bill.Date)
		if err != nil {
			date = bill.Date
		}
		values := []interface{}{
			date,
			bill.Type,
			bill.Name,
			bill.Amount,
			bill.VAT,
			bill.Pct,
			entity.FormatStatus(bill.Status),
			bill.Commentary,
			bill.FileName,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			s.setCell(f, cell, v)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *exportServiceImpl) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(ExportSheet, cell, value); err != nil {
		s.logger.Error("Failed to set cell value", "cell", cell, "error", err)
	}
}
