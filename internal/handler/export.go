package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/dahnny/analytics-api/internal/middleware"
	"github.com/dahnny/analytics-api/internal/models"
	"github.com/dahnny/analytics-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the current user's combined ledgers as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// exportRow is one flattened ledger row for export, sales and expenses mixed.
type exportRow struct {
	Type     string
	Item     string
	Category string
	Amount   float64
	Quantity string
	Date     time.Time
}

var exportHeaders = []string{"Type", "Item", "Category", "Amount", "Quantity", "Date"}

func (h *ExportHandler) loadRows(ownerID uint) ([]exportRow, error) {
	var sales []models.Sale
	if err := h.DB.Where("owner_id = ?", ownerID).Find(&sales).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := h.DB.Where("owner_id = ?", ownerID).Find(&expenses).Error; err != nil {
		return nil, err
	}

	rows := make([]exportRow, 0, len(sales)+len(expenses))
	for _, s := range sales {
		rows = append(rows, exportRow{
			Type:     "sale",
			Item:     s.Item,
			Amount:   s.Amount,
			Quantity: strconv.Itoa(s.Quantity),
			Date:     s.Date,
		})
	}
	for _, e := range expenses {
		category := ""
		if e.Category != nil {
			category = *e.Category
		}
		rows = append(rows, exportRow{
			Type:     "expense",
			Item:     e.Item,
			Category: category,
			Amount:   e.Amount,
			Date:     e.Date,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, nil
}

// CSV exports both ledgers as a CSV attachment.
func (h *ExportHandler) CSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	rows, err := h.loadRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.Type,
			r.Item,
			r.Category,
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			r.Quantity,
			r.Date.Format("2006-01-02"),
		})
	}
}

// XLSX exports both ledgers as a spreadsheet attachment.
func (h *ExportHandler) XLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	rows, err := h.loadRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	f := excelize.NewFile()
	sheetName := "Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Item)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Date.Format("2006-01-02"))
	}

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
