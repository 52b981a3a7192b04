package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dahnny/analytics-api/internal/middleware"
	"github.com/dahnny/analytics-api/internal/models"
	"github.com/dahnny/analytics-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseHandler serves the expense ledger CRUD and receipt-image upload.
type ExpenseHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewExpenseHandler(db *gorm.DB, uploadDir string) *ExpenseHandler {
	return &ExpenseHandler{DB: db, UploadDir: uploadDir}
}

type expenseReq struct {
	Item      string  `json:"item" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Category  *string `json:"category"`
	Date      string  `json:"date" binding:"required"`
	ImagePath *string `json:"image_path"`
}

// Create records a new expense owned by the current user.
func (h *ExpenseHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := util.ParseDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DD).")
		return
	}

	expense := models.Expense{
		Item:      strings.TrimSpace(req.Item),
		Amount:    req.Amount,
		Category:  req.Category,
		Date:      date,
		ImagePath: req.ImagePath,
		OwnerID:   user.ID,
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, expense)
}

// List returns the current user's expenses, newest business date first. The
// optional item parameter is a case-insensitive substring filter.
func (h *ExpenseHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	q := h.DB.Where("owner_id = ?", user.ID)
	if item := strings.TrimSpace(c.Query("item")); item != "" {
		q = q.Where("LOWER(item) LIKE LOWER(?)", "%"+item+"%")
	}

	var expenses []models.Expense
	if err := q.Order("date DESC").Find(&expenses).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(expenses) == 0 {
		util.Error(c, http.StatusNotFound, "No expenses found")
		return
	}

	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) findOwned(c *gin.Context, user *models.User) (*models.Expense, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusNotFound, "Expense not found")
		return nil, false
	}

	var expense models.Expense
	if err := h.DB.Where("id = ? AND owner_id = ?", id, user.ID).First(&expense).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Expense not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return nil, false
	}
	return &expense, true
}

// Get returns a single expense by id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expense, ok := h.findOwned(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, expense)
}

// Update replaces all mutable fields of an expense.
func (h *ExpenseHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expense, ok := h.findOwned(c, user)
	if !ok {
		return
	}

	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := util.ParseDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DD).")
		return
	}

	expense.Item = strings.TrimSpace(req.Item)
	expense.Amount = req.Amount
	expense.Category = req.Category
	expense.Date = date
	expense.ImagePath = req.ImagePath

	if err := h.DB.Save(expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, expense)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expense, ok := h.findOwned(c, user)
	if !ok {
		return
	}

	if err := h.DB.Delete(expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage attaches a receipt image to an expense.
func (h *ExpenseHandler) UploadImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	expense, ok := h.findOwned(c, user)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	expense.ImagePath = &dst
	if err := h.DB.Save(expense).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, expense)
}
