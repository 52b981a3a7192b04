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

// SaleHandler serves the sales ledger CRUD and receipt-image upload.
type SaleHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewSaleHandler(db *gorm.DB, uploadDir string) *SaleHandler {
	return &SaleHandler{DB: db, UploadDir: uploadDir}
}

type saleReq struct {
	Item      string  `json:"item" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Quantity  int     `json:"quantity"`
	Date      string  `json:"date" binding:"required"`
	ImagePath *string `json:"image_path"`
}

// Create records a new sale owned by the current user.
func (h *SaleHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := util.ParseDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DD).")
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	sale := models.Sale{
		Item:      strings.TrimSpace(req.Item),
		Amount:    req.Amount,
		Quantity:  quantity,
		Date:      date,
		ImagePath: req.ImagePath,
		OwnerID:   user.ID,
	}
	if err := h.DB.Create(&sale).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// List returns the current user's sales, newest business date first. The
// optional item parameter is a case-insensitive substring filter.
func (h *SaleHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	q := h.DB.Where("owner_id = ?", user.ID)
	if item := strings.TrimSpace(c.Query("item")); item != "" {
		q = q.Where("LOWER(item) LIKE LOWER(?)", "%"+item+"%")
	}

	var sales []models.Sale
	if err := q.Order("date DESC").Find(&sales).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(sales) == 0 {
		util.Error(c, http.StatusNotFound, "No sales found")
		return
	}

	c.JSON(http.StatusOK, sales)
}

// findOwned loads a sale by id scoped to the owner. Missing rows and rows
// owned by someone else are both reported as not found.
func (h *SaleHandler) findOwned(c *gin.Context, user *models.User) (*models.Sale, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusNotFound, "Sale not found")
		return nil, false
	}

	var sale models.Sale
	if err := h.DB.Where("id = ? AND owner_id = ?", id, user.ID).First(&sale).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "Sale not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "Internal server error")
		}
		return nil, false
	}
	return &sale, true
}

// Get returns a single sale by id.
func (h *SaleHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sale, ok := h.findOwned(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Update replaces all mutable fields of a sale.
func (h *SaleHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sale, ok := h.findOwned(c, user)
	if !ok {
		return
	}

	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := util.ParseDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid date format. Use ISO format (YYYY-MM-DD).")
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	sale.Item = strings.TrimSpace(req.Item)
	sale.Amount = req.Amount
	sale.Quantity = quantity
	sale.Date = date
	sale.ImagePath = req.ImagePath

	if err := h.DB.Save(sale).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, sale)
}

// Delete removes a sale.
func (h *SaleHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sale, ok := h.findOwned(c, user)
	if !ok {
		return
	}

	if err := h.DB.Delete(sale).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage attaches a receipt image to a sale. The file is stored under
// the upload directory with a random name to avoid collisions.
func (h *SaleHandler) UploadImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sale, ok := h.findOwned(c, user)
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

	sale.ImagePath = &dst
	if err := h.DB.Save(sale).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, sale)
}
