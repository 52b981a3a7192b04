package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dahnny/analytics-api/internal/analytics"
	"github.com/dahnny/analytics-api/internal/database"
	"github.com/dahnny/analytics-api/internal/middleware"
	"github.com/dahnny/analytics-api/internal/models"
	"github.com/dahnny/analytics-api/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestRouter wires the API the same way the real router does, with a
// throwaway database and low bcrypt cost.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	r := gin.New()
	api := r.Group("/api/v1")

	authHandler := NewAuthHandler(db, testJWTSecret, 24, bcrypt.MinCost)
	api.POST("/users", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(testJWTSecret, db))

	protected.GET("/me", GetMe)

	saleHandler := NewSaleHandler(db, t.TempDir())
	sales := protected.Group("/sales")
	sales.POST("", saleHandler.Create)
	sales.GET("", saleHandler.List)
	sales.GET("/:id", saleHandler.Get)
	sales.PUT("/:id", saleHandler.Update)
	sales.DELETE("/:id", saleHandler.Delete)
	sales.POST("/:id/image", saleHandler.UploadImage)

	expenseHandler := NewExpenseHandler(db, t.TempDir())
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.Create)
	expenses.GET("", expenseHandler.List)
	expenses.GET("/:id", expenseHandler.Get)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)
	expenses.POST("/:id/image", expenseHandler.UploadImage)

	analyticsHandler := NewAnalyticsHandler(analytics.NewService(db))
	stats := protected.Group("/analytics")
	stats.GET("/summary", analyticsHandler.Summary)
	stats.GET("/monthly-summary", analyticsHandler.MonthlySummary)
	stats.GET("/weekly-summary", analyticsHandler.WeeklySummary)
	stats.GET("/top-selling", analyticsHandler.TopSelling)
	stats.GET("/expense-breakdown", analyticsHandler.ExpenseBreakdown)

	exportHandler := NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.CSV)
	protected.GET("/export/xlsx", exportHandler.XLSX)

	return r, db
}

// createUser inserts a user directly and mints a token for it.
func createUser(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()
	hash, err := util.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Email: email, Password: hash}
	require.NoError(t, db.Create(&user).Error)

	token, err := util.GenerateToken(testJWTSecret, user.ID, time.Hour)
	require.NoError(t, err)
	return user, token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	return doRequest(t, r, method, path, token, rd)
}

// detail extracts the error message from an error response body.
func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func decodeChart(t *testing.T, w *httptest.ResponseRecorder) analytics.ChartData {
	t.Helper()
	var chart analytics.ChartData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chart))
	return chart
}

func seedSale(t *testing.T, db *gorm.DB, ownerID uint, item string, amount float64, quantity int, day string) {
	t.Helper()
	on, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Sale{
		Item: item, Amount: amount, Quantity: quantity, Date: on, OwnerID: ownerID,
	}).Error)
}

func seedExpense(t *testing.T, db *gorm.DB, ownerID uint, item string, amount float64, category string, day string) {
	t.Helper()
	on, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	exp := models.Expense{Item: item, Amount: amount, Date: on, OwnerID: ownerID}
	if category != "" {
		exp.Category = &category
	}
	require.NoError(t, db.Create(&exp).Error)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
