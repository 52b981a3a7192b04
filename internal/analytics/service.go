package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/dahnny/analytics-api/internal/models"

	"gorm.io/gorm"
)

// ErrStartAfterEnd is returned by WeeklySummary when the requested range is
// inverted. It is the only validation error the engine raises; "no rows" is
// always a valid zero result.
var ErrStartAfterEnd = errors.New("start date cannot be later than end date")

// Dataset is one named numeric series, aligned positionally to the labels of
// the ChartData it belongs to.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is the chart-ready output shape shared by every aggregation.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Summary holds an owner's raw totals. SaleCount and ExpenseCount let the API
// layer distinguish "no rows at all" from rows that happen to sum to zero;
// the engine itself never treats an empty ledger as an error.
type Summary struct {
	TotalIncome   float64
	TotalExpenses float64
	NetProfit     float64
	SaleCount     int64
	ExpenseCount  int64
}

// Service runs read-only aggregation queries over the sales and expense
// ledgers. Every query filters by owner; date bounds are inclusive and each
// bound applies independently when present.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// scoped starts a query over the given ledger model restricted to one owner
// with optional inclusive date bounds.
func (s *Service) scoped(model interface{}, ownerID uint, start, end *time.Time) *gorm.DB {
	q := s.db.Model(model).Where("owner_id = ?", ownerID)
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	return q
}

func sumAmount(q *gorm.DB) (float64, error) {
	var total float64
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// sumWindow sums amounts for one owner inside [from, to) when toInclusive is
// false, or [from, to] when true.
func (s *Service) sumWindow(model interface{}, ownerID uint, from, to time.Time, toInclusive bool) (float64, error) {
	q := s.db.Model(model).Where("owner_id = ? AND date >= ?", ownerID, from)
	if toInclusive {
		q = q.Where("date <= ?", to)
	} else {
		q = q.Where("date < ?", to)
	}
	return sumAmount(q)
}

// FinancialSummary sums both ledgers for the owner over an optional date
// range. Missing rows yield zero totals, never an error.
func (s *Service) FinancialSummary(ownerID uint, start, end *time.Time) (Summary, error) {
	var sum Summary

	income, err := sumAmount(s.scoped(&models.Sale{}, ownerID, start, end))
	if err != nil {
		return Summary{}, fmt.Errorf("sum sales: %w", err)
	}
	expenses, err := sumAmount(s.scoped(&models.Expense{}, ownerID, start, end))
	if err != nil {
		return Summary{}, fmt.Errorf("sum expenses: %w", err)
	}

	if err := s.scoped(&models.Sale{}, ownerID, start, end).Count(&sum.SaleCount).Error; err != nil {
		return Summary{}, fmt.Errorf("count sales: %w", err)
	}
	if err := s.scoped(&models.Expense{}, ownerID, start, end).Count(&sum.ExpenseCount).Error; err != nil {
		return Summary{}, fmt.Errorf("count expenses: %w", err)
	}

	sum.TotalIncome = income
	sum.TotalExpenses = expenses
	sum.NetProfit = income - expenses
	return sum, nil
}

// HasData reports whether any ledger row matched the summary's scope.
func (s Summary) HasData() bool {
	return s.SaleCount > 0 || s.ExpenseCount > 0
}

// Chart shapes the summary into the common labeled-series form.
func (s Summary) Chart() ChartData {
	return ChartData{
		Labels: []string{"Income", "Expenses", "Net Profit"},
		Datasets: []Dataset{
			{Label: "Financial Summary", Data: []float64{s.TotalIncome, s.TotalExpenses, s.NetProfit}},
		},
	}
}

// MonthlySummary produces one point per calendar month of the given year,
// always exactly 12 in calendar order. Each month's window is half-open:
// [first of month, first of next month).
func (s *Service) MonthlySummary(ownerID uint, year int) (ChartData, error) {
	labels := make([]string, 0, 12)
	incomeData := make([]float64, 0, 12)
	expenseData := make([]float64, 0, 12)
	profitData := make([]float64, 0, 12)

	for month := 1; month <= 12; month++ {
		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		nextMonth := monthStart.AddDate(0, 1, 0) // December rolls into January of year+1

		income, err := s.sumWindow(&models.Sale{}, ownerID, monthStart, nextMonth, false)
		if err != nil {
			return ChartData{}, fmt.Errorf("sum sales for %s: %w", monthStart.Format("2006-01"), err)
		}
		expenses, err := s.sumWindow(&models.Expense{}, ownerID, monthStart, nextMonth, false)
		if err != nil {
			return ChartData{}, fmt.Errorf("sum expenses for %s: %w", monthStart.Format("2006-01"), err)
		}

		labels = append(labels, monthStart.Format("Jan"))
		incomeData = append(incomeData, income)
		expenseData = append(expenseData, expenses)
		profitData = append(profitData, income-expenses)
	}

	return ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Income", Data: incomeData},
			{Label: "Expenses", Data: expenseData},
			{Label: "Net Profit", Data: profitData},
		},
	}, nil
}

// WeeklySummary partitions [start, end] into consecutive 7-day windows
// beginning at start, both window ends inclusive. When end is nil it defaults
// to start+6 days (one window). The loop advances 7 days per bucket, so the
// final window may cover dates past end when the range is not a multiple of
// seven.
func (s *Service) WeeklySummary(ownerID uint, start time.Time, end *time.Time) (ChartData, error) {
	endDate := start.AddDate(0, 0, 6)
	if end != nil {
		endDate = *end
	}
	if start.After(endDate) {
		return ChartData{}, ErrStartAfterEnd
	}

	var (
		labels      []string
		incomeData  []float64
		expenseData []float64
		profitData  []float64
	)

	for weekStart := start; !weekStart.After(endDate); weekStart = weekStart.AddDate(0, 0, 7) {
		weekEnd := weekStart.AddDate(0, 0, 6)

		income, err := s.sumWindow(&models.Sale{}, ownerID, weekStart, weekEnd, true)
		if err != nil {
			return ChartData{}, fmt.Errorf("sum sales for week: %w", err)
		}
		expenses, err := s.sumWindow(&models.Expense{}, ownerID, weekStart, weekEnd, true)
		if err != nil {
			return ChartData{}, fmt.Errorf("sum expenses for week: %w", err)
		}

		labels = append(labels, fmt.Sprintf("%s-%s", weekStart.Format("01/02"), weekEnd.Format("01/02")))
		incomeData = append(incomeData, income)
		expenseData = append(expenseData, expenses)
		profitData = append(profitData, income-expenses)
	}

	return ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Income", Data: incomeData},
			{Label: "Expenses", Data: expenseData},
			{Label: "Net Profit", Data: profitData},
		},
	}, nil
}

const (
	DefaultTopItemsLimit = 5
	MaxTopItemsLimit     = 50
)

// TopSellingItems groups the owner's sales by item name, summing quantity and
// revenue per group, ordered by summed quantity descending. Ties carry no
// secondary sort key and fall back to storage order. itemFilter, when
// non-empty, is a case-insensitive substring match on the item name.
func (s *Service) TopSellingItems(ownerID uint, start, end *time.Time, limit int, itemFilter string) (ChartData, error) {
	if limit <= 0 {
		limit = DefaultTopItemsLimit
	}
	if limit > MaxTopItemsLimit {
		limit = MaxTopItemsLimit
	}

	q := s.scoped(&models.Sale{}, ownerID, start, end)
	if itemFilter != "" {
		q = q.Where("LOWER(item) LIKE LOWER(?)", "%"+itemFilter+"%")
	}

	type itemGroup struct {
		Item          string
		TotalQuantity float64
		TotalRevenue  float64
	}
	var groups []itemGroup
	err := q.
		Select("item, SUM(quantity) AS total_quantity, SUM(amount) AS total_revenue").
		Group("item").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&groups).Error
	if err != nil {
		return ChartData{}, fmt.Errorf("group sales by item: %w", err)
	}

	labels := make([]string, 0, len(groups))
	quantityData := make([]float64, 0, len(groups))
	revenueData := make([]float64, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Item)
		quantityData = append(quantityData, g.TotalQuantity)
		revenueData = append(revenueData, g.TotalRevenue)
	}

	return ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Quantity Sold", Data: quantityData},
			{Label: "Revenue", Data: revenueData},
		},
	}, nil
}

// ExpenseBreakdown totals the owner's expenses per category, ordered by
// summed amount descending. Categories with no matching rows are absent, not
// zero-filled; rows without a category are grouped under "Uncategorized" so
// the group totals always add up to the flat sum over the same range.
func (s *Service) ExpenseBreakdown(ownerID uint, start, end *time.Time) (ChartData, error) {
	type categoryGroup struct {
		Category    string
		TotalAmount float64
	}
	var groups []categoryGroup
	err := s.scoped(&models.Expense{}, ownerID, start, end).
		Select("COALESCE(category, 'Uncategorized') AS category, SUM(amount) AS total_amount").
		Group("COALESCE(category, 'Uncategorized')").
		Order("total_amount DESC").
		Scan(&groups).Error
	if err != nil {
		return ChartData{}, fmt.Errorf("group expenses by category: %w", err)
	}

	labels := make([]string, 0, len(groups))
	amountData := make([]float64, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Category)
		amountData = append(amountData, g.TotalAmount)
	}

	return ChartData{
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Total Amount", Data: amountData},
		},
	}, nil
}
