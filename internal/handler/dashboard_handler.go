package handler

import (
	"net/http"
	"time"

	"goaltrack-service/internal/goal"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetDashboard computes the month's derived metrics: target, recorded
// total, remaining amount, percent complete, remaining business days, the
// required daily run-rate and the cumulative daily series. Everything is
// recomputed per request; nothing is cached.
func GetDashboard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("dashboard", "get")

	companyID, _ := c.Get("company_id").(uint)

	year, month, err := parseYearMonth(c)
	if err != nil {
		log.Error("Invalid year/month filter", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year or month"})
	}

	first, last := monthRange(year, month)
	db := database.GetDB()

	defer prometheus.TrackDBOperation("query")(time.Now())

	// Working-weekday configuration, Monday-Friday when absent
	weekdays := goal.DefaultWorkingWeekdays()
	var cfg model.WorkingDayConfig
	if result := db.Where("company_id = ?", companyID).First(&cfg); result.Error == nil {
		parsed, err := goal.ParseWeekdays(cfg.Weekdays)
		if err != nil {
			log.Error("Stored working-day config is invalid", zap.Error(err))
			prometheus.RecordAuthError("invalid_working_days")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored configuration is invalid"})
		}
		weekdays = parsed
	}

	// Holidays
	var holidays []model.Holiday
	if result := db.Where("company_id = ?", companyID).Find(&holidays); result.Error != nil {
		log.Error("Failed to retrieve holidays", zap.Error(result.Error))
		prometheus.RecordAuthError("holiday_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}
	holidayDates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		holidayDates = append(holidayDates, h.Date)
	}

	// Monthly target, zero when not defined
	target := decimal.Zero
	var monthlyGoal model.MonthlyGoal
	if result := db.Where("company_id = ? AND ano = ? AND mes = ?", companyID, year, int(month)).First(&monthlyGoal); result.Error == nil {
		target = monthlyGoal.Target
	}

	// The month's sales in date order
	var sales []model.DailySale
	result := db.
		Where("company_id = ? AND data_venda >= ? AND data_venda <= ?", companyID, first, last).
		Order("data_venda").
		Find(&sales)
	if result.Error != nil {
		log.Error("Failed to retrieve sales", zap.Error(result.Error))
		prometheus.RecordAuthError("sale_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard"})
	}

	type SeriesPoint struct {
		Date       string          `json:"date"`
		Amount     decimal.Decimal `json:"amount"`
		Cumulative decimal.Decimal `json:"cumulative"`
	}

	total := decimal.Zero
	series := make([]SeriesPoint, 0, len(sales))
	for _, s := range sales {
		total = total.Add(s.Amount)
		series = append(series, SeriesPoint{
			Date:       s.Date.Format(dateLayout),
			Amount:     s.Amount,
			Cumulative: total,
		})
	}

	today := time.Now().UTC()
	businessDaysLeft := goal.RemainingBusinessDays(year, month, weekdays, holidayDates, today)
	progress := goal.ComputeProgress(target, total, businessDaysLeft)

	return c.JSON(http.StatusOK, echo.Map{
		"year":               year,
		"month":              int(month),
		"target":             target,
		"total_recorded":     total,
		"remaining":          progress.Remaining,
		"percent":            progress.Percent.Round(2),
		"daily_run_rate":     progress.DailyRunRate.Round(2),
		"business_days_left": businessDaysLeft,
		"series":             series,
	})
}
