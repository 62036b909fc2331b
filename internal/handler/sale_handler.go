package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/goal"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// monthRange returns the first and last calendar day of a month
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, goal.MonthLastDay(year, month)
}

// parseYearMonth reads the year and month query parameters, defaulting to
// the current month
func parseYearMonth(c echo.Context) (int, time.Month, error) {
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
		year = parsed
	}
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, err
		}
		if parsed < 1 || parsed > 12 {
			return 0, 0, fmt.Errorf("month %d out of range", parsed)
		}
		month = time.Month(parsed)
	}
	return year, month, nil
}

// ListSales returns the month's ledger rows with best/worst day highlighting
func ListSales(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sales", "list")

	companyID, _ := c.Get("company_id").(uint)

	year, month, err := parseYearMonth(c)
	if err != nil {
		log.Error("Invalid year/month filter", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year or month"})
	}

	first, last := monthRange(year, month)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var sales []model.DailySale
	result := database.GetDB().
		Where("company_id = ? AND data_venda >= ? AND data_venda <= ?", companyID, first, last).
		Order("data_venda").
		Find(&sales)
	if result.Error != nil {
		log.Error("Failed to retrieve sales", zap.Error(result.Error))
		prometheus.RecordAuthError("sale_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sales"})
	}

	// Min/max highlighting over the month's recorded amounts
	var minAmount, maxAmount decimal.Decimal
	for i, s := range sales {
		if i == 0 {
			minAmount, maxAmount = s.Amount, s.Amount
			continue
		}
		if s.Amount.LessThan(minAmount) {
			minAmount = s.Amount
		}
		if s.Amount.GreaterThan(maxAmount) {
			maxAmount = s.Amount
		}
	}

	type SaleRow struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
		Best   bool            `json:"best"`
		Worst  bool            `json:"worst"`
	}

	rows := make([]SaleRow, 0, len(sales))
	for _, s := range sales {
		rows = append(rows, SaleRow{
			Date:   s.Date.Format(dateLayout),
			Amount: s.Amount,
			Best:   len(sales) > 1 && s.Amount.Equal(maxAmount),
			Worst:  len(sales) > 1 && s.Amount.Equal(minAmount),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"year":  year,
		"month": int(month),
		"sales": rows,
	})
}

// UpsertSale records the total sold on one date. Saving the same date again
// overwrites the previous amount (last-writer-wins on the unique key).
// Admin and data_entry only; the amount must be positive and the date must
// not be in the future.
func UpsertSale(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sales", "upsert")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanRecordSales() {
		log.Warn("Sale recording refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("record_sale")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "viewers cannot record sales"})
	}

	var req struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sale request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	saleDate, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		log.Error("Invalid sale date", zap.String("date", req.Date))
		prometheus.RecordAuthError("invalid_sale_date")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	if !req.Amount.IsPositive() {
		log.Warn("Non-positive sale amount refused", zap.String("amount", req.Amount.String()))
		prometheus.RecordAuthError("invalid_sale_amount")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be greater than zero"})
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if saleDate.After(today) {
		log.Warn("Future-dated sale refused", zap.String("date", req.Date))
		prometheus.RecordAuthError("future_sale_date")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sale date cannot be in the future"})
	}

	sale := model.DailySale{
		CompanyID: companyID,
		Date:      saleDate,
		Amount:    req.Amount,
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())

	// Upsert on the (company, date) unique key
	result := database.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "data_venda"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor_venda", "updated_at"}),
	}).Create(&sale)
	if result.Error != nil {
		log.Error("Failed to save sale", zap.Error(result.Error))
		prometheus.RecordAuthError("sale_save_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save sale"})
	}

	log.Info("Sale saved",
		zap.Uint("company_id", companyID),
		zap.String("date", req.Date),
		zap.String("amount", req.Amount.String()))

	return c.JSON(http.StatusOK, echo.Map{"message": "Sale saved successfully"})
}

// DeleteSale removes the record for one date. Admin and data_entry only.
func DeleteSale(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sales", "delete")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanRecordSales() {
		log.Warn("Sale deletion refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("delete_sale")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "viewers cannot delete sales"})
	}

	saleDate, err := time.ParseInLocation(dateLayout, c.Param("date"), time.UTC)
	if err != nil {
		log.Error("Invalid sale date", zap.String("date", c.Param("date")))
		prometheus.RecordAuthError("invalid_sale_date")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Where("company_id = ? AND data_venda = ?", companyID, saleDate).Delete(&model.DailySale{})
	if result.Error != nil {
		log.Error("Failed to delete sale", zap.Error(result.Error))
		prometheus.RecordAuthError("sale_delete_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete sale"})
	}
	if result.RowsAffected == 0 {
		prometheus.RecordAuthError("sale_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no sale recorded on this date"})
	}

	log.Info("Sale deleted",
		zap.Uint("company_id", companyID),
		zap.String("date", c.Param("date")))

	return c.JSON(http.StatusOK, echo.Map{"message": "Sale deleted successfully"})
}
