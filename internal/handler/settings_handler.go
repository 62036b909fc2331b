package handler

import (
	"net/http"
	"time"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/goal"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// GetWorkingDays returns the company's working-weekday configuration,
// falling back to Monday-Friday when none is stored
func GetWorkingDays(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("working_days", "get")

	companyID, _ := c.Get("company_id").(uint)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var cfg model.WorkingDayConfig
	weekdays := goal.DefaultWorkingWeekdays()
	if result := database.GetDB().Where("company_id = ?", companyID).First(&cfg); result.Error == nil {
		parsed, err := goal.ParseWeekdays(cfg.Weekdays)
		if err != nil {
			log.Error("Stored working-day config is invalid", zap.Error(err))
			prometheus.RecordAuthError("invalid_working_days")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored configuration is invalid"})
		}
		weekdays = parsed
	}

	return c.JSON(http.StatusOK, echo.Map{"weekdays": weekdays})
}

// SaveWorkingDays upserts the company's working-weekday set. Admin only.
// Weekday indices follow the stored convention, 0=Monday..6=Sunday.
func SaveWorkingDays(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("working_days", "save")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Working-day update refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("edit_working_days")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can change settings"})
	}

	var req struct {
		Weekdays []int `json:"weekdays"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse working-day request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Round-trip through the validator to reject out-of-range indices
	serialized := goal.SerializeWeekdays(req.Weekdays)
	if _, err := goal.ParseWeekdays(serialized); err != nil {
		log.Error("Invalid weekday list", zap.Error(err))
		prometheus.RecordAuthError("invalid_working_days")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday indices must be between 0 and 6"})
	}

	cfg := model.WorkingDayConfig{
		CompanyID: companyID,
		Weekdays:  serialized,
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())

	// One config row per company
	result := database.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dias_trabalho", "updated_at"}),
	}).Create(&cfg)
	if result.Error != nil {
		log.Error("Failed to save working days", zap.Error(result.Error))
		prometheus.RecordAuthError("working_days_save_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save working days"})
	}

	log.Info("Working days saved",
		zap.Uint("company_id", companyID),
		zap.Ints("weekdays", req.Weekdays))

	return c.JSON(http.StatusOK, echo.Map{"message": "Working days saved successfully"})
}

// ListHolidays returns the company's holidays ordered by date
func ListHolidays(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("holidays", "list")

	companyID, _ := c.Get("company_id").(uint)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var holidays []model.Holiday
	result := database.GetDB().
		Where("company_id = ?", companyID).
		Order("data").
		Find(&holidays)
	if result.Error != nil {
		log.Error("Failed to retrieve holidays", zap.Error(result.Error))
		prometheus.RecordAuthError("holiday_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve holidays"})
	}

	type HolidayRow struct {
		Date  string `json:"date"`
		Label string `json:"label"`
	}

	rows := make([]HolidayRow, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, HolidayRow{
			Date:  h.Date.Format(dateLayout),
			Label: h.Label,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"holidays": rows})
}

// UpsertHoliday adds or relabels a holiday, unique per (company, date).
// Admin only.
func UpsertHoliday(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("holidays", "upsert")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Holiday update refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("edit_holidays")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can change settings"})
	}

	var req struct {
		Date  string `json:"date"`
		Label string `json:"label"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse holiday request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	holidayDate, err := time.ParseInLocation(dateLayout, req.Date, time.UTC)
	if err != nil {
		log.Error("Invalid holiday date", zap.String("date", req.Date))
		prometheus.RecordAuthError("invalid_holiday_date")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	if req.Label == "" {
		prometheus.RecordAuthError("invalid_holiday_label")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label is required"})
	}

	holiday := model.Holiday{
		CompanyID: companyID,
		Date:      holidayDate,
		Label:     req.Label,
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())

	result := database.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "data"}},
		DoUpdates: clause.AssignmentColumns([]string{"descricao", "updated_at"}),
	}).Create(&holiday)
	if result.Error != nil {
		log.Error("Failed to save holiday", zap.Error(result.Error))
		prometheus.RecordAuthError("holiday_save_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save holiday"})
	}

	log.Info("Holiday saved",
		zap.Uint("company_id", companyID),
		zap.String("date", req.Date),
		zap.String("label", req.Label))

	return c.JSON(http.StatusOK, echo.Map{"message": "Holiday saved successfully"})
}

// DeleteHoliday removes a holiday by date. Admin only.
func DeleteHoliday(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("holidays", "delete")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Holiday deletion refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("edit_holidays")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can change settings"})
	}

	holidayDate, err := time.ParseInLocation(dateLayout, c.Param("date"), time.UTC)
	if err != nil {
		log.Error("Invalid holiday date", zap.String("date", c.Param("date")))
		prometheus.RecordAuthError("invalid_holiday_date")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Where("company_id = ? AND data = ?", companyID, holidayDate).Delete(&model.Holiday{})
	if result.Error != nil {
		log.Error("Failed to delete holiday", zap.Error(result.Error))
		prometheus.RecordAuthError("holiday_delete_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete holiday"})
	}
	if result.RowsAffected == 0 {
		prometheus.RecordAuthError("holiday_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no holiday on this date"})
	}

	log.Info("Holiday deleted",
		zap.Uint("company_id", companyID),
		zap.String("date", c.Param("date")))

	return c.JSON(http.StatusOK, echo.Map{"message": "Holiday deleted successfully"})
}
