package handler

import (
	"net/http"
	"time"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// ListGoals returns every monthly goal of the active company
func ListGoals(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("goals", "list")

	companyID, _ := c.Get("company_id").(uint)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var goals []model.MonthlyGoal
	result := database.GetDB().
		Where("company_id = ?", companyID).
		Order("ano").
		Order("mes").
		Find(&goals)
	if result.Error != nil {
		log.Error("Failed to retrieve goals", zap.Error(result.Error))
		prometheus.RecordAuthError("goal_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve goals"})
	}

	return c.JSON(http.StatusOK, echo.Map{"goals": goals})
}

// UpsertGoal sets the monetary target for one month. Unique per
// (company, year, month); saving again overwrites. Admin only.
func UpsertGoal(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("goals", "upsert")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Goal update refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("set_goal")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can define goals"})
	}

	var req struct {
		Year   int             `json:"year"`
		Month  int             `json:"month"`
		Target decimal.Decimal `json:"target"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse goal request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Month < 1 || req.Month > 12 {
		log.Error("Invalid goal month", zap.Int("month", req.Month))
		prometheus.RecordAuthError("invalid_goal_month")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "month must be between 1 and 12"})
	}

	if req.Target.IsNegative() {
		log.Warn("Negative goal target refused", zap.String("target", req.Target.String()))
		prometheus.RecordAuthError("invalid_goal_target")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target cannot be negative"})
	}

	monthlyGoal := model.MonthlyGoal{
		CompanyID: companyID,
		Year:      req.Year,
		Month:     req.Month,
		Target:    req.Target,
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())

	// Upsert on the (company, year, month) unique key
	result := database.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "ano"}, {Name: "mes"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_mensal", "updated_at"}),
	}).Create(&monthlyGoal)
	if result.Error != nil {
		log.Error("Failed to save goal", zap.Error(result.Error))
		prometheus.RecordAuthError("goal_save_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save goal"})
	}

	log.Info("Goal saved",
		zap.Uint("company_id", companyID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.String("target", req.Target.String()))

	return c.JSON(http.StatusOK, echo.Map{"message": "Goal saved successfully"})
}
