package handler

import (
	"errors"
	"net/http"
	"time"

	"goaltrack-service/internal/assistant"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/config"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var dashboardAssistant *assistant.Assistant

// InitAssistant wires the assistant from the service configuration
func InitAssistant(cfg *config.Config) {
	dashboardAssistant = assistant.New(&cfg.LLM)
}

// AskAssistant answers a free-text question about the current month's
// sales. The dataset handed to the assistant is built here from the active
// company's rows only; data from any other company never reaches it. The
// call blocks for the duration of the model round-trip including retry
// backoff.
func AskAssistant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AssistantRequestCounter.Inc()

	if dashboardAssistant == nil {
		prometheus.RecordAssistantError("not_configured")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "assistant is not configured"})
	}

	companyID, _ := c.Get("company_id").(uint)

	var req struct {
		Question string           `json:"question"`
		History  []assistant.Turn `json:"history,omitempty"`
	}

	if err := c.Bind(&req); err != nil || req.Question == "" {
		log.Error("Invalid assistant request")
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "question is required"})
	}

	year, month, err := parseYearMonth(c)
	if err != nil {
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
		log.Error("Failed to retrieve sales for assistant", zap.Error(result.Error))
		prometheus.RecordAuthError("sale_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load data"})
	}

	ds := assistant.Dataset{
		Columns: []string{"date", "weekday", "amount"},
		Rows:    make([][]string, 0, len(sales)),
	}
	for _, s := range sales {
		ds.Rows = append(ds.Rows, []string{
			s.Date.Format(dateLayout),
			s.Date.Weekday().String(),
			s.Amount.String(),
		})
	}

	start := time.Now()
	answer, err := dashboardAssistant.Answer(c.Request().Context(), ds, req.Question, req.History)
	prometheus.AssistantDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, assistant.ErrOverloaded) {
			log.Warn("Assistant backend overloaded", zap.Uint("company_id", companyID))
			prometheus.RecordAssistantError("overloaded")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "the assistant is overloaded, try again later"})
		}
		log.Error("Assistant failed", zap.Error(err))
		prometheus.RecordAssistantError("model_error")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "the assistant could not answer this question"})
	}

	log.Info("Assistant answered",
		zap.Uint("company_id", companyID),
		zap.Int("rows", len(ds.Rows)))

	return c.JSON(http.StatusOK, echo.Map{"answer": answer})
}
