package handler_test

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/config"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database, migrates the full
// schema and wires it in as the handlers' storage
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Membership{},
		&model.WorkingDayConfig{},
		&model.Holiday{},
		&model.MonthlyGoal{},
		&model.DailySale{},
	))

	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:      "handler-test-key",
		ExpirationHours: 1,
	})

	return db
}

// newJSONContext builds an echo context carrying a JSON request body
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asCompanyAdmin stores the context keys the company middleware would set
// for an admin of the given company
func asCompanyAdmin(c echo.Context, companyID, userID uint) {
	c.Set("user_id", userID)
	c.Set("company_id", companyID)
	c.Set("role", access.RoleAdmin)
	c.Set("screens", access.AllScreens())
}

// seedCompany creates an owner account and their company
func seedCompany(t *testing.T, db *gorm.DB) (model.User, model.Company) {
	t.Helper()

	owner := model.User{Email: "owner@acme.test", Password: "secret"}
	require.NoError(t, db.Create(&owner).Error)

	company := model.Company{Name: "Acme", OwnerID: owner.ID, Active: true}
	require.NoError(t, db.Create(&company).Error)

	return owner, company
}
