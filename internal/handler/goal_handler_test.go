package handler_test

import (
	"net/http"
	"testing"

	"goaltrack-service/internal/handler"
	"goaltrack-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertGoal_SameMonthOverwrites(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	// WHEN: setting the June 2025 target twice
	for _, body := range []string{
		`{"year":2025,"month":6,"target":10000}`,
		`{"year":2025,"month":6,"target":12000}`,
	} {
		c, rec := newJSONContext(t, http.MethodPut, "/api/goals", body)
		asCompanyAdmin(c, company.ID, owner.ID)
		require.NoError(t, handler.UpsertGoal(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// THEN: one row per (company, year, month), carrying the latest target
	var goals []model.MonthlyGoal
	require.NoError(t, db.Where("company_id = ?", company.ID).Find(&goals).Error)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Target.Equal(decimal.NewFromInt(12000)),
		"latest target should win, got %s", goals[0].Target)
}

func TestUpsertGoal_DistinctMonthsCoexist(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	for _, body := range []string{
		`{"year":2025,"month":6,"target":10000}`,
		`{"year":2025,"month":7,"target":11000}`,
	} {
		c, rec := newJSONContext(t, http.MethodPut, "/api/goals", body)
		asCompanyAdmin(c, company.ID, owner.ID)
		require.NoError(t, handler.UpsertGoal(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var count int64
	require.NoError(t, db.Model(&model.MonthlyGoal{}).Where("company_id = ?", company.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
