package handler_test

import (
	"net/http"
	"testing"

	"goaltrack-service/internal/goal"
	"goaltrack-service/internal/handler"
	"goaltrack-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWorkingDays_SingleRowPerCompany(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	// WHEN: saving the configuration twice
	for _, body := range []string{
		`{"weekdays":[0,1,2,3,4]}`,
		`{"weekdays":[0,2,4]}`,
	} {
		c, rec := newJSONContext(t, http.MethodPut, "/api/settings/working-days", body)
		asCompanyAdmin(c, company.ID, owner.ID)
		require.NoError(t, handler.SaveWorkingDays(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// THEN: one config row holding the latest set
	var configs []model.WorkingDayConfig
	require.NoError(t, db.Where("company_id = ?", company.ID).Find(&configs).Error)
	require.Len(t, configs, 1)

	weekdays, err := goal.ParseWeekdays(configs[0].Weekdays)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, weekdays)
}

func TestUpsertHoliday_SameDateRelabels(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	for _, body := range []string{
		`{"date":"2025-12-25","label":"Festa"}`,
		`{"date":"2025-12-25","label":"Natal"}`,
	} {
		c, rec := newJSONContext(t, http.MethodPut, "/api/settings/holidays", body)
		asCompanyAdmin(c, company.ID, owner.ID)
		require.NoError(t, handler.UpsertHoliday(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var holidays []model.Holiday
	require.NoError(t, db.Where("company_id = ?", company.ID).Find(&holidays).Error)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Natal", holidays[0].Label)
}

func TestDeleteHoliday_RemovesTheDate(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	c, rec := newJSONContext(t, http.MethodPut, "/api/settings/holidays", `{"date":"2025-12-25","label":"Natal"}`)
	asCompanyAdmin(c, company.ID, owner.ID)
	require.NoError(t, handler.UpsertHoliday(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(t, http.MethodDelete, "/api/settings/holidays/2025-12-25", "")
	asCompanyAdmin(c, company.ID, owner.ID)
	c.SetParamNames("date")
	c.SetParamValues("2025-12-25")
	require.NoError(t, handler.DeleteHoliday(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Holiday{}).Where("company_id = ?", company.ID).Count(&count).Error)
	assert.Zero(t, count)
}
