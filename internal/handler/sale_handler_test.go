package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"goaltrack-service/internal/handler"
	"goaltrack-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSale_SameDateKeepsLatestAmount(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	today := time.Now().UTC().Format("2006-01-02")

	// WHEN: saving the same date twice with different amounts
	for _, amount := range []string{"100.00", "250.50"} {
		body := fmt.Sprintf(`{"date":%q,"amount":%s}`, today, amount)
		c, rec := newJSONContext(t, http.MethodPut, "/api/sales", body)
		asCompanyAdmin(c, company.ID, owner.ID)
		require.NoError(t, handler.UpsertSale(c))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// THEN: exactly one record exists and the latest amount won
	var sales []model.DailySale
	require.NoError(t, db.Where("company_id = ?", company.ID).Find(&sales).Error)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Amount.Equal(decimal.RequireFromString("250.50")),
		"latest amount should win, got %s", sales[0].Amount)
}

func TestUpsertSale_FutureDateRefused(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	body := fmt.Sprintf(`{"date":%q,"amount":100}`, tomorrow)

	c, rec := newJSONContext(t, http.MethodPut, "/api/sales", body)
	asCompanyAdmin(c, company.ID, owner.ID)
	require.NoError(t, handler.UpsertSale(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.DailySale{}).Where("company_id = ?", company.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteSale_RemovesTheRecord(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	today := time.Now().UTC().Format("2006-01-02")
	body := fmt.Sprintf(`{"date":%q,"amount":100}`, today)
	c, rec := newJSONContext(t, http.MethodPut, "/api/sales", body)
	asCompanyAdmin(c, company.ID, owner.ID)
	require.NoError(t, handler.UpsertSale(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(t, http.MethodDelete, "/api/sales/"+today, "")
	asCompanyAdmin(c, company.ID, owner.ID)
	c.SetParamNames("date")
	c.SetParamValues(today)
	require.NoError(t, handler.DeleteSale(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.DailySale{}).Where("company_id = ?", company.ID).Count(&count).Error)
	assert.Zero(t, count)
}
