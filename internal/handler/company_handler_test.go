package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/handler"
	"goaltrack-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCompany_DeactivatedCompanyRefused(t *testing.T) {
	db := setupTestDB(t)

	user := model.User{Email: "owner@acme.test", Password: "secret"}
	require.NoError(t, db.Create(&user).Error)

	company := model.Company{Name: "Acme", OwnerID: user.ID, Active: false}
	require.NoError(t, db.Create(&company).Error)

	membership := model.Membership{
		CompanyID: company.ID,
		UserID:    user.ID,
		Role:      string(access.RoleAdmin),
		Screens:   access.SerializeScreens(access.AllScreens()),
	}
	require.NoError(t, db.Create(&membership).Error)

	body := fmt.Sprintf(`{"company_id":%d}`, company.ID)
	c, rec := newJSONContext(t, http.MethodPost, "/api/companies/select", body)
	c.Set("user_id", user.ID)
	c.Set("email", user.Email)

	require.NoError(t, handler.SelectCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSelectCompany_MemberReceivesScopedToken(t *testing.T) {
	db := setupTestDB(t)
	owner, company := seedCompany(t, db)

	membership := model.Membership{
		CompanyID: company.ID,
		UserID:    owner.ID,
		Role:      string(access.RoleAdmin),
		Screens:   access.SerializeScreens(access.AllScreens()),
	}
	require.NoError(t, db.Create(&membership).Error)

	body := fmt.Sprintf(`{"company_id":%d}`, company.ID)
	c, rec := newJSONContext(t, http.MethodPost, "/api/companies/select", body)
	c.Set("user_id", owner.ID)
	c.Set("email", owner.Email)

	require.NoError(t, handler.SelectCompany(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestSelectCompany_NonMemberRefused(t *testing.T) {
	db := setupTestDB(t)
	_, company := seedCompany(t, db)

	outsider := model.User{Email: "outsider@other.test", Password: "secret"}
	require.NoError(t, db.Create(&outsider).Error)

	body := fmt.Sprintf(`{"company_id":%d}`, company.ID)
	c, rec := newJSONContext(t, http.MethodPost, "/api/companies/select", body)
	c.Set("user_id", outsider.ID)
	c.Set("email", outsider.Email)

	require.NoError(t, handler.SelectCompany(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
