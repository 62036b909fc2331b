package handler

import (
	"net/http"
	"time"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/jwtutil"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateCompany handles company creation. The creator becomes an admin of
// the new company with the full screen set.
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("create")

	// Get user ID from context (set by AuthMiddleware)
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("unauthorized_company_creation")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	// Parse request
	var req struct {
		Name string `json:"name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse company creation request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid company data", zap.String("name", req.Name))
		prometheus.RecordAuthError("incomplete_company_creation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	// Track DB operations
	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Begin transaction
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		prometheus.RecordAuthError("database_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Create company
	company := model.Company{
		Name:    req.Name,
		OwnerID: userID,
		Active:  true,
	}

	if result := tx.Create(&company); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create company", zap.Error(result.Error))
		prometheus.RecordAuthError("company_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	// Creator becomes admin with every screen permitted
	membership := model.Membership{
		UserID:    userID,
		CompanyID: company.ID,
		Role:      string(access.RoleAdmin),
		Screens:   access.SerializeScreens(access.AllScreens()),
	}

	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create membership", zap.Error(result.Error))
		prometheus.RecordAuthError("membership_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "membership creation failed"})
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		prometheus.RecordAuthError("transaction_commit_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction commit failed"})
	}

	log.Info("Company created",
		zap.String("name", company.Name),
		zap.Uint("id", company.ID),
		zap.Uint("owner_id", company.OwnerID))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Company created successfully",
		"company": company,
	})
}

// ListUserCompanies retrieves all companies the authenticated user belongs to
func ListUserCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("list")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("unauthorized_company_listing")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	if result := database.GetDB().Preload("Company").Where("user_id = ?", userID).Find(&memberships); result.Error != nil {
		log.Error("Failed to retrieve user's companies", zap.Error(result.Error))
		prometheus.RecordAuthError("company_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve companies"})
	}

	type CompanyResponse struct {
		ID        uint      `json:"id"`
		Name      string    `json:"name"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"created_at"`
	}

	response := make([]CompanyResponse, 0, len(memberships))
	for _, m := range memberships {
		response = append(response, CompanyResponse{
			ID:        m.Company.ID,
			Name:      m.Company.Name,
			Role:      m.Role,
			CreatedAt: m.Company.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"companies": response})
}

// SelectCompany verifies membership and issues a company-scoped token
func SelectCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("select")

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		prometheus.RecordAuthError("unauthorized_company_selection")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	email, _ := c.Get("email").(string)

	var req struct {
		CompanyID uint `json:"company_id"`
	}

	if err := c.Bind(&req); err != nil || req.CompanyID == 0 {
		log.Error("Failed to parse company selection request")
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var membership model.Membership
	result := database.GetDB().Where("company_id = ? AND user_id = ?", req.CompanyID, userID).First(&membership)
	if result.Error != nil {
		log.Warn("User does not belong to the requested company",
			zap.Uint("user_id", userID),
			zap.Uint("company_id", req.CompanyID))
		prometheus.RecordAccessDenied("not_a_member")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the specified company"})
	}

	var company model.Company
	if result := database.GetDB().First(&company, req.CompanyID); result.Error != nil {
		log.Error("Company not found", zap.Uint("company_id", req.CompanyID))
		prometheus.RecordAuthError("company_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	if !company.Active {
		log.Warn("Deactivated company selection refused",
			zap.Uint("user_id", userID),
			zap.Uint("company_id", company.ID))
		prometheus.RecordAccessDenied("company_inactive")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "company is deactivated"})
	}

	token, err := jwtutil.GenerateTokenWithCompany(email, userID, &company.ID, company.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Company selected",
		zap.Uint("user_id", userID),
		zap.Uint("company_id", company.ID),
		zap.String("role", membership.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"company": map[string]interface{}{
			"id":   company.ID,
			"name": company.Name,
			"role": membership.Role,
		},
	})
}

// RenameCompany updates the active company's display name. Admin only.
func RenameCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("rename")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Rename refused", zap.String("role", string(role)), zap.Uint("company_id", companyID))
		prometheus.RecordAccessDenied("rename_company")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can rename the company"})
	}

	var req struct {
		Name string `json:"name"`
	}

	if err := c.Bind(&req); err != nil || req.Name == "" {
		log.Error("Invalid rename request")
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if result := database.GetDB().Model(&model.Company{}).Where("id = ?", companyID).Update("name", req.Name); result.Error != nil {
		log.Error("Failed to rename company", zap.Error(result.Error))
		prometheus.RecordAuthError("company_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to rename company"})
	}

	log.Info("Company renamed", zap.Uint("company_id", companyID), zap.String("name", req.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "Company renamed successfully"})
}
