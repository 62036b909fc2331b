package handler

import (
	"net/http"
	"strconv"
	"time"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListMembers returns the team of the active company with each member's
// email, role and permitted screens
func ListMembers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("members", "list")

	companyID, _ := c.Get("company_id").(uint)

	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	if result := database.GetDB().Preload("User").Where("company_id = ?", companyID).Find(&memberships); result.Error != nil {
		log.Error("Failed to retrieve members", zap.Error(result.Error))
		prometheus.RecordAuthError("member_retrieval_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve members"})
	}

	type MemberResponse struct {
		UserID  uint     `json:"user_id"`
		Email   string   `json:"email"`
		Role    string   `json:"role"`
		Screens []string `json:"screens"`
	}

	response := make([]MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		screens, err := access.ParseScreens(m.Screens)
		if err != nil {
			// Stored value predates validation; report it as empty rather than failing the listing
			log.Warn("Member has an invalid stored screen set",
				zap.Uint("user_id", m.UserID),
				zap.Error(err))
			screens = access.ScreenSet{}
		}
		response = append(response, MemberResponse{
			UserID:  m.UserID,
			Email:   m.User.Email,
			Role:    m.Role,
			Screens: screens.Names(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"members": response})
}

// AddMember adds an existing account to the team by email. The email must
// resolve to a registered user; otherwise the operation fails with
// not-found and no membership is created. New members start as viewers with
// Dashboard access only.
func AddMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("members", "add")

	companyID, _ := c.Get("company_id").(uint)
	role, _ := c.Get("role").(access.Role)

	if !role.CanManageCompany() {
		log.Warn("Add member refused", zap.String("role", string(role)))
		prometheus.RecordAccessDenied("add_member")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only administrators can manage the team"})
	}

	var req struct {
		Email string `json:"email"`
	}

	if err := c.Bind(&req); err != nil || req.Email == "" {
		log.Error("Invalid add member request")
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	// Resolve the email to an existing account
	var user model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Warn("Email does not resolve to an account", zap.String("email", req.Email))
		prometheus.RecordAuthError("member_email_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no account found for this email; ask the user to register first"})
	}

	// Refuse duplicates
	var existing model.Membership
	if result := database.GetDB().Where("company_id = ? AND user_id = ?", companyID, user.ID).First(&existing); result.Error == nil {
		log.Warn("User is already a member",
			zap.Uint("user_id", user.ID),
			zap.Uint("company_id", companyID))
		prometheus.RecordAuthError("member_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "user is already on the team"})
	}

	membership := model.Membership{
		CompanyID: companyID,
		UserID:    user.ID,
		Role:      string(access.RoleViewer),
		Screens:   access.SerializeScreens(access.ScreenSet{access.ScreenDashboard: {}}),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&membership); result.Error != nil {
		log.Error("Failed to create membership", zap.Error(result.Error))
		prometheus.RecordAuthError("membership_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add member"})
	}

	log.Info("Member added",
		zap.Uint("company_id", companyID),
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Member added successfully",
		"member": map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    membership.Role,
		},
	})
}

// UpdateMember changes another member's role and/or permitted screens.
// Admin only, and never applicable to the actor's own membership.
func UpdateMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("members", "update")

	companyID, _ := c.Get("company_id").(uint)
	actorID, _ := c.Get("user_id").(uint)
	role, _ := c.Get("role").(access.Role)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		prometheus.RecordAuthError("invalid_user_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	if !access.CanModifyMember(role, actorID, uint(targetID)) {
		reason := "update_member"
		if actorID == uint(targetID) {
			reason = "self_modification"
		}
		log.Warn("Member update refused",
			zap.String("role", string(role)),
			zap.Uint("actor_id", actorID),
			zap.Uint64("target_id", targetID))
		prometheus.RecordAccessDenied(reason)
		return c.JSON(http.StatusForbidden, echo.Map{"error": "operation not permitted"})
	}

	var req struct {
		Role    *string  `json:"role,omitempty"`
		Screens []string `json:"screens,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member update request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var membership model.Membership
	if result := database.GetDB().Where("company_id = ? AND user_id = ?", companyID, targetID).First(&membership); result.Error != nil {
		log.Error("Membership not found",
			zap.Uint("company_id", companyID),
			zap.Uint64("user_id", targetID))
		prometheus.RecordAuthError("membership_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	updates := map[string]interface{}{}

	if req.Role != nil {
		newRole, err := access.ParseRole(*req.Role)
		if err != nil {
			log.Error("Invalid role in member update", zap.String("role", *req.Role))
			prometheus.RecordAuthError("invalid_role")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		updates["role"] = string(newRole)
	}

	if req.Screens != nil {
		set := access.ScreenSet{}
		for _, name := range req.Screens {
			screen, err := access.ParseScreen(name)
			if err != nil {
				log.Error("Invalid screen in member update", zap.String("screen", name))
				prometheus.RecordAuthError("invalid_screen")
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screen name"})
			}
			set[screen] = struct{}{}
		}
		updates["screens"] = access.SerializeScreens(set)
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&membership).Updates(updates); result.Error != nil {
		log.Error("Failed to update membership", zap.Error(result.Error))
		prometheus.RecordAuthError("membership_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update member"})
	}

	log.Info("Member updated",
		zap.Uint("company_id", companyID),
		zap.Uint64("user_id", targetID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Member updated successfully"})
}

// RemoveMember deletes a membership outright, freeing the (company, user)
// key so the user can be invited again later. Admin only; an admin can
// never remove their own membership.
func RemoveMember(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("members", "remove")

	companyID, _ := c.Get("company_id").(uint)
	actorID, _ := c.Get("user_id").(uint)
	role, _ := c.Get("role").(access.Role)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		log.Error("Invalid user ID", zap.Error(err))
		prometheus.RecordAuthError("invalid_user_id")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	if !access.CanModifyMember(role, actorID, uint(targetID)) {
		reason := "remove_member"
		if actorID == uint(targetID) {
			reason = "self_removal"
		}
		log.Warn("Member removal refused",
			zap.String("role", string(role)),
			zap.Uint("actor_id", actorID),
			zap.Uint64("target_id", targetID))
		prometheus.RecordAccessDenied(reason)
		return c.JSON(http.StatusForbidden, echo.Map{"error": "operation not permitted"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Where("company_id = ? AND user_id = ?", companyID, targetID).Delete(&model.Membership{})
	if result.Error != nil {
		log.Error("Failed to remove member", zap.Error(result.Error))
		prometheus.RecordAuthError("membership_delete_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove member"})
	}
	if result.RowsAffected == 0 {
		log.Warn("Membership not found for removal",
			zap.Uint("company_id", companyID),
			zap.Uint64("user_id", targetID))
		prometheus.RecordAuthError("membership_not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	log.Info("Member removed",
		zap.Uint("company_id", companyID),
		zap.Uint64("user_id", targetID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Member removed successfully"})
}
