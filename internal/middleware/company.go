package middleware

import (
	"net/http"

	"goaltrack-service/internal/access"
	"goaltrack-service/internal/model"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireCompanyContext ensures the request carries a selected company and
// that the user is still a member of it. The membership row is reloaded
// from storage on every request so role or permission changes apply
// immediately; the parsed role and screen set are stored in the context.
func RequireCompanyContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		userID, ok := c.Get("user_id").(uint)
		if !ok {
			log.Error("Failed to get user ID from context")
			prometheus.RecordAuthError("missing_user_context")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		companyID, ok := c.Get("company_id").(uint)
		if !ok {
			log.Error("Request requires a selected company", zap.Uint("user_id", userID))
			prometheus.RecordAuthError("missing_company_context")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no company selected"})
		}

		var membership model.Membership
		result := database.GetDB().Where("company_id = ? AND user_id = ?", companyID, userID).First(&membership)
		if result.Error != nil {
			log.Warn("User is not a member of the selected company",
				zap.Uint("user_id", userID),
				zap.Uint("company_id", companyID))
			prometheus.RecordAccessDenied("not_a_member")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}

		role, err := access.ParseRole(membership.Role)
		if err != nil {
			log.Error("Membership carries an invalid role",
				zap.Uint("user_id", userID),
				zap.Uint("company_id", companyID),
				zap.String("role", membership.Role))
			prometheus.RecordAccessDenied("invalid_role")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}

		screens, err := access.ParseScreens(membership.Screens)
		if err != nil {
			log.Error("Membership carries an invalid screen set",
				zap.Uint("user_id", userID),
				zap.Uint("company_id", companyID),
				zap.Error(err))
			prometheus.RecordAccessDenied("invalid_screens")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}

		c.Set("role", role)
		c.Set("screens", screens)

		return next(c)
	}
}

// RequireScreen gates a handler behind screen navigation permission. Admins
// always pass; for everyone else the membership's stored screen set is
// binding, even on direct requests.
func RequireScreen(screen access.Screen) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			role, _ := c.Get("role").(access.Role)
			screens, _ := c.Get("screens").(access.ScreenSet)

			if !access.CanNavigate(role, screens, screen) {
				log.Warn("Screen navigation refused",
					zap.String("screen", string(screen)),
					zap.String("role", string(role)))
				prometheus.RecordAccessDenied("screen_not_permitted")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have access to this screen"})
			}

			return next(c)
		}
	}
}
