package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var allPermissions = []string{
	"graph.sync",
	"graph.view",
	"drift.view",
	"drift.override",
	"drift.revert",
	"drift.approve",
	"golden.view",
	"golden.export",
	"golden.publish",
	"governance.view",
	"governance.update",
	"doc.edit",
	"audit.view",
}

// defaultPermissionsForRole fills in grants when the token carries none.
// Governance rules still apply on top: a grant only opens the route.
func defaultPermissionsForRole(role string) []string {
	switch role {
	case "admin":
		return allPermissions
	case "risk":
		return []string{
			"graph.sync", "graph.view", "drift.view", "drift.override",
			"drift.approve", "golden.view", "golden.export", "governance.view", "audit.view",
		}
	case "credit":
		return []string{
			"graph.view", "drift.view", "drift.approve", "golden.view",
			"golden.export", "governance.view", "audit.view",
		}
	case "legal":
		return []string{
			"graph.sync", "graph.view", "drift.view", "drift.revert",
			"golden.view", "golden.export", "governance.view", "doc.edit", "audit.view",
		}
	case "counsel":
		return []string{"graph.view", "drift.view", "golden.view", "governance.view"}
	default:
		return []string{"graph.sync", "graph.view", "drift.view", "golden.view", "doc.edit"}
	}
}

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		token := strings.Split(authHeader, " ")[1]
		app := c.(*AppContext).App

		// Master API Key bypass
		if app.MasterAPIKey != "" && app.MasterUserID != 0 && app.MasterUserRole != "" && token == app.MasterAPIKey {
			c.(*AppContext).User = &AppUser{
				UserID:      app.MasterUserID,
				Name:        "master",
				Role:        app.MasterUserRole,
				Permissions: allPermissions,
			}
			return next(c)
		}

		k := *app.Key
		parsed, err := jwt.Parse(token, k.Keyfunc)
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		var userID int64
		if idClaim, ok := claims["id"].(string); ok {
			userID, err = strconv.ParseInt(idClaim, 10, 64)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user ID"})
			}
		} else if idFloat, ok := claims["id"].(float64); ok {
			userID = int64(idFloat)
		} else {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user ID"})
		}

		name := ""
		if nameClaim, ok := claims["name"].(string); ok {
			name = nameClaim
		}

		role := "user"
		if roleClaim, ok := claims["role"].(string); ok {
			role = roleClaim
		}

		var permissions []string
		if permsClaim, ok := claims["permissions"].([]any); ok {
			for _, p := range permsClaim {
				if pStr, ok := p.(string); ok {
					permissions = append(permissions, pStr)
				}
			}
		}

		if len(permissions) == 0 {
			permissions = defaultPermissionsForRole(role)
		}

		c.(*AppContext).User = &AppUser{
			UserID:      userID,
			Name:        name,
			Role:        role,
			Permissions: permissions,
		}

		return next(c)
	}
}
