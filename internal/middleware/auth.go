package middleware

import (
	"backend/internal/model"
	"backend/pkg/response"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractClaims parses the JWT from cookie or Authorization header.
func extractClaims(c *gin.Context) (jwt.MapClaims, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil, false
	}
	return claims, true
}

// RequireAuth validates the JWT and stashes the user identity in the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}

		c.Set("userID", claims["sub"])
		if super, ok := claims["super"].(bool); ok {
			c.Set("isSuperAdmin", super)
		}
		c.Next()
	}
}

// RequireSuperAdmin restricts a route to the platform super admin.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}

		super, _ := claims["super"].(bool)
		if !super {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Super admin access required"))
			return
		}

		c.Set("userID", claims["sub"])
		c.Set("isSuperAdmin", true)
		c.Next()
	}
}

// --- Tenant membership middleware ---

// memberCacheEntry stores a cached membership lookup with TTL
type memberCacheEntry struct {
	role      string
	teamID    *uuid.UUID
	expiresAt time.Time
}

var (
	memberCache    sync.Map // "userID:tenantID" -> memberCacheEntry
	memberCacheTTL = 5 * time.Minute
)

// authDB holds the database reference for membership queries — set via InitAuthMiddleware
var authDB *gorm.DB

// InitAuthMiddleware sets the DB reference for RequireTenant middleware
func InitAuthMiddleware(db *gorm.DB) {
	authDB = db
}

func lookupMembership(userID, tenantID string) (string, *uuid.UUID, error) {
	key := userID + ":" + tenantID
	if entry, ok := memberCache.Load(key); ok {
		cached := entry.(memberCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.role, cached.teamID, nil
		}
	}

	if authDB == nil {
		return "", nil, fmt.Errorf("auth middleware not initialized")
	}

	var member model.TenantMember
	if err := authDB.First(&member, "user_id = ? AND tenant_id = ?", userID, tenantID).Error; err != nil {
		return "", nil, err
	}

	memberCache.Store(key, memberCacheEntry{
		role:      member.Role,
		teamID:    member.TeamID,
		expiresAt: time.Now().Add(memberCacheTTL),
	})
	return member.Role, member.TeamID, nil
}

// ClearMembershipCache removes cached memberships for a user (or all if empty)
func ClearMembershipCache(userID string) {
	memberCache.Range(func(key, _ interface{}) bool {
		if userID == "" || strings.HasPrefix(key.(string), userID+":") {
			memberCache.Delete(key)
		}
		return true
	})
}

// CanAccessTenant reports whether the user may observe a tenant's data. Super
// admins pass unconditionally; everyone else needs a membership row. Used by
// the websocket endpoint, which cannot run the gin middleware chain.
func CanAccessTenant(userID string, superAdmin bool, tenantID uuid.UUID) bool {
	if superAdmin {
		return true
	}
	if userID == "" {
		return false
	}
	_, _, err := lookupMembership(userID, tenantID.String())
	return err == nil
}

// RequireTenant validates the JWT, resolves the tenant from the X-Tenant-ID
// header, and checks that the user is a member with one of the allowed roles.
// A super admin passes regardless of membership. An inactive tenant rejects
// all traffic.
func RequireTenant(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}

		userID, _ := claims["sub"].(string)
		tenantIDStr := c.GetHeader("X-Tenant-ID")
		if tenantIDStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "X-Tenant-ID header is required"))
			return
		}
		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid tenant id"))
			return
		}

		if authDB == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Auth middleware not initialized"))
			return
		}
		var tenant model.Tenant
		if err := authDB.First(&tenant, "id = ?", tenantID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Tenant not found"))
			return
		}
		if !tenant.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Tenant is deactivated"))
			return
		}

		c.Set("userID", userID)
		c.Set("tenantID", tenantID)

		if super, _ := claims["super"].(bool); super {
			c.Set("isSuperAdmin", true)
			c.Set("tenantRole", model.RoleAdmin)
			c.Next()
			return
		}

		role, teamID, err := lookupMembership(userID, tenantIDStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Not a member of this tenant"))
			return
		}

		if len(allowedRoles) > 0 {
			roleAllowed := false
			for _, allowed := range allowedRoles {
				if role == allowed {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
				return
			}
		}

		c.Set("tenantRole", role)
		if teamID != nil {
			c.Set("teamID", *teamID)
		}
		c.Next()
	}
}

// TenantID returns the tenant id resolved by RequireTenant.
func TenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("tenantID"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// UserID returns the authenticated user id as a string.
func UserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
