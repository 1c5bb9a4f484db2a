package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Tenant admins see their own trail; the super admin sees everything.
	router.GET("/audit-logs", middleware.RequireTenant(model.RoleAdmin), h.GetAuditLogs)
	router.GET("/admin/audit-logs", middleware.RequireSuperAdmin(), h.GetAllAuditLogs)
}

// GetAuditLogs retrieves the tenant's audit trail
// @Summary      Get tenant audit logs
// @Description  Paginated audit trail scoped to the requesting tenant
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	tenantID := middleware.TenantID(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), &tenantID, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// GetAllAuditLogs retrieves the cross-tenant trail for the super admin
// @Summary      Get all audit logs
// @Description  Cross-tenant audit trail, optionally filtered by tenant id
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        tenant_id  query     string  false  "Tenant ID filter"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /admin/audit-logs [get]
func (h *AuditHandler) GetAllAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)

	var tenantID *uuid.UUID
	if filter := c.Query("tenant_id"); filter != "" {
		parsed, err := uuid.Parse(filter)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid tenant id"))
			return
		}
		tenantID = &parsed
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), tenantID, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}
