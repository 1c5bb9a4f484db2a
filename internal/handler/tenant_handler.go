package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TenantHandler struct {
	tenantService service.TenantService
}

func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Provisioning is the super admin's surface.
	admin := router.Group("/admin/tenants")
	admin.Use(middleware.RequireSuperAdmin())
	{
		admin.POST("", h.Provision)
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.POST("/:id/deactivate", h.Deactivate)
		admin.DELETE("/:id", h.Delete)
	}

	// Membership management belongs to the tenant's own admin.
	members := router.Group("/members")
	members.Use(middleware.RequireTenant(model.RoleAdmin))
	{
		members.GET("", h.ListMembers)
		members.POST("", h.AddMember)
		members.DELETE("/:userId", h.RemoveMember)
	}
}

func parseTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid tenant id"))
		return uuid.Nil, false
	}
	return id, true
}

// Provision handles POST /admin/tenants
// @Summary      Provision tenant
// @Description  Creates a tenant and optionally seats its first admin
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTenantRequest  true  "Tenant"
// @Success      201      {object}  response.Response{data=model.Tenant}
// @Failure      403      {object}  response.Response
// @Router       /admin/tenants [post]
func (h *TenantHandler) Provision(c *gin.Context) {
	var req service.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	tenant, err := h.tenantService.Provision(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}

// List handles GET /admin/tenants
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Tenant}
// @Router       /admin/tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenantService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenants))
}

// Get handles GET /admin/tenants/:id
// @Summary      Get tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=model.Tenant}
// @Failure      404  {object}  response.Response
// @Router       /admin/tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// Deactivate handles POST /admin/tenants/:id/deactivate
// @Summary      Deactivate tenant
// @Description  Soft-disables a tenant; its members lose access but data is kept
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=model.Tenant}
// @Failure      409  {object}  response.Response
// @Router       /admin/tenants/{id}/deactivate [post]
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.Deactivate(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// Delete handles DELETE /admin/tenants/:id
// @Summary      Delete tenant
// @Description  Permanently removes a tenant and all of its data
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response
// @Router       /admin/tenants/{id} [delete]
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := parseTenantID(c)
	if !ok {
		return
	}
	if err := h.tenantService.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Tenant deleted"))
}

// ListMembers handles GET /members
// @Summary      List tenant members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=[]model.TenantMember}
// @Router       /members [get]
func (h *TenantHandler) ListMembers(c *gin.Context) {
	members, err := h.tenantService.ListMembers(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, members))
}

// AddMember handles POST /members
// @Summary      Add tenant member
// @Description  Grants an existing user a role in the tenant
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                    true  "Tenant ID"
// @Param        payload      body      service.AddMemberRequest  true  "Member"
// @Success      201          {object}  response.Response{data=model.TenantMember}
// @Failure      409          {object}  response.Response
// @Router       /members [post]
func (h *TenantHandler) AddMember(c *gin.Context) {
	var req service.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	member, err := h.tenantService.AddMember(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, member))
}

// RemoveMember handles DELETE /members/:userId
// @Summary      Remove tenant member
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        userId       path      string  true  "User ID"
// @Success      200          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /members/{userId} [delete]
func (h *TenantHandler) RemoveMember(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}
	if err := h.tenantService.RemoveMember(c.Request.Context(), middleware.TenantID(c), userID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	middleware.ClearMembershipCache(userID.String())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member removed"))
}
