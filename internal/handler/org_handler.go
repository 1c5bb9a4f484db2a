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

type OrgHandler struct {
	orgService service.OrgService
}

func NewOrgHandler(orgService service.OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

func (h *OrgHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireTenant(model.RoleAdmin)
	anyMember := middleware.RequireTenant()

	divisions := router.Group("/divisions")
	{
		divisions.GET("", anyMember, h.ListDivisions)
		divisions.POST("", admin, h.CreateDivision)
		divisions.PUT("/:id", admin, h.UpdateDivision)
		divisions.DELETE("/:id", admin, h.DeleteDivision)
	}

	teams := router.Group("/teams")
	{
		teams.GET("", anyMember, h.ListTeams)
		teams.POST("", admin, h.CreateTeam)
		teams.PUT("/:id", admin, h.UpdateTeam)
		teams.DELETE("/:id", admin, h.DeleteTeam)
	}
}

func parseOrgID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// ListDivisions handles GET /divisions
// @Summary      List divisions
// @Tags         org
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=[]model.Division}
// @Router       /divisions [get]
func (h *OrgHandler) ListDivisions(c *gin.Context) {
	divisions, err := h.orgService.ListDivisions(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, divisions))
}

// CreateDivision handles POST /divisions
// @Summary      Create division
// @Tags         org
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        payload      body      service.DivisionRequest  true  "Division"
// @Success      201          {object}  response.Response{data=model.Division}
// @Failure      409          {object}  response.Response
// @Router       /divisions [post]
func (h *OrgHandler) CreateDivision(c *gin.Context) {
	var req service.DivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	division, err := h.orgService.CreateDivision(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, division))
}

// UpdateDivision handles PUT /divisions/:id
// @Summary      Update division
// @Tags         org
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        id           path      string                   true  "Division ID"
// @Param        payload      body      service.DivisionRequest  true  "Division"
// @Success      200          {object}  response.Response{data=model.Division}
// @Failure      404          {object}  response.Response
// @Router       /divisions/{id} [put]
func (h *OrgHandler) UpdateDivision(c *gin.Context) {
	id, ok := parseOrgID(c)
	if !ok {
		return
	}
	var req service.DivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	division, err := h.orgService.UpdateDivision(c.Request.Context(), middleware.TenantID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, division))
}

// DeleteDivision handles DELETE /divisions/:id
// @Summary      Delete division
// @Tags         org
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      string  true  "Division ID"
// @Success      200          {object}  response.Response
// @Router       /divisions/{id} [delete]
func (h *OrgHandler) DeleteDivision(c *gin.Context) {
	id, ok := parseOrgID(c)
	if !ok {
		return
	}
	if err := h.orgService.DeleteDivision(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Division deleted"))
}

// ListTeams handles GET /teams
// @Summary      List teams
// @Description  All teams in the tenant, optionally filtered by division
// @Tags         org
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        division_id  query     string  false  "Division ID filter"
// @Success      200          {object}  response.Response{data=[]model.Team}
// @Router       /teams [get]
func (h *OrgHandler) ListTeams(c *gin.Context) {
	var divisionID *uuid.UUID
	if filter := c.Query("division_id"); filter != "" {
		parsed, err := uuid.Parse(filter)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid division id"))
			return
		}
		divisionID = &parsed
	}
	teams, err := h.orgService.ListTeams(c.Request.Context(), middleware.TenantID(c), divisionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, teams))
}

// CreateTeam handles POST /teams
// @Summary      Create team
// @Tags         org
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string               true  "Tenant ID"
// @Param        payload      body      service.TeamRequest  true  "Team"
// @Success      201          {object}  response.Response{data=model.Team}
// @Router       /teams [post]
func (h *OrgHandler) CreateTeam(c *gin.Context) {
	var req service.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	team, err := h.orgService.CreateTeam(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, team))
}

// UpdateTeam handles PUT /teams/:id
// @Summary      Update team
// @Tags         org
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string               true  "Tenant ID"
// @Param        id           path      string               true  "Team ID"
// @Param        payload      body      service.TeamRequest  true  "Team"
// @Success      200          {object}  response.Response{data=model.Team}
// @Failure      404          {object}  response.Response
// @Router       /teams/{id} [put]
func (h *OrgHandler) UpdateTeam(c *gin.Context) {
	id, ok := parseOrgID(c)
	if !ok {
		return
	}
	var req service.TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	team, err := h.orgService.UpdateTeam(c.Request.Context(), middleware.TenantID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, team))
}

// DeleteTeam handles DELETE /teams/:id
// @Summary      Delete team
// @Tags         org
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      string  true  "Team ID"
// @Success      200          {object}  response.Response
// @Router       /teams/{id} [delete]
func (h *OrgHandler) DeleteTeam(c *gin.Context) {
	id, ok := parseOrgID(c)
	if !ok {
		return
	}
	if err := h.orgService.DeleteTeam(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Team deleted"))
}
