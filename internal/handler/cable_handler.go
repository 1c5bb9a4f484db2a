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

type CableHandler struct {
	cableService service.CableService
}

func NewCableHandler(cableService service.CableService) *CableHandler {
	return &CableHandler{cableService: cableService}
}

func (h *CableHandler) RegisterRoutes(router *gin.RouterGroup) {
	office := middleware.RequireTenant(model.RoleAdmin, model.RoleOffice)
	field := middleware.RequireTenant(model.RoleAdmin, model.RoleOffice, model.RoleField)
	anyMember := middleware.RequireTenant()

	cables := router.Group("/cables")
	{
		cables.GET("", anyMember, h.List)
		cables.GET("/:id", anyMember, h.Get)
		cables.GET("/:id/logs", anyMember, h.GetLogs)
		cables.POST("", office, h.Create)
		cables.POST("/bulk", office, h.CreateBulk)
		cables.PUT("/:id", office, h.Update)
		cables.DELETE("/:id", office, h.Delete)
		cables.POST("/bulk-delete", office, h.BulkDelete)
	}

	// usage and return come from the field; assign and waste are office calls,
	// enforced by the lifecycle rules rather than the route. Lives outside the
	// /cables POST tree so the :id wildcard never collides with /bulk.
	router.POST("/cable-actions/:id", field, h.ApplyAction)

	// tenant-wide log feed lives beside /cables: a /cables/logs route would
	// collide with the :id wildcard
	logs := router.Group("/cable-logs")
	{
		logs.GET("", anyMember, h.ListAllLogs)
		logs.POST("/bulk-delete", office, h.BulkDeleteLogs)
	}
}

func parseCableID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid drum id"))
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /cables
// @Summary      Register drum
// @Description  Registers a cable drum and writes its receive log in one transaction
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                true  "Tenant ID"
// @Param        payload      body      service.CableRequest  true  "Drum"
// @Success      201          {object}  response.Response{data=model.OpticalCable}
// @Failure      400          {object}  response.Response
// @Router       /cables [post]
func (h *CableHandler) Create(c *gin.Context) {
	var req service.CableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	cable, err := h.cableService.CreateCable(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cable))
}

// CreateBulk handles POST /cables/bulk
// @Summary      Register drums in bulk
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                  true  "Tenant ID"
// @Param        payload      body      []service.CableRequest  true  "Drums"
// @Success      201          {object}  response.Response{data=[]model.OpticalCable}
// @Router       /cables/bulk [post]
func (h *CableHandler) CreateBulk(c *gin.Context) {
	var reqs []service.CableRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	cables, err := h.cableService.CreateCablesBulk(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cables))
}

// List handles GET /cables
// @Summary      List drums
// @Tags         cables
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        with_logs    query     bool    false  "Preload lifecycle logs"
// @Success      200          {object}  response.Response{data=[]model.OpticalCable}
// @Router       /cables [get]
func (h *CableHandler) List(c *gin.Context) {
	withLogs := c.Query("with_logs") == "true"
	cables, err := h.cableService.ListCables(c.Request.Context(), middleware.TenantID(c), withLogs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cables))
}

// Get handles GET /cables/:id
// @Summary      Get drum
// @Tags         cables
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      string  true  "Drum ID"
// @Success      200          {object}  response.Response{data=model.OpticalCable}
// @Failure      404          {object}  response.Response
// @Router       /cables/{id} [get]
func (h *CableHandler) Get(c *gin.Context) {
	id, ok := parseCableID(c)
	if !ok {
		return
	}
	cable, err := h.cableService.GetCable(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cable))
}

// Update handles PUT /cables/:id
// @Summary      Update drum
// @Description  Edits descriptive fields only; lengths and status change through actions
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                true  "Tenant ID"
// @Param        id           path      string                true  "Drum ID"
// @Param        payload      body      service.CableRequest  true  "Drum"
// @Success      200          {object}  response.Response{data=model.OpticalCable}
// @Router       /cables/{id} [put]
func (h *CableHandler) Update(c *gin.Context) {
	id, ok := parseCableID(c)
	if !ok {
		return
	}
	var req service.CableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	cable, err := h.cableService.UpdateCable(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cable))
}

// Delete handles DELETE /cables/:id
// @Summary      Delete drum
// @Tags         cables
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      string  true  "Drum ID"
// @Success      200          {object}  response.Response
// @Router       /cables/{id} [delete]
func (h *CableHandler) Delete(c *gin.Context) {
	id, ok := parseCableID(c)
	if !ok {
		return
	}
	if err := h.cableService.DeleteCable(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Drum deleted"))
}

type cableBulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// BulkDelete handles POST /cables/bulk-delete
// @Summary      Bulk delete drums
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                  true  "Tenant ID"
// @Param        payload      body      cableBulkDeleteRequest  true  "Drum IDs"
// @Success      200          {object}  response.Response
// @Router       /cables/bulk-delete [post]
func (h *CableHandler) BulkDelete(c *gin.Context) {
	var req cableBulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.cableService.BulkDeleteCables(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// ApplyAction handles POST /cable-actions/:id
// @Summary      Apply drum lifecycle action
// @Description  Performs assign, usage, return, or waste under a row lock, appending the log row atomically
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                      true  "Tenant ID"
// @Param        id           path      string                      true  "Drum ID"
// @Param        payload      body      service.CableActionRequest  true  "Action"
// @Success      200          {object}  response.Response{data=model.OpticalCable}
// @Failure      409          {object}  response.Response
// @Failure      422          {object}  response.Response
// @Router       /cable-actions/{id} [post]
func (h *CableHandler) ApplyAction(c *gin.Context) {
	id, ok := parseCableID(c)
	if !ok {
		return
	}
	var req service.CableActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	cable, err := h.cableService.ApplyAction(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cable))
}

// GetLogs handles GET /cables/:id/logs
// @Summary      Get drum lifecycle logs
// @Tags         cables
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      string  true  "Drum ID"
// @Success      200          {object}  response.Response{data=[]model.OpticalCableLog}
// @Router       /cables/{id}/logs [get]
func (h *CableHandler) GetLogs(c *gin.Context) {
	id, ok := parseCableID(c)
	if !ok {
		return
	}
	logs, err := h.cableService.GetCableLogs(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

// ListAllLogs handles GET /cable-logs
// @Summary      List all cable logs
// @Description  Tenant-wide lifecycle log feed, newest first, with drum info joined
// @Tags         cables
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=[]model.OpticalCableLog}
// @Router       /cable-logs [get]
func (h *CableHandler) ListAllLogs(c *gin.Context) {
	logs, err := h.cableService.ListAllLogs(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}

// BulkDeleteLogs handles POST /cable-logs/bulk-delete
// @Summary      Bulk delete cable logs
// @Tags         cables
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                  true  "Tenant ID"
// @Param        payload      body      cableBulkDeleteRequest  true  "Log IDs"
// @Success      200          {object}  response.Response
// @Router       /cable-logs/bulk-delete [post]
func (h *CableHandler) BulkDeleteLogs(c *gin.Context) {
	var req cableBulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.cableService.BulkDeleteLogs(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}
