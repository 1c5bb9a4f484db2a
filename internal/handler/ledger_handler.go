package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the three transaction ledgers. Every mutation routes
// through the reconciliation engine.
type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes binds the ledger endpoints to the gin RouterGroup
func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	office := middleware.RequireTenant(model.RoleAdmin, model.RoleOffice)
	anyMember := middleware.RequireTenant()

	incoming := router.Group("/incoming")
	{
		incoming.GET("", anyMember, h.ListIncoming)
		incoming.GET("/:id", anyMember, h.GetIncoming)
		incoming.POST("", office, h.CreateIncoming)
		incoming.POST("/bulk", office, h.BulkCreateIncoming)
		incoming.PUT("/:id", office, h.UpdateIncoming)
		incoming.DELETE("/:id", office, h.DeleteIncoming)
		incoming.POST("/bulk-delete", office, h.BulkDeleteIncoming)
	}

	outgoing := router.Group("/outgoing")
	{
		outgoing.GET("", anyMember, h.ListOutgoing)
		outgoing.GET("/:id", anyMember, h.GetOutgoing)
		outgoing.POST("", office, h.CreateOutgoing)
		outgoing.POST("/bulk", office, h.BulkCreateOutgoing)
		outgoing.PUT("/:id", office, h.UpdateOutgoing)
		outgoing.DELETE("/:id", office, h.DeleteOutgoing)
		outgoing.POST("/bulk-delete", office, h.BulkDeleteOutgoing)
	}

	// Field members report their own usage.
	field := middleware.RequireTenant(model.RoleAdmin, model.RoleOffice, model.RoleField)
	usage := router.Group("/usage")
	{
		usage.GET("", anyMember, h.ListUsage)
		usage.GET("/:id", anyMember, h.GetUsage)
		usage.POST("", field, h.CreateUsage)
		usage.POST("/bulk", field, h.BulkCreateUsage)
		usage.PUT("/:id", office, h.UpdateUsage)
		usage.DELETE("/:id", office, h.DeleteUsage)
		usage.POST("/bulk-delete", office, h.BulkDeleteUsage)
	}
}

func parseRecordID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid record id"))
		return 0, false
	}
	return uint(id), true
}

// --- Incoming ---

// CreateIncoming handles POST /incoming
// @Summary      Create incoming record
// @Description  Records a material receipt and updates the inventory snapshot in the same transaction
// @Tags         incoming
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        payload      body      service.IncomingRequest  true  "Incoming Record"
// @Success      201          {object}  response.Response{data=model.IncomingRecord}
// @Failure      400          {object}  response.Response
// @Failure      422          {object}  response.Response
// @Router       /incoming [post]
func (h *LedgerHandler) CreateIncoming(c *gin.Context) {
	var req service.IncomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.ledgerService.CreateIncoming(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// BulkCreateIncoming handles POST /incoming/bulk
// @Summary      Bulk create incoming records
// @Description  Imports incoming rows in order within a single transaction
// @Tags         incoming
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                     true  "Tenant ID"
// @Param        payload      body      []service.IncomingRequest  true  "Incoming Rows"
// @Success      201          {object}  response.Response{data=[]model.IncomingRecord}
// @Failure      400          {object}  response.Response
// @Router       /incoming/bulk [post]
func (h *LedgerHandler) BulkCreateIncoming(c *gin.Context) {
	var reqs []service.IncomingRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	records, err := h.ledgerService.BulkCreateIncoming(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, records))
}

// UpdateIncoming handles PUT /incoming/:id
// @Summary      Update incoming record
// @Description  Reverses the stored contribution and applies the new values atomically
// @Tags         incoming
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        id           path      int                      true  "Record ID"
// @Param        payload      body      service.IncomingRequest  true  "Incoming Record"
// @Success      200          {object}  response.Response{data=model.IncomingRecord}
// @Failure      404          {object}  response.Response
// @Router       /incoming/{id} [put]
func (h *LedgerHandler) UpdateIncoming(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	var req service.IncomingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.ledgerService.UpdateIncoming(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// DeleteIncoming handles DELETE /incoming/:id
// @Summary      Delete incoming record
// @Description  Removes the record and reverses its snapshot contribution
// @Tags         incoming
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Router       /incoming/{id} [delete]
func (h *LedgerHandler) DeleteIncoming(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteIncoming(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Record deleted"))
}

type bulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// BulkDeleteIncoming handles POST /incoming/bulk-delete
// @Summary      Bulk delete incoming records
// @Tags         incoming
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string             true  "Tenant ID"
// @Param        payload      body      bulkDeleteRequest  true  "Record IDs"
// @Success      200          {object}  response.Response
// @Router       /incoming/bulk-delete [post]
func (h *LedgerHandler) BulkDeleteIncoming(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.ledgerService.BulkDeleteIncoming(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// ListIncoming handles GET /incoming
// @Summary      List incoming records
// @Tags         incoming
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200          {object}  response.Response{data=object}
// @Router       /incoming [get]
func (h *LedgerHandler) ListIncoming(c *gin.Context) {
	p := pagination.Parse(c)
	records, total, err := h.ledgerService.ListIncoming(c.Request.Context(), middleware.TenantID(c), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetIncoming handles GET /incoming/:id
// @Summary      Get incoming record
// @Tags         incoming
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response{data=model.IncomingRecord}
// @Failure      404          {object}  response.Response
// @Router       /incoming/{id} [get]
func (h *LedgerHandler) GetIncoming(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	record, err := h.ledgerService.GetIncoming(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// --- Outgoing ---

// CreateOutgoing handles POST /outgoing
// @Summary      Create outgoing record
// @Description  Records a dispatch to a field team and updates the snapshot
// @Tags         outgoing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        payload      body      service.DispatchRequest  true  "Outgoing Record"
// @Success      201          {object}  response.Response{data=model.OutgoingRecord}
// @Failure      422          {object}  response.Response
// @Router       /outgoing [post]
func (h *LedgerHandler) CreateOutgoing(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	record, err := h.ledgerService.CreateOutgoing(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// BulkCreateOutgoing handles POST /outgoing/bulk
// @Summary      Bulk create outgoing records
// @Tags         outgoing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                     true  "Tenant ID"
// @Param        payload      body      []service.DispatchRequest  true  "Outgoing Rows"
// @Success      201          {object}  response.Response{data=[]model.OutgoingRecord}
// @Router       /outgoing/bulk [post]
func (h *LedgerHandler) BulkCreateOutgoing(c *gin.Context) {
	var reqs []service.DispatchRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	records, err := h.ledgerService.BulkCreateOutgoing(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, records))
}

// UpdateOutgoing handles PUT /outgoing/:id
// @Summary      Update outgoing record
// @Tags         outgoing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        id           path      int                      true  "Record ID"
// @Param        payload      body      service.DispatchRequest  true  "Outgoing Record"
// @Success      200          {object}  response.Response{data=model.OutgoingRecord}
// @Router       /outgoing/{id} [put]
func (h *LedgerHandler) UpdateOutgoing(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	record, err := h.ledgerService.UpdateOutgoing(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// DeleteOutgoing handles DELETE /outgoing/:id
// @Summary      Delete outgoing record
// @Tags         outgoing
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response
// @Router       /outgoing/{id} [delete]
func (h *LedgerHandler) DeleteOutgoing(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteOutgoing(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Record deleted"))
}

// BulkDeleteOutgoing handles POST /outgoing/bulk-delete
// @Summary      Bulk delete outgoing records
// @Tags         outgoing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string             true  "Tenant ID"
// @Param        payload      body      bulkDeleteRequest  true  "Record IDs"
// @Success      200          {object}  response.Response
// @Router       /outgoing/bulk-delete [post]
func (h *LedgerHandler) BulkDeleteOutgoing(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.ledgerService.BulkDeleteOutgoing(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// ListOutgoing handles GET /outgoing
// @Summary      List outgoing records
// @Tags         outgoing
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200          {object}  response.Response{data=object}
// @Router       /outgoing [get]
func (h *LedgerHandler) ListOutgoing(c *gin.Context) {
	p := pagination.Parse(c)
	records, total, err := h.ledgerService.ListOutgoing(c.Request.Context(), middleware.TenantID(c), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetOutgoing handles GET /outgoing/:id
// @Summary      Get outgoing record
// @Tags         outgoing
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response{data=model.OutgoingRecord}
// @Router       /outgoing/{id} [get]
func (h *LedgerHandler) GetOutgoing(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	record, err := h.ledgerService.GetOutgoing(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// --- Usage ---

// CreateUsage handles POST /usage
// @Summary      Create usage record
// @Description  Records field consumption; shifts team-held stock without touching office stock
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        payload      body      service.DispatchRequest  true  "Usage Record"
// @Success      201          {object}  response.Response{data=model.MaterialUsageRecord}
// @Failure      422          {object}  response.Response
// @Router       /usage [post]
func (h *LedgerHandler) CreateUsage(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	record, err := h.ledgerService.CreateUsage(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// BulkCreateUsage handles POST /usage/bulk
// @Summary      Bulk create usage records
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                     true  "Tenant ID"
// @Param        payload      body      []service.DispatchRequest  true  "Usage Rows"
// @Success      201          {object}  response.Response{data=[]model.MaterialUsageRecord}
// @Router       /usage/bulk [post]
func (h *LedgerHandler) BulkCreateUsage(c *gin.Context) {
	var reqs []service.DispatchRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	records, err := h.ledgerService.BulkCreateUsage(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, records))
}

// UpdateUsage handles PUT /usage/:id
// @Summary      Update usage record
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                   true  "Tenant ID"
// @Param        id           path      int                      true  "Record ID"
// @Param        payload      body      service.DispatchRequest  true  "Usage Record"
// @Success      200          {object}  response.Response{data=model.MaterialUsageRecord}
// @Router       /usage/{id} [put]
func (h *LedgerHandler) UpdateUsage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	record, err := h.ledgerService.UpdateUsage(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// DeleteUsage handles DELETE /usage/:id
// @Summary      Delete usage record
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response
// @Router       /usage/{id} [delete]
func (h *LedgerHandler) DeleteUsage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteUsage(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Record deleted"))
}

// BulkDeleteUsage handles POST /usage/bulk-delete
// @Summary      Bulk delete usage records
// @Tags         usage
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string             true  "Tenant ID"
// @Param        payload      body      bulkDeleteRequest  true  "Record IDs"
// @Success      200          {object}  response.Response
// @Router       /usage/bulk-delete [post]
func (h *LedgerHandler) BulkDeleteUsage(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.ledgerService.BulkDeleteUsage(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// ListUsage handles GET /usage
// @Summary      List usage records
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200          {object}  response.Response{data=object}
// @Router       /usage [get]
func (h *LedgerHandler) ListUsage(c *gin.Context) {
	p := pagination.Parse(c)
	records, total, err := h.ledgerService.ListUsage(c.Request.Context(), middleware.TenantID(c), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	}))
}

// GetUsage handles GET /usage/:id
// @Summary      Get usage record
// @Tags         usage
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Record ID"
// @Success      200          {object}  response.Response{data=model.MaterialUsageRecord}
// @Router       /usage/{id} [get]
func (h *LedgerHandler) GetUsage(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	record, err := h.ledgerService.GetUsage(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}
