package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	office := middleware.RequireTenant(model.RoleAdmin, model.RoleOffice)
	admin := middleware.RequireTenant(model.RoleAdmin)
	anyMember := middleware.RequireTenant()

	inventory := router.Group("/inventory")
	{
		inventory.GET("", anyMember, h.List)
		inventory.GET("/:id", anyMember, h.Get)
		inventory.POST("", office, h.Create)
		inventory.PUT("/:id", office, h.Update)
		inventory.DELETE("/:id", office, h.Delete)
		inventory.POST("/bulk-delete", office, h.BulkDelete)
		inventory.POST("/seed", office, h.Seed)
		inventory.POST("/sync", office, h.Sync)
		inventory.POST("/audit", office, h.Audit)
		inventory.DELETE("", admin, h.Clear)
	}
}

// List handles GET /inventory
// @Summary      List inventory items
// @Description  Paginated reconciled snapshot rows, optionally filtered by product name
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true   "Tenant ID"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Param        search       query     string  false  "Product name filter"
// @Success      200          {object}  response.Response{data=object}
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.inventoryService.List(c.Request.Context(), middleware.TenantID(c), p.Page, p.Limit, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// Get handles GET /inventory/:id
// @Summary      Get inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Item ID"
// @Success      200          {object}  response.Response{data=model.InventoryItem}
// @Failure      404          {object}  response.Response
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// Create handles POST /inventory
// @Summary      Create inventory item
// @Description  Manually creates a snapshot row, typically with an opening balance
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                        true  "Tenant ID"
// @Param        payload      body      service.InventoryItemRequest  true  "Inventory Item"
// @Success      201          {object}  response.Response{data=model.InventoryItem}
// @Failure      409          {object}  response.Response
// @Router       /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	item, err := h.inventoryService.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// Update handles PUT /inventory/:id
// @Summary      Update inventory item
// @Description  Edits descriptive fields and opening balance; ledger accumulators are read-only here
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                        true  "Tenant ID"
// @Param        id           path      int                           true  "Item ID"
// @Param        payload      body      service.InventoryItemRequest  true  "Inventory Item"
// @Success      200          {object}  response.Response{data=model.InventoryItem}
// @Router       /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	var req service.InventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	item, err := h.inventoryService.Update(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// Delete handles DELETE /inventory/:id
// @Summary      Delete inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Param        id           path      int     true  "Item ID"
// @Success      200          {object}  response.Response
// @Router       /inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}
	if err := h.inventoryService.Delete(c.Request.Context(), middleware.TenantID(c), id, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item deleted"))
}

// BulkDelete handles POST /inventory/bulk-delete
// @Summary      Bulk delete inventory items
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string             true  "Tenant ID"
// @Param        payload      body      bulkDeleteRequest  true  "Item IDs"
// @Success      200          {object}  response.Response
// @Router       /inventory/bulk-delete [post]
func (h *InventoryHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}
	deleted, err := h.inventoryService.BulkDelete(c.Request.Context(), middleware.TenantID(c), req.IDs, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"deleted": deleted}))
}

// Seed handles POST /inventory/seed
// @Summary      Seed inventory
// @Description  Bulk-creates snapshot rows from an opening-balance import
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                          true  "Tenant ID"
// @Param        payload      body      []service.InventoryItemRequest  true  "Inventory Rows"
// @Success      201          {object}  response.Response{data=[]model.InventoryItem}
// @Router       /inventory/seed [post]
func (h *InventoryHandler) Seed(c *gin.Context) {
	var reqs []service.InventoryItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	items, err := h.inventoryService.Seed(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, items))
}

// Sync handles POST /inventory/sync
// @Summary      Sync inventory
// @Description  Upserts snapshot rows by identity from an external export
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string                          true  "Tenant ID"
// @Param        payload      body      []service.InventoryItemRequest  true  "Inventory Rows"
// @Success      200          {object}  response.Response{data=object}
// @Router       /inventory/sync [post]
func (h *InventoryHandler) Sync(c *gin.Context) {
	var reqs []service.InventoryItemRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	created, updated, err := h.inventoryService.Sync(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), reqs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"created": created,
		"updated": updated,
	}))
}

// Audit handles POST /inventory/audit
// @Summary      Audit inventory
// @Description  Compares every snapshot row against the summed ledgers and reports discrepancies
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response{data=service.AuditReport}
// @Router       /inventory/audit [post]
func (h *InventoryHandler) Audit(c *gin.Context) {
	report, err := h.inventoryService.Audit(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// Clear handles DELETE /inventory
// @Summary      Clear inventory
// @Description  Removes every snapshot row for the tenant. Admin only.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header    string  true  "Tenant ID"
// @Success      200          {object}  response.Response
// @Router       /inventory [delete]
func (h *InventoryHandler) Clear(c *gin.Context) {
	if err := h.inventoryService.Clear(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Inventory cleared"))
}
