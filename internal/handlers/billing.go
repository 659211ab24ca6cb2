package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/umorjyoti/simplifly/internal/billing"
	"github.com/umorjyoti/simplifly/internal/middleware"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListBillable lists completed, unbilled work of a workspace
func (h *Handler) ListBillable(c echo.Context) error {
	id := c.Param("id")

	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return h.fail(c, "ListBillable", err)
	}
	q := service.BillableQuery{
		Scope:  billing.Scope(c.QueryParam("scope")),
		UserID: c.QueryParam("user_id"),
		Period: c.QueryParam("period"),
		Date:   date,
	}

	billable, err := h.svc.ListBillable(c.Request().Context(), middleware.Actor(c), id, q)
	if err != nil {
		return h.fail(c, "ListBillable", err, zap.String("workspace_id", id))
	}

	h.logger.Info("ListBillable: billable work listed",
		zap.String("workspace_id", id),
		zap.Int("tickets", len(billable.Tickets)),
		zap.Int("bill_items", len(billable.BillItems)))
	return c.JSON(http.StatusOK, billable)
}

// GenerateBill builds an invoice for the selected work
func (h *Handler) GenerateBill(c echo.Context) error {
	id := c.Param("id")
	h.logger.Info("GenerateBill: start processing request", zap.String("workspace_id", id))

	var req billing.Selection
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "GenerateBill", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "GenerateBill", err)
	}

	inv, err := h.svc.GenerateBill(c.Request().Context(), middleware.Actor(c), id, req)
	if err != nil {
		return h.fail(c, "GenerateBill", err, zap.String("workspace_id", id))
	}

	h.logger.Info("GenerateBill: invoice generated",
		zap.String("workspace_id", id),
		zap.Int("items", inv.Totals.TotalItems),
		zap.Float64("amount", inv.Totals.TotalAmount))
	return c.JSON(http.StatusOK, inv)
}

// ExportBill returns the invoice for the selected work as an xlsx download
func (h *Handler) ExportBill(c echo.Context) error {
	id := c.Param("id")

	var req billing.Selection
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "ExportBill", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "ExportBill", err)
	}

	var buf bytes.Buffer
	inv, err := h.svc.ExportBill(c.Request().Context(), middleware.Actor(c), id, req, &buf)
	if err != nil {
		return h.fail(c, "ExportBill", err, zap.String("workspace_id", id))
	}

	filename := fmt.Sprintf("invoice-%s.xlsx", inv.GeneratedAt.Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	h.logger.Info("ExportBill: invoice exported", zap.String("workspace_id", id), zap.Int("bytes", buf.Len()))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// UpdatePaymentStatus marks several tickets at once, typically as billed
func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		TicketIDs     []string             `json:"ticket_ids" validate:"required,min=1"`
		PaymentStatus models.PaymentStatus `json:"payment_status" validate:"required,oneof=pending-pay billed not-applicable"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdatePaymentStatus", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "UpdatePaymentStatus", err)
	}

	h.logger.Info("UpdatePaymentStatus: updating tickets",
		zap.String("workspace_id", id),
		zap.Int("tickets", len(req.TicketIDs)),
		zap.String("payment_status", string(req.PaymentStatus)))

	tickets, err := h.svc.UpdatePaymentStatus(c.Request().Context(), middleware.Actor(c), id, req.TicketIDs, req.PaymentStatus)
	if err != nil {
		return h.fail(c, "UpdatePaymentStatus", err, zap.String("workspace_id", id))
	}

	h.logger.Info("UpdatePaymentStatus: tickets updated", zap.String("workspace_id", id), zap.Int("updated", len(tickets)))
	return c.JSON(http.StatusOK, tickets)
}

// ListBillItems lists manual bill items, optionally for one user
func (h *Handler) ListBillItems(c echo.Context) error {
	id := c.Param("id")
	items, err := h.svc.ListBillItems(c.Request().Context(), middleware.Actor(c), id, c.QueryParam("user_id"))
	if err != nil {
		return h.fail(c, "ListBillItems", err, zap.String("workspace_id", id))
	}
	return c.JSON(http.StatusOK, items)
}

// CreateBillItem adds a manual bill item to a workspace
func (h *Handler) CreateBillItem(c echo.Context) error {
	id := c.Param("id")

	var req service.BillItemInput
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "CreateBillItem", err)
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, "CreateBillItem", err)
	}

	item, err := h.svc.CreateBillItem(c.Request().Context(), middleware.Actor(c), id, req)
	if err != nil {
		return h.fail(c, "CreateBillItem", err, zap.String("workspace_id", id))
	}

	h.logger.Info("CreateBillItem: bill item created",
		zap.String("workspace_id", id),
		zap.String("bill_item_id", item.ID),
		zap.Float64("hours", item.Hours))
	return c.JSON(http.StatusCreated, item)
}

// UpdateBillItem applies a partial update to a bill item
func (h *Handler) UpdateBillItem(c echo.Context) error {
	id := c.Param("id")

	var req service.BillItemUpdate
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, "UpdateBillItem", err)
	}

	item, err := h.svc.UpdateBillItem(c.Request().Context(), middleware.Actor(c), id, req)
	if err != nil {
		return h.fail(c, "UpdateBillItem", err, zap.String("bill_item_id", id))
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteBillItem removes a bill item
func (h *Handler) DeleteBillItem(c echo.Context) error {
	id := c.Param("id")
	if err := h.svc.DeleteBillItem(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return h.fail(c, "DeleteBillItem", err, zap.String("bill_item_id", id))
	}
	return c.NoContent(http.StatusNoContent)
}
