package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
	"github.com/Gunvolt24/order-pipeline/pkg/httpx"
	"github.com/Gunvolt24/order-pipeline/pkg/validate"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// updateStatusRequest — тело PATCH /orders/:id/status.
type updateStatusRequest struct {
	Status string `json:"status"`
}

// createOrder — принять заказ: 202 с квитанцией очереди, а не 201 —
// строка в БД появится только после работы воркера.
func (h *Handler) createOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req domain.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	receipt, err := h.write.CreateOrder(ctx, &req)
	if err != nil {
		h.writeError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusAccepted, receipt)
}

// updateOrderStatus — поставить смену статуса в очередь, 202.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id := c.Param("id")
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	receipt, err := h.write.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		h.writeError(c, "UpdateOrderStatus", err)
		return
	}
	c.JSON(http.StatusAccepted, receipt)
}

// deleteOrder — поставить удаление в очередь, 202.
func (h *Handler) deleteOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	receipt, err := h.write.DeleteOrder(ctx, c.Param("id"))
	if err != nil {
		h.writeError(c, "DeleteOrder", err)
		return
	}
	c.JSON(http.StatusAccepted, receipt)
}

// getOrder — заказ по id; (nil, nil) от сервиса — 404.
func (h *Handler) getOrder(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id := c.Param("id")
	order, err := h.read.GetOrder(ctx, id)
	if err != nil {
		h.log.Errorf(ctx, "GetOrder failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// listOrders — страница списка `{count, next_offset, orders}`.
func (h *Handler) listOrders(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	limit, offset := httpx.ParseLimitOffset(c, defaultListLimit, maxListLimit)

	page, err := h.read.ListOrders(ctx, limit, offset)
	if err != nil {
		h.log.Errorf(ctx, "ListOrders failed limit=%d offset=%d err=%v", limit, offset, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// writeError — единая раскладка ошибок записи по статусам.
func (h *Handler) writeError(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, validate.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, queue.ErrUnavailable):
		// Очередь недоступна: job надёжно не сохранён, клиент должен повторить.
		h.log.Errorf(ctx, "%s queue unavailable: %v", op, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "write queue unavailable, retry later"})
	default:
		h.log.Errorf(ctx, "%s failed: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// requestContext — контекст запроса с опциональным лимитом на обработку.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.handlerTimeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.handlerTimeout)
}
