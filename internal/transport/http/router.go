package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/order-pipeline/internal/ports"
	"github.com/Gunvolt24/order-pipeline/pkg/httpx"
)

// Handler — HTTP-обработчики API заказов. Запись принимает сервис записи
// (постановка job в очередь), чтение — сервис чтения (overlay → кэш → БД).
type Handler struct {
	read           ports.OrderReadService
	write          ports.OrderWriteService
	log            ports.Logger
	handlerTimeout time.Duration // 0 — без лимита на обработку запроса
}

// NewHandler — конструктор Handler.
func NewHandler(read ports.OrderReadService, write ports.OrderWriteService, log ports.Logger, handlerTimeout time.Duration) *Handler {
	return &Handler{read: read, write: write, log: log, handlerTimeout: handlerTimeout}
}

// NewRouter — маршруты API. otelServiceName непустой — включается
// otelgin middleware.
func NewRouter(h *Handler, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/orders", h.createOrder)
	r.GET("/orders", h.listOrders)
	r.GET("/orders/:id", h.getOrder)
	r.PATCH("/orders/:id/status", h.updateOrderStatus)
	r.DELETE("/orders/:id", h.deleteOrder)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}
