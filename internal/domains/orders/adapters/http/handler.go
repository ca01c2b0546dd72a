// Package http exposes a read-only operational view of the order store.
package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	apierrors "github.com/Apurer/discord-order-bot/internal/shared/errors"
)

// Order is the wire shape of an order; it matches the persisted JSON layout.
type Order struct {
	OrderID   string  `json:"orderId"`
	Claimed   bool    `json:"claimed"`
	ClaimedBy *string `json:"claimedBy"`
	MessageID string  `json:"messageId"`
	ChannelID string  `json:"channelId"`
	OrderName string  `json:"orderName"`
	Amount    int64   `json:"amount"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		OrderID:   string(order.ID),
		Claimed:   order.Claimed,
		MessageID: order.Message.MessageID,
		ChannelID: order.Message.ChannelID,
		OrderName: order.Name,
		Amount:    order.Amount,
	}
	if order.ClaimedBy != "" {
		claimedBy := order.ClaimedBy
		out.ClaimedBy = &claimedBy
	}
	return out
}

// Readiness reports whether the chat gateway is connected.
type Readiness struct {
	ready atomic.Bool
}

func (r *Readiness) Set(ready bool) { r.ready.Store(ready) }

func (r *Readiness) Ready() bool { return r != nil && r.ready.Load() }

// API serves health probes and order inspection.
type API struct {
	service   ports.Service
	readiness *Readiness
	responder *apierrors.Responder
}

func NewAPI(service ports.Service, readiness *Readiness) *API {
	return &API{
		service:   service,
		readiness: readiness,
		responder: apierrors.NewResponder(mapOrderError),
	}
}

// Register mounts the routes on router.
func (api *API) Register(router gin.IRouter) {
	router.GET("/healthz", api.Health)
	router.GET("/readyz", api.Ready)
	router.GET("/orders", api.ListOrders)
	router.GET("/orders/:id", api.GetOrder)
}

func (api *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (api *API) Ready(c *gin.Context) {
	if !api.readiness.Ready() {
		api.responder.Respond(c, apierrors.ErrUnavailable.WithDetail("discord gateway not ready"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (api *API) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	c.JSON(http.StatusOK, out)
}

func (api *API) GetOrder(c *gin.Context) {
	id := domain.ID(c.Param("id"))
	order, err := api.service.GetOrder(c.Request.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		api.responder.Respond(c, apierrors.NewNotFoundProblem("order", string(id)))
		return
	}
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FromDomainOrder(order))
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, ports.ErrNotFound) {
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
