package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/adapters/memory"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/application"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	apierrors "github.com/Apurer/discord-order-bot/internal/shared/errors"
)

type nopSnapshots struct{}

func (nopSnapshots) Load(context.Context) ([]*domain.Order, error) { return nil, nil }

func (nopSnapshots) Save(context.Context, []*domain.Order) error { return nil }

func newRouter(t *testing.T, orders ...*domain.Order) (*gin.Engine, *Readiness) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := memory.NewRepository()
	require.NoError(t, repo.Replace(context.Background(), orders))
	svc := application.NewService("owner", repo, nopSnapshots{}, nil, nil)
	readiness := &Readiness{}
	router := gin.New()
	NewAPI(svc, readiness).Register(router)
	return router, readiness
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	router, readiness := newRouter(t)

	assert.Equal(t, http.StatusOK, get(router, "/healthz").Code)

	rec := get(router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	readiness.Set(true)
	assert.Equal(t, http.StatusOK, get(router, "/readyz").Code)
}

func TestGetOrder(t *testing.T) {
	router, _ := newRouter(t, &domain.Order{
		ID: "order_1", Name: "Widget", Amount: 5, Claimed: true, ClaimedBy: "U",
		Message: domain.MessageRef{ChannelID: "C", MessageID: "M"},
	})

	rec := get(router, "/orders/order_1")
	require.Equal(t, http.StatusOK, rec.Code)
	var body Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "order_1", body.OrderID)
	assert.Equal(t, "Widget", body.OrderName)
	require.NotNil(t, body.ClaimedBy)
	assert.Equal(t, "U", *body.ClaimedBy)

	rec = get(router, "/orders/order_404")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeNotFound, problem.Type)
	assert.Equal(t, "/orders/order_404", problem.Instance)
	assert.Contains(t, problem.Detail, "order_404")
	assert.Equal(t, "order_404", problem.Extensions["identifier"])
}

func TestListOrders(t *testing.T) {
	router, _ := newRouter(t,
		&domain.Order{ID: "order_2", Name: "Gadget", Amount: 1},
		&domain.Order{ID: "order_1", Name: "Widget", Amount: 5},
	)

	rec := get(router, "/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	var body []Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "order_1", body[0].OrderID)
	assert.Nil(t, body[1].ClaimedBy)
}
