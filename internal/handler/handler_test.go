package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"n3portal/internal/lock"
	"n3portal/internal/model"
	"n3portal/internal/service"
	"n3portal/internal/sheet"
)

const testSecret = "test-secret"

type api struct {
	t      *testing.T
	srv    *httptest.Server
	orders *service.OrderService
	token  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	hash, err := service.HashPassword("s3cret")
	require.NoError(t, err)

	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	orders := service.NewOrderService(sheet.NewMemory(), lock.NewLocal()).
		WithClock(func() time.Time { return now })

	srv := httptest.NewServer(NewRouter(service.NewAuthService("workshop", hash), orders, testSecret))
	t.Cleanup(srv.Close)
	return &api{t: t, srv: srv, orders: orders}
}

func (a *api) do(method, path, body string) *http.Response {
	a.t.Helper()
	req, err := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	require.NoError(a.t, err)
	if a.token != "" {
		req.Header.Set("Authorization", a.token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *api) login() {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/staff/login", `{"login":"workshop","password":"s3cret"}`)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	a.token = resp.Header.Get("Authorization")
	require.True(a.t, strings.HasPrefix(a.token, "Bearer "))
}

func (a *api) submit(first string) model.Order {
	a.t.Helper()
	o, err := a.orders.Submit(context.Background(), model.Order{
		Customer: model.Customer{FirstName: first, LastName: "Lee", Email: "ann@lee.com"},
		ShoeSize: 38.5,
		Arch:     model.ArchLow,
		Width:    model.WidthWide,
	})
	require.NoError(a.t, err)
	return o
}

func TestLogin(t *testing.T) {
	a := newAPI(t)

	resp := a.do(http.MethodPost, "/api/staff/login", `{"login":"workshop","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = a.do(http.MethodPost, "/api/staff/login", `{bad json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.token = "Bearer not-a-jwt"
	resp = a.do(http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.token = ""
	a.login()
	resp = a.do(http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestListAndGetOrders(t *testing.T) {
	a := newAPI(t)
	a.login()
	first := a.submit("Ann")
	a.submit("Bob")

	resp := a.do(http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []model.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 2)

	resp = a.do(http.MethodGet, "/api/orders?status=CANCELED", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(http.MethodGet, "/api/orders?status=LOST", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = a.do(http.MethodGet, "/api/orders/"+first.NumberString(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, model.StatusNew, got.Status)

	resp = a.do(http.MethodGet, "/api/orders/2610189999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = a.do(http.MethodGet, "/api/orders/123", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUpdateStatus(t *testing.T) {
	a := newAPI(t)
	a.login()
	o := a.submit("Ann")
	path := "/api/orders/" + o.NumberString() + "/status"

	resp := a.do(http.MethodPut, path, `{"status":"SHIPPED"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = a.do(http.MethodPut, path, `{"status":"SUBMITTED TO PRINT"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, model.StatusSubmittedToPrint, got.Status)
	assert.NotEmpty(t, got.StatusUpdatedAt)

	resp = a.do(http.MethodPut, path, `{"status":"DESIGNED"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodPut, path, `{"status":"CANCELED"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(http.MethodPut, path, `{"status":"ACCEPTED"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(http.MethodPut, "/api/orders/2610189999/status", `{"status":"ACCEPTED"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
