package tests

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derrickshema/recipe-manager/api-gateway/internal/gateway"
	"github.com/derrickshema/recipe-manager/api-gateway/internal/mocks"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, client gateway.HTTPClient, orderSvcURL string) *gateway.Gateway {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	gw, err := gateway.NewGateway(gateway.Config{OrderSvcURL: orderSvcURL, FrontendDir: dir}, client)
	require.NoError(t, err)
	return gw
}

func okResponse(body string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func TestGateway_HealthCheck(t *testing.T) {
	gw := newGateway(t, nil, "http://order-svc")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	gw.HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "api-gateway", body["service"])
}

func TestGateway_RouteHandler_APIRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{name: "login", method: http.MethodPost, path: "/api/auth/token", want: "http://order-svc/api/auth/token"},
		{name: "public restaurants", method: http.MethodGet, path: "/api/restaurants/public", want: "http://order-svc/api/restaurants/public"},
		{name: "restaurant orders with filter", method: http.MethodGet, path: "/api/restaurants/1/orders?status=paid", want: "http://order-svc/api/restaurants/1/orders?status=paid"},
		{name: "order status", method: http.MethodPut, path: "/api/orders/12/status", want: "http://order-svc/api/orders/12/status"},
		{name: "order qr code", method: http.MethodGet, path: "/api/orders/12/qrcode", want: "http://order-svc/api/orders/12/qrcode"},
		{name: "webhook", method: http.MethodPost, path: "/api/payments/webhook", want: "http://order-svc/api/payments/webhook"},
		{name: "accept invitation", method: http.MethodPost, path: "/api/invitations/accept", want: "http://order-svc/api/invitations/accept"},
		{name: "admin stats", method: http.MethodGet, path: "/api/admin/stats", want: "http://order-svc/api/admin/stats"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockClient := mocks.NewHTTPClient(t)
			gw := newGateway(t, mockClient, "http://order-svc")

			mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
				return req.Method == testCase.method && req.URL.String() == testCase.want
			})).Return(okResponse(`{}`), nil).Once()

			req := httptest.NewRequest(testCase.method, testCase.path, nil)
			rr := httptest.NewRecorder()
			gw.SetupRoutes().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestGateway_ForwardsHeaders(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := newGateway(t, mockClient, "http://order-svc")

	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Authorization") == "Bearer tok" &&
			req.Header.Get("Stripe-Signature") == "t=1,v1=abc" &&
			req.Header.Get("X-Request-ID") == "req-1"
	})).Return(okResponse(`{"status":"success"}`), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"success"}`, rr.Body.String())
}

func TestGateway_UpstreamStatusPassesThrough(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := newGateway(t, mockClient, "http://order-svc")

	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Body:       io.NopCloser(strings.NewReader(`{"detail":"forbidden"}`)),
		Header:     make(http.Header),
	}
	mockClient.On("Do", mock.Anything).Return(resp, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/restaurants/2", nil)
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "forbidden")
}

func TestGateway_ProxyError(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := newGateway(t, mockClient, "http://order-svc")

	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "order service unavailable")
}

func TestGateway_UnknownAPI(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	gw := newGateway(t, mockClient, "http://order-svc")

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockClient.AssertNotCalled(t, "Do", mock.Anything)
}

func TestGateway_ServesFrontend(t *testing.T) {
	gw := newGateway(t, mocks.NewHTTPClient(t), "http://order-svc")

	req := httptest.NewRequest(http.MethodGet, "/orders/12", nil)
	rr := httptest.NewRecorder()
	gw.SetupRoutes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "app")
}

func TestGateway_WebsocketUpgradeIsProxied(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if string(msg) == "ping" {
			conn.WriteMessage(websocket.TextMessage, []byte("pong"))
		}
	}))
	defer upstream.Close()

	gw := newGateway(t, mocks.NewHTTPClient(t), upstream.URL)
	front := httptest.NewServer(gw.SetupRoutes())
	defer front.Close()

	wsURL := "ws" + strings.TrimPrefix(front.URL, "http") + "/ws/customer/7?token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(reply))
	assert.Equal(t, "/ws/customer/7?token=tok", gotPath)
}
