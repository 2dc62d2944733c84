package notify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/access"
	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 2 * keepAlivePeriod
	maxMessageSize = 512
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*access.Principal, error)
}

// wsConn serializes writes to a websocket; gorilla allows one writer at a time.
// authorize is re-run on every keep-alive so a revoked subscriber is dropped.
type wsConn struct {
	ws        *websocket.Conn
	mu        sync.Mutex
	authorize func(ctx context.Context) error
}

func (c *wsConn) Send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, message)
}

func (c *wsConn) Ping() error {
	if c.authorize != nil {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.authorize(ctx)
		cancel()
		if err != nil {
			c.mu.Lock()
			c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "access revoked"), time.Now().Add(writeWait))
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

// Handler serves the live order update channels.
type Handler struct {
	Registry *Registry
	Auth     Authenticator
	Access   access.EvaluatorInterface
	Upgrader websocket.Upgrader
}

func NewHandler(registry *Registry, auth Authenticator, evaluator access.EvaluatorInterface) *Handler {
	return &Handler{
		Registry: registry,
		Auth:     auth,
		Access:   evaluator,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws/restaurant/{id}", h.restaurantChannel).Methods("GET")
	r.HandleFunc("/ws/customer/{id}", h.customerChannel).Methods("GET")
}

func (h *Handler) restaurantChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid restaurant ID", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	authorize := func(ctx context.Context) error {
		principal, err := h.Auth.Authenticate(ctx, token)
		if err != nil {
			return err
		}
		return h.Access.Require(ctx, principal, access.ReadRestaurant, id)
	}
	if err := authorize(r.Context()); err != nil {
		writeDenied(w, err)
		return
	}
	h.serve(w, r, domain.RestaurantChannel(id), authorize)
}

func (h *Handler) customerChannel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")
	authorize := func(ctx context.Context) error {
		principal, err := h.Auth.Authenticate(ctx, token)
		if err != nil {
			return err
		}
		if principal.UserID != id || principal.Role == domain.RoleSuspended {
			return domain.ErrForbidden
		}
		return nil
	}
	if err := authorize(r.Context()); err != nil {
		writeDenied(w, err)
		return
	}
	h.serve(w, r, domain.CustomerChannel(id), authorize)
}

func writeDenied(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		slog.Error("[order-svc] websocket auth failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// serve upgrades the request and answers "ping" with "pong" until the client leaves.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, key string, authorize func(context.Context) error) {
	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("[order-svc] websocket upgrade failed", "subscriber", key, "error", err)
		return
	}
	conn := &wsConn{ws: ws, authorize: authorize}
	if err := h.Registry.Add(key, conn); err != nil {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		ws.Close()
		return
	}
	defer func() {
		h.Registry.Remove(key, conn)
		conn.Close()
	}()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("[order-svc] websocket closed", "subscriber", key, "error", err)
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))
		if string(data) == "ping" {
			if err := conn.Send([]byte("pong")); err != nil {
				return
			}
		}
	}
}
