// Package gateway is the thin boundary stub for the HTTP/WebSocket trading
// front end that spec.md §1 excludes from this core's scope except at its
// boundary. It exposes only the shape a front end would attach to — a
// read-only snapshot of current prices — using the same gorilla/websocket
// and gin stack the teacher's own front-end layers use, without
// implementing order submission, auth, or session management.
package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/exchangesim/core/internal/kvstore"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Gateway serves a minimal read-only view of the exchange core's current
// prices. It never writes to the KV store or the broker.
type Gateway struct {
	store   *kvstore.Store
	logger  *zap.Logger
	limiter *rate.Limiter
}

// New builds a Gateway. The snapshot endpoints are cheap but unbounded
// clients could still poll them fast enough to matter, so every request is
// metered by a shared token bucket rather than per-client (this boundary
// has no auth/session layer to key a per-client limiter on).
func New(store *kvstore.Store, logger *zap.Logger) *Gateway {
	return &Gateway{
		store:   store,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(50), 100),
	}
}

// Router builds the gin engine exposing the boundary endpoints.
func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(g.rateLimit)
	r.GET("/prices", g.handlePrices)
	r.GET("/ws/prices", g.handlePricesWS)
	return r
}

func (g *Gateway) rateLimit(c *gin.Context) {
	if !g.limiter.Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}

func (g *Gateway) handlePrices(c *gin.Context) {
	prices, err := g.store.AllPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prices unavailable"})
		return
	}
	c.JSON(http.StatusOK, prices)
}

// handlePricesWS upgrades to a websocket and writes the current price
// snapshot once; a streaming implementation would subscribe to price
// updates, which is out of this core's scope.
func (g *Gateway) handlePricesWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	prices, err := g.store.AllPrices(c.Request.Context())
	if err != nil {
		return
	}
	_ = conn.WriteJSON(prices)
}
