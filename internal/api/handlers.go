// Package api wires up the Gin HTTP router with every handler a ring peer
// exposes: storage routing, ring membership, and the crash/recover test
// hooks.
package api

import (
	"io"
	"net/http"
	"regexp"

	"chordkv/internal/ring"

	"github.com/gin-gonic/gin"
)

// Handler holds the one Peer this HTTP process fronts.
type Handler struct {
	peer *ring.Peer
}

// NewHandler creates a Handler for peer.
func NewHandler(peer *ring.Peer) *Handler {
	return &Handler{peer: peer}
}

// Register mounts every route a ring peer exposes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(CrashGuard(h.peer))

	r.PUT("/storage/:key", h.PutStorage)
	r.GET("/storage/:key", h.GetStorage)

	r.GET("/neighbors", h.Neighbors)
	r.GET("/node-info", h.NodeInfo)
	r.GET("/key", h.Key)

	r.POST("/join", h.ClientJoin)
	r.PUT("/join", h.PeerJoin)
	r.PUT("/update", h.Update)
	r.PUT("/stabilize", h.Stabilize)
	r.POST("/leave", h.LeaveRing)
	r.POST("/sim-crash", h.SimCrash)
	r.POST("/sim-recover", h.SimRecover)

	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Unknown path: %s", c.Request.URL.Path)
	})
}

// ─── Storage ──────────────────────────────────────────────────────────────

// PutStorage handles PUT /storage/<key>. The body is stored byte-for-byte;
// Content-Type of the request is deliberately not recorded.
func (h *Handler) PutStorage(c *gin.Context) {
	key := c.Param("key")
	value, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "could not read body: %v", err)
		return
	}

	status := h.peer.Put(c.Request.Context(), key, value)
	if status == http.StatusOK {
		c.String(http.StatusOK, "Value stored for %s", key)
		return
	}
	c.Status(status)
}

// GetStorage handles GET /storage/<key>.
func (h *Handler) GetStorage(c *gin.Context) {
	key := c.Param("key")
	status, value := h.peer.Get(c.Request.Context(), key)
	if status == http.StatusOK {
		c.Data(http.StatusOK, "application/octet-stream", value)
		return
	}
	c.Status(status)
}

// ─── Introspection ────────────────────────────────────────────────────────

// Neighbors handles GET /neighbors: [successor_addr, predecessor_addr], or
// [] for a singleton ring.
func (h *Handler) Neighbors(c *gin.Context) {
	if h.peer.IsSingleton() {
		c.JSON(http.StatusOK, []string{})
		return
	}
	c.JSON(http.StatusOK, []string{h.peer.Successor().Address, h.peer.Predecessor().Address})
}

// NodeInfo handles GET /node-info.
func (h *Handler) NodeInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ring.NodeInfo{
		NodeKey:   h.peer.Key(),
		Successor: h.peer.Successor(),
		Others:    []ring.NodeRef{h.peer.Predecessor()},
		SimCrash:  h.peer.Crashed(),
	})
}

// Key handles GET /key: the peer's own hex node key as plain text.
func (h *Handler) Key(c *gin.Context) {
	c.String(http.StatusOK, "%s", h.peer.Key())
}

// ─── Ring membership ──────────────────────────────────────────────────────

var nprimePattern = regexp.MustCompile(`^[\w:.-]+$`)

// ClientJoin handles POST /join?nprime=HOST:PORT: the client-facing join
// entry point. nprime may contain only word characters, ':', '.' and '-',
// so dotted IPv4 addresses are accepted and IPv6 bracket literals are
// rejected.
func (h *Handler) ClientJoin(c *gin.Context) {
	nprime := c.Query("nprime")
	if nprime == "" || !nprimePattern.MatchString(nprime) {
		c.String(http.StatusBadRequest, "missing or malformed nprime")
		return
	}

	if err := h.peer.JoinRing(c.Request.Context(), nprime); err != nil {
		c.String(http.StatusInternalServerError, "%v", err)
		return
	}
	c.JSON(http.StatusOK, ring.NeighborPair{
		Successor:   h.peer.Successor(),
		Predecessor: h.peer.Predecessor(),
	})
}

// PeerJoin handles PUT /join: the inter-peer join handshake. The body is
// the joining peer's raw address bytes, not JSON.
func (h *Handler) PeerJoin(c *gin.Context) {
	addr, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "could not read body: %v", err)
		return
	}

	reply, err := h.peer.HandleJoin(c.Request.Context(), string(addr))
	if err != nil {
		c.String(http.StatusInternalServerError, "%v", err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Update handles PUT /update: an unconditional overwrite of whichever
// neighbor fields are present.
func (h *Handler) Update(c *gin.Context) {
	var req ring.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "%v", err)
		return
	}
	h.peer.UpdateNeighbors(req.Successor, req.Predecessor)
	c.Status(http.StatusOK)
}

// Stabilize handles PUT /stabilize: one hop of the neighbor-failure repair
// walk.
func (h *Handler) Stabilize(c *gin.Context) {
	var req ring.StabilizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "%v", err)
		return
	}
	replacement := h.peer.HandleStabilize(c.Request.Context(), req.Node, req.Direction)
	c.JSON(http.StatusOK, replacement)
}

// LeaveRing handles POST /leave: graceful departure.
func (h *Handler) LeaveRing(c *gin.Context) {
	h.peer.Leave(c.Request.Context())
	c.Status(http.StatusOK)
}

// ─── Crash / recover ──────────────────────────────────────────────────────

// SimCrash handles POST /sim-crash.
func (h *Handler) SimCrash(c *gin.Context) {
	h.peer.SetCrashed(true)
	c.Status(http.StatusOK)
}

// SimRecover handles POST /sim-recover.
func (h *Handler) SimRecover(c *gin.Context) {
	if err := h.peer.Recover(c.Request.Context()); err != nil {
		c.String(http.StatusInternalServerError, "%v", err)
		return
	}
	c.Status(http.StatusOK)
}
