// Package server exposes the orchestrator's operations over HTTP and hands
// websocket upgrades to the hub. Identity is an external concern: handlers
// trust the authenticated player ID placed in the X-Player-ID header by the
// gateway in front of this service.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cosmoarena/arena-server-go/internal/match"
	"github.com/cosmoarena/arena-server-go/internal/match/rules"
	"github.com/cosmoarena/arena-server-go/internal/orchestrator"
	"github.com/cosmoarena/arena-server-go/internal/repository"
	"github.com/cosmoarena/arena-server-go/internal/ws"
)

const playerHeader = "X-Player-ID"

// Server binds one route per orchestrator operation.
type Server struct {
	orch   *orchestrator.Orchestrator
	hub    *ws.Hub
	logger *zap.Logger
}

// New builds the HTTP surface.
func New(orch *orchestrator.Orchestrator, hub *ws.Hub, logger *zap.Logger) *Server {
	return &Server{orch: orch, hub: hub, logger: logger}
}

// Register mounts all routes on the engine.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.POST("/matches/search", s.handleSearch)
		api.DELETE("/matches/search", s.handleCancelSearch)
		api.GET("/matches/:id", s.handleGetMatch)
		api.GET("/matches/:id/actions", s.handleGetActions)
		api.POST("/matches/:id/start", s.handleStartFirstTurn)
		api.POST("/matches/:id/play", s.handlePlayCard)
		api.POST("/matches/:id/attack", s.handleAttack)
		api.POST("/matches/:id/stance", s.handleChangeStance)
		api.POST("/matches/:id/pass", s.handlePassTurn)
		api.POST("/matches/:id/surrender", s.handleSurrender)
	}

	r.GET("/ws/matches/:id", s.handleWebsocket)
}

func playerID(c *gin.Context) (string, bool) {
	id := c.GetHeader(playerHeader)
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + playerHeader + " header"})
		return "", false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP statuses: precondition
// violations are 409 with their code, not-found conditions 404, and
// everything else is a retryable 503.
func (s *Server) writeError(c *gin.Context, err error) {
	if v, ok := rules.AsViolation(err); ok {
		c.JSON(http.StatusConflict, gin.H{"code": string(v.Code), "error": v.Message})
		return
	}
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, orchestrator.ErrCardNotFound),
		errors.Is(err, orchestrator.ErrNoPendingSearch):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrAlreadyInMatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrDeckUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error("action failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transient failure, retry the action"})
	}
}

type searchRequest struct {
	Practice bool `json:"practice"`
}

func (s *Server) handleSearch(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	var req searchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	res, err := s.orch.FindOrCreateMatch(c.Request.Context(), pid, req.Practice)
	if err != nil {
		s.writeError(c, err)
		return
	}
	status := http.StatusCreated
	if res.Paired {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"paired": res.Paired, "match": res.Snapshot})
}

func (s *Server) handleCancelSearch(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	if err := s.orch.CancelSearch(c.Request.Context(), pid); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (s *Server) handleGetMatch(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	snap, err := s.orch.Snapshot(c.Request.Context(), c.Param("id"), pid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

func (s *Server) handleGetActions(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	actions, err := s.orch.Actions(c.Request.Context(), c.Param("id"), pid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

func (s *Server) handleStartFirstTurn(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	snap, err := s.orch.StartFirstTurn(c.Request.Context(), c.Param("id"), pid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

type playCardRequest struct {
	InstanceID string `json:"instance_id" binding:"required"`
}

func (s *Server) handlePlayCard(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	var req playCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := s.orch.PlayCard(c.Request.Context(), c.Param("id"), pid, req.InstanceID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

type attackRequest struct {
	AttackerID string `json:"attacker_id" binding:"required"`
	DefenderID string `json:"defender_id"`
}

func (s *Server) handleAttack(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome, snap, err := s.orch.Attack(c.Request.Context(), c.Param("id"), pid, req.AttackerID, req.DefenderID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "match": snap})
}

type stanceRequest struct {
	InstanceID string `json:"instance_id" binding:"required"`
	Stance     string `json:"stance" binding:"required"`
}

func (s *Server) handleChangeStance(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	var req stanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := s.orch.ChangeStance(c.Request.Context(), c.Param("id"), pid, req.InstanceID, match.Stance(req.Stance))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

func (s *Server) handlePassTurn(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	snap, err := s.orch.PassTurn(c.Request.Context(), c.Param("id"), pid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

func (s *Server) handleSurrender(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	snap, err := s.orch.Surrender(c.Request.Context(), c.Param("id"), pid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": snap})
}

// handleWebsocket subscribes the caller to a match's snapshot stream. The
// caller must be a participant; spectating is not offered by this core.
func (s *Server) handleWebsocket(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		return
	}
	matchID := c.Param("id")
	if _, err := s.orch.Snapshot(c.Request.Context(), matchID, pid); err != nil {
		s.writeError(c, err)
		return
	}
	if _, err := s.hub.Attach(c.Writer, c.Request, matchID, pid); err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("match_id", matchID),
			zap.String("player_id", pid),
			zap.Error(err),
		)
	}
}
