package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lawnchairsociety/gridclash/internal/catalog"
	"github.com/lawnchairsociety/gridclash/internal/database"
	"github.com/lawnchairsociety/gridclash/internal/engine"
	"github.com/lawnchairsociety/gridclash/internal/logger"
)

func (s *Server) health(c *gin.Context) {
	heroes, spells, effects := s.engine.Catalog().Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.StartTime).Round(time.Second).String(),
		"heroes":  heroes,
		"spells":  spells,
		"effects": effects,
		"replays": s.slots.Stats(),
	})
}

type heroSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Health      int               `json:"health"`
	Energy      int               `json:"energy"`
	EnergyRegen int               `json:"energyRegen"`
	Speed       int               `json:"speed"`
	Armor       int               `json:"armor"`
	SpellPower  int               `json:"spellPower"`
	Spells      map[string]string `json:"spells"`
	Passives    []catalog.Passive `json:"passives,omitempty"`
}

func (s *Server) listHeroes(c *gin.Context) {
	heroes := s.engine.Catalog().Heroes()
	out := make([]heroSummary, 0, len(heroes))
	for _, h := range heroes {
		sum := heroSummary{
			ID:          h.ID,
			Name:        h.Name,
			Description: h.Description,
			Health:      h.Health,
			Energy:      h.Energy,
			EnergyRegen: h.EnergyRegen,
			Speed:       h.Speed,
			Armor:       h.Armor,
			SpellPower:  h.SpellPower,
			Spells:      make(map[string]string),
			Passives:    h.Passives,
		}
		for _, row := range catalog.Rows {
			if slot, ok := h.SpellFor(row); ok {
				sum.Spells[row.String()] = slot.SpellID
			}
		}
		out = append(out, sum)
	}
	c.JSON(http.StatusOK, out)
}

type roundRequest struct {
	State *engine.BattleState `json:"state"`
}

// executeRound resolves one round of a posted state.
func (s *Server) executeRound(c *gin.Context) {
	var req roundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "invalid request body: " + err.Error()})
		return
	}
	if req.State == nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "state is required"})
		return
	}

	res, err := s.engine.ExecuteRound(req.State, s.roundOptions())
	if err != nil {
		if errors.Is(err, engine.ErrInvalidState) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{jsonKeyError: err.Error()})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "round failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type battleRequest struct {
	A         engine.Lineup `json:"a"`
	B         engine.Lineup `json:"b"`
	MaxRounds int           `json:"maxRounds"`
}

// createBattle runs a whole battle from two lineups and stores it.
func (s *Server) createBattle(c *gin.Context) {
	var req battleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "invalid request body: " + err.Error()})
		return
	}
	if len(req.A) == 0 || len(req.B) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: "both lineups need at least one hero"})
		return
	}

	state, err := s.engine.Setup(req.A, req.B)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: err.Error()})
		return
	}

	maxRounds := s.cfg.Engine.MaxRounds
	if req.MaxRounds > 0 && (maxRounds <= 0 || req.MaxRounds < maxRounds) {
		maxRounds = req.MaxRounds
	}
	res, err := s.engine.RunBattle(state, s.roundOptions(), maxRounds)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "battle failed"})
		return
	}

	rec, err := NewBattleRecord(req.A, req.B, res)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to encode battle"})
		return
	}
	if err := s.store.SaveBattle(c.Request.Context(), rec); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to store battle"})
		return
	}

	logger.Info("Battle stored",
		"battle", rec.ID,
		"rounds", rec.Rounds,
		"winner", rec.Winner,
		"draw", rec.Draw,
		"steps", rec.StepCount)

	out := toBattleResponse(rec)
	out.Steps = nil
	c.JSON(http.StatusCreated, out)
}

func (s *Server) listBattles(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	records, err := s.store.ListBattles(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to list battles"})
		return
	}
	out := make([]battleResponse, 0, len(records))
	for i := range records {
		out = append(out, toBattleResponse(&records[i]))
	}
	c.JSON(http.StatusOK, out)
}

// loadBattle fetches the battle named by the :id param, writing the error
// response itself when it fails.
func (s *Server) loadBattle(c *gin.Context) (*database.BattleRecord, bool) {
	rec, err := s.store.GetBattle(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{jsonKeyError: "battle not found"})
		return nil, false
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to load battle"})
		return nil, false
	}
	return rec, true
}

func (s *Server) getBattle(c *gin.Context) {
	rec, ok := s.loadBattle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toBattleResponse(rec))
}

func (s *Server) heroStats(c *gin.Context) {
	stats, err := s.store.HeroStats(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "failed to load stats"})
		return
	}
	if stats == nil {
		stats = []database.HeroStat{}
	}
	c.JSON(http.StatusOK, stats)
}

// replayBattle upgrades to a WebSocket and streams the stored step log.
func (s *Server) replayBattle(c *gin.Context) {
	rec, ok := s.loadBattle(c)
	if !ok {
		return
	}
	steps, err := decodeSteps(rec)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: "stored step log is unreadable"})
		return
	}

	clientIP := getRealIP(c.Request)
	log := logger.With("battle", rec.ID, "client_ip", clientIP)
	release, err := s.slots.Acquire(clientIP, rec.ID)
	if err != nil {
		log.Warn("Replay rejected", "reason", err)
		c.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: err.Error()})
		return
	}
	defer release()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Warn("Replay upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	if s.cfg.WebSocket.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	}

	stats, err := s.streamer.Stream(c.Request.Context(), conn, rec.ID, steps)
	if err != nil {
		log.Info("Replay ended early", "sent", stats.Sent, "error", err)
		return
	}
	log.Info("Replay complete",
		"sent", stats.Sent,
		"acked", stats.Acked,
		"timed_out", stats.TimedOut)
}
