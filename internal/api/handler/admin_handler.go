package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ShivamThakkar1/Wallswipe-invite/config"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/dto"
	"github.com/ShivamThakkar1/Wallswipe-invite/internal/service"
	"github.com/ShivamThakkar1/Wallswipe-invite/pkg/response"
)

// AdminHandler serves the token-protected admin API.
type AdminHandler struct {
	svc         *service.Service
	defaultSize int
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(cfg *config.Config, svc *service.Service) *AdminHandler {
	return &AdminHandler{svc: svc, defaultSize: cfg.Bot.LeaderboardSize}
}

// Leaderboard GET /api/v1/leaderboard?limit=N
func (h *AdminHandler) Leaderboard(c *gin.Context) {
	limit := h.limit(c)
	entries, err := h.svc.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, entries)
}

// LeaderboardExport GET /api/v1/leaderboard/export
// Streams the board as an XLSX download.
func (h *AdminHandler) LeaderboardExport(c *gin.Context) {
	limit := h.limit(c)
	f, err := h.svc.Leaderboard.ExportXLSX(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	filename := fmt.Sprintf("leaderboard_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(c.Writer); err != nil {
		// Headers are gone already; nothing left but to log via gin's error list.
		_ = c.Error(err)
	}
}

// Tiers GET /api/v1/tiers
func (h *AdminHandler) Tiers(c *gin.Context) {
	tiers, err := h.svc.Reward.ListTiers(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	resp := make([]dto.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		resp = append(resp, dto.TierResponse{
			TierID:    t.TierID,
			Threshold: t.Threshold,
			FileID:    t.FileID,
		})
	}
	response.OK(c, resp)
}

func (h *AdminHandler) limit(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return h.defaultSize
}
