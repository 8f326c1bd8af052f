package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thep200/star-neighbours/api"
	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/internal/model"
	"github.com/thep200/star-neighbours/internal/neighbour"
	"github.com/thep200/star-neighbours/pkg/log"
)

// Service là phần của NeighbourAPI mà HTTP layer cần đến
type Service interface {
	Discover(ctx context.Context, owner, repo string) (*neighbour.Result, error)
	VerifyApiKey(key string) (*model.User, error)
	Stats() api.DiscoveryStats
	Ping() error
}

// Handler xử lý các HTTP request của API
type Handler struct {
	Logger  log.Logger
	Config  *cfg.Config
	Service Service
}

func NewHandler(logger log.Logger, config *cfg.Config, service Service) (*Handler, error) {
	return &Handler{
		Logger:  logger,
		Config:  config,
		Service: service,
	}, nil
}

// RegisterRoutes đăng ký các route của API
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)

	authed := router.Group("/", h.apiKeyAuth())
	authed.GET("/repos/:owner/:repo/starneighbours", h.getStarNeighbours)
	authed.GET("/stats", h.getStats)
}

// starNeighboursResponse là payload trả về cho một lần discover
type starNeighboursResponse struct {
	Repo             string                    `json:"repo"`
	Neighbours       []neighbour.NeighbourEdge `json:"neighbours"`
	Degraded         bool                      `json:"degraded"`
	FailedStargazers []neighbour.Stargazer     `json:"failed_stargazers"`
}

func (h *Handler) getStarNeighbours(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	result, err := h.Service.Discover(c.Request.Context(), owner, repo)
	if err != nil {
		h.writeDiscoverError(c, owner, repo, err)
		return
	}

	c.JSON(http.StatusOK, starNeighboursResponse{
		Repo:             owner + "/" + repo,
		Neighbours:       result.Neighbours,
		Degraded:         result.Degraded,
		FailedStargazers: result.FailedStargazers,
	})
}

func (h *Handler) writeDiscoverError(c *gin.Context, owner, repo string, err error) {
	switch {
	case errors.Is(err, neighbour.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "repository not found", "repo": owner + "/" + repo})
	case errors.Is(err, neighbour.ErrUpstreamUnauthorized):
		// Lỗi cấu hình phía server, không phải lỗi của client
		h.Logger.Error(c.Request.Context(), "Upstream credential rejected while discovering %s/%s", owner, repo)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream authentication misconfigured"})
	case errors.Is(err, neighbour.ErrStargazerListUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stargazer list unavailable, try again later"})
	default:
		h.Logger.Error(c.Request.Context(), "Discover %s/%s failed: %v", owner, repo, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Stats())
}

func (h *Handler) healthz(c *gin.Context) {
	if err := h.Service.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
