// Package server exposes the practice and chat services over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/chat"
	"github.com/abhisek/statlab/internal/metrics"
	"github.com/abhisek/statlab/internal/practice"
	"github.com/abhisek/statlab/internal/recommend"
)

// Deps are the services routed by the engine.
type Deps struct {
	Practice    *practice.Service
	Recommender *recommend.Service
	Chat        *chat.Service

	// Metrics is optional; nil serves /metrics as 404 and skips timing.
	Metrics *metrics.Metrics

	// Ping reports storage health for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error

	CORSOrigins []string
	Log         *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(d.Log))
	r.Use(RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(Metrics(d.Metrics))
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(CORS(d.CORSOrigins))
	}

	h := &handlers{practice: d.Practice, recommender: d.Recommender, chat: d.Chat, ping: d.Ping}

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")
	api.GET("/concepts", h.concepts)

	p := api.Group("/practice")
	{
		p.GET("/recommendation/:userId", h.recommendation)
		p.GET("/next/:userId", h.next)
		p.GET("/questions", h.listQuestions)
		p.GET("/questions/:id", h.getQuestion)
		p.POST("/generate", h.generate)
		p.POST("/submit", h.submit)
		p.GET("/progress/:userId", h.progress)
	}

	ch := api.Group("/chat")
	{
		ch.POST("/sessions", h.startSession)
		ch.GET("/sessions/:id/messages", h.listMessages)
		ch.POST("/sessions/:id/messages", h.sendMessage)
		ch.GET("/issues/:userId", h.issues)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", nil)
	})
	return r
}

type handlers struct {
	practice    *practice.Service
	recommender *recommend.Service
	chat        *chat.Service
	ping        func(ctx context.Context) error
}

func (h *handlers) health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			respondError(c, http.StatusServiceUnavailable, "unhealthy", err)
			return
		}
	}
	respondOK(c, gin.H{"status": "ok"})
}
