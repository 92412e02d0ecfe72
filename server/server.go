// Package server exposes the HTTP API: PIN login, chat, transcript upload
// and the selection lookups the UI needs.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contractx "github.com/kingswood/clienthub/agent/contract"
	routerx "github.com/kingswood/clienthub/agent/router"
	transcriptx "github.com/kingswood/clienthub/agent/transcript"
	authx "github.com/kingswood/clienthub/pkg/auth"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

type Config struct {
	Host           string        `envconfig:"HOST" split_words:"true" default:"0.0.0.0"`
	Port           int           `envconfig:"PORT" split_words:"true" default:"8080"`
	Debug          bool          `envconfig:"DEBUG" split_words:"true" default:"false"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" split_words:"true"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"120s"`
}

// Server wires the HTTP surface over the routed agent core.
type Server struct {
	cfg        Config
	engine     *gin.Engine
	httpServer *http.Server

	auth     *authx.Service
	router   *routerx.Router
	ingester *transcriptx.Ingester
	crm      contractx.CRMGateway
	project  contractx.ProjectGateway
}

func New(cfg Config, auth *authx.Service, rt *routerx.Router, ing *transcriptx.Ingester, crm contractx.CRMGateway, project contractx.ProjectGateway) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(requestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		auth:     auth,
		router:   rt,
		ingester: ing,
		crm:      crm,
		project:  project,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.POST("/api/auth", s.handleAuth)

	api := s.engine.Group("/api", s.requireToken())
	api.POST("/chat", s.handleChat)
	api.POST("/transcripts", s.handleTranscript)
	api.GET("/contacts", s.handleContacts)
	api.GET("/opportunities", s.handleOpportunities)
	api.GET("/pipelines", s.handlePipelines)
	api.GET("/members", s.handleMembers)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is canceled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logx.Component("server").Info().Str("addr", s.httpServer.Addr).Msg("listening")
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
