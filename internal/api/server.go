// Package api exposes wallet scans and transaction assessments over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/observability"
	"chain-risk-lab/internal/reporting"
	"chain-risk-lab/internal/storage"
	"chain-risk-lab/internal/storage/memory"
)

// Collector runs the wallet collection pipeline.
type Collector interface {
	Collect(ctx context.Context, chain, wallet string) domain.CollectionResult
}

// Assessor runs the multi-tool transaction workflow.
type Assessor interface {
	Execute(ctx context.Context, chain, hash string) domain.WorkflowResult
}

// Server wires the HTTP routes to the analysis components.
type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	collector   Collector
	assessor    Assessor
	reports     storage.ScanReportStore
	assessments storage.AssessmentStore
	publisher   alert.Publisher
	now         func() time.Time
}

// Option configures Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and handler errors.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReportStore sets where scan reports are kept.
func WithReportStore(r storage.ScanReportStore) Option {
	return func(s *Server) { s.reports = r }
}

// WithAssessmentStore sets where assessments are kept.
func WithAssessmentStore(a storage.AssessmentStore) Option {
	return func(s *Server) { s.assessments = a }
}

// WithPublisher sets the alert publisher.
func WithPublisher(p alert.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds the router. Stores default to in-memory, alerts to Nop.
func NewServer(c Collector, a Assessor, opts ...Option) *Server {
	s := &Server{
		logger:      zap.NewNop(),
		collector:   c,
		assessor:    a,
		reports:     memory.NewScanReportStore(),
		assessments: memory.NewAssessmentStore(),
		publisher:   alert.Nop{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))

	s.router = router
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := s.router.Group("/v1")
	{
		wallets := v1.Group("/wallets/:chain/:address")
		wallets.GET("/scan", s.scanWallet)
		wallets.GET("/reports", s.listReports)

		v1.GET("/reports/:id", s.getReport)

		v1.GET("/tx/:chain/:hash/assessment", s.assessTransaction)
		v1.GET("/tx/:chain/:hash/assessments", s.listTxAssessments)
		v1.GET("/assessments/recent", s.listRecentAssessments)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) reportGenerator() *reporting.Generator {
	return reporting.NewGenerator(s.reports).WithClock(s.now)
}
