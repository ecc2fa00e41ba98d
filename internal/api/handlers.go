package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/collector"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/reporting"
	"chain-risk-lab/internal/storage"
	"chain-risk-lab/internal/workflow"
)

const (
	defaultReportLimit = 20
	maxReportLimit     = 200
)

// scanWallet runs a collection. A failed collection is still an explicit
// result and is returned with 502. ?format=markdown renders the report.
func (s *Server) scanWallet(c *gin.Context) {
	ctx := c.Request.Context()
	chain, wallet := c.Param("chain"), c.Param("address")

	result := s.collector.Collect(ctx, chain, wallet)
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}

	// History is read before this scan is stored.
	var rendered string
	if c.Query("format") == "markdown" {
		report, err := s.reportGenerator().Generate(ctx, chain, wallet, result)
		if err != nil {
			s.logger.Error("render report failed", zap.String("wallet", wallet), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render report"})
			return
		}
		rendered = reporting.RenderMarkdown(report)
	}

	now := s.now()
	if rep := collector.ScanReport(result, chain, wallet, now); rep != nil {
		if err := s.reports.Insert(ctx, rep); err != nil {
			s.logger.Warn("store scan report failed", zap.String("report_id", rep.ReportID), zap.Error(err))
		}
		if a, ok := alert.ForScan(rep, now); ok {
			if err := s.publisher.Publish(ctx, a); err != nil {
				s.logger.Warn("publish alert failed", zap.String("alert_id", a.ID), zap.Error(err))
			}
		}
	}

	if rendered != "" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rendered))
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryLimit reads ?limit, defaulting and capping it. ok is false after a
// 400 has been written.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultReportLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return 0, false
	}
	return min(n, maxReportLimit), true
}

func (s *Server) listReports(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	reports, err := s.reports.ListByWallet(c.Request.Context(), c.Param("chain"), c.Param("address"), limit)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reports"})
		return
	}
	if reports == nil {
		reports = []*domain.ScanReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) getReport(c *gin.Context) {
	id := c.Param("id")
	report, err := s.reports.GetByID(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		s.logger.Error("get report failed", zap.String("report_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// listTxAssessments returns every stored assessment of one transaction, oldest first.
func (s *Server) listTxAssessments(c *gin.Context) {
	chain, hash := c.Param("chain"), c.Param("hash")
	assessments, err := s.assessments.ListByTx(c.Request.Context(), chain, hash)
	if err != nil {
		s.logger.Error("list assessments failed", zap.String("tx_hash", hash), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list assessments"})
		return
	}
	if assessments == nil {
		assessments = []*domain.Assessment{}
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

// listRecentAssessments feeds the recent-alerts view across all transactions.
func (s *Server) listRecentAssessments(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	assessments, err := s.assessments.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("list recent assessments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list assessments"})
		return
	}
	if assessments == nil {
		assessments = []*domain.Assessment{}
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

// assessTransaction runs the workflow and stores the condensed assessment,
// including fully failed runs.
func (s *Server) assessTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	chain, hash := c.Param("chain"), c.Param("hash")

	result := s.assessor.Execute(ctx, chain, hash)

	now := s.now()
	a := workflow.Assess(result, chain, hash, now)
	if err := s.assessments.Insert(ctx, a); err != nil {
		s.logger.Warn("store assessment failed", zap.String("assessment_id", a.AssessmentID), zap.Error(err))
	}
	if al, ok := alert.ForAssessment(a, now); ok {
		if err := s.publisher.Publish(ctx, al); err != nil {
			s.logger.Warn("publish alert failed", zap.String("alert_id", al.ID), zap.Error(err))
		}
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}
