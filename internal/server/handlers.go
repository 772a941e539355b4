package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/KaramelBytes/smartbiz-cli/internal/analysis"
	"github.com/KaramelBytes/smartbiz-cli/internal/logger"
	"github.com/KaramelBytes/smartbiz-cli/internal/parser"
	"github.com/KaramelBytes/smartbiz-cli/internal/schema"
	"github.com/labstack/echo/v4"
)

// AnalyzeRequest holds the form fields of POST /api/v1/analyze.
type AnalyzeRequest struct {
	From         string   `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string   `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Categories   []string `form:"category"`
	Customers    []string `form:"customer"`
	TopN         int      `form:"top_n" validate:"gte=0,lte=1000"`
	Threshold    float64  `form:"threshold" validate:"gte=0,lte=1"`
	Name         string   `form:"name"`
	BusinessType string   `form:"business_type"`
	FoundingYear int      `form:"founding_year"`
	SheetName    string   `form:"sheet_name"`
	SheetIndex   int      `form:"sheet_index" validate:"gte=0"`
}

// SchemaResponse describes the accepted upload format.
type SchemaResponse struct {
	Columns  []string       `json:"columns"`
	Template map[string]any `json:"template"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, SchemaResponse{Columns: schema.Required, Template: schema.TemplateRow})
}

func (s *Server) handleTemplateCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := schema.WriteTemplateCSV(&buf); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="template.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleTemplateXLSX(c echo.Context) error {
	var buf bytes.Buffer
	if err := schema.WriteTemplateXLSX(&buf); err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="template.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return tooLargeOr(err, invalid("invalid form: %v", err))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return tooLargeOr(err, invalid("missing upload field 'file'"))
	}
	profile, err := s.profileFor(req)
	if err != nil {
		return err
	}
	from, err := parseDay(req.From)
	if err != nil {
		return invalid("invalid from: %v", err)
	}
	to, err := parseDay(req.To)
	if err != nil {
		return invalid("invalid to: %v", err)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	log := logger.FromContext(c.Request().Context())
	tbl, err := parser.Read(fh.Filename, f, parser.Options{SheetName: req.SheetName, SheetIndex: req.SheetIndex})
	if err != nil {
		s.metrics.analysesTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, parser.ErrUnsupported) {
			return err
		}
		return invalid("read %s: %v", fh.Filename, err)
	}
	set, err := analysis.Normalize(tbl, s.cfg.Normalize)
	if err != nil {
		s.metrics.analysesTotal.WithLabelValues("rejected").Inc()
		return err
	}

	criteria := analysis.FilterCriteria{
		DateRange:  analysis.DateRangeOf(set, from, to),
		Categories: req.Categories,
		Customers:  req.Customers,
	}
	opt := analysis.Options{TopN: s.cfg.TopN, ParetoThreshold: s.cfg.ParetoThreshold, Profile: profile}
	if req.TopN > 0 {
		opt.TopN = req.TopN
	}
	if req.Threshold > 0 {
		opt.ParetoThreshold = req.Threshold
	}
	rep, err := analysis.Analyze(set, criteria, opt)
	if err != nil {
		s.metrics.analysesTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("analyze: %w", err)
	}
	rep.Source = fh.Filename

	s.metrics.analysesTotal.WithLabelValues("ok").Inc()
	s.metrics.recordsAnalyzed.Observe(float64(set.Len()))
	log.Info().
		Str("run_id", rep.RunID).
		Str("file", fh.Filename).
		Int("records", rep.TotalRecords).
		Int("filtered", rep.FilteredRecords).
		Msg("analysis complete")
	return c.JSON(http.StatusOK, rep)
}

// profileFor returns the request's business profile, or the server default
// when the request names none.
func (s *Server) profileFor(req AnalyzeRequest) (*analysis.BusinessProfile, error) {
	if req.Name == "" && req.BusinessType == "" && req.FoundingYear == 0 {
		return s.cfg.Profile, nil
	}
	p := &analysis.BusinessProfile{Name: req.Name, BusinessType: req.BusinessType, FoundingYear: req.FoundingYear}
	if err := p.Validate(); err != nil {
		return nil, invalid("%v", err)
	}
	return p, nil
}

func parseDay(s string) (*civil.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	d := civil.DateOf(t)
	return &d, nil
}

// tooLargeOr surfaces a body-limit rejection as 413 and anything else as fallback.
func tooLargeOr(err, fallback error) error {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return echo.ErrStatusRequestEntityTooLarge
	}
	return fallback
}
