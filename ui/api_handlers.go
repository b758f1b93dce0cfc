package ui

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loanlens/internal/charts"
	"loanlens/internal/dashboard"
	"loanlens/internal/errors"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) renderJSONError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	s.logError(c, status, err)
	c.AbortWithStatusJSON(status, gin.H{"error": apiError{
		Code:    errors.GetCode(err),
		Message: err.Error(),
	}})
}

// overview fetches the overview view or answers with a JSON error
func (s *Server) overview(c *gin.Context) (*dashboard.OverviewView, bool) {
	view, err := s.service.Overview(c.Request.Context())
	if err != nil {
		s.renderJSONError(c, err)
		return nil, false
	}
	return view, true
}

func (s *Server) handleDataset(c *gin.Context) {
	info, err := s.service.DatasetInfo(c.Request.Context())
	if err != nil {
		s.renderJSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleSummary(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.Summary)
	}
}

func (s *Server) handleTrendsCount(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.LoansIssued)
	}
}

func (s *Server) handleTrendsAmount(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.LoanAmount)
	}
}

func (s *Server) handleWeekdays(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.Weekdays)
	}
}

func (s *Server) handleConditions(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.Conditions)
	}
}

func (s *Server) handleGrades(c *gin.Context) {
	if view, ok := s.overview(c); ok {
		c.JSON(http.StatusOK, view.Grades)
	}
}

func (s *Server) handleDistribution(c *gin.Context) {
	condition, err := dashboard.ParseCondition(c.Query("condition"))
	if err != nil {
		s.renderJSONError(c, err)
		return
	}
	view, err := s.service.Distribution(c.Request.Context(), condition)
	if err != nil {
		s.renderJSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleChartPNG serves /charts/<name>.png. The histogram honours ?condition=.
func (s *Server) handleChartPNG(c *gin.Context) {
	file := c.Param("file")
	name := strings.TrimSuffix(file, ".png")
	if name == file || !charts.ValidPNGName(name) {
		s.renderJSONError(c, errors.NotFound("chart "+file))
		return
	}

	condition, err := dashboard.ParseCondition(c.Query("condition"))
	if err != nil {
		s.renderJSONError(c, err)
		return
	}

	ctx := c.Request.Context()
	var data charts.Data
	if name == charts.NameHistogram {
		view, err := s.service.Distribution(ctx, condition)
		if err != nil {
			s.renderJSONError(c, err)
			return
		}
		data.Histogram = view.Histogram
	} else {
		view, err := s.service.Overview(ctx)
		if err != nil {
			s.renderJSONError(c, err)
			return
		}
		data = charts.Data{
			LoansIssued: view.LoansIssued,
			LoanAmount:  view.LoanAmount,
			Weekdays:    view.Weekdays,
			Conditions:  view.Conditions,
			Grades:      view.Grades,
		}
	}

	var buf bytes.Buffer
	if err := s.png.Render(&buf, name, data); err != nil {
		s.renderJSONError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
