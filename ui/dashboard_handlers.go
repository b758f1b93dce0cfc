package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loanlens/domain/loan"
	"loanlens/internal/charts"
	"loanlens/internal/content"
	"loanlens/internal/dashboard"
	"loanlens/internal/format"
)

// handleOverview renders the overview / trends page
func (s *Server) handleOverview(c *gin.Context) {
	view, err := s.service.Overview(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := overviewPage{
		page:    s.newPage("overview"),
		Metrics: format.Metrics(view.Summary),
	}
	data.Dataset = view.Dataset

	b := s.charts
	tabs := s.content.Trends.Tabs
	var chartErr error
	keep := func(ch charts.Chart, err error) charts.Chart {
		if err != nil && chartErr == nil {
			chartErr = err
		}
		return ch
	}

	issued := keep(b.LoansIssued(view.LoansIssued))
	issued.Title = content.Tab(tabs, 0, issued.Title)
	amount := keep(b.LoanAmount(view.LoanAmount))
	amount.Title = content.Tab(tabs, 1, amount.Title)
	weekday := keep(b.Weekdays(view.Weekdays))
	weekday.Title = content.Tab(tabs, 2, weekday.Title)
	data.Trends = []charts.Chart{issued, amount, weekday}

	data.Condition = keep(b.Conditions(view.Conditions))
	data.Grade = keep(b.Grades(view.Grades))

	if view.Distribution != nil {
		section, err := s.distributionSection("/performance", *view.Distribution)
		if err != nil && chartErr == nil {
			chartErr = err
		}
		data.Distribution = section
	}

	if chartErr != nil {
		s.renderError(c, chartErr)
		return
	}
	s.renderTemplate(c, http.StatusOK, "overview.html", data)
}

// handlePerformance renders the performance / distribution page for the
// condition in the query string
func (s *Server) handlePerformance(c *gin.Context) {
	condition, err := dashboard.ParseCondition(c.Query("condition"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	view, err := s.service.Performance(c.Request.Context(), condition)
	if err != nil {
		s.renderError(c, err)
		return
	}

	data := performancePage{page: s.newPage("performance")}
	data.Dataset = view.Dataset

	if data.Condition, err = s.charts.Conditions(view.Conditions); err != nil {
		s.renderError(c, err)
		return
	}
	if data.Grade, err = s.charts.Grades(view.Grades); err != nil {
		s.renderError(c, err)
		return
	}
	if data.Distribution, err = s.distributionSection("/performance", view.Distribution); err != nil {
		s.renderError(c, err)
		return
	}
	data.Distribution.Options = view.Options

	s.renderTemplate(c, http.StatusOK, "performance.html", data)
}

func (s *Server) distributionSection(action string, view dashboard.DistributionView) (*distributionSection, error) {
	hist, err := s.charts.Histogram(view.Histogram)
	if err != nil {
		return nil, err
	}
	box, err := s.charts.BoxPlots(view.BoxPlots)
	if err != nil {
		return nil, err
	}

	tabs := s.content.Distribution.Tabs
	hist.Title = content.Tab(tabs, 0, hist.Title)
	box.Title = content.Tab(tabs, 1, box.Title)

	return &distributionSection{
		Action:   action,
		Selected: view.Condition,
		Options:  append([]loan.Condition(nil), loan.Conditions...),
		Records:  view.Records,
		Empty:    view.Empty(),
		Charts:   []charts.Chart{hist, box},
	}, nil
}
