package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/breakeven"
	"github.com/Simplici0/laffle/internal/scenario"
)

var errInvalidScenarioID = errors.New("invalid scenario id")

type analysisViewData struct {
	baseViewData
	Inputs        breakeven.Inputs
	SweepLimit    int
	OperatingDays int
	ProfitPerUnit float64
	HasBreakEven  bool
	Result        breakeven.Result
	DailyTarget   float64
	Points        []breakeven.Point
	Query         string
	Scenarios     []scenario.Scenario
}

type seriesResponse struct {
	SalesPrice    float64       `json:"sales_price"`
	UnitCost      float64       `json:"unit_cost"`
	FixedCost     float64       `json:"fixed_cost"`
	ProfitPerUnit float64       `json:"profit_per_unit"`
	BreakEvenQty  *float64      `json:"break_even_qty"`
	Unreachable   bool          `json:"unreachable"`
	NoBreakEven   bool          `json:"no_break_even"`
	Points        []seriesPoint `json:"points"`
}

type seriesPoint struct {
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	TotalCost float64 `json:"total_cost"`
}

// resolveInputs reads the simulator inputs from a saved scenario when
// scenario_id is given, otherwise from the query string.
func (s *server) resolveInputs(r *http.Request) (breakeven.Inputs, error) {
	raw := r.URL.Query().Get("scenario_id")
	if raw == "" {
		return parseBreakEvenQuery(r, s.calc)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return breakeven.Inputs{}, fmt.Errorf("%w: %q", errInvalidScenarioID, raw)
	}
	sc, err := s.scenarios.Get(r.Context(), id)
	if err != nil {
		return breakeven.Inputs{}, err
	}
	return sc.Inputs(s.calc.SweepStep), nil
}

func (s *server) handleAnalysisPage(w http.ResponseWriter, r *http.Request) {
	view := analysisViewData{
		baseViewData:  flashFromQuery(r),
		SweepLimit:    s.calc.SweepLimit,
		OperatingDays: s.calc.OperatingDays,
		Query:         strings.TrimSpace(r.URL.Query().Get("q")),
	}

	scenarios, err := s.scenarios.List(r.Context(), view.Query)
	if err != nil {
		s.log.Error("list scenarios", zap.Error(err))
		http.Error(w, "failed to load scenarios", http.StatusInternalServerError)
		return
	}
	view.Scenarios = scenarios

	in, err := s.resolveInputs(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		view.ErrorMessage = describeAnalysisError(err)
		view.Inputs = breakeven.Inputs{
			SalesPrice: s.calc.SalesPrice,
			UnitCost:   s.calc.UnitCost,
			FixedCost:  s.calc.FixedCost,
			SweepMax:   s.calc.SweepMax,
			SweepStep:  s.calc.SweepStep,
		}
		s.renderTemplate(w, "analysis.html", view)
		return
	}

	view.Inputs = in
	view.ProfitPerUnit = in.SalesPrice - in.UnitCost
	view.Points = slices.Collect(breakeven.Sweep(in))

	result, err := breakeven.Simulate(in)
	switch {
	case err == nil:
		view.HasBreakEven = true
		view.Result = result
		view.DailyTarget = result.DailyTarget(s.calc.OperatingDays)
	case errors.Is(err, breakeven.ErrNoBreakEven):
		view.ErrorMessage = "⚠️ 販売価格が原価より安いです！これでは赤字になります。"
	default:
		w.WriteHeader(http.StatusBadRequest)
		view.ErrorMessage = describeAnalysisError(err)
	}

	s.renderTemplate(w, "analysis.html", view)
}

func (s *server) handleAnalysisSeries(w http.ResponseWriter, r *http.Request) {
	in, err := s.resolveInputs(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, describeAnalysisError(err))
		return
	}

	resp := seriesResponse{
		SalesPrice:    in.SalesPrice,
		UnitCost:      in.UnitCost,
		FixedCost:     in.FixedCost,
		ProfitPerUnit: in.SalesPrice - in.UnitCost,
		Points:        make([]seriesPoint, 0),
	}
	for p := range breakeven.Sweep(in) {
		resp.Points = append(resp.Points, seriesPoint{Quantity: p.Quantity, Revenue: p.Revenue, TotalCost: p.TotalCost})
	}

	result, err := breakeven.Simulate(in)
	switch {
	case err == nil:
		qty := result.BreakEvenQty
		resp.BreakEvenQty = &qty
		resp.Unreachable = result.Unreachable
	case errors.Is(err, breakeven.ErrNoBreakEven):
		resp.NoBreakEven = true
	default:
		writeJSONError(w, http.StatusBadRequest, describeAnalysisError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode series", zap.Error(err))
	}
}

func (s *server) handleScenarioSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// The simulator form posts the same field names the page reads from
	// the query string.
	r.URL.RawQuery = r.PostForm.Encode()
	in, err := parseBreakEvenQuery(r, s.calc)
	if err != nil {
		redirectWithError(w, r, "/analysis", err.Error())
		return
	}

	id, err := s.scenarios.Save(r.Context(), r.PostForm.Get("title"), in)
	if errors.Is(err, scenario.ErrTitleRequired) {
		http.Redirect(w, r, "/analysis?"+inputsQuery(in)+"&error="+url.QueryEscape("シナリオ名を入力してください"), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.log.Error("save scenario", zap.Error(err))
		http.Error(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/analysis?scenario_id=%d&success=%s", id, url.QueryEscape("シナリオを保存しました")), http.StatusSeeOther)
}

func inputsQuery(in breakeven.Inputs) string {
	v := url.Values{}
	v.Set("sales_price", formatNumber(in.SalesPrice))
	v.Set("unit_cost", formatNumber(in.UnitCost))
	v.Set("fixed_cost", formatNumber(in.FixedCost))
	v.Set("sweep_max", strconv.Itoa(in.SweepMax))
	return v.Encode()
}

func describeAnalysisError(err error) string {
	switch {
	case errors.Is(err, breakeven.ErrInvalidSweep):
		return "シミュレーション範囲が不正です"
	case errors.Is(err, breakeven.ErrInvalidInput):
		return "入力値が不正です"
	case errors.Is(err, errInvalidScenarioID):
		return "シナリオIDが不正です"
	case errors.Is(err, sql.ErrNoRows):
		return "シナリオが見つかりません"
	default:
		return err.Error()
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
