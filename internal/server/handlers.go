package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"QuantPicker/internal/calculator"
	"QuantPicker/internal/collector"
	"QuantPicker/internal/exporter"
	"QuantPicker/internal/model"
	"QuantPicker/internal/recorder"
	"QuantPicker/internal/strategy"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const uploadSource = "upload"

// intParam reads a positive integer query parameter, falling back to def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", s.Limit)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intParam(r, "days", s.Days)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// limit caps the configured universe only; an explicit list runs whole.
	tickers := collector.ParseTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		if tickers, err = s.Universe.Tickers(r.Context(), limit); err != nil {
			WriteError(w, r, http.StatusBadGateway, fmt.Sprintf("load universe: %v", err))
			return
		}
	}

	run, err := s.Collector.RankAll(r.Context(), tickers, days)
	if err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.record(r, run)
	s.writeRun(w, r, run)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	if err := r.ParseMultipartForm(s.MaxUpload); err != nil {
		WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	bars, err := collector.ParseCSV(file)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tickers := collector.ParseTickers(r.FormValue("tickers"))
	if len(tickers) == 0 {
		ticker := strings.TrimSpace(r.FormValue("ticker"))
		if ticker == "" {
			ticker = "UPLOAD"
		}
		tickers = []string{ticker}
	}
	histories := make([]model.History, len(tickers))
	for i, t := range tickers {
		histories[i] = model.History{Ticker: t, Bars: bars}
	}

	run := s.Collector.RankHistories(histories, uploadSource)
	s.record(r, run)
	s.writeRun(w, r, run)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.Days)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.Collector.ScoreOne(r.Context(), chi.URLParam(r, "ticker"), days)
	switch {
	case errors.Is(err, strategy.ErrEmptyHistory):
		WriteError(w, r, http.StatusNotFound, err.Error())
	case err != nil:
		WriteError(w, r, http.StatusBadGateway, err.Error())
	default:
		WriteJSON(w, r, http.StatusOK, res)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", s.Days)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ticker := chi.URLParam(r, "ticker")
	h, err := s.Collector.Collect(r.Context(), ticker, days)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	points := calculator.ChartSeries(h.Bars)

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_chart.csv", ticker))
		if err := exporter.WriteChartCSV(w, points); err != nil {
			zap.S().Warnf("write chart csv: %v", err)
		}
		return
	}
	WriteJSON(w, r, http.StatusOK, points)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 20)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := s.Recorder.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []model.RunSummary{}
	}
	WriteJSON(w, r, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	WriteJSON(w, r, http.StatusOK, run)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeRunCSV(w, run)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*model.RankingRun, bool) {
	run, err := s.Recorder.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, recorder.ErrRunNotFound) {
		WriteError(w, r, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return run, true
}

func (s *Server) record(r *http.Request, run *model.RankingRun) {
	if err := s.Recorder.RecordRun(r.Context(), run); err != nil {
		zap.S().Errorf("record run %s: %v", run.ID, err)
	}
}

func (s *Server) writeRun(w http.ResponseWriter, r *http.Request, run *model.RankingRun) {
	if r.URL.Query().Get("format") == "csv" {
		writeRunCSV(w, run)
		return
	}
	WriteJSON(w, r, http.StatusOK, run)
}

func writeRunCSV(w http.ResponseWriter, run *model.RankingRun) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=ranking_%s.csv", run.ID))
	if err := exporter.WriteCSV(w, run.Results); err != nil {
		zap.S().Warnf("write ranking csv: %v", err)
	}
}
