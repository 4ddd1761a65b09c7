package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/layoutmetrics/pkg/diagram"
	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/store"
)

const defaultListLimit = 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var f diagram.File
	if err := decode(w, r, s.opts.MaxBodyBytes, &f); err != nil {
		respondError(w, err)
		return
	}
	d, err := diagram.FromFile(f)
	if err != nil {
		respondError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDiagram, err, "%v", err))
		return
	}

	q := r.URL.Query()
	withCrossings, err := boolParam(q.Get("crossings"), false)
	if err != nil {
		respondError(w, err)
		return
	}
	save, err := boolParam(q.Get("save"), true)
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := s.runner.Analyze(r.Context(), d, pipeline.Options{
		Timeout:       s.opts.Timeout,
		WithCrossings: withCrossings,
		Save:          save,
	})
	if err != nil {
		s.logger.Warn("analysis failed", "diagram", d.Name(), "err", err)
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		respondError(w, errNoStore)
		return
	}
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateReportID(id); err != nil {
		respondError(w, err)
		return
	}

	rec, err := s.runner.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "report %s not found", id))
		return
	}
	if err != nil {
		respondError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "load report"))
		return
	}
	respond(w, http.StatusOK, rec)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		respondError(w, errNoStore)
		return
	}
	limit, err := apperrors.ParseLimit(r.URL.Query().Get("limit"), defaultListLimit)
	if err != nil {
		respondError(w, err)
		return
	}

	recs, err := s.runner.Store.List(r.Context(), limit)
	if err != nil {
		respondError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list reports"))
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	respond(w, http.StatusOK, map[string]any{"reports": recs})
}

var errNoStore = apperrors.New(apperrors.ErrCodeUnsupported, "report storage is not configured")

func boolParam(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid boolean %q", s)
	}
	return v, nil
}
