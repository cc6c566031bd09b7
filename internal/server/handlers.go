package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/pipeline"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// storeRequest is the body of POST /. ParseData is a base64-encoded JSON,
// YAML or TOML document or corpus.
type storeRequest struct {
	ParseData *string `json:"parse_data"`
	UUID      *string `json:"uuid"`
}

type okResponse struct {
	OK        bool   `json:"ok"`
	UUID      string `json:"uuid,omitempty"`
	Instances int    `json:"instances,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, okResponse{OK: true})
}

// handleStore validates an uploaded document or corpus and stores it. A
// missing uuid is generated and returned.
func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, errors.New(errors.ErrCodeUnsupported, "layout storage is disabled"))
		return
	}

	var req storeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "no JSON data received"))
		return
	}
	if req.ParseData == nil || *req.ParseData == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "missing parse_data"))
		return
	}

	id := store.NewLayoutID()
	if req.UUID != nil {
		id = *req.UUID
	}
	if err := errors.ValidateLayoutID(id); err != nil {
		s.respondError(w, err)
		return
	}

	data, err := base64.StdEncoding.DecodeString(*req.ParseData)
	if err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse_data is not base64"))
		return
	}
	instances, err := document.ParseCorpus(data, document.DetectFormat(data))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), store.NewLayout(id, instances...)); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("stored layout", "layout", id, "instances", len(instances))
	respondJSON(w, http.StatusOK, okResponse{OK: true, UUID: id, Instances: len(instances)})
}

// handleLayoutSVG renders one instance of a stored layout. The optional
// instance query parameter picks it (default 0); width sets the minimum
// canvas width.
func (s *Server) handleLayoutSVG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := s.loadLayout(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	index := 0
	if v := r.URL.Query().Get("instance"); v != "" {
		if index, err = strconv.Atoi(v); err != nil {
			s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "invalid instance %q", v))
			return
		}
	}
	doc, err := l.Instance(index)
	if err != nil {
		s.respondError(w, err)
		return
	}

	opts := pipeline.Options{Formats: []string{pipeline.FormatSVG}, LayoutID: id}
	if v := r.URL.Query().Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil || width < 0 {
			s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
		opts.MinWidth = width
	}

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[pipeline.FormatSVG])
}

// loadLayout returns the stored layout id, or the standard document as an
// unsaved layout when id is empty.
func (s *Server) loadLayout(ctx context.Context, id string) (*store.Layout, error) {
	if id == "" {
		return store.NewLayout("", s.cfg.Standard), nil
	}
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "layout %s not found", id)
	}
	return s.store.Get(ctx, id)
}

func httpStatus(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	respondJSON(w, status, okResponse{
		Code:  string(errors.GetCode(err)),
		Error: errors.UserMessage(err),
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
