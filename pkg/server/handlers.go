package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/anchorlayout/pkg/document"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/session"
)

var tracer = otel.Tracer("anchorlayout/server")

type solveRequest struct {
	Document *document.Document `json:"document"`
	Width    float64            `json:"width,omitempty"`
	Height   float64            `json:"height,omitempty"`
	Refresh  bool               `json:"refresh,omitempty"`
	Persist  bool               `json:"persist,omitempty"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type fitRequest struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Horizontal any     `json:"horizontal,omitempty"`
	Vertical   any     `json:"vertical,omitempty"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	DocHash   string           `json:"doc_hash"`
	Frames    []document.Frame `json:"frames"`
	Report    *layout.Report   `json:"report,omitempty"`
	Passes    int              `json:"passes"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type fitResponse struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cached bool    `json:"cached,omitempty"`
}

func requireDocument(doc *document.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	return nil
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireDocument(req.Document); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, span := tracer.Start(r.Context(), "server.Solve")
	defer span.End()

	res, err := s.opts.Runner.Solve(ctx, req.Document, pipeline.Options{
		Width:   req.Width,
		Height:  req.Height,
		Refresh: req.Refresh,
		Persist: req.Persist,
	})
	if err != nil {
		recordError(span, err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(
		attribute.String("doc_hash", res.DocHash),
		attribute.Bool("cache_hit", res.CacheInfo.Hit),
	)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.opts.Runner.Store.List(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := requireDocument(req.Document); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := session.New(req.Document, s.opts.SessionTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.pass(r.Context(), sess, func(b *document.Built) {
		b.ResizeRoot(req.Width, req.Height)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.persist(r.Context(), sess)
	s.logger.Debug("session created", "id", sess.ID, "doc", sess.DocHash[:12])
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var resp sessionResponse
	_ = sess.Do(func(sess *session.Session) error {
		resp = s.describe(sess, nil)
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "root size must not be negative"))
		return
	}
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.pass(r.Context(), sess, func(b *document.Built) {
		b.ResizeRoot(req.Width, req.Height)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.persist(r.Context(), sess)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req fitRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	h, err := parseFitPriority(req.Horizontal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := parseFitPriority(req.Vertical)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	_, span := tracer.Start(r.Context(), "server.Fit", trace.WithAttributes(
		attribute.String("session", sess.ID),
		attribute.Float64("width", req.Width),
		attribute.Float64("height", req.Height),
	))
	defer span.End()

	opts := pipeline.FitOptions{Width: req.Width, Height: req.Height, Horizontal: h, Vertical: v}
	opts.SetDefaults()
	var size layout.Size
	err = sess.Do(func(sess *session.Session) error {
		var err error
		size, err = s.engine.SizeThatFits(sess.Built.Root, layout.Size{Width: opts.Width, Height: opts.Height}, opts.Horizontal, opts.Vertical)
		return err
	})
	if err != nil {
		recordError(span, err)
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fitResponse{Width: size.Width, Height: size.Height})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.session(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.opts.Records != nil {
		if err := s.opts.Records.Delete(r.Context(), id); err != nil {
			s.logger.Warn("session record delete failed", "id", id, "err", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// session looks id up among live sessions and falls back to the persisted
// records, rebuilding the session when one is found.
func (s *Server) session(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.opts.Sessions.Get(ctx, id)
	if err == nil {
		return sess, nil
	}
	if stderrors.Is(err, session.ErrNotFound) && s.opts.Records != nil {
		if rec, rerr := s.opts.Records.Load(ctx, id); rerr == nil {
			restored, berr := rec.Restore(s.opts.SessionTTL)
			if berr != nil {
				return nil, berr
			}
			if err := s.opts.Sessions.Set(ctx, restored); err != nil {
				return nil, err
			}
			s.logger.Info("session restored", "id", id)
			return restored, nil
		}
	}
	if stderrors.Is(err, session.ErrNotFound) || stderrors.Is(err, session.ErrExpired) {
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, err, "session %s", id)
	}
	return nil, err
}

// pass applies mutate and runs one incremental pass on the session's cache.
func (s *Server) pass(ctx context.Context, sess *session.Session, mutate func(*document.Built)) (sessionResponse, error) {
	ctx, span := tracer.Start(ctx, "server.SessionPass", trace.WithAttributes(
		attribute.String("session", sess.ID),
	))
	defer span.End()

	var resp sessionResponse
	err := sess.Do(func(sess *session.Session) error {
		mutate(sess.Built)
		rep, err := s.engine.SolveContext(ctx, sess.Built.Root, sess.Cache)
		if err != nil {
			return err
		}
		resp = s.describe(sess, &rep)
		span.SetAttributes(attribute.Int("ops", rep.Ops))
		return nil
	})
	if err != nil {
		recordError(span, err)
	}
	return resp, err
}

// describe must be called with the session held.
func (s *Server) describe(sess *session.Session, rep *layout.Report) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		DocHash:   sess.DocHash,
		Frames:    document.Frames(sess.Built.Root),
		Report:    rep,
		Passes:    sess.Cache.Passes(),
		ExpiresAt: time.Now().Add(s.opts.SessionTTL),
	}
}

func (s *Server) persist(ctx context.Context, sess *session.Session) {
	if s.opts.Records == nil {
		return
	}
	if err := s.opts.Records.Save(ctx, sess.Record()); err != nil {
		s.logger.Warn("session record save failed", "id", sess.ID, "err", err)
	}
}

func parseFitPriority(v any) (layout.Priority, error) {
	switch p := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if p < 0 {
			return 0, errors.New(errors.ErrCodeInvalidInput, "invalid fitting priority %v", p)
		}
		return layout.Priority(p), nil
	case string:
		return layout.ParsePriority(p)
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "invalid fitting priority %v", v)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(errors.GetCode(err)))
}
