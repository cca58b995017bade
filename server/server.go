// Package server exposes a board.Store over JSON RPC endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/ids"
	"github.com/amonks/kanban/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Store  *board.Store
	Logger logrus.FieldLogger
}

// Server handles board RPCs.
type Server struct {
	store  *board.Store
	logger logrus.FieldLogger
}

// New creates a server for store.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{store: opts.Store, logger: logger}, nil
}

// Handler returns the HTTP handler for board RPCs.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, KindNotFound, fmt.Errorf("no endpoint %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, r, http.StatusMethodNotAllowed, KindMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})

	r.Post("/board", handle(s, func(emptyRequest) (any, error) {
		return boardResponse{Board: s.store.Board()}, nil
	}))
	r.Route("/items", func(r chi.Router) {
		r.Post("/add", handle(s, func(req addRequest) (any, error) {
			item, err := s.store.Add(req.Title, req.Description)
			return itemResponse{Item: item}, err
		}))
		r.Post("/move", handle(s, func(req moveRequest) (any, error) {
			if err := checkID(req.ID); err != nil {
				return nil, err
			}
			item, err := s.store.Move(req.ID, req.Status)
			return itemResponse{Item: item}, err
		}))
		r.Post("/reorder", handle(s, func(req reorderRequest) (any, error) {
			if err := checkID(req.ID); err != nil {
				return nil, err
			}
			item, err := s.store.Reorder(req.ID, req.Position)
			return itemResponse{Item: item}, err
		}))
		r.Post("/delete", handle(s, func(req idRequest) (any, error) {
			if err := checkID(req.ID); err != nil {
				return nil, err
			}
			return emptyResponse{}, s.store.Delete(req.ID)
		}))
		r.Post("/update", handle(s, func(req updateRequest) (any, error) {
			if err := checkID(req.ID); err != nil {
				return nil, err
			}
			item, err := s.store.Update(req.ID, board.UpdateOptions{Title: req.Title, Description: req.Description})
			return itemResponse{Item: item}, err
		}))
		r.Post("/get", handle(s, func(req idRequest) (any, error) {
			if err := checkID(req.ID); err != nil {
				return nil, err
			}
			item, err := s.store.Get(req.ID)
			return itemResponse{Item: item}, err
		}))
		r.Post("/resolve", handle(s, func(req idRequest) (any, error) {
			id, err := s.store.Resolve(req.ID)
			return resolveResponse{ID: id}, err
		}))
		r.Post("/search", handle(s, func(req searchRequest) (any, error) {
			return itemsResponse{Items: s.store.SearchDone(req.Query)}, nil
		}))
	})
	r.Post("/wip", handle(s, func(emptyRequest) (any, error) {
		return wipResponse{WIP: s.store.WIP()}, nil
	}))
	r.Post("/wip/set", handle(s, func(req setWIPRequest) (any, error) {
		if err := s.store.SetWIPLimit(req.Limit); err != nil {
			return nil, err
		}
		return wipResponse{WIP: s.store.WIP()}, nil
	}))
	r.Post("/categories", handle(s, func(emptyRequest) (any, error) {
		return categoriesResponse{Categories: s.store.Categories()}, nil
	}))

	return r
}

// Serve listens on addr until the listener fails or an interrupt arrives.
func (s *Server) Serve(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return s.ServeContext(ctx, addr)
}

// ServeContext listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.WithField("addr", addr).Info("serving board")

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

// checkID rejects ids that could not have been issued by the store. Only
// /items/resolve accepts prefixes.
func checkID(id string) error {
	if !ids.Valid(id) {
		return fmt.Errorf("%w: malformed id %q", board.ErrNotFound, id)
	}
	return nil
}

// handle decodes a Req, runs fn, and writes its result or a classified error.
func handle[Req any](s *Server, fn func(Req) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, KindBadRequest, err)
			return
		}
		result, err := fn(req)
		if err != nil {
			kind, status := classify(err)
			s.writeError(w, r, status, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  recovered,
				}).Errorf("panic handling request\n%s", debug.Stack())
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: KindInternal})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

// decodeJSON reads one JSON value. An empty body decodes as the zero value.
func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	entry := s.logger.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}
