// Package server exposes the product grid over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopify-product-grid/grid"
	"shopify-product-grid/structs"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	src    grid.Source
	logger *zap.Logger
	router *mux.Router
}

func New(src grid.Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{src: src, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/collections/{handle}", s.handleCollectionPage).Methods(http.MethodGet)
	r.HandleFunc("/api/collections/{handle}", s.handleCollectionProducts).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Use(s.logRequests)
	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on port until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server: listen")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return errors.Wrap(srv.Shutdown(shutdownCtx), "server: shutdown")
	})

	return g.Wait()
}

// load runs the pipeline once for the request's handle.
func (s *Server) load(r *http.Request) grid.Outcome {
	handle := mux.Vars(r)["handle"]

	products, err := s.src.Products(r.Context(), handle)
	if err != nil {
		return grid.Outcome{Status: grid.StatusFailed, Handle: handle, Err: err}
	}
	return grid.Outcome{Status: grid.StatusLoaded, Handle: handle, Products: products}
}

func statusFor(o grid.Outcome) int {
	switch {
	case o.Err == nil:
		return http.StatusOK
	case errors.Is(o.Err, grid.ErrCollectionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleCollectionPage(w http.ResponseWriter, r *http.Request) {
	o := s.load(r)
	if o.Err != nil {
		s.logger.Warn("collection page failed", zap.String("handle", o.Handle), zap.Error(o.Err))
	}

	var buf bytes.Buffer
	if err := grid.RenderPage(&buf, o); err != nil {
		s.logger.Error("render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(o))
	_, _ = w.Write(buf.Bytes())
}

type productsResponse struct {
	Handle   string            `json:"handle"`
	Products []structs.Product `json:"products"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCollectionProducts(w http.ResponseWriter, r *http.Request) {
	o := s.load(r)

	w.Header().Set("Content-Type", "application/json")
	if o.Err != nil {
		s.logger.Warn("collection products failed", zap.String("handle", o.Handle), zap.Error(o.Err))
		w.WriteHeader(statusFor(o))
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "error fetching collection products"})
		return
	}

	_ = json.NewEncoder(w).Encode(productsResponse{Handle: o.Handle, Products: o.Products})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}
