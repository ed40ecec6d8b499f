// Package web is the HTTP front of the task list. Every request carries the
// session credential in the token cookie; protected routes sit behind the
// route guard and run a per-request synchronizer against the remote API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"pkt.systems/pslog"

	"gtodo/internal/credential"
	"gtodo/internal/guard"
	"gtodo/internal/service"
)

// ServiceFactory returns a service that authenticates with the credential
// in store.
type ServiceFactory func(store credential.Reader) service.Service

// Server is the gtodo web server
type Server struct {
	services ServiceFactory
	logger   pslog.Logger
	router   *gin.Engine
	secure   bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l pslog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

// NewServer creates a new web server
func NewServer(services ServiceFactory, opts ...Option) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		services: services,
		router:   router,
	}
	for _, opt := range opts {
		opt(s)
	}
	router.Use(s.withLogger)
	// The guard runs for every path, including unmatched ones under /protected.
	router.Use(guard.Middleware(guard.CookieName))

	// Public pages
	router.GET(guard.LandingPath, s.handlePublicPage)
	router.GET(guard.SignInPath, s.handlePublicPage)
	router.GET(guard.SignUpPath, s.handlePublicPage)
	router.POST(guard.SignInPath, s.handleSignIn)
	router.POST(guard.SignUpPath, s.handleSignUp)

	// Protected pages
	protected := router.Group(guard.ProtectedPrefix)
	{
		protected.GET("/todo", s.handleList)
		protected.POST("/todo", s.handleCreate)
		protected.GET("/todo/:id", s.handleTask)
		protected.POST("/todo/:id", s.handleRename)
		protected.POST("/todo/:id/toggle", s.handleToggle)
		protected.DELETE("/todo/:id", s.handleDelete)
		protected.POST("/logout", s.handleLogout)
	}

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	pslog.Ctx(ctx).Info("http front listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) withLogger(c *gin.Context) {
	if s.logger != nil {
		ctx := pslog.ContextWithLogger(c.Request.Context(), s.logger)
		c.Request = c.Request.WithContext(ctx)
	}
	start := time.Now()
	c.Next()
	pslog.Ctx(c.Request.Context()).Debug("http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}
