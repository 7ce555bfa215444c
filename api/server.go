package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"contentbot/types"
	"contentbot/workflow"

	"github.com/gin-gonic/gin"
)

const readHeaderTimeout = 10 * time.Second

// Service is what the HTTP layer needs from the workflow
type Service interface {
	TriggerRun(ctx context.Context, origin string) (workflow.TriggerResult, error)
	TriggerScheduled(ctx context.Context, credential string) (workflow.TriggerResult, error)
	Status() types.StatusResponse
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterPipelineRoutes(r, svc)
	RegisterHealthRoutes(r)
	return r
}

// Server is the HTTP server in front of the pipeline
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new server listening on port
func NewServer(svc Service, port string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           NewRouter(svc),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start serves in the background. errc receives the error if the listener
// fails for any reason other than Shutdown.
func (s *Server) Start() <-chan error {
	log.Printf("🌐 Starting server on %s", s.httpServer.Addr)

	errc := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
