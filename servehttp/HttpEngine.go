package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taskflow/bizerror"
	"taskflow/common"
	"taskflow/indices"
	"taskflow/indices/search"
	"taskflow/infra/tracing"
	"taskflow/session"
	"taskflow/sessions"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type EngineConfig struct {
	TrustGatewayHeaders bool
	// search routes are mounted only with a search cluster
	SearchEnabled bool
}

// BuildEngine wires every route behind tracing, error handling and authentication.
func BuildEngine(config EngineConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.ServiceName)
	})

	auth := session.SimpleAuthFilter(config.TrustGatewayHeaders)
	sessions.RegisterSessionsHandler(engine, auth)
	RegisterDirectoryHandler(engine, auth)
	RegisterTaskHandler(engine, auth)
	RegisterWorkflowDefinitionHandler(engine, auth)
	RegisterApprovalHandler(engine, auth)
	if config.SearchEnabled {
		indices.RegisterIndicesRestAPI(engine, auth)
		search.RegisterActionSearchRestAPI(engine, auth)
	}
	return engine
}

// StartHTTPServer serves engine on addr until SIGINT or SIGTERM, then drains for a few seconds.
func StartHTTPServer(addr string, engine *gin.Engine) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
	}()
	logrus.Infof("http server is listening on %s", addr)

	quit := make(chan os.Signal, 1)
	// kill -9 can't be caught
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-failed:
		return err
	case <-quit:
	}
	logrus.Info("[QUIT] shutdown signal has been received, the service will exit in 3 seconds.")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully")
	return nil
}
