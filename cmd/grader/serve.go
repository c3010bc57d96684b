package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/autograde/go-grader/cmd/grader/config"
	restgrader "github.com/autograde/go-grader/cmd/grader/rest_grader"
	"github.com/autograde/go-grader/cmd/grader/version"
	"github.com/autograde/go-grader/filestore"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func() error, cleanUp stopFunc)
)

// serve runs the grading servers until ctx is done or a server fails
func serve(ctx context.Context, conf *config.Config, svc *gradeService) error {
	fs, fsCleanUp, err := newFileStore(conf)
	if err != nil {
		return err
	}

	servers := []initFunc{
		cleanUpFs(fsCleanUp),
		initHTTPServer(conf, svc, fs),
		initMonitorHTTPServer(conf),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	var stops []stopFunc
	for _, s := range servers {
		start, stop := s()
		if start != nil {
			eg.Go(start)
		}
		if stop != nil {
			stops = append(stops, stop)
		}
	}

	<-egCtx.Done()
	logger.Info("Shutting Down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var sg errgroup.Group
	for _, s := range stops {
		sg.Go(func() error {
			return s(shutdownCtx)
		})
	}
	err = errors.Join(eg.Wait(), sg.Wait())
	logger.Info("Shutdown Finished", zap.Error(err))
	return err
}

func cleanUpFs(fsCleanUp func() error) initFunc {
	return func() (start func() error, cleanUp stopFunc) {
		if fsCleanUp == nil {
			return nil, nil
		}
		return nil, func(ctx context.Context) error {
			err := fsCleanUp()
			logger.Info("FileStore cleaned up")
			return err
		}
	}
}

func initHTTPServer(conf *config.Config, svc *gradeService, fs filestore.FileStore) initFunc {
	return func() (start func() error, cleanUp stopFunc) {
		srv := &http.Server{
			Addr:    conf.HTTPAddr,
			Handler: initHTTPMux(conf, svc, fs),
		}
		return func() error {
				return listenAndServe(srv, "Http server")
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func() error, cleanUp stopFunc) {
		if !conf.EnableMetrics {
			return nil, nil
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		msrv := &http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mux,
		}
		return func() error {
				return listenAndServe(msrv, "Monitoring http server")
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func listenAndServe(srv *http.Server, name string) error {
	lis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error(name+" listen failed", zap.Error(err))
		return err
	}
	logger.Info("Starting "+strings.ToLower(name), zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); !errors.Is(err, http.ErrServerClosed) {
		logger.Error(name+" stopped", zap.Error(err))
		return err
	}
	logger.Info(name + " stopped")
	return nil
}

func initHTTPMux(conf *config.Config, svc *gradeService, fs filestore.FileStore) http.Handler {
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Metrics Handle
	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	// Version handle
	r.GET("/version", handleVersion(svc))

	// Add auth token
	if conf.AuthToken != "" {
		r.Use(tokenAuth(conf.AuthToken))
		logger.Info("Attach token auth")
	}

	// Rest Handle
	restgrader.NewGradeHandle(svc, fs, logger).Register(r)
	return r
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func handleVersion(svc *gradeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"buildVersion": version.Version,
			"revision":     version.Revision,
			"goVersion":    runtime.Version(),
			"platform":     runtime.GOARCH,
			"os":           runtime.GOOS,
			"languages":    svc.Languages(),
			"testCases":    len(svc.cases),
		})
	}
}

// newFileStore creates the upload store, a temporary directory is created and
// removed on shutdown if no directory is configured
func newFileStore(conf *config.Config) (filestore.FileStore, func() error, error) {
	var cleanUp func() error
	dir := conf.Dir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp(conf.TempDir, "grader-upload-")
		if err != nil {
			return nil, nil, err
		}
		cleanUp = func() error {
			return os.RemoveAll(dir)
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	logger.Info("Upload store", zap.String("dir", filepath.Clean(dir)))

	fs := filestore.NewFileLocalStore(dir)
	if conf.EnableMetrics {
		fs = newMetricsFileStore(fs)
	}
	return fs, cleanUp, nil
}
