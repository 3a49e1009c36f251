// Package api exposes the parameters records over REST.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/svc"
	"github.com/rs/cors"
)

type (
	// ParamsProvider is a contract for the owner of the parameters records.
	ParamsProvider interface {
		SettingsJSON(debug bool) (string, error)
		ProfileJSON() (string, error)
		PatchSettings(b []byte) (string, error)
		PatchProfile(b []byte) (string, error)
		ResetSettings() (string, error)
		ResetProfile() (string, error)
		DumpSettings(w io.Writer) error
		DumpProfile(w io.Writer) error
	}

	// Cfg is used to initialize an instance of api.
	Cfg struct {
		Log            log.Logger
		Ctrl           svc.Ctrl
		Metric         *metric.Metric
		PortREST       uint32
		ParamsProvider ParamsProvider
	}

	// api serves rest.
	api struct {
		log            log.Logger
		ctrl           svc.Ctrl
		metric         *metric.Metric
		portREST       uint32
		paramsProvider ParamsProvider
		router         *mux.Router
		server         *http.Server
	}
)

// New creates and initializes a new instance of api.
func New(c *Cfg) *api { // nolint
	a := &api{
		log:            c.Log.With("component", "api"),
		ctrl:           c.Ctrl,
		metric:         c.Metric,
		portREST:       c.PortREST,
		paramsProvider: c.ParamsProvider,
		router:         mux.NewRouter(),
	}
	a.registerRoutes()
	return a
}

// Run launches the service by running goroutine for listening to the service termination and serves
// queries until the termination.
func (a *api) Run() {
	a.log.With("event", log.EventComponentStarted).Infof("rest port [%d]", a.portREST)

	a.server = &http.Server{
		Handler: a.handler(),
		Addr:    fmt.Sprintf(":%d", a.portREST),
	}

	go a.listenToTermination()

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.log.Errorf("func ListenAndServe: %s", err)
		a.terminate()
	}
}

func (a *api) listenToTermination() {
	<-a.ctrl.StopChan
	if err := a.server.Shutdown(context.Background()); err != nil {
		a.log.Errorf("func Shutdown: %s", err)
	}
	a.terminate()
}

func (a *api) terminate() {
	a.log.With("event", log.EventComponentShutdown).Info()
	_ = a.log.Flush()
	a.ctrl.Terminate()
}

func (a *api) registerRoutes() {
	middleware := []func(next http.HandlerFunc, name string) http.HandlerFunc{
		a.requestLogger,
		a.metric.TimeTracker,
	}

	a.registerRoute(http.MethodGet, "/health", a.health)
	a.registerRoute(http.MethodGet, "/metrics", a.metric.RouterHandlerHTTP())

	a.registerRoute(http.MethodGet, "/v1/settings", a.getSettingsHandler, middleware...)
	a.registerRoute(http.MethodPatch, "/v1/settings", a.patchSettingsHandler, middleware...)
	a.registerRoute(http.MethodPost, "/v1/settings/defaults", a.resetSettingsHandler, middleware...)
	a.registerRoute(http.MethodGet, "/v1/settings/file", a.dumpSettingsHandler, middleware...)

	a.registerRoute(http.MethodGet, "/v1/pwc", a.getProfileHandler, middleware...)
	a.registerRoute(http.MethodPatch, "/v1/pwc", a.patchProfileHandler, middleware...)
	a.registerRoute(http.MethodPost, "/v1/pwc/defaults", a.resetProfileHandler, middleware...)
	a.registerRoute(http.MethodGet, "/v1/pwc/file", a.dumpProfileHandler, middleware...)
}

func (a *api) handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	return c.Handler(a.router)
}
