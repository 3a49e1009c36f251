package main

import (
	log_ "log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kostiamol/spinparams/api"
	"github.com/kostiamol/spinparams/cfg"
	"github.com/kostiamol/spinparams/event/pub"
	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/params"
	"github.com/kostiamol/spinparams/store"
	"github.com/kostiamol/spinparams/svc"
)

const envFile = ".env"

func init() {
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		log_.Fatalf("func Load: %s", err)
	}
}

func main() {
	config, err := cfg.New()
	if err != nil {
		log_.Fatalf("func New: %s", err)
	}

	ring := log.NewRing(config.Service.DebugLogLines)
	logger := log.New(config.Service.AppID, config.Service.LogLevel, ring)
	mtrc := metric.New(config.Service.AppID, nil)

	fs, closeStore := newStore(config.Store, logger)
	defer closeStore()

	c := &params.Cfg{
		Store:  fs,
		Log:    logger,
		Metric: mtrc,
		Debug:  ring,
	}

	var publisher svc.Publisher
	if config.Publisher.Enabled() {
		publisher = pub.New(&pub.Cfg{
			Addr:          config.Publisher.Addr,
			CfgPatchTopic: config.Publisher.CfgPatchTopic,
			Log:           logger,
			RetryTimeout:  config.Publisher.RetryTimeout,
			RetryAttempts: config.Publisher.RetryAttempts,
		})
	}

	ctrl := svc.NewCtrl()

	paramsSvc := svc.NewParamsService(
		&svc.ParamsServiceCfg{
			Log:       logger,
			Ctrl:      ctrl,
			Metric:    mtrc,
			Settings:  params.NewUserSettings(c),
			Profile:   params.NewPowerCurveProfile(c),
			Publisher: publisher,
		})
	paramsSvc.Run()

	apiSvc := api.New(
		&api.Cfg{
			Log:            logger,
			Ctrl:           ctrl,
			Metric:         mtrc,
			PortREST:       config.Service.PortREST,
			ParamsProvider: paramsSvc,
		})
	go apiSvc.Run()

	ctrl.Wait(config.Service.TerminationTimeout)

	logger.With("event", log.EventMSShutdown).Infof("%s is down", config.Service.AppID)
	_ = logger.Flush()
}

// newStore picks the backend holding the documents. A missing directory is reported but not fatal: the
// records fall back to their defaults and every persist fails with storage unavailable.
func newStore(c cfg.Store, l log.Logger) (store.FS, func()) {
	l = l.With("event", log.EventStoreInit)

	if c.Type == cfg.StoreRedis {
		r, err := store.NewRedis(&store.RedisCfg{
			Addr:             c.Addr,
			Password:         c.Password,
			MaxIdlePoolConns: c.MaxIdle,
			IdleTimeout:      c.IdleTimeout,
			Log:              l,
		})
		if err != nil {
			l.Fatalf("func NewRedis: %s", err)
		}
		return r, func() {
			if err := r.Close(); err != nil {
				l.Errorf("func Close: %s", err)
			}
		}
	}

	d := store.NewDir(c.Dir)
	if err := d.Check(); err != nil {
		l.Errorf("func Check: %s", err)
	}
	return d, func() {}
}
