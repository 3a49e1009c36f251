// Package svc provides the service that owns the parameters records of the device.
package svc

import (
	"bytes"
	"context"
	"io"

	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/params"
)

// Record names used in published events.
const (
	RecordSettings = "settings"
	RecordProfile  = "profile"
)

const pubQueueSize = 16

type (
	// Publisher is a contract for the announcer of persisted documents.
	Publisher interface {
		Publish(device, record, data string) error
	}

	// ParamsServiceCfg is used to initialize an instance of paramsService.
	ParamsServiceCfg struct {
		Log      log.Logger
		Ctrl     Ctrl
		Metric   *metric.Metric
		Settings *params.UserSettings
		Profile  *params.PowerCurveProfile
		// Publisher is optional. Without it nothing is announced.
		Publisher Publisher
	}

	// paramsService is used to deal with the user settings and the power curve profile.
	paramsService struct {
		log       log.Logger
		ctrl      Ctrl
		metric    *metric.Metric
		settings  *params.UserSettings
		profile   *params.PowerCurveProfile
		publisher Publisher
		pubChan   chan publication
	}

	publication struct {
		device string
		record string
		data   string
	}
)

// NewParamsService creates and initializes a new instance of paramsService.
func NewParamsService(c *ParamsServiceCfg) *paramsService { // nolint
	return &paramsService{
		log:       c.Log.With("component", "params"),
		ctrl:      c.Ctrl,
		metric:    c.Metric,
		settings:  c.Settings,
		profile:   c.Profile,
		publisher: c.Publisher,
		pubChan:   make(chan publication, pubQueueSize),
	}
}

// Run loads both records from storage and launches the goroutines listening to the service
// termination and pending publications.
func (s *paramsService) Run() {
	s.log.With("event", log.EventComponentStarted).Infof("")

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		if r := recover(); r != nil {
			s.log.With("event", log.EventPanic).Errorf("func Run: %s", r)
			s.metric.ErrorCounter(log.EventPanic)
			cancel()
			s.ctrl.Terminate()
		}
	}()

	s.log.Infof("settings %s", s.settings.Load())
	s.log.Infof("profile %s", s.profile.Load())

	go s.listenToTermination(cancel)
	if s.publisher != nil {
		go s.listenToPublications(ctx)
	}
}

func (s *paramsService) listenToTermination(cancel context.CancelFunc) {
	<-s.ctrl.StopChan
	cancel()
	s.log.With("event", log.EventComponentShutdown).Infof("")
	_ = s.log.Flush()
}

func (s *paramsService) listenToPublications(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.With("event", log.EventPanic).Errorf("func listenToPublications: %s", r)
			s.metric.ErrorCounter(log.EventPanic)
			s.ctrl.Terminate()
		}
	}()

	for {
		select {
		case p := <-s.pubChan:
			if err := s.publisher.Publish(p.device, p.record, p.data); err != nil {
				s.log.With("event", log.EventPublishFailed).Errorf("func Publish: %s", err)
				s.metric.ErrorCounter(log.EventPublishFailed)
			}

		case <-ctx.Done():
			return
		}
	}
}

// SettingsJSON returns the user settings, optionally with the recent log lines.
func (s *paramsService) SettingsJSON(debug bool) (string, error) {
	js, err := s.settings.JSON(debug)
	if err != nil {
		s.log.Errorf("func SettingsJSON: %s", err)
		return "", err
	}
	return js, nil
}

// ProfileJSON returns the power curve profile.
func (s *paramsService) ProfileJSON() (string, error) {
	js, err := s.profile.JSON()
	if err != nil {
		s.log.Errorf("func ProfileJSON: %s", err)
		return "", err
	}
	return js, nil
}

// PatchSettings overlays b on the user settings and persists them. On failure the settings keep
// their previous values.
func (s *paramsService) PatchSettings(b []byte) (string, error) {
	if err := s.settings.Commit(b); err != nil {
		s.log.Errorf("func PatchSettings: %s", err)
		return "", err
	}
	s.log.With("event", log.EventParamsPatched).Infof("settings")
	return s.committedSettings()
}

// PatchProfile overlays b on the power curve profile and persists it. On failure the profile keeps
// its previous values.
func (s *paramsService) PatchProfile(b []byte) (string, error) {
	if err := s.profile.Commit(b); err != nil {
		s.log.Errorf("func PatchProfile: %s", err)
		return "", err
	}
	s.log.With("event", log.EventParamsPatched).Infof("profile")
	return s.committedProfile()
}

// ResetSettings restores and persists the default user settings.
func (s *paramsService) ResetSettings() (string, error) {
	if err := s.settings.Reset(); err != nil {
		s.log.Errorf("func ResetSettings: %s", err)
		return "", err
	}
	return s.committedSettings()
}

// ResetProfile restores and persists the default power curve profile.
func (s *paramsService) ResetProfile() (string, error) {
	if err := s.profile.Reset(); err != nil {
		s.log.Errorf("func ResetProfile: %s", err)
		return "", err
	}
	return s.committedProfile()
}

// DumpSettings writes the stored user settings document to w.
func (s *paramsService) DumpSettings(w io.Writer) error {
	return s.settings.Dump(w)
}

// DumpProfile writes the stored power curve profile document to w.
func (s *paramsService) DumpProfile(w io.Writer) error {
	return s.profile.Dump(w)
}

func (s *paramsService) committedSettings() (string, error) {
	s.announce(RecordSettings, s.settings.Dump)
	return s.SettingsJSON(false)
}

func (s *paramsService) committedProfile() (string, error) {
	s.announce(RecordProfile, s.profile.Dump)
	return s.ProfileJSON()
}

// announce queues the stored document of record for publishing together with the device name it
// was stored under. A full queue drops it.
func (s *paramsService) announce(record string, dump func(io.Writer) error) {
	if s.publisher == nil {
		return
	}

	device := s.settings.DeviceName()
	var buf bytes.Buffer
	if err := dump(&buf); err != nil {
		s.log.Errorf("func announce: %s", err)
		return
	}

	select {
	case s.pubChan <- publication{device: device, record: record, data: buf.String()}:
	default:
		s.log.With("event", log.EventPublishFailed).Errorf("func announce: queue is full, %s dropped", record)
		s.metric.ErrorCounter(log.EventPublishFailed)
	}
}
