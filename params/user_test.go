package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/kostiamol/spinparams/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultsJSON(t *testing.T, f *fixture) string {
	js, err := NewUserSettings(f.cfg).JSON(false)
	require.Nil(t, err)
	return js
}

func TestUserSettingsDefaults(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	assert.Equal(t, DefaultFirmwareUpdateURL, s.FirmwareUpdateURL())
	assert.Equal(t, 600, s.ShiftStep())
	assert.Equal(t, 3.0, s.InclineMultiplier())
	assert.Equal(t, 1.0, s.PowerCorrectionFactor())
	assert.Equal(t, DefaultDeviceName, s.SSID())
	assert.Equal(t, DefaultStepperPower, s.StepperPower())
	assert.True(t, s.StealthChop())
	assert.True(t, s.AutoUpdate())
	assert.False(t, s.ERGMode())
	assert.Equal(t, "any", s.ConnectedPowerMeter())
	assert.Equal(t, 0, s.ShifterPosition())

	s.SetShiftStep(42)
	s.SetIncline(4.5)
	s.SetDefaults()
	first, err := s.JSON(false)
	require.Nil(t, err)
	s.SetDefaults()
	second, err := s.JSON(false)
	require.Nil(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, defaultsJSON(t, f), first)
}

func TestUserSettingsJSON(t *testing.T) {
	f := newFixture(t)
	f.cfg.Debug = staticDebug{"line one", "line two"}
	s := NewUserSettings(f.cfg)

	js, err := s.JSON(false)
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(js, `{"firmwareUpdateURL":`))

	var m map[string]interface{}
	require.Nil(t, json.Unmarshal([]byte(js), &m))
	assert.Len(t, m, 24)
	assert.Equal(t, FirmwareVersion, m["firmwareVersion"])
	assert.NotContains(t, m, "debug")

	js, err = s.JSON(true)
	require.Nil(t, err)
	m = nil
	require.Nil(t, json.Unmarshal([]byte(js), &m))
	assert.Equal(t, []interface{}{"line one", "line two"}, m["debug"])
}

func TestUserSettingsJSONWithoutDebugSource(t *testing.T) {
	f := newFixture(t)
	js, err := NewUserSettings(f.cfg).JSON(true)
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(js, `"debug":[]}`))
}

func TestUserSettingsJSONTooLarge(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	s.SetFoundDevices(strings.Repeat("a", UserSettingsSize))

	_, err := s.JSON(false)
	assert.Equal(t, ErrDocumentTooLarge, cause(err))
}

func TestUserSettingsRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	s.SetFirmwareUpdateURL("http://example.com/fw")
	s.SetDeviceName("garage-bike")
	s.SetShiftStep(450)
	s.SetStepperPower(1200)
	s.SetStealthChop(false)
	s.SetInclineMultiplier(2.25)
	s.SetPowerCorrectionFactor(1.15)
	s.SetERGSensitivity(7)
	s.SetAutoUpdate(false)
	s.SetSSID("home")
	s.SetPassword("s3cret")
	s.SetConnectedPowerMeter("Assioma")
	s.SetConnectedHeartMonitor("HRM-Pro")
	s.SetSimulateHr(true)
	s.SetSimulateWatts(true)
	s.SetSimulateCad(true)
	s.SetIncline(3.5)
	s.SetERGMode(true)
	s.SetShifterPosition(9)
	s.SetFoundDevices("[]")

	require.Nil(t, s.Persist())

	got := NewUserSettings(f.cfg)
	assert.Equal(t, Loaded, got.Load())

	assert.Equal(t, "http://example.com/fw", got.FirmwareUpdateURL())
	assert.Equal(t, "garage-bike", got.DeviceName())
	assert.Equal(t, 450, got.ShiftStep())
	assert.Equal(t, 1200, got.StepperPower())
	assert.False(t, got.StealthChop())
	assert.Equal(t, 2.25, got.InclineMultiplier())
	assert.Equal(t, 1.15, got.PowerCorrectionFactor())
	assert.Equal(t, 7, got.ERGSensitivity())
	assert.False(t, got.AutoUpdate())
	assert.Equal(t, "home", got.SSID())
	assert.Equal(t, "s3cret", got.Password())
	assert.Equal(t, "Assioma", got.ConnectedPowerMeter())
	assert.Equal(t, "HRM-Pro", got.ConnectedHeartMonitor())

	assert.False(t, got.SimulateHr())
	assert.False(t, got.SimulateWatts())
	assert.False(t, got.SimulateCad())
	assert.Equal(t, 0.0, got.Incline())
	assert.False(t, got.ERGMode())
	assert.Equal(t, 0, got.ShifterPosition())
	assert.Equal(t, "", got.FoundDevices())
}

func TestUserSettingsPersistWritesOnlyStoredMembers(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, NewUserSettings(f.cfg).Persist())

	var m map[string]interface{}
	require.Nil(t, json.Unmarshal([]byte(f.read(t, "userconfig.txt")), &m))

	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{
		"ERGSensitivity", "autoUpdate", "connectedHeartMonitor", "connectedPowerMeter", "deviceName",
		"firmwareUpdateURL", "inclineMultiplier", "password", "powerCorrectionFactor", "shiftStep",
		"ssid", "stealthchop", "stepperPower",
	}, keys)
}

func TestUserSettingsPersistOverwrites(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt", strings.Repeat(" ", 900)+`{"shiftStep":1}`)

	s := NewUserSettings(f.cfg)
	require.Nil(t, s.Persist())

	js := f.read(t, "userconfig.txt")
	assert.True(t, strings.HasPrefix(js, `{"firmwareUpdateURL"`))
	assert.Contains(t, js, `"shiftStep":600`)
}

func TestUserSettingsPersistCreateFails(t *testing.T) {
	f := newFixture(t)
	f.cfg.Store = &brokenFS{FS: f.fs, create: errors.New("no space left on device")}
	s := NewUserSettings(f.cfg)
	s.SetShiftStep(300)

	err := s.Persist()
	assert.Equal(t, ErrStorageUnavailable, cause(err))
	assert.Equal(t, 300, s.ShiftStep())
	assert.Equal(t, 1, f.errorLogs())
}

func TestUserSettingsPersistTooLargeKeepsStoredDocument(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	require.Nil(t, s.Persist())
	before := f.read(t, "userconfig.txt")

	s.SetDeviceName(strings.Repeat("x", UserSettingsSize))
	err := s.Persist()

	assert.Equal(t, ErrDocumentTooLarge, cause(err))
	assert.Equal(t, before, f.read(t, "userconfig.txt"))
	assert.Equal(t, 1, f.errorLogs())
}

func TestUserSettingsLoadMissingDocument(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	s.SetShiftStep(123)
	s.SetSSID("elsewhere")

	assert.Equal(t, Defaulted, s.Load())

	js, err := s.JSON(false)
	require.Nil(t, err)
	assert.Equal(t, defaultsJSON(t, f), js)
	assert.Equal(t, 0, f.errorLogs())
}

func TestUserSettingsLoadMalformedDocument(t *testing.T) {
	for _, doc := range []string{
		`{"shiftStep":`,
		`shiftStep=300`,
		`[1,2,3]`,
		`{"shiftStep":300} trailing`,
	} {
		f := newFixture(t)
		f.write(t, "userconfig.txt", doc)
		s := NewUserSettings(f.cfg)
		s.SetShiftStep(123)

		assert.Equal(t, Defaulted, s.Load(), doc)

		js, err := s.JSON(false)
		require.Nil(t, err)
		assert.Equal(t, defaultsJSON(t, f), js, doc)
		assert.Equal(t, 1, f.errorLogs(), doc)
	}
}

func TestUserSettingsLoadUnavailableStorage(t *testing.T) {
	f := newFixture(t)
	f.cfg.Store = &brokenFS{FS: f.fs, open: errors.New("spiffs not mounted")}
	s := NewUserSettings(f.cfg)
	s.SetShiftStep(123)

	assert.Equal(t, Defaulted, s.Load())
	assert.Equal(t, DefaultShiftStep, s.ShiftStep())
	assert.Equal(t, 1, f.errorLogs())
}

func TestUserSettingsLoadOversizedDocument(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt", `{"deviceName":"`+strings.Repeat("x", UserSettingsSize)+`"}`)
	s := NewUserSettings(f.cfg)

	assert.Equal(t, Defaulted, s.Load())
	assert.Equal(t, DefaultDeviceName, s.DeviceName())
	assert.Equal(t, 1, f.errorLogs())
}

func TestUserSettingsLoadRepairsPCF(t *testing.T) {
	const eps = 1e-9
	cases := []struct {
		doc  string
		want float64
	}{
		{`{"powerCorrectionFactor":0.0}`, 1.0},
		{`{"powerCorrectionFactor":-1}`, 1.0},
		{`{"powerCorrectionFactor":0.4}`, 1.0},
		{`{"powerCorrectionFactor":2.6}`, 1.0},
		{`{"powerCorrectionFactor":100}`, 1.0},
		{`{"powerCorrectionFactor":0.500000001}`, MinPCF + eps},
		{`{"powerCorrectionFactor":2.499999999}`, MaxPCF - eps},
		{`{"powerCorrectionFactor":1.7}`, 1.7},
	}

	for _, c := range cases {
		f := newFixture(t)
		f.write(t, "userconfig.txt", c.doc)
		s := NewUserSettings(f.cfg)

		assert.Equal(t, Loaded, s.Load(), c.doc)
		assert.InDelta(t, c.want, s.PowerCorrectionFactor(), 1e-12, c.doc)
	}
}

func TestUserSettingsLoadIsSparse(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt", `{"shiftStep":300,"inclineMultiplier":2.5}`)
	s := NewUserSettings(f.cfg)
	s.SetSSID("kept")

	assert.Equal(t, Loaded, s.Load())
	assert.Equal(t, 300, s.ShiftStep())
	assert.Equal(t, 2.5, s.InclineMultiplier())
	assert.Equal(t, 1.0, s.PowerCorrectionFactor())
	assert.Equal(t, "kept", s.SSID())
}

func TestUserSettingsLoadForcesSimulationOff(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt", `{"simulateHr":true,"simulateWatts":true,"simulateCad":true,"incline":5,"ERGMode":true}`)
	s := NewUserSettings(f.cfg)
	s.SetSimulateWatts(true)

	assert.Equal(t, Loaded, s.Load())
	assert.False(t, s.SimulateHr())
	assert.False(t, s.SimulateWatts())
	assert.False(t, s.SimulateCad())
	assert.Equal(t, 0.0, s.Incline())
	assert.False(t, s.ERGMode())
}

func TestUserSettingsLoadTypeMismatch(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt",
		`{"shiftStep":"fast","deviceName":42,"autoUpdate":"yes","inclineMultiplier":null,"stepperPower":850.7}`)
	s := NewUserSettings(f.cfg)

	assert.Equal(t, Loaded, s.Load())
	assert.Equal(t, 0, s.ShiftStep())
	assert.Equal(t, "", s.DeviceName())
	assert.False(t, s.AutoUpdate())
	assert.Equal(t, 0.0, s.InclineMultiplier())
	assert.Equal(t, 850, s.StepperPower())
}

func TestUserSettingsLoadIgnoresOlderSchemaKeys(t *testing.T) {
	f := newFixture(t)
	f.write(t, "userconfig.txt", `{"inclineStep":400,"simulatePower":true,"deviceName":"old"}`)
	s := NewUserSettings(f.cfg)

	assert.Equal(t, Loaded, s.Load())
	assert.Equal(t, DefaultShiftStep, s.ShiftStep())
	assert.Equal(t, "old", s.DeviceName())
}

func TestUserSettingsDump(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	var buf bytes.Buffer
	assert.Nil(t, s.Dump(&buf))
	assert.Equal(t, 0, buf.Len())

	f.write(t, "userconfig.txt", `{"shiftStep": 300 }`)
	assert.Nil(t, s.Dump(&buf))
	assert.Equal(t, `{"shiftStep": 300 }`, buf.String())
	assert.Equal(t, DefaultShiftStep, s.ShiftStep())
}

func TestUserSettingsPatch(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	err := s.Patch([]byte(`{"simulateHr":true,"simulatedHr":140,"powerCorrectionFactor":9,"firmwareVersion":"x","shiftStep":500}`))
	require.Nil(t, err)
	assert.True(t, s.SimulateHr())
	assert.Equal(t, 140, s.SimulatedHr())
	assert.Equal(t, 1.0, s.PowerCorrectionFactor())
	assert.Equal(t, 500, s.ShiftStep())

	js, _ := s.JSON(false)
	assert.Contains(t, js, `"firmwareVersion":"`+FirmwareVersion+`"`)

	err = s.Patch([]byte(`{"shiftStep":`))
	assert.Equal(t, ErrMalformedDocument, cause(err))
	assert.Equal(t, 500, s.ShiftStep())
}

func TestUserSettingsSetterDoesNotClampPCF(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	s.SetPowerCorrectionFactor(7)
	assert.Equal(t, 7.0, s.PowerCorrectionFactor())
}

func TestUserSettingsConcurrentPersistAndLoad(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	require.Nil(t, s.Persist())

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		states []LoadState
	)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetShiftStep(100 + i)
			assert.Nil(t, s.Persist())
		}(i)
		go func() {
			defer wg.Done()
			st := s.Load()
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, st := range states {
		assert.Equal(t, Loaded, st)
	}
}

func TestUserSettingsPatchTooLargeKeepsRecord(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	err := s.Patch([]byte(`{"shiftStep":500,"deviceName":"` + strings.Repeat("x", 900) + `"}`))
	assert.Equal(t, ErrDocumentTooLarge, cause(err))
	assert.Equal(t, DefaultDeviceName, s.DeviceName())
	assert.Equal(t, DefaultShiftStep, s.ShiftStep())

	_, err = s.JSON(false)
	assert.Nil(t, err)
}

func TestUserSettingsCommit(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)

	require.Nil(t, s.Commit([]byte(`{"shiftStep":450}`)))
	assert.Equal(t, 450, s.ShiftStep())
	assert.Contains(t, f.read(t, "userconfig.txt"), `"shiftStep":450`)

	err := s.Commit([]byte(`{"deviceName":"` + strings.Repeat("x", 900) + `"}`))
	assert.Equal(t, ErrDocumentTooLarge, cause(err))
	assert.Equal(t, DefaultDeviceName, s.DeviceName())
	assert.Contains(t, f.read(t, "userconfig.txt"), `"shiftStep":450`)

	require.Nil(t, s.Commit([]byte(`{"shiftStep":300}`)))
	assert.Equal(t, 300, s.ShiftStep())
}

func TestUserSettingsCommitRestoresOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.cfg.Store = &brokenFS{FS: f.fs, create: errors.New("spiffs not mounted")}
	s := NewUserSettings(f.cfg)
	s.SetShiftStep(450)

	err := s.Commit([]byte(`{"shiftStep":300,"powerCorrectionFactor":2}`))
	assert.Equal(t, ErrStorageUnavailable, cause(err))
	assert.Equal(t, 450, s.ShiftStep())
	assert.Equal(t, DefaultPowerCorrectionFactor, s.PowerCorrectionFactor())

	assert.Equal(t, ErrStorageUnavailable, cause(s.Reset()))
	assert.Equal(t, 450, s.ShiftStep())
}

func TestUserSettingsReset(t *testing.T) {
	f := newFixture(t)
	s := NewUserSettings(f.cfg)
	s.SetShiftStep(450)

	require.Nil(t, s.Reset())
	assert.Equal(t, DefaultShiftStep, s.ShiftStep())
	assert.Contains(t, f.read(t, "userconfig.txt"), `"shiftStep":600`)
}

func TestUserSettingsJSONTrimsDebugLog(t *testing.T) {
	f := newFixture(t)
	ring := log.NewRing(40)
	f.cfg.Log = log.New("params-test", "debug", ring)
	f.cfg.Debug = ring
	s := NewUserSettings(f.cfg)

	for i := 0; i < 20; i++ {
		require.Nil(t, s.Persist())
		require.Equal(t, Loaded, s.Load())
	}

	js, err := s.JSON(true)
	require.Nil(t, err)
	assert.True(t, len(js) <= UserSettingsSize+DebugLogSize)

	var doc struct {
		Debug []string `json:"debug"`
	}
	require.Nil(t, json.Unmarshal([]byte(js), &doc))
	require.NotEmpty(t, doc.Debug)
	assert.True(t, len(doc.Debug) < 40)
	assert.Contains(t, doc.Debug[len(doc.Debug)-1], "file loaded")

	assert.Empty(t, ring.Drain())
}
