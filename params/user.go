package params

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// UserSettings defaults.
const (
	DefaultFirmwareUpdateURL     = "http://smartspin2k.com/firmware"
	DefaultDeviceName            = "SmartSpin2k"
	DefaultPassword              = "password"
	DefaultShiftStep             = 600
	DefaultStepperPower          = 900
	DefaultStealthChop           = true
	DefaultInclineMultiplier     = 3.0
	DefaultPowerCorrectionFactor = 1.0
	DefaultERGSensitivity        = 5
	DefaultAutoUpdate            = true
	DefaultConnectedPowerMeter   = "any"
	DefaultConnectedHeartMonitor = "any"
)

// UserSettings holds the device, network and simulation parameters. All methods are safe for
// concurrent use; Persist and Load exclude each other.
type UserSettings struct {
	mu    sync.RWMutex
	doc   *document
	debug DebugSource

	firmwareUpdateURL     string
	incline               float64
	simulatedWatts        int
	simulatedHr           int
	simulatedCad          int
	deviceName            string
	shiftStep             int
	stepperPower          int
	stealthChop           bool
	inclineMultiplier     float64
	powerCorrectionFactor float64
	simulateHr            bool
	simulateWatts         bool
	simulateCad           bool
	ergMode               bool
	ergSensitivity        int
	autoUpdate            bool
	ssid                  string
	password              string
	foundDevices          string
	connectedPowerMeter   string
	connectedHeartMonitor string
	shifterPosition       int
}

// NewUserSettings creates settings holding the defaults.
func NewUserSettings(c *Cfg) *UserSettings {
	s := &UserSettings{
		doc:   newDocument("settings", UserSettingsPath, UserSettingsSize, c),
		debug: c.Debug,
	}
	resetAll(s.fields())
	return s
}

func (s *UserSettings) fields() []field {
	version := FirmwareVersion
	return []field{
		{name: "firmwareUpdateURL", ref: &s.firmwareUpdateURL, def: DefaultFirmwareUpdateURL, persist: true},
		{name: "firmwareVersion", ref: &version, readOnly: true},
		{name: "incline", ref: &s.incline, def: 0.0},
		{name: "simulatedWatts", ref: &s.simulatedWatts, def: 0},
		{name: "simulatedHr", ref: &s.simulatedHr, def: 0},
		{name: "simulatedCad", ref: &s.simulatedCad, def: 0},
		{name: "deviceName", ref: &s.deviceName, def: DefaultDeviceName, persist: true},
		{name: "shiftStep", ref: &s.shiftStep, def: DefaultShiftStep, persist: true},
		{name: "stepperPower", ref: &s.stepperPower, def: DefaultStepperPower, persist: true},
		{name: "stealthchop", ref: &s.stealthChop, def: DefaultStealthChop, persist: true},
		{name: "inclineMultiplier", ref: &s.inclineMultiplier, def: DefaultInclineMultiplier, persist: true},
		{
			name:    "powerCorrectionFactor",
			ref:     &s.powerCorrectionFactor,
			def:     DefaultPowerCorrectionFactor,
			persist: true,
			bounds:  &bounds{min: MinPCF, max: MaxPCF, repair: DefaultPowerCorrectionFactor},
		},
		// Older documents stored the simulate flags; they must never come back on after a restart.
		{name: "simulateHr", ref: &s.simulateHr, def: false, onLoad: false},
		{name: "simulateWatts", ref: &s.simulateWatts, def: false, onLoad: false},
		{name: "simulateCad", ref: &s.simulateCad, def: false, onLoad: false},
		{name: "ERGMode", ref: &s.ergMode, def: false},
		{name: "ERGSensitivity", ref: &s.ergSensitivity, def: DefaultERGSensitivity, persist: true},
		{name: "autoUpdate", ref: &s.autoUpdate, def: DefaultAutoUpdate, persist: true},
		{name: "ssid", ref: &s.ssid, def: DefaultDeviceName, persist: true},
		{name: "password", ref: &s.password, def: DefaultPassword, persist: true},
		{name: "foundDevices", ref: &s.foundDevices, def: ""},
		{name: "connectedPowerMeter", ref: &s.connectedPowerMeter, def: DefaultConnectedPowerMeter, persist: true},
		{name: "connectedHeartMonitor", ref: &s.connectedHeartMonitor, def: DefaultConnectedHeartMonitor, persist: true},
		{name: "shifterPosition", ref: &s.shifterPosition, def: 0},
	}
}

// SetDefaults resets every member to its default.
func (s *UserSettings) SetDefaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	resetAll(s.fields())
}

// JSON returns all the members as one JSON object. With includeDebugLog the recent log lines are
// drained into a debug array; the oldest ones are dropped until the array fits into DebugLogSize.
func (s *UserSettings) JSON(includeDebugLog bool) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := s.fields()
	b, err := encode(fields, UserSettingsSize)
	if err != nil || !includeDebugLog {
		return string(b), err
	}

	lines := []string{}
	if s.debug != nil {
		lines = append(lines, s.debug.Drain()...)
	}
	for {
		b, err = encode(fields, UserSettingsSize+DebugLogSize, member{name: "debug", value: lines})
		if errors.Cause(err) != ErrDocumentTooLarge || len(lines) == 0 {
			return string(b), err
		}
		lines = lines[1:]
	}
}

// Persist overwrites the stored document with the persisted members.
func (s *UserSettings) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.persist(s.fields())
}

// Load overlays the stored document, falling back to the defaults when it is absent or unreadable.
func (s *UserSettings) Load() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.load(s.fields())
}

// Dump writes the stored document to w.
func (s *UserSettings) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.dump(w)
}

// Patch overlays the members present in the JSON object b. Unlike Load it keeps the simulate
// flags as given. When b is malformed or the result would not fit into UserSettingsSize nothing
// changes.
func (s *UserSettings) Patch(b []byte) error {
	m, err := decode(b)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return apply(s.fields(), m, UserSettingsSize)
}

// Commit patches the settings with b and persists them as one step. If either part fails the
// settings keep their previous values.
func (s *UserSettings) Commit(b []byte) error {
	m, err := decode(b)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.fields()
	return s.doc.commit(fields, func() error {
		return apply(fields, m, UserSettingsSize)
	})
}

// Reset restores the defaults and persists them. If persisting fails the settings keep their
// previous values.
func (s *UserSettings) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.fields()
	return s.doc.commit(fields, func() error {
		resetAll(fields)
		return nil
	})
}

func (s *UserSettings) FirmwareUpdateURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firmwareUpdateURL
}

func (s *UserSettings) SetFirmwareUpdateURL(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firmwareUpdateURL = v
}

func (s *UserSettings) Incline() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incline
}

func (s *UserSettings) SetIncline(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incline = v
}

func (s *UserSettings) SimulatedWatts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulatedWatts
}

func (s *UserSettings) SetSimulatedWatts(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulatedWatts = v
}

func (s *UserSettings) SimulatedHr() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulatedHr
}

func (s *UserSettings) SetSimulatedHr(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulatedHr = v
}

func (s *UserSettings) SimulatedCad() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulatedCad
}

func (s *UserSettings) SetSimulatedCad(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulatedCad = v
}

func (s *UserSettings) DeviceName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceName
}

func (s *UserSettings) SetDeviceName(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceName = v
}

// ShiftStep is the number of stepper steps per virtual gear.
func (s *UserSettings) ShiftStep() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shiftStep
}

func (s *UserSettings) SetShiftStep(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shiftStep = v
}

// StepperPower is the motor current limit in mA.
func (s *UserSettings) StepperPower() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepperPower
}

func (s *UserSettings) SetStepperPower(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepperPower = v
}

func (s *UserSettings) StealthChop() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stealthChop
}

func (s *UserSettings) SetStealthChop(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stealthChop = v
}

func (s *UserSettings) InclineMultiplier() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inclineMultiplier
}

func (s *UserSettings) SetInclineMultiplier(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inclineMultiplier = v
}

func (s *UserSettings) PowerCorrectionFactor() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.powerCorrectionFactor
}

// SetPowerCorrectionFactor stores v as is; the bounds are only applied by Load and Patch.
func (s *UserSettings) SetPowerCorrectionFactor(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powerCorrectionFactor = v
}

func (s *UserSettings) SimulateHr() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulateHr
}

func (s *UserSettings) SetSimulateHr(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateHr = v
}

func (s *UserSettings) SimulateWatts() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulateWatts
}

func (s *UserSettings) SetSimulateWatts(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateWatts = v
}

func (s *UserSettings) SimulateCad() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.simulateCad
}

func (s *UserSettings) SetSimulateCad(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateCad = v
}

func (s *UserSettings) ERGMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ergMode
}

func (s *UserSettings) SetERGMode(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ergMode = v
}

func (s *UserSettings) ERGSensitivity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ergSensitivity
}

func (s *UserSettings) SetERGSensitivity(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ergSensitivity = v
}

func (s *UserSettings) AutoUpdate() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoUpdate
}

func (s *UserSettings) SetAutoUpdate(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoUpdate = v
}

func (s *UserSettings) SSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ssid
}

func (s *UserSettings) SetSSID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ssid = v
}

func (s *UserSettings) Password() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.password
}

func (s *UserSettings) SetPassword(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = v
}

// FoundDevices is the last BLE scan result. It is never persisted.
func (s *UserSettings) FoundDevices() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.foundDevices
}

func (s *UserSettings) SetFoundDevices(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foundDevices = v
}

func (s *UserSettings) ConnectedPowerMeter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedPowerMeter
}

func (s *UserSettings) SetConnectedPowerMeter(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectedPowerMeter = v
}

func (s *UserSettings) ConnectedHeartMonitor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedHeartMonitor
}

func (s *UserSettings) SetConnectedHeartMonitor(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectedHeartMonitor = v
}

func (s *UserSettings) ShifterPosition() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shifterPosition
}

func (s *UserSettings) SetShifterPosition(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifterPosition = v
}
