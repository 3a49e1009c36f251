package params

import (
	"io"
	"sync"
)

// PowerCurveProfile holds two heart rate / power calibration points used to estimate functional
// threshold power from heart rate.
type PowerCurveProfile struct {
	mu  sync.RWMutex
	doc *document

	session1HR  int
	session1Pwr int
	session2HR  int
	session2Pwr int
	hr2Pwr      bool
}

// NewPowerCurveProfile creates a profile holding the default calibration.
func NewPowerCurveProfile(c *Cfg) *PowerCurveProfile {
	p := &PowerCurveProfile{doc: newDocument("profile", PowerCurvePath, PowerCurveSize, c)}
	resetAll(p.fields())
	return p
}

func (p *PowerCurveProfile) fields() []field {
	return []field{
		{name: "session1HR", ref: &p.session1HR, def: 129, persist: true},
		{name: "session1Pwr", ref: &p.session1Pwr, def: 100, persist: true},
		{name: "session2HR", ref: &p.session2HR, def: 154, persist: true},
		{name: "session2Pwr", ref: &p.session2Pwr, def: 150, persist: true},
		{name: "hr2Pwr", ref: &p.hr2Pwr, def: true, persist: true},
	}
}

// SetDefaults .
func (p *PowerCurveProfile) SetDefaults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	resetAll(p.fields())
}

// JSON .
func (p *PowerCurveProfile) JSON() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	b, err := encode(p.fields(), PowerCurveSize)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Persist .
func (p *PowerCurveProfile) Persist() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.persist(p.fields())
}

// Load .
func (p *PowerCurveProfile) Load() LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.load(p.fields())
}

// Dump .
func (p *PowerCurveProfile) Dump(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.dump(w)
}

// Patch overlays the members present in the JSON object b. A malformed b or a result larger than
// PowerCurveSize leaves the profile untouched.
func (p *PowerCurveProfile) Patch(b []byte) error {
	m, err := decode(b)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return apply(p.fields(), m, PowerCurveSize)
}

// Commit patches the profile with b and persists it. If either part fails the profile keeps its
// previous values.
func (p *PowerCurveProfile) Commit(b []byte) error {
	m, err := decode(b)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fields := p.fields()
	return p.doc.commit(fields, func() error {
		return apply(fields, m, PowerCurveSize)
	})
}

// Reset restores and persists the default calibration.
func (p *PowerCurveProfile) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	fields := p.fields()
	return p.doc.commit(fields, func() error {
		resetAll(fields)
		return nil
	})
}

func (p *PowerCurveProfile) Session1HR() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session1HR
}

func (p *PowerCurveProfile) SetSession1HR(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session1HR = v
}

func (p *PowerCurveProfile) Session1Pwr() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session1Pwr
}

func (p *PowerCurveProfile) SetSession1Pwr(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session1Pwr = v
}

func (p *PowerCurveProfile) Session2HR() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session2HR
}

func (p *PowerCurveProfile) SetSession2HR(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session2HR = v
}

func (p *PowerCurveProfile) Session2Pwr() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session2Pwr
}

func (p *PowerCurveProfile) SetSession2Pwr(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session2Pwr = v
}

// HR2Pwr reports whether power is estimated from heart rate.
func (p *PowerCurveProfile) HR2Pwr() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hr2Pwr
}

func (p *PowerCurveProfile) SetHR2Pwr(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hr2Pwr = v
}
