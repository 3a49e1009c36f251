package params

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/store"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	root string
	fs   *store.Dir
	logs *observer.ObservedLogs
	cfg  *Cfg
}

func newFixture(t *testing.T) *fixture {
	root, err := ioutil.TempDir("", "params")
	require.Nil(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(root) })

	core, logs := observer.New(zapcore.DebugLevel)
	fs := store.NewDir(root)

	return &fixture{
		root: root,
		fs:   fs,
		logs: logs,
		cfg: &Cfg{
			Store:  fs,
			Log:    log.FromZap(zap.New(core)),
			Metric: metric.New("params-test", prometheus.NewRegistry()),
		},
	}
}

func (f *fixture) write(t *testing.T, name, content string) {
	require.Nil(t, ioutil.WriteFile(filepath.Join(f.root, name), []byte(content), 0644))
}

func (f *fixture) read(t *testing.T, name string) string {
	b, err := ioutil.ReadFile(filepath.Join(f.root, name))
	require.Nil(t, err)
	return string(b)
}

func (f *fixture) errorLogs() int {
	var n int
	for _, e := range f.logs.All() {
		if e.Level == zapcore.ErrorLevel {
			n++
		}
	}
	return n
}

// brokenFS fails the operations switched on.
type brokenFS struct {
	store.FS
	create, open error
}

func (b *brokenFS) Create(name string) (io.WriteCloser, error) {
	if b.create != nil {
		return nil, b.create
	}
	return b.FS.Create(name)
}

func (b *brokenFS) Open(name string) (io.ReadCloser, error) {
	if b.open != nil {
		return nil, b.open
	}
	return b.FS.Open(name)
}

type staticDebug []string

func (d staticDebug) Drain() []string { return d }

func cause(err error) error {
	return errors.Cause(err)
}
