package params

import (
	"io"
	"io/ioutil"
	"time"

	"github.com/kostiamol/spinparams/log"
	"github.com/kostiamol/spinparams/metric"
	"github.com/kostiamol/spinparams/store"
	"github.com/pkg/errors"
)

// document persists one record schema under a fixed path. Callers hold the record lock.
type document struct {
	name     string
	path     string
	capacity int
	fs       store.FS
	log      log.Logger
	metric   *metric.Metric
}

func newDocument(name, path string, capacity int, c *Cfg) *document {
	return &document{
		name:     name,
		path:     path,
		capacity: capacity,
		fs:       c.Store,
		log:      c.Log.With("component", "params", "doc", name),
		metric:   c.Metric,
	}
}

// persist replaces the stored document with the persisted members of fields. The document is
// serialized before anything is touched on storage.
func (d *document) persist(fields []field) error {
	defer d.metric.Timing(time.Now(), d.name+"_persist")

	b, err := encode(persisted(fields), d.capacity)
	if err != nil {
		return d.writeFailed(err)
	}

	if err := d.fs.Remove(d.path); err != nil {
		d.log.Debugf("func Remove: %s", err)
	}

	d.log.Infof("writing file: %s", d.path)
	w, err := d.fs.Create(d.path)
	if err != nil {
		return d.writeFailed(errors.Wrapf(ErrStorageUnavailable, "failed to create file: %s", err))
	}

	_, werr := w.Write(b)
	cerr := w.Close()
	if werr != nil {
		return d.writeFailed(errors.Wrapf(ErrStorageUnavailable, "failed to write to file: %s", werr))
	}
	if cerr != nil {
		return d.writeFailed(errors.Wrapf(ErrStorageUnavailable, "failed to close file: %s", cerr))
	}

	d.log.With("event", log.EventDocWritten).Infof("%d bytes written to %s", len(b), d.path)
	return nil
}

func (d *document) writeFailed(err error) error {
	d.log.With("event", log.EventDocWriteFailed).Errorf("file %s: %s", d.path, err)
	d.metric.ErrorCounter(log.EventDocWriteFailed)
	return err
}

// load overlays the stored document on fields. Any failure resets fields to their defaults.
func (d *document) load(fields []field) LoadState {
	defer d.metric.Timing(time.Now(), d.name+"_load")

	d.log.Infof("reading file: %s", d.path)
	rc, err := d.fs.Open(d.path)
	if err == store.ErrNotExist {
		d.log.With("event", log.EventDocDefaulted).Infof("couldn't find file %s, loading defaults", d.path)
		resetAll(fields)
		return Defaulted
	}
	if err != nil {
		return d.loadFailed(fields, errors.Wrap(ErrStorageUnavailable, err.Error()))
	}
	defer rc.Close() // nolint

	b, err := ioutil.ReadAll(io.LimitReader(rc, int64(d.capacity)+1))
	if err != nil {
		return d.loadFailed(fields, errors.Wrap(ErrStorageUnavailable, err.Error()))
	}
	if len(b) > d.capacity {
		return d.loadFailed(fields, errors.Wrapf(ErrDocumentTooLarge, "limit %d", d.capacity))
	}

	m, err := decode(b)
	if err != nil {
		return d.loadFailed(fields, err)
	}

	stored := persisted(fields)
	for _, name := range overlay(stored, m) {
		d.log.With("event", log.EventValueRepaired).Infof("%s: %s, reset to default", name, ErrOutOfRange)
		d.metric.ErrorCounter(log.EventValueRepaired)
	}
	force(fields)

	d.log.With("event", log.EventDocLoaded).Infof("file loaded: %s", d.path)
	return Loaded
}

func (d *document) loadFailed(fields []field, err error) LoadState {
	d.log.With("event", log.EventDocLoadFailed).Errorf("failed to read file %s, using defaults: %s", d.path, err)
	d.metric.ErrorCounter(log.EventDocLoadFailed)
	resetAll(fields)
	return Defaulted
}

// dump copies the stored document to w byte for byte.
func (d *document) dump(w io.Writer) error {
	rc, err := d.fs.Open(d.path)
	if err == store.ErrNotExist {
		d.log.With("event", log.EventDocDump).Infof("no file at %s", d.path)
		return nil
	}
	if err != nil {
		err = errors.Wrap(ErrStorageUnavailable, err.Error())
		d.log.With("event", log.EventDocDump).Errorf("failed to read file %s: %s", d.path, err)
		return err
	}
	defer rc.Close() // nolint

	d.log.With("event", log.EventDocDump).Infof("contents of file: %s", d.path)
	if _, err := io.Copy(w, rc); err != nil {
		return errors.Wrap(err, "func Copy")
	}
	return nil
}

// commit runs mutate and persists the result. On any failure the members get their previous values
// back, so the record stays serializable.
func (d *document) commit(fields []field, mutate func() error) error {
	saved := snapshot(fields)
	if err := mutate(); err != nil {
		restore(fields, saved)
		return err
	}
	if err := d.persist(fields); err != nil {
		restore(fields, saved)
		return err
	}
	return nil
}
