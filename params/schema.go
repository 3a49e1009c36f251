package params

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

type (
	// field describes one named member of a record document.
	field struct {
		name string
		// ref points into the record: *string, *int, *float64 or *bool.
		ref interface{}
		// def is assigned by reset. Nil for values the record does not own.
		def interface{}
		// persist marks members written to the flash document.
		persist bool
		// readOnly members are serialized but never assigned from a document.
		readOnly bool
		bounds   *bounds
		// onLoad, when set, is assigned after every load whatever the document says.
		onLoad interface{}
	}

	// bounds is an inclusive range for a float member.
	bounds struct {
		min, max float64
		repair   float64
	}

	member struct {
		name  string
		value interface{}
	}
)

func (f field) reset() {
	if f.def != nil {
		set(f.ref, f.def)
	}
}

func (f field) value() interface{} {
	switch p := f.ref.(type) {
	case *string:
		return *p
	case *int:
		return *p
	case *float64:
		return *p
	case *bool:
		return *p
	}
	return nil
}

// assign stores v coerced to the member type. Values of another JSON type become the zero value.
func (f field) assign(v interface{}) {
	switch p := f.ref.(type) {
	case *string:
		s, _ := v.(string)
		*p = s
	case *int:
		*p = 0
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				*p = int(i)
			} else if fl, err := n.Float64(); err == nil {
				*p = int(fl)
			}
		}
	case *float64:
		*p = 0
		if n, ok := v.(json.Number); ok {
			if fl, err := n.Float64(); err == nil {
				*p = fl
			}
		}
	case *bool:
		b, _ := v.(bool)
		*p = b
	}
}

// repair puts an out of bounds value back to the repair value and reports whether it did.
func (f field) repair() bool {
	p, ok := f.ref.(*float64)
	if f.bounds == nil || !ok {
		return false
	}
	if *p < f.bounds.min || *p > f.bounds.max {
		*p = f.bounds.repair
		return true
	}
	return false
}

func set(ref, v interface{}) {
	switch p := ref.(type) {
	case *string:
		*p = v.(string)
	case *int:
		*p = v.(int)
	case *float64:
		*p = v.(float64)
	case *bool:
		*p = v.(bool)
	}
}

func resetAll(fields []field) {
	for _, f := range fields {
		f.reset()
	}
}

func persisted(fields []field) []field {
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		if f.persist {
			out = append(out, f)
		}
	}
	return out
}

// encode renders the members as one JSON object in table order.
func encode(fields []field, capacity int, tail ...member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(name string, v interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(name)
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "func Marshal %s", name)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	for _, f := range fields {
		if err := write(f.name, f.value()); err != nil {
			return nil, err
		}
	}
	for _, m := range tail {
		if err := write(m.name, m.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	if buf.Len() > capacity {
		return nil, errors.Wrapf(ErrDocumentTooLarge, "%d bytes, limit %d", buf.Len(), capacity)
	}
	return buf.Bytes(), nil
}

// decode parses a JSON object into its members. Numbers are kept as json.Number.
func decode(b []byte) (map[string]interface{}, error) {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	var m map[string]interface{}
	if err := d.Decode(&m); err != nil {
		return nil, errors.Wrap(ErrMalformedDocument, err.Error())
	}
	if _, err := d.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrMalformedDocument, "trailing data after the object")
	}
	return m, nil
}

// overlay assigns every writable member present in m and returns the names of repaired members.
func overlay(fields []field, m map[string]interface{}) []string {
	var repaired []string
	for _, f := range fields {
		if f.readOnly {
			continue
		}
		v, ok := m[f.name]
		if !ok {
			continue
		}
		f.assign(v)
		if f.repair() {
			repaired = append(repaired, f.name)
		}
	}
	return repaired
}

func force(fields []field) {
	for _, f := range fields {
		if f.onLoad != nil {
			set(f.ref, f.onLoad)
		}
	}
}

func snapshot(fields []field) []interface{} {
	saved := make([]interface{}, len(fields))
	for i, f := range fields {
		saved[i] = f.value()
	}
	return saved
}

func restore(fields []field, saved []interface{}) {
	for i, f := range fields {
		set(f.ref, saved[i])
	}
}

// apply overlays m and keeps the result only when the full and the persisted documents still fit
// into capacity. Otherwise every member gets its previous value back.
func apply(fields []field, m map[string]interface{}, capacity int) error {
	saved := snapshot(fields)
	overlay(fields, m)

	if _, err := encode(fields, capacity); err != nil {
		restore(fields, saved)
		return err
	}
	if _, err := encode(persisted(fields), capacity); err != nil {
		restore(fields, saved)
		return err
	}
	return nil
}
