package api

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/kostiamol/spinparams/params"
)

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		a.log.Errorf("func Write: %s", err)
	}
}

func (a *api) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var debug bool
	if v := r.URL.Query().Get("debug"); v != "" {
		var err error
		if debug, err = strconv.ParseBool(v); err != nil {
			a.respError(w, newBadRequestError("debug must be a boolean"))
			return
		}
	}

	js, err := a.paramsProvider.SettingsJSON(debug)
	if err != nil {
		a.log.Errorf("func getSettingsHandler: func SettingsJSON: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) patchSettingsHandler(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r, params.UserSettingsSize)
	if err != nil {
		a.log.Errorf("func patchSettingsHandler: func readBody: %s", err)
		a.respError(w, err)
		return
	}

	js, err := a.paramsProvider.PatchSettings(b)
	if err != nil {
		a.log.Errorf("func patchSettingsHandler: func PatchSettings: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) resetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	js, err := a.paramsProvider.ResetSettings()
	if err != nil {
		a.log.Errorf("func resetSettingsHandler: func ResetSettings: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) dumpSettingsHandler(w http.ResponseWriter, r *http.Request) {
	a.dump(w, "dumpSettingsHandler", a.paramsProvider.DumpSettings)
}

func (a *api) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	js, err := a.paramsProvider.ProfileJSON()
	if err != nil {
		a.log.Errorf("func getProfileHandler: func ProfileJSON: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) patchProfileHandler(w http.ResponseWriter, r *http.Request) {
	b, err := readBody(r, params.PowerCurveSize)
	if err != nil {
		a.log.Errorf("func patchProfileHandler: func readBody: %s", err)
		a.respError(w, err)
		return
	}

	js, err := a.paramsProvider.PatchProfile(b)
	if err != nil {
		a.log.Errorf("func patchProfileHandler: func PatchProfile: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) resetProfileHandler(w http.ResponseWriter, r *http.Request) {
	js, err := a.paramsProvider.ResetProfile()
	if err != nil {
		a.log.Errorf("func resetProfileHandler: func ResetProfile: %s", err)
		a.respError(w, err)
		return
	}
	a.respJSON(w, js)
}

func (a *api) dumpProfileHandler(w http.ResponseWriter, r *http.Request) {
	a.dump(w, "dumpProfileHandler", a.paramsProvider.DumpProfile)
}

// dump buffers the stored document so that a storage failure can still be answered with an error.
func (a *api) dump(w http.ResponseWriter, name string, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		a.log.Errorf("func %s: %s", name, err)
		a.respError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		a.log.Errorf("func %s: func Write: %s", name, err)
	}
}

// readBody reads at most limit bytes of the request body.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	b, err := ioutil.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, newBadRequestError(err.Error())
	}
	if int64(len(b)) > limit {
		return nil, newTooLargeError()
	}
	return b, nil
}
