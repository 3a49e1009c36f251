package api

import (
	"encoding/json"
	"net/http"
)

func (a *api) respJSON(w http.ResponseWriter, js string) {
	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write([]byte(js)); err != nil {
		a.log.Errorf("func respJSON: func Write: %s", err)
	}
}

func (a *api) respError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	code := http.StatusInternalServerError
	resp := map[string]interface{}{
		"code":    ErrService,
		"message": "Internal Server Error",
	}

	switch apiErr := classify(err).(type) {
	case apiError:
		resp["code"] = apiErr.Code
		resp["message"] = apiErr.Message

		switch apiErr.Code {
		case ErrBadRequest:
			code = http.StatusBadRequest
		case ErrTooLarge:
			code = http.StatusRequestEntityTooLarge
		case ErrUnavailable:
			code = http.StatusServiceUnavailable
		}
	default:
		a.log.With("func", "respError").Error(err)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		a.log.Error(err)
	}

	w.WriteHeader(code)

	if _, err = w.Write(b); err != nil {
		a.log.Error(err)
	}
}
