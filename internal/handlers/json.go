package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/httpjson"
	"github.com/mmynk/homebase/internal/middleware"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// FlexString accepts either a JSON string or a JSON number and keeps its
// literal text, so "19.99" and 19.99 decode to the same value.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
		return nil
	}
}

// decodeJSON reads the request body into v. An empty body leaves v at its
// zero value so that required-field checks report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// pathID parses the numeric {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("Not found")
	}
	return id, nil
}

func userID(r *http.Request) int64 {
	return middleware.GetUserID(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	httpjson.Write(w, status, v)
}

func writeError(w http.ResponseWriter, err error) {
	httpjson.Error(w, err)
}

// messageBody is the {"message": ...} response used by session and avatar endpoints.
type messageBody struct {
	Message string `json:"message"`
}
