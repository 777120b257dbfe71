package render

import (
	"bytes"
	"encoding"
	"encoding/json"
	"reflect"

	"github.com/kbukum/endpointkit/endpoint"
)

// JSON renders processing results as a JSON object.
type JSON struct {
	// DefaultHeaders are set on every successful response.
	DefaultHeaders map[string]string
}

// NewJSON returns a JSON renderer with the given default headers.
func NewJSON(headers map[string]string) *JSON {
	return &JSON{DefaultHeaders: headers}
}

var _ endpoint.RenderFunc = (*JSON)(nil).Render

// Render forwards err to next untouched. Otherwise it applies the status and
// default headers and writes data, wrapped as {"data": value} unless it is
// already a JSON object.
func (j *JSON) Render(_ *endpoint.Request, res endpoint.Response, next endpoint.Next, data any, err error, status ...int) {
	if err != nil {
		next(err)
		return
	}
	if len(status) > 0 && status[0] > 0 {
		res = res.Status(status[0])
	}
	if len(j.DefaultHeaders) > 0 {
		res = res.Set(j.DefaultHeaders)
	}
	res.JSON(envelope(data))
}

// envelope wraps data that would not serialize to a JSON object.
func envelope(data any) any {
	if isObject(data) {
		return data
	}
	return map[string]any{"data": data}
}

func isObject(data any) bool {
	v := reflect.ValueOf(data)
	for v.IsValid() {
		if v.CanInterface() && hasOwnEncoding(v.Interface()) {
			return encodesAsObject(v.Interface())
		}
		if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface {
			break
		}
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Map:
		return !v.IsNil() && v.Type().Key().Kind() == reflect.String
	case reflect.Struct:
		return true
	}
	return false
}

// hasOwnEncoding reports whether encoding/json defers to the value's own
// marshaler, as it does for time.Time and json.RawMessage.
func hasOwnEncoding(data any) bool {
	switch data.(type) {
	case json.Marshaler, encoding.TextMarshaler:
		return true
	}
	return false
}

// encodesAsObject marshals data and checks that the result is a JSON object.
func encodesAsObject(data any) bool {
	b, err := json.Marshal(data)
	if err != nil {
		return false
	}
	b = bytes.TrimLeft(b, " \t\r\n")
	return len(b) > 0 && b[0] == '{'
}
