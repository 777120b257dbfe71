package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kbukum/endpointkit/endpoint/endpointtest"
)

func TestJSON_ErrorForwardedUnchanged(t *testing.T) {
	res := endpointtest.NewResponse()
	next := &endpointtest.Next{}
	boom := errors.New("boom")

	NewJSON(map[string]string{"X-A": "1"}).Render(nil, res, next.Func(), 5, boom, http.StatusCreated)

	assert.Same(t, boom, next.Err)
	assert.Equal(t, 1, next.Count)
	assert.Empty(t, res.Calls)
	assert.False(t, res.Written)
}

func TestJSON_StatusThenWrappedPrimitive(t *testing.T) {
	res := endpointtest.NewResponse()
	next := &endpointtest.Next{}

	NewJSON(nil).Render(nil, res, next.Func(), 5, nil, 201)

	assert.False(t, next.Called)
	assert.Equal(t, []string{"status", "json"}, res.Methods())
	assert.Equal(t, 201, res.Code)
	assert.Equal(t, map[string]any{"data": 5}, res.Body)
}

func TestJSON_DefaultHeaders(t *testing.T) {
	res := endpointtest.NewResponse()
	headers := map[string]string{"Cache-Control": "no-store"}

	NewJSON(headers).Render(nil, res, (&endpointtest.Next{}).Func(), map[string]any{"ok": true}, nil)

	assert.Equal(t, []string{"set", "json"}, res.Methods())
	assert.Equal(t, "no-store", res.Headers["Cache-Control"])
	assert.Equal(t, map[string]any{"ok": true}, res.Body)
}

// pair is a struct that encodes itself as a JSON array.
type pair struct{ A, B int }

func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int{p.A, p.B})
}

// point is a struct with its own encoding that is still an object.
type point struct{ X int }

func (p point) MarshalJSON() ([]byte, error) {
	return []byte(`{"x":` + strconv.Itoa(p.X) + `}`), nil
}

// level encodes as a JSON string through encoding.TextMarshaler.
type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte("level-" + strconv.Itoa(int(l))), nil
}

func TestJSON_Envelope(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}
	u := &user{Name: "ann"}
	at := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	var nilTime *time.Time
	var nilUser *user
	var nilMap map[string]any

	tests := []struct {
		name string
		data any
		want any
	}{
		{"nil", nil, map[string]any{"data": nil}},
		{"string", "hi", map[string]any{"data": "hi"}},
		{"slice", []int{1, 2}, map[string]any{"data": []int{1, 2}}},
		{"bool", false, map[string]any{"data": false}},
		{"map", map[string]int{"a": 1}, map[string]int{"a": 1}},
		{"struct", user{Name: "ann"}, user{Name: "ann"}},
		{"pointer to struct", u, u},
		{"nil pointer", nilUser, map[string]any{"data": nilUser}},
		{"nil map", nilMap, map[string]any{"data": nilMap}},
		{"int keyed map", map[int]string{1: "a"}, map[string]any{"data": map[int]string{1: "a"}}},
		{"time", at, map[string]any{"data": at}},
		{"pointer to time", &at, map[string]any{"data": &at}},
		{"nil time pointer", nilTime, map[string]any{"data": nilTime}},
		{"marshals to array", pair{1, 2}, map[string]any{"data": pair{1, 2}}},
		{"marshals to object", point{X: 1}, point{X: 1}},
		{"raw array", json.RawMessage(`[1]`), map[string]any{"data": json.RawMessage(`[1]`)}},
		{"raw object", json.RawMessage(` {"a":1}`), json.RawMessage(` {"a":1}`)},
		{"text marshaler", level(2), map[string]any{"data": level(2)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, envelope(tc.data))
		})
	}
}
