package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Extract(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		want   string
		wantOK bool
		kind   Kind
	}{
		{name: "string trimmed", json: `"  55 "`, want: "55", wantOK: true, kind: KindString},
		{name: "blank string", json: `"   "`, want: "", wantOK: false, kind: KindString},
		{name: "null", json: `null`, want: "", wantOK: false, kind: KindNull},
		{name: "integer", json: `55`, want: "55", wantOK: true, kind: KindNumber},
		{name: "whole float", json: `55.0`, want: "55", wantOK: true, kind: KindNumber},
		{name: "fractional", json: `12.75`, want: "12.75", wantOK: true, kind: KindNumber},
		{name: "huge exponent keeps literal", json: `1e20`, want: "1e20", wantOK: true, kind: KindNumber},
		{name: "bool", json: `true`, want: "true", wantOK: true, kind: KindBool},
		{name: "object compacted", json: `{ "a" : 1 }`, want: `{"a":1}`, wantOK: true, kind: KindRaw},
		{name: "array", json: `[1, 2]`, want: `[1,2]`, wantOK: true, kind: KindRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.kind, v.Kind())
			got, ok := v.Extract()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_ExtractOr(t *testing.T) {
	assert.Equal(t, "fallback", Null().ExtractOr("fallback"))
	assert.Equal(t, "x", String("x").ExtractOr("fallback"))
}

func TestValue_MarshalKeepsNumberLiteral(t *testing.T) {
	params := Parameters{"n": Number("12.50"), "s": String("a"), "z": Null()}
	out, err := json.Marshal(params)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":12.50,"s":"a","z":null}`, string(out))
}

func TestParameters_GetFallsBackToCaseInsensitive(t *testing.T) {
	params := Parameters{"customer_id": String("7")}

	id, ok := params.Text("Customer_ID")
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	_, ok = params.Get("Entity_ID")
	assert.False(t, ok)
}

func TestCanonicalAction(t *testing.T) {
	for in, want := range map[string]string{
		"create": ActionCreate, " GETALL ": ActionGetAll, "Get": ActionGet, "delete": ActionDelete, "UPDATE": ActionUpdate,
	} {
		got, ok := CanonicalAction(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := CanonicalAction("Archive")
	assert.False(t, ok)
}
