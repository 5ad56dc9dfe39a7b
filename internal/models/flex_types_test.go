package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat(t *testing.T) {
	cases := []struct {
		in   string
		want FlexFloat
	}{
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`" 3 "`, 3},
		{`null`, 0},
		{`""`, 0},
	}
	for _, tc := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.Equal(t, tc.want, f, tc.in)
	}
}

func TestFlexFloatRejectsNonFinite(t *testing.T) {
	for _, in := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"-Inf"`, `"+Infinity"`, `"1e400"`, `"lots"`} {
		var f FlexFloat
		assert.Error(t, json.Unmarshal([]byte(in), &f), in)
	}
}

func TestFlexInt(t *testing.T) {
	cases := []struct {
		in   string
		want FlexInt
	}{
		{`7`, 7},
		{`"7"`, 7},
		{`"7.9"`, 7},
		{`4e3`, 4000},
		{`null`, 0},
	}
	for _, tc := range cases {
		var i FlexInt
		require.NoError(t, json.Unmarshal([]byte(tc.in), &i), tc.in)
		assert.Equal(t, tc.want, i, tc.in)
	}
}

func TestFlexIntRejectsOutOfRange(t *testing.T) {
	for _, in := range []string{`"1e30"`, `-1e30`, `"NaN"`, `"Inf"`, `"9223372036854775808"`, `"many"`} {
		var i FlexInt
		assert.Error(t, json.Unmarshal([]byte(in), &i), in)
	}
}

func TestContributionRequestRejectsNaNAmount(t *testing.T) {
	var req CreateContributionRequest
	err := json.Unmarshal([]byte(`{"disasterId":"x","amount":"NaN"}`), &req)
	assert.Error(t, err)
}
