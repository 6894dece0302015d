package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTerritories(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, terr Territories)
	}{
		{
			name: "all zips and explicit set",
			raw:  `{"CA":"*","ak":["99501"," 99502 "]}`,
			check: func(t *testing.T, terr Territories) {
				assert.True(t, terr["CA"].IsAll())
				assert.Equal(t, []string{"99501", "99502"}, terr["AK"].Zips())
			},
		},
		{
			name: "empty input covers nothing",
			raw:  ``,
			check: func(t *testing.T, terr Territories) {
				assert.Empty(t, terr)
			},
		},
		{
			name: "null covers nothing",
			raw:  `null`,
			check: func(t *testing.T, terr Territories) {
				assert.Empty(t, terr)
			},
		},
		{name: "not an object", raw: `["CA"]`, wantErr: true},
		{name: "invalid json", raw: `{"CA":`, wantErr: true},
		{name: "unknown string marker", raw: `{"CA":"all"}`, wantErr: true},
		{name: "numeric zips", raw: `{"CA":[90001]}`, wantErr: true},
		{name: "blank state", raw: `{" ":"*"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terr, err := DecodeTerritories([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedTerritories)
				return
			}
			require.NoError(t, err)
			tt.check(t, terr)
		})
	}
}

func TestParseTerritories_MalformedCoversNothing(t *testing.T) {
	terr := ParseTerritories([]byte(`{"CA":`))
	assert.NotNil(t, terr)
	assert.False(t, terr.Covers("CA", "90001"))
}

func TestTerritories_Covers(t *testing.T) {
	terr := Territories{
		"CA": AllZips(),
		"AK": ZipSet("99502"),
	}

	assert.True(t, terr.Covers("CA", "90002"))
	assert.True(t, terr.Covers("ca", "anything"))
	assert.True(t, terr.Covers("AK", "99502"))
	assert.False(t, terr.Covers("AK", "99501"))
	assert.False(t, terr.Covers("NY", "10001"))
	assert.False(t, Territories(nil).Covers("CA", "90001"))
}

func TestTerritories_JSONRoundTripKeepsStoredShape(t *testing.T) {
	terr := Territories{"CA": AllZips(), "AK": ZipSet("99502", "99501")}

	raw, err := json.Marshal(terr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"CA":"*","AK":["99501","99502"]}`, string(raw))

	var back Territories
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, []string{"AK", "CA"}, back.States())
}

func TestDecodeResults(t *testing.T) {
	r := DecodeResults(json.RawMessage(`{"recommendedCoverage":750000,"breakdown":{"income_replacement":500000}}`))
	assert.Equal(t, 750000.0, r.RecommendedCoverage)
	assert.Equal(t, 500000.0, r.Breakdown["income_replacement"])

	assert.Zero(t, DecodeResults(nil).RecommendedCoverage)
	assert.Zero(t, DecodeResults(json.RawMessage(`not json`)).RecommendedCoverage)
}

func TestSubmissionStatus_Valid(t *testing.T) {
	for _, s := range []SubmissionStatus{StatusNew, StatusContacted, StatusConverted, StatusClosed} {
		assert.True(t, s.Valid())
	}
	assert.False(t, SubmissionStatus("archived").Valid())
}

func TestAge_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Age
	}{
		{name: "number", raw: `45`, want: 45},
		{name: "fraction truncated", raw: `45.9`, want: 45},
		{name: "numeric string", raw: `"45"`, want: 45},
		{name: "padded string", raw: `" 52 "`, want: 52},
		{name: "empty string", raw: `""`, want: 0},
		{name: "leading digits", raw: `"45 years"`, want: 45},
		{name: "no digits", raw: `"forty"`, want: 0},
		{name: "null", raw: `null`, want: 0},
		{name: "bool", raw: `true`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PersonalInfo
			require.NoError(t, json.Unmarshal([]byte(`{"age":`+tt.raw+`}`), &p))
			assert.Equal(t, tt.want, p.Age)
		})
	}
}
