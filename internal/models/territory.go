// internal/models/territory.go
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AllZipsMarker is the stored form of "every ZIP in this state".
const AllZipsMarker = "*"

var ErrMalformedTerritories = errors.New("malformed territories")

// Coverage is one state's entry in a territory map: either every ZIP in the
// state or an explicit ZIP set.
type Coverage struct {
	all  bool
	zips map[string]struct{}
}

// AllZips covers every ZIP code of a state.
func AllZips() Coverage {
	return Coverage{all: true}
}

// ZipSet covers only the listed ZIP codes.
func ZipSet(zips ...string) Coverage {
	set := make(map[string]struct{}, len(zips))
	for _, z := range zips {
		if z = strings.TrimSpace(z); z != "" {
			set[z] = struct{}{}
		}
	}
	return Coverage{zips: set}
}

func (c Coverage) IsAll() bool {
	return c.all
}

// Contains reports whether zip is covered.
func (c Coverage) Contains(zip string) bool {
	if c.all {
		return true
	}
	_, ok := c.zips[strings.TrimSpace(zip)]
	return ok
}

// Zips returns the explicit ZIP set in sorted order; nil for AllZips.
func (c Coverage) Zips() []string {
	if c.all {
		return nil
	}
	out := make([]string, 0, len(c.zips))
	for z := range c.zips {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}

func (c Coverage) MarshalJSON() ([]byte, error) {
	if c.all {
		return json.Marshal(AllZipsMarker)
	}
	return json.Marshal(c.Zips())
}

func (c *Coverage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != AllZipsMarker {
			return fmt.Errorf("%w: unexpected string %q", ErrMalformedTerritories, s)
		}
		*c = AllZips()
		return nil
	}

	var zips []string
	if err := json.Unmarshal(data, &zips); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTerritories, err)
	}
	*c = ZipSet(zips...)
	return nil
}

// Territories maps a two-letter state code to its coverage. A state with no
// key is not covered.
type Territories map[string]Coverage

// Covers reports whether the territory includes the given location.
func (t Territories) Covers(state, zip string) bool {
	cov, ok := t[normalizeState(state)]
	if !ok {
		return false
	}
	return cov.Contains(zip)
}

// States returns the covered state codes in sorted order.
func (t Territories) States() []string {
	out := make([]string, 0, len(t))
	for s := range t {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (t *Territories) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeTerritories(data)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// DecodeTerritories strictly decodes stored territory JSON such as
// {"CA":"*","AK":["99501","99502"]}. Empty input decodes to no coverage.
func DecodeTerritories(raw []byte) (Territories, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Territories{}, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTerritories, err)
	}

	out := make(Territories, len(entries))
	for state, value := range entries {
		key := normalizeState(state)
		if key == "" {
			return nil, fmt.Errorf("%w: empty state code", ErrMalformedTerritories)
		}
		var cov Coverage
		if err := cov.UnmarshalJSON(value); err != nil {
			return nil, fmt.Errorf("state %s: %w", key, err)
		}
		out[key] = cov
	}
	return out, nil
}

// ParseTerritories is the lenient form used when reading the roster:
// malformed data covers nothing.
func ParseTerritories(raw []byte) Territories {
	t, err := DecodeTerritories(raw)
	if err != nil {
		return Territories{}
	}
	return t
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
