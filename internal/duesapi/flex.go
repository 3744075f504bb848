package duesapi

import (
	"bytes"
	"strconv"
	"strings"
)

// The record service is backed by a spreadsheet, so numeric cells arrive
// sometimes as JSON numbers and sometimes as strings ("50", "", null).
// flexFloat and flexInt absorb all of those, defaulting to zero instead of
// failing the whole decode.

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	v := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if v == "" || v == "null" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	*f = flexFloat(parsed)
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(f)
	return nil
}
