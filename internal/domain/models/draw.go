package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-set/v2"

	"EuroLens/pkg/util"
)

// Game shape of a EuroMillions draw.
const (
	NumbersPerDraw = 5
	StarsPerDraw   = 2
	MaxNumber      = 50
	MaxStar        = 12
)

// Draw is one historical result. Collections of draws are ordered by
// descending date (index 0 is the most recent).
type Draw struct {
	Date    time.Time
	Numbers []int
	Stars   []int
}

type drawJSON struct {
	Date    string `json:"date"`
	Numbers []int  `json:"numbers"`
	Stars   []int  `json:"stars"`
}

func (d Draw) MarshalJSON() ([]byte, error) {
	return json.Marshal(drawJSON{
		Date:    d.Date.UTC().Format(util.DateLayout),
		Numbers: d.Numbers,
		Stars:   d.Stars,
	})
}

func (d *Draw) UnmarshalJSON(b []byte) error {
	var raw drawJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	date, ok := util.ParseDate(raw.Date)
	if !ok {
		return fmt.Errorf("invalid draw date %q", raw.Date)
	}
	d.Date = date
	d.Numbers = raw.Numbers
	d.Stars = raw.Stars
	return nil
}

// IsCanonical reports whether the draw has exactly 5 distinct numbers in
// [1,50] and 2 distinct stars in [1,12].
func (d Draw) IsCanonical() bool {
	return canonical(d.Numbers, NumbersPerDraw, MaxNumber) && canonical(d.Stars, StarsPerDraw, MaxStar)
}

func canonical(values []int, want, limit int) bool {
	if len(values) != want {
		return false
	}
	for _, v := range values {
		if v < 1 || v > limit {
			return false
		}
	}
	return set.From(values).Size() == want
}
