// aviation/aviation.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atcsim/atcsim/math"
)

///////////////////////////////////////////////////////////////////////////
// TurnDirection

// TurnDirection specifies the direction of a turn.
type TurnDirection int

const (
	TurnClosest TurnDirection = iota // default: turn the shortest direction
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	return []string{"closest", "left", "right"}[int(t)]
}

func (t TurnDirection) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TurnDirection) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"closest"`, `""`:
		*t = TurnClosest
	case `"left"`:
		*t = TurnLeft
	case `"right"`:
		*t = TurnRight
	default:
		return fmt.Errorf("%s: invalid turn direction", string(b))
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Restrictions

// Altitude and speed restrictions use -1 to indicate that a bound is
// unset; all restriction comparisons must be against these constants and
// never against zero, since zero is a legal altitude.
const (
	UnsetAltitude = -1
	UnsetSpeed    = -1
)

// parseRestriction handles the compact encoding used for crossing
// restrictions in navigation data files: "5000+" is at or above, "5000-"
// at or below, "3000-5000" between, and "5000" at exactly.
func parseRestriction(s string, unset int) (min, max int, err error) {
	min, max = unset, unset
	n := len(s)
	if n == 0 {
		return min, max, fmt.Errorf("no value provided for crossing restriction")
	}

	if s[n-1] == '+' {
		if min, err = strconv.Atoi(s[:n-1]); err != nil {
			return unset, unset, fmt.Errorf("%s: error parsing restriction: %v", s, err)
		}
		return min, unset, nil
	} else if s[n-1] == '-' {
		if max, err = strconv.Atoi(s[:n-1]); err != nil {
			return unset, unset, fmt.Errorf("%s: error parsing restriction: %v", s, err)
		}
		return unset, max, nil
	} else if lo, hi, ok := strings.Cut(s, "-"); ok {
		if min, err = strconv.Atoi(lo); err != nil {
			return unset, unset, fmt.Errorf("%s: error parsing restriction: %v", s, err)
		}
		if max, err = strconv.Atoi(hi); err != nil {
			return unset, unset, fmt.Errorf("%s: error parsing restriction: %v", s, err)
		}
		if min > max {
			return unset, unset, fmt.Errorf("%s: low value %d is above high value %d", s, min, max)
		}
		return min, max, nil
	} else {
		if min, err = strconv.Atoi(s); err != nil {
			return unset, unset, fmt.Errorf("%s: error parsing restriction: %v", s, err)
		}
		return min, min, nil
	}
}

// ParseAltitudeRestriction parses an altitude restriction in the compact
// text format used in navigation data files, e.g. "2500+" for "at or
// above 2500".
func ParseAltitudeRestriction(s string) (min, max int, err error) {
	return parseRestriction(s, UnsetAltitude)
}

// ParseSpeedRestriction parses a speed restriction; the grammar matches
// altitude restrictions ("250-" for at or below 250 knots).
func ParseSpeedRestriction(s string) (min, max int, err error) {
	return parseRestriction(s, UnsetSpeed)
}

func FormatAltitude(falt float32) string {
	alt := int(falt)
	if alt >= 18000 {
		return "FL" + strconv.Itoa(alt/100)
	} else if alt < 1000 {
		return strconv.Itoa(100 * (alt / 100))
	} else {
		th := alt / 1000
		hu := (alt % 1000) / 100 * 100
		if th == 0 {
			return strconv.Itoa(hu)
		} else if hu == 0 {
			return strconv.Itoa(th) + ",000"
		} else {
			return fmt.Sprintf("%d,%03d", th, hu)
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Hold

// Hold represents a published holding pattern at a fix.
type Hold struct {
	Fix             string        `json:"fix"`
	InboundCourse   float32       `json:"inbound_course"` // Inbound magnetic course to the fix, degrees
	TurnDirection   TurnDirection `json:"turn_direction"`
	LegLengthNM     float32       `json:"leg_length_nm"` // 0 if time-based
	LegMinutes      float32       `json:"leg_minutes"`   // 0 if distance-based
	MinimumAltitude int           `json:"min_altitude,omitempty"`
	MaximumAltitude int           `json:"max_altitude,omitempty"`
	HoldingSpeed    int           `json:"speed,omitempty"` // knots, 0 if not specified
}

func (h Hold) DisplayName() string {
	n := fmt.Sprintf("%s (%s", h.Fix, h.TurnDirection)
	if h.LegLengthNM != 0 {
		n += fmt.Sprintf(", %.1f nm", h.LegLengthNM)
	} else if h.LegMinutes != 0 {
		n += fmt.Sprintf(", %.1f min", h.LegMinutes)
	}
	return n + ")"
}

// legLength returns the hold's leg length in the waypoint encoding, e.g.
// "1min" or "3nm".
func (h Hold) legLength() string {
	if h.LegLengthNM != 0 {
		return fmt.Sprintf("%dnm", int(h.LegLengthNM))
	} else if h.LegMinutes != 0 {
		return fmt.Sprintf("%dmin", int(h.LegMinutes))
	}
	return "1min" // standard hold
}

// Waypoint constructs a holding waypoint directly from the published
// hold; this is the one case where hold parameters are populated at
// construction rather than via MakeHold.
func (h Hold) Waypoint(loc math.Point2LL) Waypoint {
	wp := MakeWaypoint(h.Fix, loc)
	wp.MakeHold(math.Radians(h.InboundCourse), h.TurnDirection, h.legLength())
	return wp
}
