// aviation/leg.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brunoga/deep"

	"github.com/atcsim/atcsim/util"
)

type LegType int

const (
	LegTypeDirect LegType = iota
	LegTypeVector
	LegTypeSID
	LegTypeSTAR
	LegTypeAirway
)

func (t LegType) String() string {
	return []string{"direct", "vector", "SID", "STAR", "airway"}[int(t)]
}

// Leg is a contiguous run of waypoints built from a single route-string
// segment: a bare fix, a vector token, or an ENTRY.NAME.EXIT procedure or
// airway span. Waypoints that have been flown are moved from remaining to
// flown rather than dropped, so the leg's total waypoint count never
// changes after construction.
type Leg struct {
	segment     string // canonical route-string segment, e.g. "KSFO28R.OFFSH9.SXC"
	legType     LegType
	entry, exit string // boundary fixes; for direct and vector legs, the token itself
	procedure   string // procedure or airway name, empty for direct/vector legs
	remaining   []Waypoint
	flown       []Waypoint
}

// MakeLeg builds a leg from one self-contained route-string segment,
// resolving procedures, airways, and fixes through the provided database.
// A segment that cannot be fully resolved is a hard error; legs are never
// constructed partially.
func MakeLeg(db *StaticDatabase, segment string) (*Leg, error) {
	segment = strings.ToUpper(strings.TrimSpace(segment))
	if segment == "" {
		return nil, ErrMalformedRouteString
	}

	if strings.Contains(segment, procedureDivider) {
		return makeProcedureLeg(db, segment)
	} else if strings.HasPrefix(segment, VectorPrefix) {
		return makeVectorLeg(segment)
	} else {
		return makeDirectLeg(db, segment)
	}
}

func makeProcedureLeg(db *StaticDatabase, segment string) (*Leg, error) {
	parts := strings.Split(segment, procedureDivider)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%q: %w", segment, ErrMalformedRouteString)
	}
	entry, name, exit := parts[0], parts[1], parts[2]

	l := &Leg{
		segment:   segment,
		entry:     entry,
		exit:      exit,
		procedure: name,
	}

	var err error
	if proc, ok := db.Procedure(name); ok {
		l.legType = util.Select(proc.Type == ProcedureTypeSID, LegTypeSID, LegTypeSTAR)
		l.remaining, err = db.ExpandProcedure(proc, entry, exit)
	} else if aw, ok := db.Airway(name); ok {
		l.legType = LegTypeAirway
		l.remaining, err = db.AirwaySpan(aw, entry, exit)
	} else {
		err = fmt.Errorf("%s: %w", name, ErrUnknownProcedure)
	}
	if err != nil {
		return nil, err
	}
	if len(l.remaining) == 0 {
		return nil, fmt.Errorf("%q: %w", segment, ErrEmptyLeg)
	}
	return l, nil
}

func makeVectorLeg(segment string) (*Leg, error) {
	hdg, err := strconv.Atoi(strings.TrimPrefix(segment, VectorPrefix))
	if err != nil || hdg < 1 || hdg > 360 {
		return nil, fmt.Errorf("%q: %w", segment, ErrInvalidVectorHeading)
	}
	return &Leg{
		segment:   segment,
		legType:   LegTypeVector,
		entry:     segment,
		exit:      segment,
		remaining: []Waypoint{makeVectorWaypoint(segment)},
	}, nil
}

func makeDirectLeg(db *StaticDatabase, segment string) (*Leg, error) {
	fix, ok := db.FindFix(segment)
	if !ok {
		return nil, fmt.Errorf("%s: %w", segment, ErrUnknownFix)
	}
	return &Leg{
		segment:   segment,
		legType:   LegTypeDirect,
		entry:     segment,
		exit:      segment,
		remaining: []Waypoint{MakeWaypoint(segment, fix.Location)},
	}, nil
}

// RouteString returns the canonical route-string segment the leg was
// built from; Route's reassembly depends on this round-tripping through
// the segmentation grammar.
func (l *Leg) RouteString() string { return l.segment }

func (l *Leg) Entry() string { return l.entry }
func (l *Leg) Exit() string  { return l.exit }

func (l *Leg) IsSID() bool    { return l.legType == LegTypeSID }
func (l *Leg) IsSTAR() bool   { return l.legType == LegTypeSTAR }
func (l *Leg) IsAirway() bool { return l.legType == LegTypeAirway }
func (l *Leg) IsVector() bool { return l.legType == LegTypeVector }
func (l *Leg) IsDirect() bool { return l.legType == LegTypeDirect }

func (l *Leg) Type() LegType { return l.legType }

// Waypoints returns the leg's remaining (unflown) waypoints in order.
func (l *Leg) Waypoints() []Waypoint { return l.remaining }

// FlownWaypoints returns the waypoints already consumed by skip
// operations, in the order they were flown.
func (l *Leg) FlownWaypoints() []Waypoint { return l.flown }

// CurrentWaypoint returns the leg's active waypoint; nil only if every
// waypoint in the leg has been flown.
func (l *Leg) CurrentWaypoint() *Waypoint {
	if len(l.remaining) == 0 {
		return nil
	}
	return &l.remaining[0]
}

func (l *Leg) HasNextWaypoint() bool { return len(l.remaining) > 1 }

func (l *Leg) HasFix(name string) bool {
	for _, wp := range l.remaining {
		if strings.EqualFold(wp.Fix, name) {
			return true
		}
	}
	return false
}

// SkipToNextWaypoint moves the current waypoint into the flown sequence
// and advances; returns false if the leg has no next waypoint.
func (l *Leg) SkipToNextWaypoint() bool {
	if !l.HasNextWaypoint() {
		return false
	}
	l.flown = append(l.flown, l.remaining[0])
	l.remaining = l.remaining[1:]
	return true
}

// SkipToFix advances the leg to the named waypoint, moving everything
// before it into the flown sequence; returns false if the leg doesn't
// contain the fix.
func (l *Leg) SkipToFix(name string) bool {
	for i, wp := range l.remaining {
		if strings.EqualFold(wp.Fix, name) {
			l.flown = append(l.flown, l.remaining[:i]...)
			l.remaining = l.remaining[i:]
			return true
		}
	}
	return false
}

// TopAltitude returns the highest altitude constraint across the leg's
// waypoints; ok is false if no waypoint carries one.
func (l *Leg) TopAltitude() (alt int, ok bool) {
	for _, wps := range [][]Waypoint{l.flown, l.remaining} {
		for _, wp := range wps {
			if wp.AltitudeMax != UnsetAltitude && (!ok || wp.AltitudeMax > alt) {
				alt, ok = wp.AltitudeMax, true
			}
		}
	}
	return
}

// BottomAltitude returns the lowest altitude constraint across the leg's
// waypoints; ok is false if no waypoint carries one.
func (l *Leg) BottomAltitude() (alt int, ok bool) {
	for _, wps := range [][]Waypoint{l.flown, l.remaining} {
		for _, wp := range wps {
			if wp.AltitudeMin != UnsetAltitude && (!ok || wp.AltitudeMin < alt) {
				alt, ok = wp.AltitudeMin, true
			}
		}
	}
	return
}

func (l *Leg) waypointCount() int { return len(l.flown) + len(l.remaining) }

// Clone returns a leg that shares no waypoint storage with the original;
// hold parameters in particular must not be aliased between routes.
func (l *Leg) Clone() *Leg {
	dupe := *l
	dupe.remaining = deep.MustCopy(l.remaining)
	dupe.flown = deep.MustCopy(l.flown)
	return &dupe
}
