// aviation/route.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/util"
)

// Route strings are structured by two divider tokens: ".." joins legs
// that are flown point-to-point, "." joins the entry fix, name, and exit
// fix of a procedure or airway span (and chains consecutive spans that
// share a transition fix).
const (
	directSegmentDivider = ".."
	procedureDivider     = "."
)

// Route is an aircraft's flight plan: an ordered sequence of legs still
// to be flown plus the legs already consumed, partitioned by navigation
// progress. The flight-management logic queries and advances it every
// simulation tick; all mutation must come from that single owner.
type Route struct {
	legs  []*Leg // remaining, in flying order
	flown []*Leg // already consumed, oldest first

	db                *StaticDatabase
	nmPerLongitude    float32
	magneticVariation float32
	lg                *log.Logger
}

// MakeRoute parses a route string and expands it into legs and waypoints
// using the provided navigation database. Construction is all-or-nothing:
// a malformed string, an unresolvable reference, or a route with fewer
// than two waypoints gives an error and no route.
func MakeRoute(db *StaticDatabase, s string, nmPerLongitude, magneticVariation float32, lg *log.Logger) (*Route, error) {
	segments, err := divideRouteString(s)
	if err != nil {
		return nil, err
	}

	r := &Route{
		db:                db,
		nmPerLongitude:    nmPerLongitude,
		magneticVariation: magneticVariation,
		lg:                lg,
	}
	for _, seg := range segments {
		l, err := MakeLeg(db, seg)
		if err != nil {
			return nil, err
		}
		r.legs = append(r.legs, l)
	}

	if r.waypointCount() < 2 {
		return nil, fmt.Errorf("%q: %w", s, ErrRouteTooShort)
	}
	return r, nil
}

// divideRouteString splits a route string into self-contained per-leg
// segments. Within a direct chunk, the first three tokens form the first
// procedure segment and the rest are consumed two at a time, each pair's
// entry fix being the previous pair's exit; the entry is restored here so
// every segment can be resolved independently.
func divideRouteString(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty route string: %w", ErrMalformedRouteString)
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return nil, fmt.Errorf("%q: contains whitespace: %w", s, ErrMalformedRouteString)
	}
	s = strings.ToUpper(s)

	var segments []string
	for _, chunk := range strings.Split(s, directSegmentDivider) {
		tokens := strings.Split(chunk, procedureDivider)
		if slices.Contains(tokens, "") {
			return nil, fmt.Errorf("%q: %w", s, ErrMalformedRouteString)
		}

		if len(tokens) == 1 {
			segments = append(segments, tokens[0])
			continue
		}
		if len(tokens) < 3 || len(tokens)%2 == 0 {
			return nil, fmt.Errorf("%q: %w", s, ErrMalformedRouteString)
		}

		segments = append(segments, strings.Join(tokens[:3], procedureDivider))
		for i := 3; i < len(tokens); i += 2 {
			segments = append(segments,
				tokens[i-1]+procedureDivider+tokens[i]+procedureDivider+tokens[i+1])
		}
	}
	return segments, nil
}

// RouteString reassembles the canonical route string for the remaining
// legs. Adjacent procedure legs that share a boundary fix are merged so
// the transition fix appears once; others are joined with the direct
// divider. For a string accepted by MakeRoute this is the left inverse of
// segmentation.
func (r *Route) RouteString() string {
	var sb strings.Builder
	for i, l := range r.legs {
		if i == 0 {
			sb.WriteString(l.segment)
		} else if prev := r.legs[i-1]; l.procedure != "" && prev.exit == l.entry {
			// Shared transition fix; don't repeat it.
			sb.WriteString(procedureDivider)
			sb.WriteString(l.procedure)
			sb.WriteString(procedureDivider)
			sb.WriteString(l.exit)
		} else {
			sb.WriteString(directSegmentDivider)
			sb.WriteString(l.segment)
		}
	}
	return sb.String()
}

// RouteStringWithSpaces is the human-readable form used for display, with
// the direct divider rendered as a space.
func (r *Route) RouteStringWithSpaces() string {
	return strings.ReplaceAll(r.RouteString(), directSegmentDivider, " ")
}

///////////////////////////////////////////////////////////////////////////
// Navigation state

// CurrentLeg returns the leg being flown. A constructed route always has
// at least one remaining leg.
func (r *Route) CurrentLeg() *Leg { return r.legs[0] }

// FlownLegs returns the legs already consumed, oldest first.
func (r *Route) FlownLegs() []*Leg { return r.flown }

// Legs returns the remaining legs in flying order.
func (r *Route) Legs() []*Leg { return r.legs }

func (r *Route) CurrentWaypoint() *Waypoint { return r.legs[0].CurrentWaypoint() }

// NextWaypoint returns the waypoint after the current one, looking into
// the following leg if the current leg is on its last; nil at the end of
// the route.
func (r *Route) NextWaypoint() *Waypoint {
	if l := r.legs[0]; l.HasNextWaypoint() {
		return &l.remaining[1]
	}
	if len(r.legs) > 1 {
		return r.legs[1].CurrentWaypoint()
	}
	return nil
}

func (r *Route) HasNextLeg() bool { return len(r.legs) > 1 }

func (r *Route) HasNextWaypoint() bool {
	return r.legs[0].HasNextWaypoint() || r.HasNextLeg()
}

func (r *Route) HasFix(name string) bool {
	return slices.ContainsFunc(r.legs, func(l *Leg) bool { return l.HasFix(name) })
}

// SkipToNextLeg moves the current leg into the flown sequence and
// promotes the next one; no-op if this is the last leg.
func (r *Route) SkipToNextLeg() {
	if !r.HasNextLeg() {
		return
	}
	r.flown = append(r.flown, r.legs[0])
	r.legs = r.legs[1:]
}

// SkipToNextWaypoint advances within the current leg if it has another
// waypoint and otherwise moves on to the next leg.
func (r *Route) SkipToNextWaypoint() {
	if !r.legs[0].SkipToNextWaypoint() {
		r.SkipToNextLeg()
	}
}

// SkipToFix advances the route to the named waypoint, moving every leg
// before the one containing it into the flown sequence. Returns false,
// leaving the route unchanged, if no remaining leg contains the fix.
func (r *Route) SkipToFix(name string) bool {
	idx := slices.IndexFunc(r.legs, func(l *Leg) bool { return l.HasFix(name) })
	if idx == -1 {
		return false
	}

	r.flown = append(r.flown, r.legs[:idx]...)
	r.legs = r.legs[idx:]
	return r.legs[0].SkipToFix(name)
}

///////////////////////////////////////////////////////////////////////////
// Mutation

// ReplaceDepartureProcedure builds a leg from the given route-string
// segment and installs it as the route's SID: replacing an existing SID
// leg in place, otherwise inserting at the front. On error the route is
// left untouched.
func (r *Route) ReplaceDepartureProcedure(s string) error {
	l, err := MakeLeg(r.db, s)
	if err != nil {
		r.lg.Warnf("%s: unable to replace departure procedure: %v", s, err)
		return err
	}

	if idx := slices.IndexFunc(r.legs, func(l *Leg) bool { return l.IsSID() }); idx != -1 {
		r.legs[idx] = l
	} else {
		r.legs = util.InsertSliceElement(r.legs, 0, l)
	}
	return nil
}

// ReplaceArrivalProcedure is the arrival counterpart: replaces an
// existing STAR leg in place, otherwise appends at the back.
func (r *Route) ReplaceArrivalProcedure(s string) error {
	l, err := MakeLeg(r.db, s)
	if err != nil {
		r.lg.Warnf("%s: unable to replace arrival procedure: %v", s, err)
		return err
	}

	if idx := slices.IndexFunc(r.legs, func(l *Leg) bool { return l.IsSTAR() }); idx != -1 {
		r.legs[idx] = l
	} else {
		r.legs = append(r.legs, l)
	}
	return nil
}

// AbsorbRoute merges another route into this one, splicing at the first
// fix of other's remaining waypoints that also appears in this route:
// this route is kept up to and including the shared fix and continues
// with other's waypoints past it (deep-copied, so the routes share no
// waypoint storage). Returns ErrDisjointRoutes, leaving this route
// unchanged, if the routes share no fix.
func (r *Route) AbsorbRoute(other *Route) error {
	shared := ""
	for _, l := range other.legs {
		for _, wp := range l.remaining {
			if r.HasFix(wp.Fix) {
				shared = wp.Fix
				break
			}
		}
		if shared != "" {
			break
		}
	}
	if shared == "" {
		return ErrDisjointRoutes
	}

	// Keep this route up to and including the shared fix. (The truncated
	// leg keeps its original segment string; the route string can thus
	// name fixes past the splice until the leg is consumed.)
	idx := slices.IndexFunc(r.legs, func(l *Leg) bool { return l.HasFix(shared) })
	legs := r.legs[: idx+1 : idx+1]
	for i, wp := range legs[idx].remaining {
		if strings.EqualFold(wp.Fix, shared) {
			legs[idx].remaining = legs[idx].remaining[:i+1]
			break
		}
	}

	// And take over the other route past the shared fix.
	oidx := slices.IndexFunc(other.legs, func(l *Leg) bool { return l.HasFix(shared) })
	for i, l := range other.legs[oidx:] {
		dupe := l.Clone()
		if i == 0 {
			dupe.SkipToFix(shared)
			if !dupe.SkipToNextWaypoint() {
				// Nothing past the shared fix in this leg.
				continue
			}
			dupe.flown = nil // not flown by this aircraft
		}
		legs = append(legs, dupe)
	}

	r.legs = legs
	return nil
}

///////////////////////////////////////////////////////////////////////////
// Queries

// Waypoints returns a snapshot of all remaining waypoints across the
// route's legs, in flying order.
func (r *Route) Waypoints() []Waypoint {
	var wps []Waypoint
	for _, l := range r.legs {
		wps = append(wps, l.remaining...)
	}
	return wps
}

func (r *Route) waypointCount() int {
	n := 0
	for _, l := range r.legs {
		n += l.waypointCount()
	}
	for _, l := range r.flown {
		n += l.waypointCount()
	}
	return n
}

// SpawnHeading returns the bearing in degrees from the route's first
// waypoint to its second; the two-waypoint construction invariant
// guarantees both exist on a freshly built route.
func (r *Route) SpawnHeading() float32 {
	wps := r.Waypoints()
	return math.Heading2LL(wps[0].Location, wps[1].Location, r.nmPerLongitude, r.magneticVariation)
}

// AltitudeRestrictedWaypoints returns the remaining waypoints that carry
// an altitude restriction.
func (r *Route) AltitudeRestrictedWaypoints() []Waypoint {
	return util.FilterSlice(r.Waypoints(), Waypoint.HasAltitudeRestriction)
}

// BottomAltitude returns the lowest altitude constraint across the
// remaining legs; ok is false if no leg carries altitude data.
func (r *Route) BottomAltitude() (alt int, ok bool) {
	for _, l := range r.legs {
		if b, bok := l.BottomAltitude(); bok && (!ok || b < alt) {
			alt, ok = b, true
		}
	}
	return
}

// TopAltitude returns the highest altitude constraint across the
// remaining legs; ok is false if no leg carries altitude data.
func (r *Route) TopAltitude() (alt int, ok bool) {
	for _, l := range r.legs {
		if t, tok := l.TopAltitude(); tok && (!ok || t > alt) {
			alt, ok = t, true
		}
	}
	return
}

func (r *Route) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("route", r.RouteString()),
		slog.Int("remaining_legs", len(r.legs)),
		slog.Int("flown_legs", len(r.flown)),
		slog.Any("current", r.CurrentWaypoint()))
}
