// aviation/waypoint.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/atcsim/atcsim/math"
)

// RNAVFixPrefix marks a synthetic point-in-space fix; such fixes are
// shown to the user under the generic RNAVDisplayName label rather than
// their encoded identifier.
const RNAVFixPrefix = "_"
const RNAVDisplayName = "RNAV"

// VectorPrefix introduces a fly-heading segment in a route string, e.g.
// "#320" for "fly heading 320".
const VectorPrefix = "#"

// HoldTimerInactive is the hold timer value when no timed hold leg is
// being flown.
const HoldTimerInactive = -999

type WaypointFlags uint8

const (
	WaypointFlagFlyOver WaypointFlags = 1 << iota
	WaypointFlagVector
	WaypointFlagHold
)

// Waypoint is a single navigable point in a flight plan: usually a named
// fix, possibly carrying crossing restrictions, though it may also stand
// in for a fly-heading instruction. Hold parameters are allocated only
// for the rare waypoints that have them.
type Waypoint struct {
	Fix         string        // lower-cased identifier; RNAVFixPrefix marks a point-in-space
	Location    math.Point2LL // zero for vector waypoints
	AltitudeMin int
	AltitudeMax int
	SpeedMin    int
	SpeedMax    int
	Flags       WaypointFlags
	Hold        *HoldParameters
}

// HoldParameters carries the state of a holding pattern at a waypoint;
// populated by MakeHold (or from persisted hold data), never at plain
// construction.
type HoldParameters struct {
	InboundHeading float32 // radians
	Turn           TurnDirection
	LegLength      string  // e.g. "1min" or "3nm"
	Timer          float32 // HoldTimerInactive unless a timed leg is underway
}

// HoldInstruction is the snapshot handed to the hold-flying logic.
type HoldInstruction struct {
	Turn           TurnDirection
	Fix            string
	Location       math.Point2LL
	InboundHeading float32 // radians
	LegLength      int     // numeric leg length with the unit suffix stripped
	Timer          float32
}

// MakeWaypoint returns a Waypoint for the named fix at the given
// location, with all restrictions unset. Waypoints must be constructed
// through this (or makeVectorWaypoint) so that the restriction sentinels
// are initialized.
func MakeWaypoint(fix string, loc math.Point2LL) Waypoint {
	return Waypoint{
		Fix:         strings.ToLower(fix),
		Location:    loc,
		AltitudeMin: UnsetAltitude,
		AltitudeMax: UnsetAltitude,
		SpeedMin:    UnsetSpeed,
		SpeedMax:    UnsetSpeed,
	}
}

func makeVectorWaypoint(token string) Waypoint {
	wp := MakeWaypoint(token, math.Point2LL{})
	wp.Flags |= WaypointFlagVector
	return wp
}

// Name returns the waypoint's display name: the generic RNAV label for
// point-in-space fixes, the raw identifier otherwise. Lookups should use
// Fix, which always holds the encoded identifier.
func (wp Waypoint) Name() string {
	if strings.HasPrefix(wp.Fix, RNAVFixPrefix) {
		return RNAVDisplayName
	}
	return wp.Fix
}

func (wp Waypoint) FlyOver() bool  { return wp.Flags&WaypointFlagFlyOver != 0 }
func (wp Waypoint) IsVector() bool { return wp.Flags&WaypointFlagVector != 0 }
func (wp Waypoint) IsHold() bool   { return wp.Flags&WaypointFlagHold != 0 }

func (wp *Waypoint) SetFlyOver(v bool) {
	if v {
		wp.Flags |= WaypointFlagFlyOver
	} else {
		wp.Flags &^= WaypointFlagFlyOver
	}
}

// Vector returns the heading encoded in the waypoint's identifier, in
// radians; ok is false if the waypoint is not a vector.
func (wp Waypoint) Vector() (hdg float32, ok bool) {
	if !wp.IsVector() {
		return 0, false
	}
	deg, err := strconv.Atoi(strings.TrimPrefix(wp.Fix, VectorPrefix))
	if err != nil {
		return 0, false
	}
	return math.Radians(float32(deg)), true
}

func (wp Waypoint) HasAltitudeRestriction() bool {
	return wp.AltitudeMin != UnsetAltitude || wp.AltitudeMax != UnsetAltitude
}

func (wp Waypoint) HasSpeedRestriction() bool {
	return wp.SpeedMin != UnsetSpeed || wp.SpeedMax != UnsetSpeed
}

func (wp Waypoint) HasRestriction() bool {
	return wp.HasAltitudeRestriction() || wp.HasSpeedRestriction()
}

// MakeHold converts the waypoint into a holding fix with the given
// parameters. The caller is responsible for validating the heading and
// leg-length encoding; none is done here.
func (wp *Waypoint) MakeHold(inboundHeading float32, turn TurnDirection, legLength string) {
	wp.Flags |= WaypointFlagHold
	wp.Hold = &HoldParameters{
		InboundHeading: inboundHeading,
		Turn:           turn,
		LegLength:      legLength,
		Timer:          HoldTimerInactive,
	}
}

// HoldInstruction returns the snapshot consumed by hold-flying logic.
// Callers should check IsHold first; for a non-holding waypoint the
// result is well-formed but all fields are defaults.
func (wp Waypoint) HoldInstruction() HoldInstruction {
	hi := HoldInstruction{
		Fix:      wp.Fix,
		Location: wp.Location,
		Timer:    HoldTimerInactive,
	}
	if wp.Hold == nil {
		return hi
	}

	hi.Turn = wp.Hold.Turn
	hi.InboundHeading = wp.Hold.InboundHeading
	hi.Timer = wp.Hold.Timer

	// Strip the unit suffix; the leg length is reported as a bare
	// integer.
	ll := wp.Hold.LegLength
	if i := strings.IndexFunc(ll, func(r rune) bool { return r < '0' || r > '9' }); i > 0 {
		ll = ll[:i]
	}
	if n, err := strconv.Atoi(ll); err == nil {
		hi.LegLength = n
	}
	return hi
}

func (wp Waypoint) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("fix", wp.Fix)}
	if wp.AltitudeMin != UnsetAltitude {
		attrs = append(attrs, slog.Int("altitude_min", wp.AltitudeMin))
	}
	if wp.AltitudeMax != UnsetAltitude {
		attrs = append(attrs, slog.Int("altitude_max", wp.AltitudeMax))
	}
	if wp.SpeedMin != UnsetSpeed {
		attrs = append(attrs, slog.Int("speed_min", wp.SpeedMin))
	}
	if wp.SpeedMax != UnsetSpeed {
		attrs = append(attrs, slog.Int("speed_max", wp.SpeedMax))
	}
	if wp.FlyOver() {
		attrs = append(attrs, slog.Bool("fly_over", true))
	}
	if hdg, ok := wp.Vector(); ok {
		attrs = append(attrs, slog.Int("vector", int(math.Degrees(hdg))))
	}
	if wp.IsHold() {
		attrs = append(attrs, slog.Any("hold", *wp.Hold))
	}
	return slog.GroupValue(attrs...)
}
