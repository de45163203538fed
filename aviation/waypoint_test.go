// aviation/waypoint_test.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"testing"

	"github.com/atcsim/atcsim/math"
)

func TestWaypointName(t *testing.T) {
	wp := MakeWaypoint("SENZY", math.Point2LL{-122.53, 37.52})
	if wp.Fix != "senzy" {
		t.Errorf("fix not lower cased: %q", wp.Fix)
	}
	if wp.Name() != "senzy" {
		t.Errorf("name: got %q", wp.Name())
	}

	// Synthetic point-in-space fixes display as RNAV but keep their
	// identifier for lookups.
	wp = MakeWaypoint("_SXC068", math.Point2LL{-118.1, 33.5})
	if wp.Name() != RNAVDisplayName {
		t.Errorf("RNAV name: got %q", wp.Name())
	}
	if wp.Fix != "_sxc068" {
		t.Errorf("RNAV fix: got %q", wp.Fix)
	}
}

func TestWaypointRestrictions(t *testing.T) {
	wp := MakeWaypoint("SENZY", math.Point2LL{})
	if wp.HasAltitudeRestriction() || wp.HasSpeedRestriction() || wp.HasRestriction() {
		t.Errorf("fresh waypoint has restrictions: %+v", wp)
	}

	wp.AltitudeMin = 0 // at or above sea level is still a restriction
	if !wp.HasAltitudeRestriction() || !wp.HasRestriction() {
		t.Error("zero altitude restriction not recognized")
	}

	wp = MakeWaypoint("SENZY", math.Point2LL{})
	wp.SpeedMax = 230
	if !wp.HasSpeedRestriction() || wp.HasAltitudeRestriction() {
		t.Errorf("speed restriction misreported: %+v", wp)
	}
}

func TestWaypointVector(t *testing.T) {
	wp := makeVectorWaypoint("#320")
	if !wp.IsVector() {
		t.Fatal("vector flag not set")
	}
	hdg, ok := wp.Vector()
	if !ok {
		t.Fatal("Vector() failed")
	}
	if math.Abs(hdg-math.Radians(320)) > 1e-4 {
		t.Errorf("heading: got %v radians, want %v", hdg, math.Radians(320))
	}

	if _, ok := MakeWaypoint("SENZY", math.Point2LL{}).Vector(); ok {
		t.Error("Vector() succeeded on a non-vector waypoint")
	}
}

func TestWaypointHold(t *testing.T) {
	wp := MakeWaypoint("OSI", math.Point2LL{-122.28, 37.39})
	if wp.IsHold() {
		t.Error("fresh waypoint reports a hold")
	}

	wp.MakeHold(math.Radians(116), TurnRight, "3nm")
	if !wp.IsHold() || wp.Hold == nil {
		t.Fatal("hold not set")
	}
	if wp.Hold.Timer != HoldTimerInactive {
		t.Errorf("hold timer: got %v, want inactive", wp.Hold.Timer)
	}

	hi := wp.HoldInstruction()
	if hi.Fix != "osi" || hi.Turn != TurnRight {
		t.Errorf("hold instruction: %+v", hi)
	}
	if hi.LegLength != 3 {
		t.Errorf("leg length: got %d, want 3", hi.LegLength)
	}
	if math.Abs(hi.InboundHeading-math.Radians(116)) > 1e-4 {
		t.Errorf("inbound heading: got %v", hi.InboundHeading)
	}

	wp.Hold.LegLength = "1min"
	if hi := wp.HoldInstruction(); hi.LegLength != 1 {
		t.Errorf("timed leg length: got %d, want 1", hi.LegLength)
	}
}

func TestPublishedHoldWaypoint(t *testing.T) {
	h := Hold{Fix: "OSI", InboundCourse: 116, TurnDirection: TurnRight, LegLengthNM: 3}
	wp := h.Waypoint(math.Point2LL{-122.28, 37.39})

	if !wp.IsHold() {
		t.Fatal("hold flag not set")
	}
	if wp.Hold.LegLength != "3nm" {
		t.Errorf("leg length: got %q, want \"3nm\"", wp.Hold.LegLength)
	}
	if wp.Hold.Turn != TurnRight {
		t.Errorf("turn: got %s", wp.Hold.Turn)
	}

	// Time-based and unspecified leg lengths.
	h = Hold{Fix: "OSI", TurnDirection: TurnLeft, LegMinutes: 2}
	if wp := h.Waypoint(math.Point2LL{}); wp.Hold.LegLength != "2min" {
		t.Errorf("leg length: got %q, want \"2min\"", wp.Hold.LegLength)
	}
	h = Hold{Fix: "OSI"}
	if wp := h.Waypoint(math.Point2LL{}); wp.Hold.LegLength != "1min" {
		t.Errorf("standard hold leg length: got %q, want \"1min\"", wp.Hold.LegLength)
	}
}

func TestHoldDisplayName(t *testing.T) {
	h := Hold{Fix: "OSI", TurnDirection: TurnRight, LegLengthNM: 3}
	if got := h.DisplayName(); got != "OSI (right, 3.0 nm)" {
		t.Errorf("got %q", got)
	}
	h = Hold{Fix: "OSI", TurnDirection: TurnLeft, LegMinutes: 1}
	if got := h.DisplayName(); got != "OSI (left, 1.0 min)" {
		t.Errorf("got %q", got)
	}
}
