// aviation/route_test.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"slices"
	"testing"

	"github.com/atcsim/atcsim/math"
)

func makeTestRoute(t *testing.T, s string) *Route {
	t.Helper()
	db := testDatabase(t)
	r, err := MakeRoute(db, s, db.NMPerLongitude(), 0, nil)
	if err != nil {
		t.Fatalf("%s: %v", s, err)
	}
	return r
}

func TestDivideRouteString(t *testing.T) {
	tests := []struct {
		s        string
		segments []string
		err      bool
	}{
		{s: "JAMBR", segments: []string{"JAMBR"}},
		{s: "JAMBR..BAYST..KSFO", segments: []string{"JAMBR", "BAYST", "KSFO"}},
		{s: "KSFO28R.OFFSH9.SXC", segments: []string{"KSFO28R.OFFSH9.SXC"}},
		// Chained procedures share the transition fix; it is restored
		// so each segment stands alone.
		{s: "KSFO28R.OFFSH9.SXC.V458.IPL",
			segments: []string{"KSFO28R.OFFSH9.SXC", "SXC.V458.IPL"}},
		{s: "JAMBR..KSFO28R.OFFSH9.SXC.V458.IPL..#090",
			segments: []string{"JAMBR", "KSFO28R.OFFSH9.SXC", "SXC.V458.IPL", "#090"}},
		{s: "ksfo28r.offsh9.sxc", segments: []string{"KSFO28R.OFFSH9.SXC"}},

		{s: "", err: true},
		{s: "JAMBR BAYST", err: true},
		{s: "JAMBR..", err: true},
		{s: "..JAMBR", err: true},
		{s: "KSFO28R.OFFSH9", err: true},          // even token count
		{s: "KSFO28R.OFFSH9.SXC.V458", err: true}, // dangling procedure
		{s: "JAMBR...BAYST", err: true},           // empty token
	}

	for _, test := range tests {
		segments, err := divideRouteString(test.s)
		if test.err {
			if err == nil {
				t.Errorf("%q: expected error, got %v", test.s, segments)
			} else if !errors.Is(err, ErrMalformedRouteString) {
				t.Errorf("%q: expected ErrMalformedRouteString, got %v", test.s, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.s, err)
		} else if !slices.Equal(segments, test.segments) {
			t.Errorf("%q: got %v, want %v", test.s, segments, test.segments)
		}
	}
}

func TestRouteStringRoundTrip(t *testing.T) {
	tests := []struct {
		s    string
		want string // canonical reassembly; empty means same as s
	}{
		{s: "JAMBR..BAYST..KSFO"},
		{s: "KSFO28R.OFFSH9.SXC"},
		{s: "KSFO28R.OFFSH9.SXC.V458.IPL"},
		{s: "KSFO28R.OFFSH9.SXC..SXC.V458.IPL", want: "KSFO28R.OFFSH9.SXC.V458.IPL"},
		{s: "JAMBR..KSFO28R.OFFSH9.SXC.V458.IPL"},
		{s: "jambr..bayst..ksfo", want: "JAMBR..BAYST..KSFO"},
	}

	for _, test := range tests {
		r := makeTestRoute(t, test.s)
		want := test.want
		if want == "" {
			want = test.s
		}
		if got := r.RouteString(); got != want {
			t.Errorf("%q: reassembled to %q, want %q", test.s, got, want)
		}
	}
}

func TestRouteStringWithSpaces(t *testing.T) {
	r := makeTestRoute(t, "JAMBR..KSFO28R.OFFSH9.SXC.V458.IPL")
	want := "JAMBR KSFO28R.OFFSH9.SXC.V458.IPL"
	if got := r.RouteStringWithSpaces(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMakeRouteErrors(t *testing.T) {
	db := testDatabase(t)

	tests := []struct {
		s   string
		err error
	}{
		{s: "", err: ErrMalformedRouteString},
		{s: "JAMBR BAYST", err: ErrMalformedRouteString},
		{s: "NOWHERE..KSFO", err: ErrUnknownFix},
		{s: "KSFO28R.NOSUCH9.SXC", err: ErrUnknownProcedure},
		{s: "KOAK28R.OFFSH9.SXC", err: ErrUnknownProcedureEntry},
		{s: "KSFO28R.OFFSH9.AVE", err: ErrUnknownProcedureExit},
		{s: "SXC.V458.BAYST", err: ErrUnknownProcedureExit},
		{s: "JAMBR..#000", err: ErrInvalidVectorHeading},
		{s: "JAMBR..#361", err: ErrInvalidVectorHeading},
		{s: "JAMBR..#abc", err: ErrInvalidVectorHeading},
		{s: "JAMBR", err: ErrRouteTooShort},
		{s: "#090", err: ErrRouteTooShort},
	}

	for _, test := range tests {
		r, err := MakeRoute(db, test.s, db.NMPerLongitude(), 0, nil)
		if err == nil {
			t.Errorf("%q: expected error, got route %q", test.s, r.RouteString())
		} else if !errors.Is(err, test.err) {
			t.Errorf("%q: got %v, want %v", test.s, err, test.err)
		}
	}
}

func TestRouteNavigation(t *testing.T) {
	r := makeTestRoute(t, "JAMBR..BAYST..KSFO")

	if wp := r.CurrentWaypoint(); wp == nil || wp.Fix != "jambr" {
		t.Fatalf("current waypoint: got %+v", wp)
	}
	if next := r.NextWaypoint(); next == nil || next.Fix != "bayst" {
		t.Errorf("next waypoint should look into the following leg: got %+v", next)
	}

	total := r.waypointCount()
	r.SkipToNextWaypoint()
	if wp := r.CurrentWaypoint(); wp.Fix != "bayst" {
		t.Errorf("after skip: got %q, want bayst", wp.Fix)
	}
	if len(r.FlownLegs()) != 1 {
		t.Errorf("flown legs: got %d, want 1", len(r.FlownLegs()))
	}
	if r.waypointCount() != total {
		t.Errorf("waypoint count changed from %d to %d", total, r.waypointCount())
	}

	r.SkipToNextWaypoint()
	if r.HasNextWaypoint() {
		t.Error("should be on the last waypoint")
	}

	// Skipping past the end is a no-op.
	r.SkipToNextWaypoint()
	if wp := r.CurrentWaypoint(); wp.Fix != "ksfo" {
		t.Errorf("after skip at end: got %q, want ksfo", wp.Fix)
	}
	if r.waypointCount() != total {
		t.Errorf("waypoint count changed from %d to %d", total, r.waypointCount())
	}
}

func TestRouteNavigationWithinLeg(t *testing.T) {
	r := makeTestRoute(t, "KSFO28R.OFFSH9.SXC.V458.IPL")

	// The SID expands to SENZY SEPDY PORTE OSI SXC; both waypoints of the
	// first skip are within the SID leg.
	if wp := r.CurrentWaypoint(); wp.Fix != "senzy" {
		t.Fatalf("current waypoint: got %q", wp.Fix)
	}
	r.SkipToNextWaypoint()
	if wp := r.CurrentWaypoint(); wp.Fix != "sepdy" {
		t.Errorf("after skip: got %q, want sepdy", wp.Fix)
	}
	if len(r.FlownLegs()) != 0 {
		t.Errorf("no leg should be consumed yet; flown %d", len(r.FlownLegs()))
	}

	r.SkipToNextLeg()
	if wp := r.CurrentWaypoint(); wp.Fix != "sxc" {
		t.Errorf("after leg skip: got %q, want sxc", wp.Fix)
	}
	if !r.CurrentLeg().IsAirway() {
		t.Errorf("current leg should be the airway, got %s", r.CurrentLeg().Type())
	}
}

func TestSkipToFix(t *testing.T) {
	r := makeTestRoute(t, "KSFO28R.OFFSH9.SXC.V458.IPL")
	total := r.waypointCount()

	if !r.SkipToFix("OSI") {
		t.Fatal("SkipToFix(OSI) failed")
	}
	if wp := r.CurrentWaypoint(); wp.Fix != "osi" {
		t.Errorf("current waypoint: got %q, want osi", wp.Fix)
	}
	if r.waypointCount() != total {
		t.Errorf("waypoint count changed from %d to %d", total, r.waypointCount())
	}

	// Case-insensitive, and into a later leg.
	if !r.SkipToFix("haile") {
		t.Fatal("SkipToFix(haile) failed")
	}
	if wp := r.CurrentWaypoint(); wp.Fix != "haile" {
		t.Errorf("current waypoint: got %q, want haile", wp.Fix)
	}

	// An unknown fix leaves the route unchanged.
	before := r.RouteString()
	if r.SkipToFix("JAMBR") {
		t.Error("SkipToFix(JAMBR) should fail")
	}
	if got := r.RouteString(); got != before {
		t.Errorf("route changed on failed skip: %q -> %q", before, got)
	}
	if wp := r.CurrentWaypoint(); wp.Fix != "haile" {
		t.Errorf("current waypoint changed on failed skip: %q", wp.Fix)
	}
}

func TestReplaceDepartureProcedure(t *testing.T) {
	// No SID present: the new leg goes at the front.
	r := makeTestRoute(t, "SXC..IPL")
	if err := r.ReplaceDepartureProcedure("KSFO28R.OFFSH9.SXC"); err != nil {
		t.Fatal(err)
	}
	if want := "KSFO28R.OFFSH9.SXC..SXC..IPL"; r.RouteString() != want {
		t.Errorf("got %q, want %q", r.RouteString(), want)
	}

	// SID present: replaced in place, position preserved.
	r = makeTestRoute(t, "KSFO28R.OFFSH9.SXC.V458.IPL")
	if err := r.ReplaceDepartureProcedure("KSFO01L.OFFSH9.SXC"); err != nil {
		t.Fatal(err)
	}
	if want := "KSFO01L.OFFSH9.SXC.V458.IPL"; r.RouteString() != want {
		t.Errorf("got %q, want %q", r.RouteString(), want)
	}

	// Failure leaves the route untouched.
	before := r.RouteString()
	if err := r.ReplaceDepartureProcedure("KSFO28R.NOSUCH9.SXC"); !errors.Is(err, ErrUnknownProcedure) {
		t.Errorf("expected ErrUnknownProcedure, got %v", err)
	}
	if got := r.RouteString(); got != before {
		t.Errorf("route changed on failed replacement: %q -> %q", before, got)
	}
}

func TestReplaceArrivalProcedure(t *testing.T) {
	// No STAR present: appended at the back.
	r := makeTestRoute(t, "SXC.V458.IPL")
	if err := r.ReplaceArrivalProcedure("IPL.PIRAT1.KSFO"); err != nil {
		t.Fatal(err)
	}
	if want := "SXC.V458.IPL.PIRAT1.KSFO"; r.RouteString() != want {
		t.Errorf("got %q, want %q", r.RouteString(), want)
	}

	// STAR present: replaced in place.
	if err := r.ReplaceArrivalProcedure("IPL.PIRAT1.KSFO"); err != nil {
		t.Fatal(err)
	}
	if want := "SXC.V458.IPL.PIRAT1.KSFO"; r.RouteString() != want {
		t.Errorf("got %q, want %q", r.RouteString(), want)
	}

	before := r.RouteString()
	if err := r.ReplaceArrivalProcedure("IPL.PIRAT1.KOAK"); !errors.Is(err, ErrUnknownProcedureExit) {
		t.Errorf("expected ErrUnknownProcedureExit, got %v", err)
	}
	if got := r.RouteString(); got != before {
		t.Errorf("route changed on failed replacement: %q -> %q", before, got)
	}
}

func TestAbsorbRoute(t *testing.T) {
	r := makeTestRoute(t, "KSFO28R.OFFSH9.SXC.V458.IPL")
	other := makeTestRoute(t, "SXC..HAILE..JAMBR")

	if err := r.AbsorbRoute(other); err != nil {
		t.Fatal(err)
	}
	if want := "KSFO28R.OFFSH9.SXC..HAILE..JAMBR"; r.RouteString() != want {
		t.Errorf("got %q, want %q", r.RouteString(), want)
	}

	// The merged legs must not share waypoint storage with the source.
	r.SkipToFix("HAILE")
	r.CurrentWaypoint().AltitudeMin = 5000
	if other.legs[1].remaining[0].AltitudeMin == 5000 {
		t.Error("absorbed legs alias the source route's waypoints")
	}
}

func TestAbsorbRouteDisjoint(t *testing.T) {
	r := makeTestRoute(t, "JAMBR..BAYST")
	other := makeTestRoute(t, "SXC..IPL")

	before := r.RouteString()
	if err := r.AbsorbRoute(other); !errors.Is(err, ErrDisjointRoutes) {
		t.Errorf("expected ErrDisjointRoutes, got %v", err)
	}
	if got := r.RouteString(); got != before {
		t.Errorf("route changed on failed absorb: %q -> %q", before, got)
	}
}

func TestSpawnHeading(t *testing.T) {
	db := testDatabase(t)

	// BAYST is west-northwest of JAMBR.
	r, err := MakeRoute(db, "JAMBR..BAYST", db.NMPerLongitude(), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	hdg := r.SpawnHeading()
	if hdg < 280 || hdg > 300 {
		t.Errorf("spawn heading: got %.1f, want roughly 290", hdg)
	}

	// Magnetic correction shifts the result directly.
	r, err = MakeRoute(db, "JAMBR..BAYST", db.NMPerLongitude(), 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := math.HeadingDifference(r.SpawnHeading(), hdg+10); diff > 0.1 {
		t.Errorf("magnetic correction not applied: got %.1f, want %.1f", r.SpawnHeading(), hdg+10)
	}
}

func TestRouteAltitudes(t *testing.T) {
	r := makeTestRoute(t, "KSFO28R.OFFSH9.SXC.V458.IPL")

	if b, ok := r.BottomAltitude(); !ok || b != 2500 {
		t.Errorf("bottom altitude: got %d,%v, want 2500,true", b, ok)
	}
	// The SID carries only at-or-above restrictions, so there is no top.
	if top, ok := r.TopAltitude(); ok {
		t.Errorf("top altitude reported for route with no maximums: %d", top)
	}

	restricted := r.AltitudeRestrictedWaypoints()
	if len(restricted) != 2 {
		t.Fatalf("restricted waypoints: got %d, want 2", len(restricted))
	}
	if restricted[0].Fix != "senzy" || restricted[1].Fix != "porte" {
		t.Errorf("restricted waypoints: got %q, %q", restricted[0].Fix, restricted[1].Fix)
	}

	// The STAR's restrictions are all at-or-below.
	r = makeTestRoute(t, "IPL.PIRAT1.KSFO")
	if top, ok := r.TopAltitude(); !ok || top != 12000 {
		t.Errorf("top altitude: got %d,%v, want 12000,true", top, ok)
	}
	if _, ok := r.BottomAltitude(); ok {
		t.Error("bottom altitude reported for route with no minimums")
	}

	// No restrictions anywhere.
	r = makeTestRoute(t, "JAMBR..BAYST")
	if _, ok := r.BottomAltitude(); ok {
		t.Error("bottom altitude reported for unrestricted route")
	}
	if _, ok := r.TopAltitude(); ok {
		t.Error("top altitude reported for unrestricted route")
	}
}
