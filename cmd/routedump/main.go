// cmd/routedump/main.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// routedump loads a navigation database, parses the route strings given
// on the command line, and prints the expanded legs and waypoints. It's
// meant for checking database files and debugging route strings.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/util"
)

func errorExit(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

func main() {
	dbPath := flag.String("db", "", "navigation database file (JSON, optionally .zst compressed)")
	check := flag.Bool("check", false, "validate the database and exit")
	logLevel := flag.String("loglevel", "warn", "logging level: debug, info, warn, error")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "usage: routedump -db nav.json [-check] route-string...\n")
		os.Exit(1)
	}

	lg := log.New(*logLevel, "")

	db, err := aviation.LoadDatabase(*dbPath, lg)
	errorExit(*dbPath, err)

	if *check {
		var e util.ErrorLogger
		db.Check(&e)
		if e.HaveErrors() {
			e.PrintErrors(lg)
			os.Exit(1)
		}
		fmt.Printf("%s: ok (%d fixes, %d SIDs, %d STARs, %d airways, %d holds)\n",
			*dbPath, len(db.Fixes), len(db.SIDs), len(db.STARs), len(db.Airways), len(db.Holds))
		if flag.NArg() == 0 {
			return
		}
	}

	nmPerLongitude := db.NMPerLongitude()
	for _, rs := range flag.Args() {
		route, err := aviation.MakeRoute(db, rs, nmPerLongitude, db.MagneticVariation, lg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", rs, err)
			continue
		}

		fmt.Printf("%s\n", route.RouteString())
		fmt.Printf("  spawn heading %03d\n", int(route.SpawnHeading()+0.5))
		if b, ok := route.BottomAltitude(); ok {
			fmt.Printf("  bottom altitude %s\n", aviation.FormatAltitude(float32(b)))
		}
		if t, ok := route.TopAltitude(); ok {
			fmt.Printf("  top altitude %s\n", aviation.FormatAltitude(float32(t)))
		}

		for _, l := range route.Legs() {
			fmt.Printf("  %-30s %s\n", l.RouteString(), l.Type())
			for _, wp := range l.Waypoints() {
				s := "    " + wp.Name()
				if wp.HasAltitudeRestriction() {
					s += fmt.Sprintf(" alt[%d,%d]", wp.AltitudeMin, wp.AltitudeMax)
				}
				if wp.HasSpeedRestriction() {
					s += fmt.Sprintf(" speed[%d,%d]", wp.SpeedMin, wp.SpeedMax)
				}
				if wp.FlyOver() {
					s += " flyover"
				}
				if wp.IsHold() {
					if h, ok := db.PublishedHold(wp.Fix); ok {
						s += " hold " + h.DisplayName()
					} else {
						s += " hold"
					}
				}
				fmt.Println(s)
			}
		}
	}
}
