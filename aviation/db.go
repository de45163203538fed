// aviation/db.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/brunoga/deep"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"

	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/util"
)

///////////////////////////////////////////////////////////////////////////
// StaticDatabase

// StaticDatabase holds the navigation data that routes are resolved
// against: fix locations, SID and STAR definitions, airways, and
// published holds. It is immutable once loaded; the Route and Leg code
// take it by injection rather than reaching for a global so that tests
// (and eventually multi-facility servers) can carry several at once.
type StaticDatabase struct {
	MagneticVariation float32              `json:"magnetic_variation"`
	Fixes             map[string]Fix       `json:"fixes"`
	SIDs              map[string]Procedure `json:"sids"`
	STARs             map[string]Procedure `json:"stars"`
	Airways           map[string]Airway    `json:"airways"`
	Holds             map[string]Hold      `json:"holds"`

	// Expanded ENTRY.NAME.EXIT procedures are memoized; the same
	// transitions come up over and over as aircraft are spawned.
	expanded *expirable.LRU[string, []Waypoint]
}

// Fix is a named point in space. (It carries no more than a location
// today but is kept as a struct so that per-fix data like frequency or
// type has somewhere to go.)
type Fix struct {
	Location math.Point2LL
}

func (f Fix) MarshalJSON() ([]byte, error) { return f.Location.MarshalJSON() }

func (f *Fix) UnmarshalJSON(b []byte) error { return f.Location.UnmarshalJSON(b) }

type ProcedureType int

const (
	ProcedureTypeSID ProcedureType = iota
	ProcedureTypeSTAR
)

func (t ProcedureType) String() string {
	return []string{"SID", "STAR"}[int(t)]
}

// Procedure is a published departure or arrival procedure: a common body
// plus entry transitions (runways, for a SID) and exit transitions keyed
// by fix. Name and Type are filled in from the enclosing maps after the
// database is unmarshaled.
type Procedure struct {
	Name    string            `json:"-"`
	Type    ProcedureType     `json:"-"`
	Entries map[string]FixSeq `json:"entries"`
	Body    FixSeq            `json:"body"`
	Exits   map[string]FixSeq `json:"exits"`
}

// Airway is an ordered run of fixes; spans may be flown in either
// direction.
type Airway struct {
	Name  string
	Fixes []string
}

func (a Airway) MarshalJSON() ([]byte, error) { return json.Marshal(a.Fixes) }

func (a *Airway) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &a.Fixes) }

///////////////////////////////////////////////////////////////////////////
// FixSeq

// FixSeq is a sequence of fixes in a procedure definition. In JSON each
// element is a compact spec string, a fix name followed by slash-delimited
// modifiers: "SENZY/a2500+/s230/flyover". "a" introduces an altitude
// restriction, "s" a speed restriction; "flyover" and "hold" are flags.
type FixSeq []ProcedureFix

type ProcedureFix struct {
	Fix         string
	AltitudeMin int
	AltitudeMax int
	SpeedMin    int
	SpeedMax    int
	FlyOver     bool
	Hold        bool
}

func (fs *FixSeq) UnmarshalJSON(b []byte) error {
	var specs []string
	if err := json.Unmarshal(b, &specs); err != nil {
		return err
	}

	*fs = nil
	for _, spec := range specs {
		pf, err := parseProcedureFix(spec)
		if err != nil {
			return err
		}
		*fs = append(*fs, pf)
	}
	return nil
}

func (fs FixSeq) MarshalJSON() ([]byte, error) {
	specs := util.MapSlice(fs, func(pf ProcedureFix) string { return pf.spec() })
	return json.Marshal(specs)
}

func parseProcedureFix(spec string) (ProcedureFix, error) {
	pf := ProcedureFix{
		AltitudeMin: UnsetAltitude,
		AltitudeMax: UnsetAltitude,
		SpeedMin:    UnsetSpeed,
		SpeedMax:    UnsetSpeed,
	}

	components := strings.Split(spec, "/")
	pf.Fix = strings.ToUpper(components[0])
	if pf.Fix == "" {
		return pf, fmt.Errorf("%q: no fix name in procedure fix", spec)
	}

	var err error
	for _, f := range components[1:] {
		if f == "" {
			return pf, fmt.Errorf("no modifier found after / in %q", spec)
		} else if f == "flyover" {
			pf.FlyOver = true
		} else if f == "hold" {
			pf.Hold = true
		} else if f[0] == 'a' {
			if pf.AltitudeMin, pf.AltitudeMax, err = ParseAltitudeRestriction(f[1:]); err != nil {
				return pf, fmt.Errorf("%q: %v", spec, err)
			}
		} else if f[0] == 's' {
			if pf.SpeedMin, pf.SpeedMax, err = ParseSpeedRestriction(f[1:]); err != nil {
				return pf, fmt.Errorf("%q: %v", spec, err)
			}
		} else {
			return pf, fmt.Errorf("%q: unknown modifier %q", spec, f)
		}
	}
	return pf, nil
}

// spec reconstitutes the compact string encoding; parse and spec are
// inverses for well-formed input.
func (pf ProcedureFix) spec() string {
	s := pf.Fix
	if pf.AltitudeMin != UnsetAltitude || pf.AltitudeMax != UnsetAltitude {
		s += "/a" + formatRestriction(pf.AltitudeMin, pf.AltitudeMax, UnsetAltitude)
	}
	if pf.SpeedMin != UnsetSpeed || pf.SpeedMax != UnsetSpeed {
		s += "/s" + formatRestriction(pf.SpeedMin, pf.SpeedMax, UnsetSpeed)
	}
	if pf.FlyOver {
		s += "/flyover"
	}
	if pf.Hold {
		s += "/hold"
	}
	return s
}

func formatRestriction(min, max, unset int) string {
	if min == max {
		return fmt.Sprintf("%d", min)
	} else if max == unset {
		return fmt.Sprintf("%d+", min)
	} else if min == unset {
		return fmt.Sprintf("%d-", max)
	}
	return fmt.Sprintf("%d-%d", min, max)
}

///////////////////////////////////////////////////////////////////////////
// Loading

const expandedProcedureCacheSize = 64

// MakeStaticDatabase returns an empty database ready to be populated
// directly; tests and tools that synthesize navigation data use this
// rather than LoadDatabase.
func MakeStaticDatabase() *StaticDatabase {
	db := &StaticDatabase{
		Fixes:   make(map[string]Fix),
		SIDs:    make(map[string]Procedure),
		STARs:   make(map[string]Procedure),
		Airways: make(map[string]Airway),
		Holds:   make(map[string]Hold),
	}
	db.init()
	return db
}

// LoadDatabase reads a navigation database from a JSON file, transparently
// decompressing it if it has a ".zst" extension. Compiled databases are
// cached msgpack-encoded under the user cache directory and reused when
// still newer than the source file.
func LoadDatabase(path string, lg *log.Logger) (*StaticDatabase, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	// Decode the cache into its own database so that a stale cache
	// can't leak entries into the one parsed from the source file.
	cachePath := "db/" + filepath.Base(path) + ".msgpack"
	cached := &StaticDatabase{}
	if t, err := util.CacheRetrieveObject(cachePath, cached); err == nil && t.After(fi.ModTime()) {
		lg.Infof("%s: loaded compiled database from cache", path)
		cached.init()
		return cached, nil
	}

	db := &StaticDatabase{}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(db); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	db.init()

	if err := util.CacheStoreObject(cachePath, db); err != nil {
		lg.Warnf("%s: unable to cache compiled database: %v", path, err)
	}
	lg.Info("loaded navigation database", slog.String("path", path),
		slog.Int("fixes", len(db.Fixes)), slog.Int("sids", len(db.SIDs)),
		slog.Int("stars", len(db.STARs)), slog.Int("airways", len(db.Airways)))
	return db, nil
}

// init normalizes map keys, fills in the redundant Name/Type fields, and
// sets up the expansion cache; it must be called before the database is
// used, on both freshly-unmarshaled and cache-retrieved databases.
func (db *StaticDatabase) init() {
	fixes := make(map[string]Fix, len(db.Fixes))
	for name, f := range db.Fixes {
		fixes[strings.ToUpper(name)] = f
	}
	db.Fixes = fixes

	sids := make(map[string]Procedure, len(db.SIDs))
	for name, proc := range db.SIDs {
		proc.Name, proc.Type = strings.ToUpper(name), ProcedureTypeSID
		sids[proc.Name] = proc
	}
	db.SIDs = sids

	stars := make(map[string]Procedure, len(db.STARs))
	for name, proc := range db.STARs {
		proc.Name, proc.Type = strings.ToUpper(name), ProcedureTypeSTAR
		stars[proc.Name] = proc
	}
	db.STARs = stars

	airways := make(map[string]Airway, len(db.Airways))
	for name, aw := range db.Airways {
		aw.Name = strings.ToUpper(name)
		for i, fix := range aw.Fixes {
			aw.Fixes[i] = strings.ToUpper(fix)
		}
		airways[aw.Name] = aw
	}
	db.Airways = airways

	holds := make(map[string]Hold, len(db.Holds))
	for fix, h := range db.Holds {
		h.Fix = strings.ToUpper(fix)
		holds[h.Fix] = h
	}
	db.Holds = holds

	db.expanded = expirable.NewLRU[string, []Waypoint](expandedProcedureCacheSize,
		nil, time.Hour)
}

///////////////////////////////////////////////////////////////////////////
// Lookups

func (db *StaticDatabase) FindFix(name string) (Fix, bool) {
	f, ok := db.Fixes[strings.ToUpper(name)]
	return f, ok
}

// Procedure looks up a SID or STAR by name.
func (db *StaticDatabase) Procedure(name string) (Procedure, bool) {
	name = strings.ToUpper(name)
	if proc, ok := db.SIDs[name]; ok {
		return proc, true
	}
	proc, ok := db.STARs[name]
	return proc, ok
}

func (db *StaticDatabase) Airway(name string) (Airway, bool) {
	aw, ok := db.Airways[strings.ToUpper(name)]
	return aw, ok
}

// PublishedHold returns the published holding pattern at the named fix,
// if there is one.
func (db *StaticDatabase) PublishedHold(fix string) (Hold, bool) {
	h, ok := db.Holds[strings.ToUpper(fix)]
	return h, ok
}

// NMPerLongitude returns the scale factor for converting longitude
// degrees to nautical miles around the database's fixes. The flat-earth
// approximation is fine at facility scale.
func (db *StaticDatabase) NMPerLongitude() float32 {
	if len(db.Fixes) == 0 {
		return math.NMPerLatitude
	}
	var lat float32
	for _, f := range db.Fixes {
		lat += f.Location.Latitude()
	}
	lat /= float32(len(db.Fixes))
	return math.NMPerLatitude * math.Cos(math.Radians(lat))
}

///////////////////////////////////////////////////////////////////////////
// Expansion

// ExpandProcedure returns the full waypoint sequence for flying the
// procedure from the given entry transition to the given exit
// transition: entry fixes, then the body, then the exit fixes, with
// duplicated boundary fixes collapsed. The result is always freshly
// allocated; callers may mutate it.
func (db *StaticDatabase) ExpandProcedure(proc Procedure, entry, exit string) ([]Waypoint, error) {
	key := entry + procedureDivider + proc.Name + procedureDivider + exit
	if wps, ok := db.expanded.Get(key); ok {
		return deep.MustCopy(wps), nil
	}

	entryFixes, ok := proc.Entries[strings.ToUpper(entry)]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", proc.Name, entry, ErrUnknownProcedureEntry)
	}
	exitFixes, ok := proc.Exits[strings.ToUpper(exit)]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", proc.Name, exit, ErrUnknownProcedureExit)
	}

	var seq FixSeq
	for _, fixes := range []FixSeq{entryFixes, proc.Body, exitFixes} {
		for _, pf := range fixes {
			// A transition's boundary fix is usually repeated in the
			// body; keep the first occurrence only.
			if n := len(seq); n > 0 && seq[n-1].Fix == pf.Fix {
				continue
			}
			seq = append(seq, pf)
		}
	}

	wps, err := db.waypoints(seq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc.Name, err)
	}

	db.expanded.Add(key, deep.MustCopy(wps))
	return wps, nil
}

// AirwaySpan returns waypoints for flying the airway between the two
// named fixes, inclusive on both ends. Spans are directional: the
// waypoints run from entry to exit regardless of the order in which the
// airway's fixes are published.
func (db *StaticDatabase) AirwaySpan(aw Airway, entry, exit string) ([]Waypoint, error) {
	i := slices.Index(aw.Fixes, strings.ToUpper(entry))
	if i == -1 {
		return nil, fmt.Errorf("%s: %s: %w", aw.Name, entry, ErrUnknownProcedureEntry)
	}
	j := slices.Index(aw.Fixes, strings.ToUpper(exit))
	if j == -1 {
		return nil, fmt.Errorf("%s: %s: %w", aw.Name, exit, ErrUnknownProcedureExit)
	}

	var fixes []string
	if i <= j {
		fixes = aw.Fixes[i : j+1]
	} else {
		for k := i; k >= j; k-- {
			fixes = append(fixes, aw.Fixes[k])
		}
	}

	wps := make([]Waypoint, 0, len(fixes))
	for _, fix := range fixes {
		f, ok := db.FindFix(fix)
		if !ok {
			return nil, fmt.Errorf("%s: %s: %w", aw.Name, fix, ErrUnknownFix)
		}
		wps = append(wps, MakeWaypoint(fix, f.Location))
	}
	return wps, nil
}

// waypoints resolves a fix sequence against the database, carrying over
// restrictions and attaching published hold parameters where a fix is
// flagged for holding.
func (db *StaticDatabase) waypoints(seq FixSeq) ([]Waypoint, error) {
	wps := make([]Waypoint, 0, len(seq))
	for _, pf := range seq {
		f, ok := db.FindFix(pf.Fix)
		if !ok {
			return nil, fmt.Errorf("%s: %w", pf.Fix, ErrUnknownFix)
		}

		wp := MakeWaypoint(pf.Fix, f.Location)
		wp.AltitudeMin, wp.AltitudeMax = pf.AltitudeMin, pf.AltitudeMax
		wp.SpeedMin, wp.SpeedMax = pf.SpeedMin, pf.SpeedMax
		wp.SetFlyOver(pf.FlyOver)
		if pf.Hold {
			h, ok := db.PublishedHold(pf.Fix)
			if !ok {
				return nil, fmt.Errorf("%s: no published hold at fix", pf.Fix)
			}
			wp.MakeHold(math.Radians(h.InboundCourse), h.TurnDirection, h.legLength())
		}
		wps = append(wps, wp)
	}
	return wps, nil
}

///////////////////////////////////////////////////////////////////////////
// Validation

// Check validates the database's internal consistency: every fix named
// by a procedure, airway, or hold must be defined, transitions must be
// non-empty, and published hold parameters must be sensible. Problems
// are reported through the ErrorLogger so that all of them surface in
// one pass.
func (db *StaticDatabase) Check(e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	checkSeq := func(seq FixSeq) {
		for _, pf := range seq {
			if _, ok := db.FindFix(pf.Fix); !ok {
				e.ErrorString("%s: fix not defined", pf.Fix)
			}
			if pf.Hold {
				if _, ok := db.PublishedHold(pf.Fix); !ok {
					e.ErrorString("%s: hold flagged but no published hold at fix", pf.Fix)
				}
			}
		}
	}

	checkProcedures := func(procs map[string]Procedure) {
		for _, name := range util.SortedMapKeys(procs) {
			e.Push(name)
			proc := procs[name]
			if len(proc.Entries) == 0 {
				e.ErrorString("no entry transitions defined")
			}
			if len(proc.Exits) == 0 {
				e.ErrorString("no exit transitions defined")
			}
			for _, entry := range util.SortedMapKeys(proc.Entries) {
				e.Push("entry " + entry)
				checkSeq(proc.Entries[entry])
				e.Pop()
			}
			checkSeq(proc.Body)
			for _, exit := range util.SortedMapKeys(proc.Exits) {
				e.Push("exit " + exit)
				checkSeq(proc.Exits[exit])
				e.Pop()
			}
			e.Pop()
		}
	}

	e.Push("SIDs")
	checkProcedures(db.SIDs)
	e.Pop()
	e.Push("STARs")
	checkProcedures(db.STARs)
	e.Pop()

	e.Push("airways")
	for _, name := range util.SortedMapKeys(db.Airways) {
		e.Push(name)
		aw := db.Airways[name]
		if len(aw.Fixes) < 2 {
			e.ErrorString("airway has fewer than two fixes")
		}
		for _, fix := range aw.Fixes {
			if _, ok := db.FindFix(fix); !ok {
				e.ErrorString("%s: fix not defined", fix)
			}
		}
		e.Pop()
	}
	e.Pop()

	e.Push("holds")
	for _, fix := range util.SortedMapKeys(db.Holds) {
		e.Push(fix)
		h := db.Holds[fix]
		if _, ok := db.FindFix(fix); !ok {
			e.ErrorString("fix not defined")
		}
		if h.InboundCourse < 0 || h.InboundCourse > 360 {
			e.ErrorString("inbound course %.1f not in 0-360", h.InboundCourse)
		}
		if h.LegLengthNM != 0 && h.LegMinutes != 0 {
			e.ErrorString("hold specifies both leg length and leg minutes")
		}
		if h.MinimumAltitude != 0 && h.MaximumAltitude != 0 &&
			h.MinimumAltitude > h.MaximumAltitude {
			e.ErrorString("minimum altitude %d above maximum %d",
				h.MinimumAltitude, h.MaximumAltitude)
		}
		e.Pop()
	}
	e.Pop()
}
