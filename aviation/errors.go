// aviation/errors.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrDisjointRoutes        = errors.New("Routes share no common fix")
	ErrEmptyLeg              = errors.New("Leg resolved to no waypoints")
	ErrInvalidVectorHeading  = errors.New("Invalid heading in vector segment")
	ErrMalformedRouteString  = errors.New("Malformed route string")
	ErrRouteTooShort         = errors.New("Route must resolve to at least two waypoints")
	ErrUnknownFix            = errors.New("Unknown fix")
	ErrUnknownProcedure      = errors.New("Unknown procedure or airway")
	ErrUnknownProcedureEntry = errors.New("Entry not part of procedure")
	ErrUnknownProcedureExit  = errors.New("Exit not part of procedure")
)
