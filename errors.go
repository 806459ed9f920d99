/*
Copyright © 2019 the WCDM authors.
This file is part of WCDM.

WCDM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WCDM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WCDM.  If not, see <http://www.gnu.org/licenses/>.
*/

package wcdm

import "errors"

// Errors returned by the model. They are wrapped with additional
// context, so callers should match them with errors.Is.
var (
	// ErrInvalidParameter is returned when a Patch is created with a
	// non-positive depth or molecule speed, or with a non-finite value.
	ErrInvalidParameter = errors.New("wcdm: invalid patch parameter")

	// ErrInvalidTopology is returned when a PatchLink refers to a patch
	// that does not exist, links a patch to itself, or has an invalid
	// conductance value.
	ErrInvalidTopology = errors.New("wcdm: invalid patch map topology")

	// ErrUnknownLink is returned when a flux is committed against a link
	// that is not part of the PatchMap. It signals a programming error.
	ErrUnknownLink = errors.New("wcdm: unknown link")

	// ErrDimensionMismatch is returned when a per-patch or per-link vector
	// does not have the expected length.
	ErrDimensionMismatch = errors.New("wcdm: dimension mismatch")

	// ErrInvalidDuration is returned when a step duration is not positive.
	ErrInvalidDuration = errors.New("wcdm: invalid step duration")

	// ErrUnsupportedSolver is returned when a Solver is requested with an
	// unknown strategy name.
	ErrUnsupportedSolver = errors.New("wcdm: unsupported solver")

	// ErrSolverDivergence is returned when a solver cannot produce a
	// numerically stable flux assignment.
	ErrSolverDivergence = errors.New("wcdm: solver divergence")

	// ErrMassBalance is returned by MassBalanceCheck when the total amount
	// in the system does not match the amount expected from production.
	ErrMassBalance = errors.New("wcdm: mass balance violated")
)
