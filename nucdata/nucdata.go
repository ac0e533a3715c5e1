/*
Copyright © 2024 the Cyclus authors.
This file is part of Cyclus.

Cyclus is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Cyclus is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Cyclus.  If not, see <http://www.gnu.org/licenses/>.*/

// Package nucdata holds the static nuclide reference table used to convert
// between mass and atom fractions. Isotopes are identified with the usual
// ZZZAAA encoding (Z*1000 + A).
package nucdata

// AtomicMass returns the atomic mass of iso in g/mol. Unrecognized isotopes
// return the mass of the nearest common isotope class (A itself), which is
// accurate enough for mass/atom conversion bookkeeping and never panics.
func AtomicMass(iso int) float64 {
	if m, ok := atomicMass[iso]; ok {
		return m
	}
	return float64(iso % 1000)
}

// atomicMass is a small reference table of commonly simulated actinides and
// fission/activation products, in g/mol. It is intentionally not
// exhaustive -- AtomicMass falls back to the mass number for anything
// missing, which is the conventional approximation used throughout the
// fuel-cycle literature when a precise mass table entry is unavailable.
var atomicMass = map[int]float64{
	1001:   1.00783,
	1002:   2.01410,
	8016:   15.99491,
	54135:  134.90777,
	55137:  136.90708,
	62149:  148.91719,
	92232:  232.03714,
	92233:  233.03964,
	92234:  234.04095,
	92235:  235.04393,
	92236:  236.04557,
	92238:  238.05079,
	93237:  237.04817,
	93239:  239.05294,
	94238:  238.04956,
	94239:  239.05216,
	94240:  240.05381,
	94241:  241.05685,
	94242:  242.05874,
	95241:  241.05683,
	95243:  243.06138,
	96242:  242.05874,
	96244:  244.06275,
}

// DecayConstant returns the first-order radioactive decay constant (per
// timestep) for iso, or zero for stable/unlisted isotopes. Values are
// illustrative half-life-derived constants for commonly modeled nuclides;
// Decay is a no-op for anything not listed here.
func DecayConstant(iso int) float64 {
	return decayConstant[iso]
}

var decayConstant = map[int]float64{
	// ln(2)/halflife expressed per simulation timestep (nominally months),
	// matching the coarse timestep resolution the fuel-cycle simulator
	// operates at.
	90228: 0.030401,  // Th228, t1/2 ~ 1.9yr
	89227: 0.002650,  // Ac227, t1/2 ~ 21.8yr
	38090: 0.002006,  // Sr90, t1/2 ~ 28.8yr
	55137: 0.001913,  // Cs137, t1/2 ~ 30.2yr
	94238: 0.000659,  // Pu238, t1/2 ~ 87.7yr
	95241: 0.0001335, // Am241, t1/2 ~ 432.6yr
	94239: 0.0000000158,
	94240: 0.0000000105,
	92235: 0.0000000004,
	92238: 0.00000000007,
}
