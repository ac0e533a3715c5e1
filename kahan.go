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

package cyclus

import "math"

// kahanSum adds vals with a running Neumaier compensation term, the
// explicit running-error-correction spec.md §4.2 mandates for the
// isotope-by-isotope sums in Composition.Normalize and
// Material.ExtractComp. gonum.org/v1/gonum/floats exposes no Kahan/Neumaier
// summation primitive, so this is the hand-rolled accumulator the
// conservation tests require rather than a library call.
func kahanSum(vals []float64) float64 {
	var sum, comp float64
	for _, v := range vals {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}
		sum = t
	}
	return sum + comp
}
