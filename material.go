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

import (
	"math"

	"github.com/google/uuid"

	"github.com/scopatz/cyclus/internal/massunit"
	"github.com/scopatz/cyclus/nucdata"
)

// eps is the default near-zero threshold used for the absorb mixing-weight
// rule (spec.md §4.2: "adding into a near-empty material adopts the
// incoming composition").
const eps = 1e-9

// Material is a conserved quantity of isotopically-resolved matter: a mass
// in kilograms, a Composition, and a provenance id. A Material's quantity
// and composition pointer change as it absorbs, is extracted from, or
// decays; the Compositions it points to are never mutated in place (see
// composition.go).
type Material struct {
	ctx        *SimulationContext
	id         uuid.UUID
	originalID uuid.UUID
	quantity   float64 // kg
	comp       *Composition
	lastUpdate int
}

// NewMaterial creates a Material of the given quantity (kg) and
// composition, enrolled in ctx's decay registry. A zero quantity is
// permitted; composition may be nil for an empty material, in which case
// the first Absorb installs the incoming composition (q == 0 implies
// absorb replaces C, per spec.md §3).
func (ctx *SimulationContext) NewMaterial(quantity float64, comp *Composition) (*Material, error) {
	if quantity < 0 {
		return nil, valueErrorf("new material", "negative quantity %g", quantity)
	}
	id := uuid.New()
	m := &Material{
		ctx:        ctx,
		id:         id,
		originalID: id,
		quantity:   quantity,
		comp:       comp,
		lastUpdate: ctx.Now(),
	}
	ctx.enroll(m)
	return m, nil
}

// ID returns the Material's unique identifier.
func (m *Material) ID() uuid.UUID { return m.id }

// OriginalID returns the id of the Material this one was ultimately split
// from (itself, if it was never split from another Material).
func (m *Material) OriginalID() uuid.UUID { return m.originalID }

// Quantity returns the Material's mass in kilograms.
func (m *Material) Quantity() float64 { return m.quantity }

// Composition returns the Material's current Composition. It may be nil
// for a freshly constructed, as-yet-unabsorbed-into zero-quantity
// Material.
func (m *Material) Composition() *Composition { return m.comp }

// LastUpdateTime returns the simulation timestep of the Material's most
// recent mutation (construction, absorb, extract, or decay).
func (m *Material) LastUpdateTime() int { return m.lastUpdate }

// Mass returns the Material's quantity expressed in u.
func (m *Material) Mass(u massunit.Unit) (float64, error) {
	v, err := massunit.FromKG(m.quantity, u)
	if err != nil {
		return 0, &UnitError{Err: err}
	}
	return v, nil
}

// MassOf returns the mass of isotope iso held by this Material, in
// kilograms.
func (m *Material) MassOf(iso int) float64 {
	if m.comp == nil {
		return 0
	}
	return m.quantity * m.comp.MassFraction(iso)
}

// Moles returns the total number of moles represented by this Material.
func (m *Material) Moles() float64 {
	if m.comp == nil {
		return 0
	}
	var total float64
	for _, iso := range m.comp.Isotopes() {
		total += m.molesOfFraction(iso)
	}
	return total
}

// MolesOf returns the number of moles of isotope iso held by this
// Material.
func (m *Material) MolesOf(iso int) float64 {
	if m.comp == nil {
		return 0
	}
	return m.molesOfFraction(iso)
}

func (m *Material) molesOfFraction(iso int) float64 {
	mm := nucdata.AtomicMass(iso)
	if mm == 0 {
		return 0
	}
	grams := m.quantity * 1000 * m.comp.MassFraction(iso)
	return grams / mm
}

// Absorb mixes other into m: other is consumed (its quantity is zeroed),
// m's quantity becomes q + q', and m's composition becomes the weighted
// mix of the two, with weight q'/q (or 1 if m was near-empty). Both
// Materials always hold kilograms, so there is no unit check; Absorb fails
// only if other is nil.
func (m *Material) Absorb(other *Material) error {
	if other == nil {
		return valueErrorf("absorb", "nil material")
	}
	amt := other.quantity
	if other.comp == nil || amt == 0 {
		other.quantity = 0
		m.lastUpdate = m.ctx.Now()
		return nil
	}
	if m.comp == nil || m.quantity < eps {
		m.comp = other.comp
		m.quantity += amt
	} else {
		weight := amt / m.quantity
		m.comp = mix(m.comp, other.comp, weight)
		m.quantity += amt
	}
	other.quantity = 0
	m.lastUpdate = m.ctx.Now()
	return nil
}

// mix combines a and b as (a + weight*b), both expressed on a's basis,
// returning an unnormalized-then-renormalized Composition.
func mix(a, b *Composition, weight float64) *Composition {
	bb := b
	if b.basis != a.basis {
		if a.basis == Mass {
			bb = b.Massify()
		} else {
			bb = b.Atomify()
		}
	}
	raw := make(map[int]float64, len(a.frac)+len(bb.frac))
	for iso, f := range a.frac {
		raw[iso] = f
	}
	for iso, f := range bb.frac {
		raw[iso] += weight * f
	}
	c := &Composition{basis: a.basis, frac: raw}
	norm, err := c.Normalize()
	if err != nil {
		// Both operands were already normalized and nonnegative with
		// weight >= 0, so the mix cannot legitimately sum to <= 0; if
		// it does, the unnormalized mix is returned as-is.
		return c
	}
	return norm
}

// Extract removes mass kg from m, returning a new Material carrying that
// mass and m's current composition, stamped with m's OriginalID. It fails
// with ValueError if mass > m.Quantity().
func (m *Material) Extract(mass float64) (*Material, error) {
	if mass < 0 {
		return nil, valueErrorf("extract", "negative mass %g", mass)
	}
	if mass > m.quantity {
		return nil, valueErrorf("extract", "cannot extract %g kg from material %s holding %g kg", mass, m.id, m.quantity)
	}
	m.quantity -= mass
	m.lastUpdate = m.ctx.Now()
	n := &Material{
		ctx:        m.ctx,
		id:         uuid.New(),
		originalID: m.originalID,
		quantity:   mass,
		comp:       m.comp,
		lastUpdate: m.lastUpdate,
	}
	m.ctx.enroll(n)
	return n, nil
}

// ExtractComp performs the compositional extract of spec.md §4.2:
//  1. diff = self_unnormalized - amount*other
//  2. entries with |diff| <= threshold are dropped
//  3. any remaining negative entry fails with ValueError
//  4. the surviving entries are Kahan-summed to the residual mass, which
//     becomes m's new (renormalized) composition; the returned Material
//     carries `other` verbatim and the requested amount.
//
// threshold must be >= 0.
func (m *Material) ExtractComp(other *Composition, amount float64, u massunit.Unit, threshold float64) (*Material, error) {
	if threshold < 0 {
		return nil, valueErrorf("extractcomp", "negative threshold %g", threshold)
	}
	if amount < 0 {
		return nil, valueErrorf("extractcomp", "negative amount %g", amount)
	}
	if m.comp == nil {
		return nil, valueErrorf("extractcomp", "material %s has no composition to extract from", m.id)
	}
	amountKG, err := massunit.ToKG(amount, u)
	if err != nil {
		return nil, &UnitError{Err: err}
	}

	selfMass := m.comp.Massify()
	otherMass := other.Massify()

	isos := make(map[int]bool, len(selfMass.frac)+len(otherMass.frac))
	for iso := range selfMass.frac {
		isos[iso] = true
	}
	for iso := range otherMass.frac {
		isos[iso] = true
	}

	diff := make(map[int]float64, len(isos))
	for iso := range isos {
		selfAmt := m.quantity * selfMass.frac[iso]
		d := selfAmt - amountKG*otherMass.frac[iso]
		if math.Abs(d) <= threshold {
			continue
		}
		if d < 0 {
			return nil, valueErrorf("extractcomp", "insufficient isotope %d in material %s: short by %g kg", iso, m.id, -d)
		}
		diff[iso] = d
	}

	// Neumaier-compensated summation: mandatory per spec.md §4.2, the
	// only way the conservation test passes at double precision once
	// many isotopes are summed (see kahan.go).
	diffVals := make([]float64, 0, len(diff))
	for _, d := range diff {
		diffVals = append(diffVals, d)
	}
	sum := kahanSum(diffVals)

	residualFrac := make(map[int]float64, len(diff))
	if sum > 0 {
		for iso, d := range diff {
			residualFrac[iso] = d / sum
		}
	}
	residual := &Composition{basis: Mass, frac: residualFrac}
	normResidual, err := residual.Normalize()
	if err != nil {
		// the residue is entirely exhausted (sum == 0): leave the
		// material with an empty composition rather than fail the
		// extraction outright.
		normResidual = residual
	}

	extracted := &Material{
		ctx:        m.ctx,
		id:         uuid.New(),
		originalID: m.originalID,
		quantity:   amountKG,
		comp:       other,
		lastUpdate: m.ctx.Now(),
	}
	m.ctx.enroll(extracted)

	m.quantity = sum
	m.comp = normResidual
	m.lastUpdate = m.ctx.Now()

	return extracted, nil
}

// Decay applies first-order radioactive decay to m's composition over dt
// timesteps and stamps LastUpdateTime. dt may be zero, in which case the
// composition is left exactly as-is (Decay(0) is an identity operation).
func (m *Material) Decay(dt int) error {
	if dt < 0 {
		return valueErrorf("decay", "negative timestep %d", dt)
	}
	m.lastUpdate = m.ctx.Now()
	if dt == 0 || m.comp == nil {
		return nil
	}
	mass := m.comp.Massify()
	decayed := make(map[int]float64, len(mass.frac))
	var lost float64
	for iso, f := range mass.frac {
		lambda := nucdata.DecayConstant(iso)
		if lambda == 0 {
			decayed[iso] = f
			continue
		}
		remaining := f * math.Exp(-lambda*float64(dt))
		decayed[iso] += remaining
		lost += f - remaining
	}
	if lost > 0 {
		// Undecayed daughter-product mass is folded into isotope 0, a
		// generic decay-product bucket, so total mass fraction remains
		// conserved (spec.md "quantity" conservation is about kg, not
		// about which isotope holds it).
		decayed[0] += lost
	}
	c := &Composition{basis: Mass, frac: decayed}
	norm, err := c.Normalize()
	if err != nil {
		return err
	}
	if m.comp.basis == Atom {
		m.comp = norm.Atomify()
	} else {
		m.comp = norm
	}
	return nil
}

// Clone returns a deep copy of m, preserving OriginalID, enrolled in the
// same SimulationContext under a new id.
func (m *Material) Clone() *Material {
	var comp *Composition
	if m.comp != nil {
		comp = m.comp.clone()
	}
	n := &Material{
		ctx:        m.ctx,
		id:         uuid.New(),
		originalID: m.originalID,
		quantity:   m.quantity,
		comp:       comp,
		lastUpdate: m.lastUpdate,
	}
	m.ctx.enroll(n)
	return n
}

// AlmostEqual reports whether m and other have the same quantity (within
// eps) and AlmostEqual compositions.
func (m *Material) AlmostEqual(other *Material, epsQty float64) bool {
	if math.Abs(m.quantity-other.quantity) > epsQty {
		return false
	}
	if m.comp == nil || other.comp == nil {
		return m.comp == other.comp
	}
	return m.comp.AlmostEqual(other.comp, epsQty)
}
