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

// Clock supplies the monotonic integer simulation timestep. It is
// implemented by the time-stepping driver, an external collaborator
// (spec.md §1); Cyclus only consumes Now().
type Clock interface {
	Now() int
}

// fixedClock is a trivial Clock for callers that don't have a real
// time-stepping driver wired up yet (tests, the cmd/cyclus demo).
type fixedClock struct{ t int }

// Now implements Clock.
func (f *fixedClock) Now() int { return f.t }

// SimulationContext owns the decay registry that used to be a
// process-wide global (spec.md §9, §5): every live Material constructed
// through a SimulationContext is enrolled here, and DecayAll applies decay
// to the whole registry in one call, the same operation
// Material::DecayMaterials() performed over the original's static list.
// Two SimulationContexts never share a registry, so independent
// concurrent simulations in one process each get their own decay clock.
type SimulationContext struct {
	clock      Clock
	materials  []*Material
	index      map[*Material]int
	nextSerial uint64
}

// NewSimulationContext creates a context driven by clock. If clock is nil,
// the context uses a fixed clock pinned at t=0, which is sufficient for
// callers that stamp timestamps themselves.
func NewSimulationContext(clock Clock) *SimulationContext {
	if clock == nil {
		clock = &fixedClock{}
	}
	return &SimulationContext{clock: clock, index: make(map[*Material]int)}
}

// Now returns the current simulation timestep.
func (ctx *SimulationContext) Now() int { return ctx.clock.Now() }

func (ctx *SimulationContext) enroll(m *Material) {
	ctx.index[m] = len(ctx.materials)
	ctx.materials = append(ctx.materials, m)
}

// Forget removes m from the decay registry. Callers should call Forget
// when a Material is no longer held by any agent; Forget is idempotent.
func (ctx *SimulationContext) Forget(m *Material) {
	i, ok := ctx.index[m]
	if !ok {
		return
	}
	last := len(ctx.materials) - 1
	ctx.materials[i] = ctx.materials[last]
	ctx.index[ctx.materials[i]] = i
	ctx.materials = ctx.materials[:last]
	delete(ctx.index, m)
}

// Registered returns the number of Materials currently enrolled.
func (ctx *SimulationContext) Registered() int { return len(ctx.materials) }

// DecayAll applies Decay(dt) to every Material currently enrolled in the
// registry, in registry order. That is enrollment order until a Forget:
// Forget moves the last-enrolled Material into the freed slot, so after a
// Forget the order is no longer enrollment order.
func (ctx *SimulationContext) DecayAll(dt int) error {
	for _, m := range ctx.materials {
		if err := m.Decay(dt); err != nil {
			return err
		}
	}
	return nil
}
