package metrics

import (
	"math"

	"github.com/san-kum/mindwave/internal/dynamo"
)

// Energy is the mean energy over all observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f dynamo.Frame, sim dynamo.Simulation) {
	h, ok := sim.(dynamo.Hamiltonian)
	if !ok {
		return
	}
	e.totalEnergy += h.Energy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDecay is the fraction of the first observed energy that has been
// lost by the latest frame. A damped pendulum approaches 1.
type EnergyDecay struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(f dynamo.Frame, sim dynamo.Simulation) {
	h, ok := sim.(dynamo.Hamiltonian)
	if !ok {
		return
	}
	energy := h.Energy()
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++
}

func (e *EnergyDecay) Value() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDecay) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
