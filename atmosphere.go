package icsim

import (
	"runtime"
	"sync"
)

// PressureEqualizationEpsilon is the pressure delta (kPa) below which two
// connected networks are considered equalized, ported verbatim from
// original_source/src/atmospherics/chemistry.rs.
const PressureEqualizationEpsilon = 0.001

// AtmosphericNetwork is a shared gas mixture reachable through any device
// that attaches one of its external ports to it. Devices reference the
// network; the network never owns the devices attached to it.
type AtmosphericNetwork struct {
	ID      NetworkId
	Mixture *GasMixture
}

func newAtmosphericNetwork(id NetworkId, volumeLiters float64) (*AtmosphericNetwork, error) {
	mix, err := NewGasMixture(volumeLiters)
	if err != nil {
		return nil, err
	}
	return &AtmosphericNetwork{ID: id, Mixture: mix}, nil
}

// Pressure, Temperature, TotalMoles and TotalVolume are read-only observers
// exposed to the host UI (spec.md §4.2).
func (n *AtmosphericNetwork) Pressure() float64    { return n.Mixture.Pressure() }
func (n *AtmosphericNetwork) Temperature() float64 { return n.Mixture.Temperature() }
func (n *AtmosphericNetwork) TotalMoles() float64  { return n.Mixture.TotalMoles() }
func (n *AtmosphericNetwork) TotalVolume() float64 { return n.Mixture.TotalVolume() }

// GasRatio returns the mole fraction of the given species.
func (n *AtmosphericNetwork) GasRatio(s GasSpecies) float64 { return n.Mixture.GasRatio(s) }

// pipeAdjacency is a registered equalization pair, processed once per tick
// during the manager's atmospheric-physics phase.
type pipeAdjacency struct {
	a, b *AtmosphericNetwork
}

// Equalize swaps moles/energy between a and b proportionally to volume,
// driving both toward a common pressure. It is conservative by
// construction: it only redistributes a's and b's existing moles and
// energy between the two mixtures, it manufactures none.
func Equalize(a, b *AtmosphericNetwork) {
	if a == nil || b == nil || a == b {
		return
	}
	pa, pb := a.Mixture.Pressure(), b.Mixture.Pressure()
	if pa-pb < PressureEqualizationEpsilon && pb-pa < PressureEqualizationEpsilon {
		return
	}
	va, vb := a.Mixture.TotalVolume(), b.Mixture.TotalVolume()
	totalV := va + vb
	if totalV <= 0 {
		return
	}
	// Pool everything into a temporary mixture sized to the combined
	// volume, then split it back out proportionally to each side's share
	// of that volume. This redistributes moles/energy toward a uniform
	// pressure while only ever moving what the two mixtures already held.
	pool := &GasMixture{volume: totalV}
	pool.Merge(a.Mixture)
	pool.Merge(b.Mixture)

	aFrac := va / totalV
	for s := GasSpecies(0); s < gasSpeciesCount; s++ {
		dm := pool.moles[s] * aFrac
		de := pool.energy[s] * aFrac
		a.Mixture.moles[s] = dm
		a.Mixture.energy[s] = de
		b.Mixture.moles[s] = pool.moles[s] - dm
		b.Mixture.energy[s] = pool.energy[s] - de
	}
}

// runAtmosphericPhase advances every registered network by one tick: for
// each pipe adjacency, it equalizes the pair. Spec.md §5 requires that no
// entity ever be observed concurrently with its own mutation, so this only
// fans out across a worker pool (mirroring the teacher's Circuit
// worker-pool pattern in hwsim.go::NewCircuit/Circuit.Step, repurposed from
// per-gate to per-adjacency parallelism) when the adjacency list is
// provably disjoint — no network appears in more than one pair. Any shared
// network forces a sequential pass so two goroutines never touch the same
// mixture at once.
func runAtmosphericPhase(adj []pipeAdjacency) {
	if len(adj) <= 1 || !disjoint(adj) {
		for _, p := range adj {
			Equalize(p.a, p.b)
		}
		return
	}

	workers := runtime.GOMAXPROCS(-1)
	if workers > len(adj) {
		workers = len(adj)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan pipeAdjacency, len(adj))
	for _, p := range adj {
		jobs <- p
	}
	close(jobs)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for p := range jobs {
				Equalize(p.a, p.b)
			}
		}()
	}
	wg.Wait()
}

// disjoint reports whether every network referenced by adj appears in at
// most one pair.
func disjoint(adj []pipeAdjacency) bool {
	seen := make(map[NetworkId]bool, len(adj)*2)
	for _, p := range adj {
		for _, n := range [2]*AtmosphericNetwork{p.a, p.b} {
			if n == nil {
				continue
			}
			if seen[n.ID] {
				return false
			}
			seen[n.ID] = true
		}
	}
	return true
}
