package icsim

import "math"

// GasSpecies is a closed enumeration of the gas and liquid kinds the
// atmospherics model tracks.
type GasSpecies int

// The 17 species the atmospherics model supports.
const (
	Oxygen GasSpecies = iota
	Nitrogen
	CarbonDioxide
	Volatiles
	Pollutant
	NitrousOxide
	Steam
	Hydrogen
	Water
	LiquidNitrogen
	LiquidOxygen
	LiquidVolatiles
	LiquidCarbonDioxide
	LiquidPollutant
	LiquidNitrousOxide
	LiquidHydrogen
	PollutedWater

	gasSpeciesCount
)

func (g GasSpecies) String() string {
	if n, ok := gasNames[g]; ok {
		return n
	}
	return "Unknown"
}

var gasNames = map[GasSpecies]string{
	Oxygen:               "Oxygen",
	Nitrogen:             "Nitrogen",
	CarbonDioxide:        "CarbonDioxide",
	Volatiles:            "Volatiles",
	Pollutant:            "Pollutant",
	NitrousOxide:         "NitrousOxide",
	Steam:                "Steam",
	Hydrogen:             "Hydrogen",
	Water:                "Water",
	LiquidNitrogen:       "LiquidNitrogen",
	LiquidOxygen:         "LiquidOxygen",
	LiquidVolatiles:      "LiquidVolatiles",
	LiquidCarbonDioxide:  "LiquidCarbonDioxide",
	LiquidPollutant:      "LiquidPollutant",
	LiquidNitrousOxide:   "LiquidNitrousOxide",
	LiquidHydrogen:       "LiquidHydrogen",
	PollutedWater:        "PollutedWater",
}

// gasProps holds the per-species physical constants used by the ideal-gas
// arithmetic: molar heat capacity at constant volume (J·mol⁻¹·K⁻¹) and molar
// mass (g·mol⁻¹).
type gasProps struct {
	Cv        float64
	MolarMass float64
}

// Cv values for the seven gaseous species are ported verbatim from
// original_source/src/atmospherics/gas_type.rs::specific_heat. The seven
// liquid species and Hydrogen/Water/PollutedWater have no
// source-of-truth in original_source (it models gases only); their Cv and
// molar-mass values below are reasonable approximations invented for this
// port and documented here as such, per the spec's Open Question on gas
// constants (spec.md §9).
var gasTable = map[GasSpecies]gasProps{
	Oxygen:        {Cv: 21.1, MolarMass: 32.0},
	Nitrogen:      {Cv: 20.6, MolarMass: 28.0},
	CarbonDioxide: {Cv: 28.2, MolarMass: 44.0},
	Volatiles:     {Cv: 20.4, MolarMass: 2.0},
	Pollutant:     {Cv: 24.8, MolarMass: 60.0},
	NitrousOxide:  {Cv: 37.2, MolarMass: 44.0},
	Steam:         {Cv: 72.0, MolarMass: 18.0},

	// approximated: no original_source counterpart.
	Hydrogen:            {Cv: 20.4, MolarMass: 2.0},
	Water:               {Cv: 75.3, MolarMass: 18.0},
	LiquidNitrogen:      {Cv: 55.0, MolarMass: 28.0},
	LiquidOxygen:        {Cv: 55.0, MolarMass: 32.0},
	LiquidVolatiles:     {Cv: 55.0, MolarMass: 2.0},
	LiquidCarbonDioxide: {Cv: 55.0, MolarMass: 44.0},
	LiquidPollutant:     {Cv: 55.0, MolarMass: 60.0},
	LiquidNitrousOxide:  {Cv: 55.0, MolarMass: 44.0},
	LiquidHydrogen:      {Cv: 55.0, MolarMass: 2.0},
	PollutedWater:       {Cv: 75.3, MolarMass: 18.0},
}

// Atmospheric chemistry constants, ported verbatim from
// original_source/src/atmospherics/chemistry.rs.
const (
	// IdealGasConstant is R in PV = nRT (J·mol⁻¹·K⁻¹).
	IdealGasConstant = 8.31446261815324

	// MinimumQuantityMoles is the original's per-species presence
	// threshold. It is exported as ported; no GasMixture method consults it.
	MinimumQuantityMoles = 1e-5

	// MinimumValidTotalMoles is the per-mixture threshold below which the
	// mixture as a whole is treated as empty.
	MinimumValidTotalMoles = 1e-3

	// mixtureEpsilon is a 1e-9 mol tolerance for the mixture invariants.
	// No GasMixture method consults it: Add and Remove clamp on sign and
	// NaN only.
	mixtureEpsilon = 1e-9
)

// GasMixture is a per-volume store of gas moles and internal energy, one
// pair per species, so mixtures can be merged without re-deriving a single
// temperature first. All operations preserve: moles ≥ 0, energy ≥ 0,
// volume > 0.
type GasMixture struct {
	moles  [gasSpeciesCount]float64
	energy [gasSpeciesCount]float64
	volume float64
}

// NewGasMixture creates an empty mixture with the given volume (litres).
// volumeLiters must be > 0; a non-positive volume returns a DomainError.
func NewGasMixture(volumeLiters float64) (*GasMixture, error) {
	if volumeLiters <= 0 {
		return nil, newDomainError("gas mixture volume must be > 0, got %g", volumeLiters)
	}
	return &GasMixture{volume: volumeLiters}, nil
}

// Moles returns the moles of the given species.
func (m *GasMixture) Moles(s GasSpecies) float64 { return m.moles[s] }

// Energy returns the internal energy (Joules) of the given species.
func (m *GasMixture) Energy(s GasSpecies) float64 { return m.energy[s] }

// TotalMoles returns the sum of moles across all species.
func (m *GasMixture) TotalMoles() float64 {
	var n float64
	for i := range m.moles {
		n += m.moles[i]
	}
	return n
}

func (m *GasMixture) totalEnergy() float64 {
	var e float64
	for i := range m.energy {
		e += m.energy[i]
	}
	return e
}

// Temperature returns the mixture's derived temperature in Kelvin:
// T = ΣU_i / Σ(n_i·Cv_i). Returns 0 when the mixture's total moles are
// below MinimumValidTotalMoles.
func (m *GasMixture) Temperature() float64 {
	n := m.TotalMoles()
	if n < MinimumValidTotalMoles {
		return 0
	}
	var nCv float64
	for s := GasSpecies(0); s < gasSpeciesCount; s++ {
		nCv += m.moles[s] * gasTable[s].Cv
	}
	if nCv <= 0 {
		return 0
	}
	t := m.totalEnergy() / nCv
	return math.Max(t, 0)
}

// Pressure returns P = (Σn_i)·R·T / V, 0 if volume is 0.
func (m *GasMixture) Pressure() float64 {
	v := m.volume
	if v <= 0 {
		return 0
	}
	return (m.TotalMoles() * IdealGasConstant * m.Temperature()) / v
}

// TotalVolume returns the mixture's volume in litres.
func (m *GasMixture) TotalVolume() float64 { return m.volume }

// SetVolume adjusts the volume, leaving moles and energy untouched (an
// isothermal operation: pressure scales ~1/V).
func (m *GasMixture) SetVolume(v float64) error {
	if v <= 0 {
		return newDomainError("gas mixture volume must be > 0, got %g", v)
	}
	m.volume = v
	return nil
}

// SetTemperature rescales every species' energy to n_i·Cv_i·T, leaving
// moles untouched.
func (m *GasMixture) SetTemperature(t float64) {
	for s := GasSpecies(0); s < gasSpeciesCount; s++ {
		m.energy[s] = m.moles[s] * gasTable[s].Cv * t
	}
}

// GasRatio returns n_i / Σn_j, 0 if the mixture is empty.
func (m *GasMixture) GasRatio(s GasSpecies) float64 {
	n := m.TotalMoles()
	if n <= 0 {
		return 0
	}
	return m.moles[s] / n
}

// Add increments moles[s] by moles and energy[s] by moles·Cv_s·atTemperature.
// A NaN or negative result clamps to zero and is reported as a DataError.
func (m *GasMixture) Add(s GasSpecies, moles, atTemperature float64) error {
	if moles < 0 || math.IsNaN(moles) || math.IsNaN(atTemperature) {
		m.clamp(s)
		return newDataError("invalid add(%s, %g mol @ %gK)", s, moles, atTemperature)
	}
	m.moles[s] += moles
	m.energy[s] += moles * gasTable[s].Cv * atTemperature
	return m.checkSpecies(s)
}

// Remove decrements moles[s] by moles, scaling energy[s] proportionally so
// the temperature of the removed portion equals the source's temperature.
// Requesting more than is present clamps to removing everything.
func (m *GasMixture) Remove(s GasSpecies, moles float64) error {
	if moles < 0 || math.IsNaN(moles) {
		return newDataError("invalid remove(%s, %g mol)", s, moles)
	}
	n := m.moles[s]
	if n <= 0 {
		return nil
	}
	if moles >= n {
		m.moles[s] = 0
		m.energy[s] = 0
		return nil
	}
	ratio := (n - moles) / n
	m.moles[s] = n - moles
	m.energy[s] *= ratio
	return m.checkSpecies(s)
}

// RemoveAll zeroes moles[s] and energy[s].
func (m *GasMixture) RemoveAll(s GasSpecies) {
	m.moles[s] = 0
	m.energy[s] = 0
}

// RemoveMoles removes up to totalMoles moles (distributed proportionally
// across species by their share of the mixture) into a freshly allocated
// mixture of the same volume, leaving the receiver's volume unchanged. It
// is the building block devices use to transfer a capped quantity of gas
// regardless of composition (e.g. VolumePump).
func (m *GasMixture) RemoveMoles(totalMoles float64) *GasMixture {
	out := &GasMixture{volume: m.volume}
	n := m.TotalMoles()
	if n <= 0 || totalMoles <= 0 {
		return out
	}
	take := math.Min(totalMoles, n)
	frac := take / n
	for s := GasSpecies(0); s < gasSpeciesCount; s++ {
		dm := m.moles[s] * frac
		de := m.energy[s] * frac
		m.moles[s] -= dm
		m.energy[s] -= de
		out.moles[s] += dm
		out.energy[s] += de
	}
	return out
}

// Merge elementwise adds other's moles and energy into the receiver. The
// receiver's volume is unchanged; other is zeroed. Merge is exactly
// conservative: Σ(n,U) before == Σ(n,U) after across the pair.
func (m *GasMixture) Merge(other *GasMixture) {
	for s := GasSpecies(0); s < gasSpeciesCount; s++ {
		m.moles[s] += other.moles[s]
		m.energy[s] += other.energy[s]
		other.moles[s] = 0
		other.energy[s] = 0
	}
}

// checkSpecies clamps a species back to a well-formed state and reports a
// DataError if either field went negative or NaN.
func (m *GasMixture) checkSpecies(s GasSpecies) error {
	bad := math.IsNaN(m.moles[s]) || math.IsNaN(m.energy[s]) || m.moles[s] < 0 || m.energy[s] < 0
	if !bad {
		return nil
	}
	m.clamp(s)
	return newDataError("mixture invariant violated for %s", s)
}

func (m *GasMixture) clamp(s GasSpecies) {
	if math.IsNaN(m.moles[s]) || m.moles[s] < 0 {
		m.moles[s] = 0
	}
	if math.IsNaN(m.energy[s]) || m.energy[s] < 0 {
		m.energy[s] = 0
	}
}

// calculateMoles implements the ideal gas law n = PV/RT, ported from
// original_source/src/atmospherics/chemistry.rs::calculate_moles.
func calculateMoles(pressure, volume, temperature float64) float64 {
	if temperature <= 0 {
		return 0
	}
	return (pressure * volume) / (IdealGasConstant * temperature)
}
