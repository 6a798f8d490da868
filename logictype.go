package icsim

import "fmt"

// LogicType is a closed enumeration of the named, numeric logic properties a
// device prefab may expose. Numeric codes for names present in
// original_source/src/devices/mod.rs::LogicType are ported verbatim; the
// rest (generic non-port properties, and the three species this port adds
// beyond the original's coverage: Hydrogen, LiquidHydrogen, PollutedWater)
// are assigned fresh codes above 400 that don't collide with the ported
// range.
type LogicType int32

// Generic logic types, ported verbatim from original_source.
const (
	Mode       LogicType = 3
	Setting    LogicType = 12
	Horizontal LogicType = 20
	Vertical   LogicType = 21
	Ratio      LogicType = 24
	On         LogicType = 28
	PrefabHashLT LogicType = 84

	LineNumberLT LogicType = 173
	ReferenceIdLT LogicType = 217
	NameHashLT   LogicType = 268
	StackSizeLT  LogicType = 280

	OperationalTemperatureEfficiency  LogicType = 150
	TemperatureDifferentialEfficiency LogicType = 151
	PressureEfficiency                LogicType = 152
)

// Generic non-atmospheric-port logic types spec.md's glossary names that
// the original's device-specific enum doesn't need a separate code for
// (tanks, valves and similar devices read/write these directly rather than
// through one of the four atmospheric ports). Fresh codes, not ported.
const (
	Open LogicType = 400 + iota
	Lock
	Power
	Activate
	Error
	Pressure
	Temperature
	Volume
	TotalMoles
	Combustion
	RatioOxygen
	RatioCarbonDioxide
	RatioNitrogen
	RatioPollutant
	RatioVolatiles
	RatioWater
	RatioNitrousOxide
	RatioLiquidNitrogen
	RatioLiquidOxygen
	RatioLiquidVolatiles
	RatioSteam
	RatioLiquidCarbonDioxide
	RatioLiquidPollutant
	RatioLiquidNitrousOxide
	RatioHydrogen
	RatioLiquidHydrogen
	RatioPollutedWater

	// Solar is the daylight sensor's derived sun-intensity reading. The
	// original simulation has no equivalent code; this is a fresh
	// allocation in the same block.
	Solar
)

// PortKind identifies one of a device's atmospheric attachment points.
type PortKind int

// The four external atmospheric ports a device may expose, plus Internal,
// the device's own atmosphere. Internal is not created automatically: it is
// wired through SimulationManager.AttachAtmospheric like any other port the
// prefab lists.
const (
	Internal PortKind = iota
	PortInput
	PortInput2
	PortOutput
	PortOutput2
)

func (p PortKind) String() string {
	switch p {
	case Internal:
		return "Internal"
	case PortInput:
		return "Input"
	case PortInput2:
		return "Input2"
	case PortOutput:
		return "Output"
	case PortOutput2:
		return "Output2"
	default:
		return "Unknown"
	}
}

// speciesRatioName maps each species to the base name used to build its
// per-port Ratio<Species><Port> logic-type identifier, following the
// original's naming (RatioOxygenInput, RatioLiquidNitrogenInput, ...).
var speciesRatioName = map[GasSpecies]string{
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

// atmoScalarCodes and atmoRatioCodes are ported verbatim from
// original_source/src/devices/mod.rs::LogicType for the Pressure,
// Temperature, TotalMoles, Combustion, and per-species Ratio fields of
// each of the four atmospheric ports; the codes below are the literal
// per-port numeric values.
var atmoScalarCodes = map[PortKind]struct{ Pressure, Temperature, TotalMoles, Combustion int32 }{
	PortInput:   {106, 107, 115, 146},
	PortInput2:  {116, 117, 125, 147},
	PortOutput:  {126, 127, 135, 148},
	PortOutput2: {136, 137, 145, 149},
}

var atmoRatioCodes = map[PortKind]map[GasSpecies]int32{
	PortInput: {
		Oxygen: 108, CarbonDioxide: 109, Nitrogen: 110, Pollutant: 111,
		Volatiles: 112, Water: 113, NitrousOxide: 114,
		LiquidNitrogen: 178, LiquidOxygen: 184, LiquidVolatiles: 189,
		Steam: 194, LiquidCarbonDioxide: 200, LiquidPollutant: 205,
		LiquidNitrousOxide: 210,
	},
	PortInput2: {
		Oxygen: 118, CarbonDioxide: 119, Nitrogen: 120, Pollutant: 121,
		Volatiles: 122, Water: 123, NitrousOxide: 124,
		LiquidNitrogen: 179, LiquidOxygen: 185, LiquidVolatiles: 190,
		Steam: 195, LiquidCarbonDioxide: 201, LiquidPollutant: 206,
		LiquidNitrousOxide: 211,
	},
	PortOutput: {
		Oxygen: 128, CarbonDioxide: 129, Nitrogen: 130, Pollutant: 131,
		Volatiles: 132, Water: 133, NitrousOxide: 134,
		LiquidNitrogen: 180, LiquidOxygen: 186, LiquidVolatiles: 191,
		Steam: 196, LiquidCarbonDioxide: 202, LiquidPollutant: 207,
		LiquidNitrousOxide: 212,
	},
	PortOutput2: {
		Oxygen: 138, CarbonDioxide: 139, Nitrogen: 140, Pollutant: 141,
		Volatiles: 142, Water: 143, NitrousOxide: 144,
		LiquidNitrogen: 181, LiquidOxygen: 187, LiquidVolatiles: 192,
		Steam: 197, LiquidCarbonDioxide: 203, LiquidPollutant: 208,
		LiquidNitrousOxide: 213,
	},
}

// nextExtraCode hands out fresh codes for the three species the original
// doesn't cover (Hydrogen, LiquidHydrogen, PollutedWater), one block of 4
// (one per port) per species, starting after the generic block above.
var nextExtraCode int32 = 500

var (
	logicTypeNames  = map[LogicType]string{}
	logicTypeByName = map[string]LogicType{}
)

func registerLogicType(name string, lt LogicType) {
	logicTypeNames[lt] = name
	logicTypeByName[name] = lt
}

func init() {
	for name, lt := range map[string]LogicType{
		"Mode": Mode, "Setting": Setting, "Horizontal": Horizontal,
		"Vertical": Vertical, "Ratio": Ratio, "On": On,
		"PrefabHash": PrefabHashLT, "LineNumber": LineNumberLT,
		"ReferenceId": ReferenceIdLT, "NameHash": NameHashLT,
		"StackSize": StackSizeLT,
		"OperationalTemperatureEfficiency": OperationalTemperatureEfficiency,
		"TemperatureDifferentialEfficiency": TemperatureDifferentialEfficiency,
		"PressureEfficiency": PressureEfficiency,
		"Open": Open, "Lock": Lock, "Power": Power, "Activate": Activate,
		"Error": Error, "Pressure": Pressure, "Temperature": Temperature,
		"Volume": Volume, "TotalMoles": TotalMoles, "Combustion": Combustion,
		"RatioOxygen": RatioOxygen, "RatioCarbonDioxide": RatioCarbonDioxide,
		"RatioNitrogen": RatioNitrogen, "RatioPollutant": RatioPollutant,
		"RatioVolatiles": RatioVolatiles, "RatioWater": RatioWater,
		"RatioNitrousOxide": RatioNitrousOxide,
		"RatioLiquidNitrogen": RatioLiquidNitrogen,
		"RatioLiquidOxygen": RatioLiquidOxygen,
		"RatioLiquidVolatiles": RatioLiquidVolatiles,
		"RatioSteam": RatioSteam,
		"RatioLiquidCarbonDioxide": RatioLiquidCarbonDioxide,
		"RatioLiquidPollutant": RatioLiquidPollutant,
		"RatioLiquidNitrousOxide": RatioLiquidNitrousOxide,
		"RatioHydrogen": RatioHydrogen,
		"RatioLiquidHydrogen": RatioLiquidHydrogen,
		"RatioPollutedWater": RatioPollutedWater,
		"Solar": Solar,
	} {
		registerLogicType(name, lt)
	}

	for _, port := range [4]PortKind{PortInput, PortInput2, PortOutput, PortOutput2} {
		c := atmoScalarCodes[port]
		registerLogicType("Pressure"+port.String(), LogicType(c.Pressure))
		registerLogicType("Temperature"+port.String(), LogicType(c.Temperature))
		registerLogicType("TotalMoles"+port.String(), LogicType(c.TotalMoles))
		registerLogicType("Combustion"+port.String(), LogicType(c.Combustion))

		for species, name := range speciesRatioName {
			if code, ok := atmoRatioCodes[port][species]; ok {
				registerLogicType("Ratio"+name+port.String(), LogicType(code))
			}
		}
	}

	// Species the original doesn't cover (Hydrogen, LiquidHydrogen,
	// PollutedWater) get fresh codes species by species, one per port.
	for species := GasSpecies(0); species < gasSpeciesCount; species++ {
		for _, port := range [4]PortKind{PortInput, PortInput2, PortOutput, PortOutput2} {
			if _, ok := atmoRatioCodes[port][species]; ok {
				continue
			}
			registerLogicType("Ratio"+speciesRatioName[species]+port.String(), LogicType(nextExtraCode))
			nextExtraCode++
		}
	}
}

// LogicTypeByName resolves an IC10 identifier to its LogicType, as used
// when parsing device I/O and batch instructions.
func LogicTypeByName(name string) (LogicType, bool) {
	lt, ok := logicTypeByName[name]
	return lt, ok
}

func (lt LogicType) String() string {
	if n, ok := logicTypeNames[lt]; ok {
		return n
	}
	return fmt.Sprintf("LogicType(%d)", int32(lt))
}

// LogicSlotType is a closed enumeration of the per-slot properties exposed
// by ls/lr. Numeric codes are ported verbatim from
// original_source/src/devices/mod.rs::LogicSlotType.
type LogicSlotType int32

const (
	SlotNone LogicSlotType = iota
	SlotOccupied
	SlotOccupantHash
	SlotQuantity
	SlotDamage
	SlotEfficiency
	SlotHealth
	SlotGrowth
	SlotPressure
	SlotTemperature
	SlotCharge
	SlotChargeRatio
	SlotClass
	SlotPressureWaste
	SlotPressureAir
	SlotMaxQuantity
	SlotMature
	SlotPrefabHash
	SlotSeeding
	SlotLineNumber
	SlotVolume
	SlotOpen
	SlotOn
	SlotLock
	SlotSortingClass
	SlotFilterType
	SlotReferenceId
	SlotHarvestedHash
	SlotMode
	SlotMaturityRatio
	SlotSeedingRatio
	SlotFreeSlots
	SlotTotalSlots
)
