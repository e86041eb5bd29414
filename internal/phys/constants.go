// Package phys provides the physical constants and static lookup tables
// shared by every generator. Values are SI unless the name says otherwise.
package phys

// Solar reference values.
const (
	SolarMass       = 1.98847e30 // kg
	SolarRadius     = 6.957e8    // m
	SolarLuminosity = 3.828e26   // W
	SolarTemp       = 5772.0     // K, effective photospheric temperature

	// SolarMetallicity is the present-day bulk heavy-element mass fraction Z.
	SolarMetallicity = 0.0134
)

// Earth reference values.
const (
	EarthMass   = 5.9722e24 // kg
	EarthRadius = 6.371e6   // m
)

// Universal constants.
const (
	G               = 6.6743e-11     // m³ kg⁻¹ s⁻²
	Boltzmann       = 1.380649e-23   // J K⁻¹
	StefanBoltzmann = 5.670374419e-8 // W m⁻² K⁻⁴
	GasConstant     = 8.314462618    // J mol⁻¹ K⁻¹
	WienB           = 2.897771955e-3 // m K
	AU              = 1.495978707e11 // m
	SecondsPerDay   = 86400.0        // s
	DaysPerYear     = 365.25         // d
)

// HabitableFluxReference is the effective solar temperature the habitable
// zone flux polynomials are centred on.
const HabitableFluxReference = 5780.0 // K

// Condensation temperatures used for the frost and silicate lines.
const (
	FrostTemp    = 150.0  // K, water ice
	SilicateTemp = 1500.0 // K, silicate condensation
)
