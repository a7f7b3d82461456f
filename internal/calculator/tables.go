package calculator

// DefaultUnitValue is the per-m² value used when the usage label is unknown.
const DefaultUnitValue = 100000.0

// UnitValues maps a usage label to its base value per m².
var UnitValues = []struct {
	Usage string
	Value float64
}{
	{"Residential - Family Home", 150000},
	{"Residential - Apartment", 180000},
	{"Residential - Duplex", 170000},
	{"Residential - Terrace", 140000},
	{"Residential - Bungalow", 120000},
	{"Commercial - Office", 250000},
	{"Commercial - Retail", 220000},
	{"Commercial - Hotel", 280000},
	{"Commercial - Event Center", 160000},
	{"Industrial - Warehouse", 120000},
	{"Industrial - Factory", 110000},
	{"Land - Undeveloped", 50000},
	{"Land - Agricultural", 30000},
	{"Mixed Use", 200000},
}

// Locations maps a locale key to its multiplier. A location matches a key when it
// contains the key (case-insensitive); the longest matching key wins, so
// "Lekki Phase 1" is preferred over "Lekki".
var Locations = []struct {
	Key        string
	Multiplier float64
}{
	{"Banana Island", 3.0},
	{"Eko Atlantic", 2.7},
	{"Ikoyi", 2.6},
	{"Victoria Island", 2.5},
	{"Maitama", 2.2},
	{"Asokoro", 2.0},
	{"Lekki Phase 1", 1.8},
	{"Ikeja GRA", 1.7},
	{"Wuse", 1.6},
	{"Lekki", 1.5},
	{"Abuja", 1.5},
	{"Ikeja", 1.4},
	{"Yaba", 1.3},
	{"Port Harcourt", 1.3},
	{"Ajah", 1.2},
	{"Surulere", 1.2},
	{"Ibadan", 0.9},
	{"Epe", 0.8},
}

// DefaultLocationMultiplier applies when no key matches.
const DefaultLocationMultiplier = 1.0

// Amenities maps an amenity name to the absolute value it adds.
var Amenities = []struct {
	Name  string
	Value float64
}{
	{"Swimming Pool", 2000000},
	{"Generator/Backup Power", 500000},
	{"Security/Gated Community", 1000000},
	{"Parking Space", 300000},
	{"Garden", 400000},
	{"Gym", 800000},
	{"Elevator", 1500000},
	{"Air Conditioning", 600000},
	{"Borehole/Water Supply", 350000},
	{"Boys Quarters", 1200000},
	{"Solar Power", 900000},
	{"Balcony", 250000},
	{"Furnished", 1500000},
	{"CCTV", 200000},
	{"Waterfront", 3000000},
}

const (
	storyIncrement    = 0.15
	efficientRoomSize = 25.0 // m²
	maxRoomEfficiency = 1.5
	marketPremium     = 1.15
	estimatedPremium  = 1.10
	comparableCount   = 3
	comparablePriceLo = 0.85
	comparablePriceHi = 1.15
	comparableSizeLo  = 0.80
	comparableSizeHi  = 1.20
	similarityLo      = 75.0
	similarityHi      = 95.0
	appreciationLo    = 5.0
	appreciationHi    = 15.0
	confidenceLo      = 75.0
	confidenceHi      = 95.0
)

// MaxSize bounds size and average room size in m².
const MaxSize = 1e9

// MaxValue bounds current value so every derived figure stays finite.
const MaxValue = 1e18
