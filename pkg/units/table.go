package units

// lengths maps lower-case unit names to nanometres.
var lengths = map[string]float64{
	"":           1,
	"nm":         1,
	"nanometer":  1,
	"nanometers": 1,

	"decimicron":  100,
	"decimicrons": 100,
	"du":          100,
	"dus":         100,
	"dum":         100,
	"dums":        100,

	"um":          1000,
	"micron":      1000,
	"microns":     1000,
	"micrometer":  1000,
	"micrometers": 1000,

	"mm":          1e6,
	"millimeter":  1e6,
	"millimeters": 1e6,

	"cm":          1e7,
	"centimeter":  1e7,
	"centimeters": 1e7,

	"m":      1e9,
	"meter":  1e9,
	"meters": 1e9,

	"km":         1e12,
	"kilometer":  1e12,
	"kilometers": 1e12,

	"cmil":      254,
	"cmils":     254,
	"centimil":  254,
	"centimils": 254,

	"dmil":     2540,
	"dmils":    2540,
	"decimil":  2540,
	"decimils": 2540,

	"thou": 25400,
	"mil":  25400,
	"mils": 25400,

	"in":     25.4e6,
	"inch":   25.4e6,
	"inches": 25.4e6,
	`"`:      25.4e6,

	"'":    304.8e6,
	"foot": 304.8e6,
	"feet": 304.8e6,
}
