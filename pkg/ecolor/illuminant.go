package ecolor

import "fmt"

type IlluminantType int

const(
	IlluminantD50 IlluminantType = iota
	IlluminantD65
	IlluminantA
)

func (i IlluminantType)String() string {
	switch i {
	case IlluminantD50: return "D50"
	case IlluminantD65: return "D65"
	case IlluminantA:   return "A"
	}
	return fmt.Sprintf("IlluminantType(%d)", int(i))
}

// ParseIlluminant defaults to D50 for anything it doesn't know.
func ParseIlluminant(s string) IlluminantType {
	switch s {
	case "A":   return IlluminantA
	case "D65": return IlluminantD65
	}
	return IlluminantD50
}

// An SPD is a relative spectral power distribution, normalized to 100 at 560nm.
type SPD [WavelengthCount]float64

func (i IlluminantType)SPD() SPD {
	switch i {
	case IlluminantD65: return spdD65
	case IlluminantA:   return spdA
	}
	return spdD50
}

var(
	spdA = SPD{
		  9.80,  12.09,  14.71,  17.68,  20.99,  24.67,  28.70,  33.09,  37.81,  42.87, // 380-470
		 48.24,  53.91,  59.86,  66.06,  72.50,  79.13,  85.95,  92.91, 100.00, 107.18, // 480-570
		114.44, 121.73, 129.04, 136.35, 143.62, 150.84, 157.98, 165.03, 171.96, 178.77, // 580-670
		185.43, 191.93, 198.26, 204.41, 210.36, 216.12,                                 // 680-730
	}

	spdD50 = SPD{
		 24.49,  29.87,  49.31,  56.51,  60.03,  57.82,  74.82,  87.25,  90.61,  91.37,
		 95.11,  91.96,  95.72,  96.61,  97.13, 102.10, 100.75, 102.32, 100.00,  97.74,
		 98.92,  93.50,  97.69,  99.27,  99.04,  95.72,  98.86,  95.67,  98.19, 103.00,
		 99.13,  87.38,  91.60,  92.89,  76.85,  86.51,
	}

	spdD65 = SPD{
		 49.9755,  54.6482,  82.7549,  91.4860,  93.4318,  86.6823, 104.8650, 117.0080, 117.8120, 114.8610,
		115.9230, 108.8110, 109.3540, 107.8020, 104.7900, 107.6890, 104.4050, 104.0460, 100.0000,  96.3342,
		 95.7880,  88.6856,  90.0062,  89.5991,  87.6987,  83.2886,  83.6992,  80.0268,  80.2146,  82.2778,
		 78.2842,  69.7213,  71.6091,  74.3490,  61.6040,  69.8856,
	}
)
