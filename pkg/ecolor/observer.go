package ecolor

import "fmt"

// All the spectral tables in this package are sampled every 10nm from
// 380nm to 730nm; that's the sampling of the reference reflectance data.
const(
	MinWavelength   = 380
	WavelengthStep  = 10
	WavelengthCount = 36
)

// IndexToWavelength maps a table index onto nanometres.
func IndexToWavelength(i int) int { return MinWavelength + i*WavelengthStep }

// WavelengthToIndex is the inverse of IndexToWavelength; -1 if the
// wavelength isn't one we sample.
func WavelengthToIndex(wl int) int {
	if wl < MinWavelength || (wl-MinWavelength)%WavelengthStep != 0 {
		return -1
	}
	if i := (wl - MinWavelength) / WavelengthStep; i < WavelengthCount {
		return i
	}
	return -1
}

type ObserverType int

const(
	Observer1931 ObserverType = iota // CIE 1931 2 degree
	Observer1964                     // CIE 1964 10 degree
)

func (o ObserverType)String() string {
	switch o {
	case Observer1931: return "1931"
	case Observer1964: return "1964"
	}
	return fmt.Sprintf("ObserverType(%d)", int(o))
}

// ParseObserver defaults to the 1931 observer for anything it doesn't know.
func ParseObserver(year int) ObserverType {
	if year == 1964 {
		return Observer1964
	}
	return Observer1931
}

// A CMF is a color matching function: xbar, ybar, zbar for each sampled wavelength.
type CMF [WavelengthCount][3]float64

func (o ObserverType)CMF() CMF {
	if o == Observer1964 {
		return cie1964
	}
	return cie1931
}

var(
	cie1931 = CMF{
		{0.001368, 0.000039, 0.006450}, // 380
		{0.004243, 0.000120, 0.020050},
		{0.014310, 0.000396, 0.067850}, // 400
		{0.043510, 0.001210, 0.207400},
		{0.134380, 0.004000, 0.645600}, // 420
		{0.283900, 0.011600, 1.385600},
		{0.348280, 0.023000, 1.747060}, // 440
		{0.336200, 0.038000, 1.772110},
		{0.290800, 0.060000, 1.669200}, // 460
		{0.195360, 0.090980, 1.287640},
		{0.095640, 0.139020, 0.812950}, // 480
		{0.032010, 0.208020, 0.465180},
		{0.004900, 0.323000, 0.272000}, // 500
		{0.009300, 0.503000, 0.158200},
		{0.063270, 0.710000, 0.078250}, // 520
		{0.165500, 0.862000, 0.042160},
		{0.290400, 0.954000, 0.020300}, // 540
		{0.433450, 0.994950, 0.008750},
		{0.594500, 0.995000, 0.003900}, // 560
		{0.762100, 0.952000, 0.002100},
		{0.916300, 0.870000, 0.001650}, // 580
		{1.026300, 0.757000, 0.001100},
		{1.062200, 0.631000, 0.000800}, // 600
		{1.002600, 0.503000, 0.000340},
		{0.854450, 0.381000, 0.000190}, // 620
		{0.642400, 0.265000, 0.000050},
		{0.447900, 0.175000, 0.000020}, // 640
		{0.283500, 0.107000, 0.000000},
		{0.164900, 0.061000, 0.000000}, // 660
		{0.087400, 0.032000, 0.000000},
		{0.046770, 0.017000, 0.000000}, // 680
		{0.022700, 0.008210, 0.000000},
		{0.011359, 0.004102, 0.000000}, // 700
		{0.005790, 0.002091, 0.000000},
		{0.002899, 0.001047, 0.000000}, // 720
		{0.001440, 0.000520, 0.000000},
	}

	cie1964 = CMF{
		{0.000160, 0.000017, 0.000705}, // 380
		{0.002362, 0.000253, 0.010482},
		{0.019110, 0.002004, 0.086011}, // 400
		{0.084736, 0.008756, 0.389366},
		{0.204492, 0.021391, 0.972542}, // 420
		{0.314679, 0.038676, 1.553480},
		{0.383734, 0.062077, 1.967280}, // 440
		{0.370702, 0.089456, 1.994800},
		{0.302273, 0.128201, 1.745370}, // 460
		{0.195618, 0.185190, 1.317560},
		{0.080507, 0.253589, 0.772125}, // 480
		{0.016172, 0.339133, 0.415254},
		{0.003816, 0.460777, 0.218502}, // 500
		{0.037465, 0.606741, 0.112044},
		{0.117749, 0.761757, 0.060709}, // 520
		{0.236491, 0.875211, 0.030451},
		{0.376772, 0.961988, 0.013676}, // 540
		{0.529826, 0.991761, 0.003988},
		{0.705224, 0.997340, 0.000000}, // 560
		{0.878655, 0.955552, 0.000000},
		{1.014160, 0.868934, 0.000000}, // 580
		{1.118520, 0.777405, 0.000000},
		{1.123990, 0.658341, 0.000000}, // 600
		{1.030480, 0.527963, 0.000000},
		{0.856297, 0.398057, 0.000000}, // 620
		{0.647467, 0.283493, 0.000000},
		{0.431567, 0.179828, 0.000000}, // 640
		{0.268329, 0.107633, 0.000000},
		{0.152568, 0.060281, 0.000000}, // 660
		{0.081261, 0.031800, 0.000000},
		{0.040851, 0.015905, 0.000000}, // 680
		{0.019941, 0.007749, 0.000000},
		{0.009577, 0.003718, 0.000000}, // 700
		{0.004553, 0.001768, 0.000000},
		{0.002175, 0.000846, 0.000000}, // 720
		{0.001045, 0.000407, 0.000000},
	}
)
