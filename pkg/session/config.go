package session

import(
	"fmt"
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/btrgb/pkg/calib"
	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/refdata"
	"github.com/abworrall/btrgb/pkg/simplex"
	"github.com/abworrall/btrgb/pkg/target"
)

type Config struct {
	Verbosity     int

	Art1          string   // TIFF of the first exposure; flat-fielded and registered
	Art2          string   // TIFF of the second exposure
	RefFile       string   // one of refdata.StandardFiles, or a path to a custom file
	RefDataDir    string
	Illuminant    string   // A, D50, D65
	Observer      int      // 1931, 1964

	Target        target.Geometry

	ColorSpace    string   // ProPhoto, sRGB, AdobeRGB
	ColorManaged  simplex.Settings
	Spectral      simplex.Settings
	SkipSpectral  bool

	OutputDir     string
	PreviewSize   uint     // longest side of the preview PNG
	Bands         []int    // wavelengths to write out as reflectance images
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func NewConfig() Config {
	return Config{
		RefDataDir:   refdata.DefaultRefDataDir,
		Illuminant:   ecolor.IlluminantD50.String(),
		Observer:     1931,
		ColorSpace:   ecolor.ProPhoto.String(),
		ColorManaged: calib.NewColorManagedCalibrator().Settings,
		Spectral:     calib.NewSpectralCalibrator().Settings,
		OutputDir:    ".",
		PreviewSize:  1024,
	}
}

func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return newConfigFromYaml(contents)
}

// Finalize checks the config is complete enough to run, and fills in
// defaults for anything left empty.
func (c *Config)Finalize() error {
	if c.Art1 == "" || c.Art2 == "" {
		return fmt.Errorf("config: need both art1 and art2")
	}
	if c.RefFile == "" {
		return fmt.Errorf("config: need a reffile")
	}
	if _, err := ecolor.ParseColorSpace(c.ColorSpace); err != nil {
		return fmt.Errorf("config: %v", err)
	}
	if c.Observer != 1931 && c.Observer != 1964 {
		return fmt.Errorf("config: observer %d, want 1931 or 1964", c.Observer)
	}

	c.Target = c.Target.WithDefaults()
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("config: %v", err)
	}

	for _, wl := range c.Bands {
		if ecolor.WavelengthToIndex(wl) < 0 {
			return fmt.Errorf("config: no band at %dnm", wl)
		}
	}

	if c.RefDataDir == "" {
		c.RefDataDir = refdata.DefaultRefDataDir
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.PreviewSize == 0 {
		c.PreviewSize = 1024
	}
	return nil
}

func (c Config)colorSpace() ecolor.ColorSpace {
	cs, _ := ecolor.ParseColorSpace(c.ColorSpace)
	return cs
}
