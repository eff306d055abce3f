// Package session ties a calibration run together: it loads the config,
// the two captures and the reference data, runs both calibration stages,
// and writes out the images and the report.
package session

import(
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/abworrall/btrgb/pkg/calib"
	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/eimage"
	"github.com/abworrall/btrgb/pkg/refdata"
)

type Session struct {
	Config

	Art1, Art2   *eimage.FloatImage
	Ref          *refdata.RefData

	ColorManaged *calib.ColorManagedResult
	Spectral     *calib.SpectralResult
}

func New(c Config) *Session {
	return &Session{Config: c}
}

// LoadFiles takes a mix of .yaml config files and .tif captures, in any
// order. Config files are applied first, each replacing the whole config;
// then captures fill art1, then art2.
func (s *Session)LoadFiles(args ...string) error {
	var tifs []string
	for _, arg := range args {
		switch strings.ToLower(filepath.Ext(arg)) {
		case ".yaml", ".yml":
			cfg, err := LoadConfig(arg)
			if err != nil {
				return fmt.Errorf("Loading %s as config YAML failed: %v", arg, err)
			}
			s.Config = cfg
			log.Printf("Loaded base configuration from %s\n", arg)

		case ".tif", ".tiff":
			tifs = append(tifs, arg)

		default:
			return fmt.Errorf("load %s: not a .yaml or .tif", arg)
		}
	}

	for _, tif := range tifs {
		if s.Config.Art1 == "" {
			s.Config.Art1 = tif
		} else {
			s.Config.Art2 = tif
		}
	}
	return nil
}

// Load reads the captures and the reference data named by the config.
func (s *Session)Load() error {
	if err := s.Config.Finalize(); err != nil {
		return err
	}

	var err error
	if s.Art1, err = eimage.LoadTIFF(s.Config.Art1); err != nil {
		return fmt.Errorf("art1: %v", err)
	}
	if s.Art2, err = eimage.LoadTIFF(s.Config.Art2); err != nil {
		return fmt.Errorf("art2: %v", err)
	}
	log.Printf("art1: %s\n", s.Art1)
	log.Printf("art2: %s\n", s.Art2)

	illum := ecolor.ParseIlluminant(s.Config.Illuminant)
	obs := ecolor.ParseObserver(s.Config.Observer)
	s.Ref, err = refdata.New(s.Config.RefFile, illum, obs,
		refdata.WithRefDataDir(s.Config.RefDataDir), refdata.WithVerbosity(s.Config.Verbosity))
	if err != nil {
		return err
	}

	return nil
}

func (s *Session)Inputs(progress calib.ProgressFunc) calib.Inputs {
	return calib.Inputs{
		Art1:     s.Art1,
		Art2:     s.Art2,
		Target:   s.Config.Target,
		Ref:      s.Ref,
		Progress: progress,
	}
}

// Run does the color managed calibration, then the spectral one. Results
// are only kept if every stage that was asked for succeeds; on any error
// both are nil.
func (s *Session)Run(ctx context.Context, progress calib.ProgressFunc) error {
	s.ColorManaged, s.Spectral = nil, nil
	in := s.Inputs(progress)

	cm := calib.NewColorManagedCalibrator()
	cm.Settings = s.Config.ColorManaged
	cm.ColorSpace = s.Config.colorSpace()

	cmResult, err := cm.Run(ctx, in)
	if err != nil {
		return err
	}
	log.Printf("color managed: avg deltaE %.4f\n", cmResult.DeltaEAvg)
	log.Printf("color managed: deltaE %s\n", cmResult.DeltaEGrid.Stats())
	logDeltaEHistogram(cmResult.DeltaE)

	if s.Config.SkipSpectral {
		s.ColorManaged = cmResult
		return nil
	}

	sp := calib.NewSpectralCalibrator()
	sp.Settings = s.Config.Spectral

	spResult, err := sp.Run(ctx, in)
	if err != nil {
		return err
	}
	s.ColorManaged, s.Spectral = cmResult, spResult
	log.Printf("spectral: RMSE %.6f, z %.6f\n", spResult.RMSE, spResult.Z)

	return nil
}
