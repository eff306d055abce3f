package session

import(
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/codahale/hdrhistogram"
	"github.com/fogleman/gg"
	"github.com/skypies/util/histogram"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/btrgb/pkg/calib"
	"github.com/abworrall/btrgb/pkg/ecolor"
	"github.com/abworrall/btrgb/pkg/eimage"
)

const(
	ReportFile     = "report.yaml"
	CalibratedTIFF = "calibrated.tif"
	CalibratedHDR  = "calibrated.hdr"
	PreviewPNG     = "preview.png"
	DeltaEPNG      = "deltae.png"
	PatchChartPNG  = "patches.png"

	chartCellSize  = 64
)

// DeltaEStats summarises the per-patch deltaE values. They go through an
// hdrhistogram in thousandths, so quantiles are good to 0.001.
type DeltaEStats struct {
	Count  int64    `yaml:"count"`
	Mean   float64  `yaml:"mean"`
	P50    float64  `yaml:"p50"`
	P90    float64  `yaml:"p90"`
	Max    float64  `yaml:"max"`
}

type Report struct {
	Art1         eimage.Capture             `yaml:"art1"`
	Art2         eimage.Capture             `yaml:"art2"`
	RefFile      string                     `yaml:"reffile"`
	WhitePoint   string                     `yaml:"whitepoint"`
	Target       string                     `yaml:"target"`
	DeltaE       DeltaEStats                `yaml:"deltae"`
	ColorManaged *calib.ColorManagedResult  `yaml:"colormanaged,omitempty"`
	Spectral     *calib.SpectralResult      `yaml:"spectral,omitempty"`
}

func NewDeltaEStats(grid [][]float64) DeltaEStats {
	const maxMilli = 1000 * 1000
	h := hdrhistogram.New(0, maxMilli, 3)
	for _, row := range grid {
		for _, v := range row {
			milli := int64(math.Round(v * 1000))
			if milli > maxMilli {
				milli = maxMilli
			}
			if err := h.RecordValue(milli); err != nil {
				log.Printf("deltaE histogram: %v\n", err)
			}
		}
	}

	return DeltaEStats{
		Count: h.TotalCount(),
		Mean:  h.Mean() / 1000.0,
		P50:   float64(h.ValueAtQuantile(50)) / 1000.0,
		P90:   float64(h.ValueAtQuantile(90)) / 1000.0,
		Max:   float64(h.Max()) / 1000.0,
	}
}

// logDeltaEHistogram logs a coarse histogram, in buckets of half a deltaE
func logDeltaEHistogram(grid [][]float64) {
	h := histogram.Histogram{NumBuckets:20, ValMin:0, ValMax:20}
	for _, row := range grid {
		for _, v := range row {
			h.Add(histogram.ScalarVal(int(v * 2)))
		}
	}
	log.Printf("deltaE (x2) histogram: %v\n", &h)
}

func (s *Session)Report() Report {
	r := Report{
		RefFile:      s.Config.RefFile,
		Target:       s.Config.Target.String(),
		ColorManaged: s.ColorManaged,
		Spectral:     s.Spectral,
	}
	if s.Art1 != nil {
		r.Art1 = s.Art1.Capture
	}
	if s.Art2 != nil {
		r.Art2 = s.Art2.Capture
	}
	if s.Ref != nil {
		r.RefFile = s.Ref.Filename
		r.WhitePoint = s.Ref.WhitePoint.String()
	}
	if s.ColorManaged != nil {
		r.DeltaE = NewDeltaEStats(s.ColorManaged.DeltaE)
	}
	return r
}

func (s *Session)WriteReport(filename string) error {
	b, err := yaml.Marshal(s.Report())
	if err != nil {
		return fmt.Errorf("report yaml: %v", err)
	}
	return ioutil.WriteFile(filename, b, 0644)
}

// WritePatchChart draws a swatch per patch: the reference color on top,
// the calibrated camera color below, and the patch's deltaE.
func (s *Session)WritePatchChart(filename string) error {
	res := s.ColorManaged
	if res == nil || s.Ref == nil {
		return fmt.Errorf("patch chart: no color managed result")
	}

	rows, cols := s.Ref.RowCount(), s.Ref.ColCount()
	dc := gg.NewContext(cols*chartCellSize, rows*chartCellSize)
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.Clear()

	for row:=0; row<rows; row++ {
		for col:=0; col<cols; col++ {
			cp, err := s.Ref.ColorPatch(row, col)
			if err != nil {
				return err
			}
			camLab := ecolor.Lab{L: res.LCamera[row][col], A: res.ACamera[row][col], B: res.BCamera[row][col]}
			camXYZ := ecolor.LabToXYZ(camLab, s.Ref.WhitePoint)

			x, y := float64(col*chartCellSize), float64(row*chartCellSize)
			half := float64(chartCellSize) / 2

			dc.SetColor(ecolor.PreviewColor(cp.XYZ()))
			dc.DrawRectangle(x+1, y+1, chartCellSize-2, half-1)
			dc.Fill()
			dc.SetColor(ecolor.PreviewColor(camXYZ))
			dc.DrawRectangle(x+1, y+half, chartCellSize-2, half-1)
			dc.Fill()

			dc.SetRGB(1, 0, 0)
			dc.DrawString(fmt.Sprintf("%.2f", res.DeltaE[row][col]), x+4, y+half-4)
		}
	}

	return dc.SavePNG(filename)
}

// WriteOutputs writes everything the run produced into the output dir.
func (s *Session)WriteOutputs() error {
	dir := s.Config.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output dir: %v", err)
	}
	out := func(name string) string { return filepath.Join(dir, name) }

	if res := s.ColorManaged; res != nil {
		if err := eimage.WriteTIFF(res.Image, out(CalibratedTIFF)); err != nil {
			return err
		}
		if err := eimage.WriteHDR(eimage.XYZImage{FloatImage: res.XYZImage}, out(CalibratedHDR)); err != nil {
			return err
		}
		if err := eimage.WritePreviewPNG(res.Image, out(PreviewPNG), s.Config.PreviewSize); err != nil {
			return err
		}
		title := fmt.Sprintf("deltaE, avg %.2f", res.DeltaEAvg)
		if err := res.DeltaEGrid.ToImg(title, out(DeltaEPNG), chartCellSize); err != nil {
			return err
		}
		if err := s.WritePatchChart(out(PatchChartPNG)); err != nil {
			return err
		}
	}

	if res := s.Spectral; res != nil {
		for _, wl := range s.Config.Bands {
			band, err := res.Image.Band(ecolor.WavelengthToIndex(wl))
			if err != nil {
				return err
			}
			if err := eimage.WriteTIFF(band, out(fmt.Sprintf("band-%dnm.tif", wl))); err != nil {
				return err
			}
		}
	}

	if err := s.WriteReport(out(ReportFile)); err != nil {
		return err
	}
	log.Printf("outputs written to %s\n", dir)
	return nil
}
