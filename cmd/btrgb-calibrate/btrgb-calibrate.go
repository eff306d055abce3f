package main

import(
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/abworrall/btrgb/pkg/session"
)

var(
	fVerbosity int
	fRefFile string
	fRefDataDir string
	fIlluminant string
	fObserver int
	fColorSpace string
	fOutputDir string
	fWorkers int
	fSkipSpectral bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fRefFile, "ref", "", "reference data; a standard file name, or a path to a custom one")
	flag.StringVar(&fRefDataDir, "refdir", "", "where the standard reference files live")
	flag.StringVar(&fIlluminant, "illuminant", "", "A, D50 or D65")
	flag.IntVar(&fObserver, "observer", 0, "1931 or 1964")
	flag.StringVar(&fColorSpace, "colorspace", "", "working space for the calibrated image: ProPhoto, sRGB, AdobeRGB")
	flag.StringVar(&fOutputDir, "out", "", "directory for the calibrated images and report")
	flag.IntVar(&fWorkers, "workers", 0, "evaluate simplex points on this many goroutines")
	flag.BoolVar(&fSkipSpectral, "nospectral", false, "only do the color managed calibration")
	flag.Parse()

	log.Printf("btrgb-calibrate starting\n")
}

// Flags override whatever the config file said, if they were set
func applyFlags(c *session.Config) {
	if fVerbosity > 0 { c.Verbosity = fVerbosity }
	if fRefFile != "" { c.RefFile = fRefFile }
	if fRefDataDir != "" { c.RefDataDir = fRefDataDir }
	if fIlluminant != "" { c.Illuminant = fIlluminant }
	if fObserver != 0 { c.Observer = fObserver }
	if fColorSpace != "" { c.ColorSpace = fColorSpace }
	if fOutputDir != "" { c.OutputDir = fOutputDir }
	if fWorkers > 0 {
		c.ColorManaged.Workers = fWorkers
		c.Spectral.Workers = fWorkers
	}
	if fSkipSpectral { c.SkipSpectral = true }
}

func main() {
	s := session.New(session.NewConfig())
	if err := s.LoadFiles(flag.Args()...); err != nil {
		log.Fatal(err)
	}
	applyFlags(&s.Config)

	if err := s.Load(); err != nil {
		log.Fatal(err)
	}
	if s.Config.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", s.Config.AsYaml())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress := func(f float64, stage string) {
		log.Printf("[%3.0f%%] %s\n", f*100, stage)
	}
	if err := s.Run(ctx, progress); err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	if err := s.WriteOutputs(); err != nil {
		log.Fatal(err)
	}
}
