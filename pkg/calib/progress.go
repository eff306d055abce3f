package calib

// ProgressFunc hears about coarse progress through a calibration stage;
// fraction runs from 0 to 1. It must not block.
type ProgressFunc func(fraction float64, stage string)

func (p ProgressFunc)report(fraction float64, stage string) {
	if p != nil {
		p(fraction, stage)
	}
}
