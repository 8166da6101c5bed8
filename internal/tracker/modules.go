package tracker

// Registered module names.
const (
	ModuleRetroTape = "RetroTapeTracker"
	ModulePowerCube = "PowerCube"
)

const vendor = "SPORK3196"

func init() {
	Register(ModuleRetroTape, NewRetroTapeTracker)
	Register(ModulePowerCube, NewPowerCube)
}

// NewRetroTapeTracker creates the retro-reflective tape tracker.
//
// The frame is thresholded in HSV around the bright cyan glow of lit tape,
// cleaned with a 3x3 opening, and reduced to near-vertical lines whose
// bounding box is the target. The output shows the threshold mask by default.
func NewRetroTapeTracker(opts Options) (Module, error) {
	return newPipeline(variant{
		name:        ModuleRetroTape,
		vendor:      vendor,
		description: "Tracks the center of a retro-reflective tape target",
		header:      "SPORK - 3196 | Retro Tape Tracker",
		defaults: map[string]string{
			ParamDisplayLevel: "1",
			ParamColorSpace:   "hsv",
			ParamMorphSize:    "3",
			ParamMaxAngle:     "30",
		},
	}, opts.withDefaults())
}

// NewPowerCube creates the power cube outline detector.
//
// The frame is converted to grayscale (or thresholded in RGB with
// colorspace=rgb) and run through Canny; lines at any angle contribute to
// the target. The output shows the edge map by default.
func NewPowerCube(opts Options) (Module, error) {
	return newPipeline(variant{
		name:        ModulePowerCube,
		vendor:      vendor,
		description: "Detects Power Cubes from their edge outline",
		header:      "SPORK - 3196 | Power Cube Detection Module",
		defaults: map[string]string{
			ParamDisplayLevel: "2",
			ParamColorSpace:   "gray",
			ParamMorphSize:    "1",
			ParamMaxAngle:     "0",
		},
	}, opts.withDefaults())
}
