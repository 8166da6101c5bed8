package tracker

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/detection"
	"github.com/ironsheep/retrotape-tracker/internal/imaging"
)

// Parameter names shared by all modules.
const (
	ParamDisplayLevel = "displaylevel"
	ParamColorSpace   = "colorspace"
	ParamHMin         = "hmin"
	ParamHMax         = "hmax"
	ParamSMin         = "smin"
	ParamSMax         = "smax"
	ParamVMin         = "vmin"
	ParamVMax         = "vmax"
	ParamRMin         = "rmin"
	ParamRMax         = "rmax"
	ParamGMin         = "gmin"
	ParamGMax         = "gmax"
	ParamBMin         = "bmin"
	ParamBMax         = "bmax"
	ParamMorphSize    = "morphsize"
	ParamThresh1      = "thresh1"
	ParamThresh2      = "thresh2"
	ParamAperture     = "aperture"
	ParamL2Grad       = "l2grad"
	ParamCannyBlur    = "cannyblur"
	ParamHoughRho     = "houghrho"
	ParamHoughTheta   = "houghtheta"
	ParamHoughThresh  = "houghthresh"
	ParamMinLineLen   = "minlinelen"
	ParamMaxLineGap   = "maxlinegap"
	ParamMaxLines     = "maxlines"
	ParamMaxAngle     = "maxangle"
	ParamMinLines     = "minlines"
	ParamSerOut       = "serout"
	ParamSerStyle     = "serstyle"
	ParamLineColor    = "linecolor"
	ParamTargetColor  = "targetcolor"
)

// Display levels.
const (
	DisplayRaw       = 0
	DisplayThreshold = 1
	DisplayEdges     = 2
	DisplayAnnotated = 3
)

func baseSpecs() []Spec {
	byte255 := func(name, desc, def string) Spec {
		return Spec{Name: name, Category: CategoryColor, Description: desc, Kind: KindInt, Default: def, Min: 0, Max: 255}
	}
	return []Spec{
		{Name: ParamDisplayLevel, Category: CategoryGeneral, Kind: KindInt, Default: "1", Min: 0, Max: 3,
			Description: "What step of processing is shown in the output frame: 0 raw input, 1 threshold, 2 edges, 3 annotated"},
		{Name: ParamColorSpace, Category: CategoryGeneral, Kind: KindChoice, Default: string(SpaceHSV),
			Choices:     []string{string(SpaceHSV), string(SpaceRGB), string(SpaceGray)},
			Description: "Color space used to isolate the target before edge detection"},

		{Name: ParamHMin, Category: CategoryColor, Kind: KindInt, Default: "85", Min: 0, Max: 179,
			Description: "Minimum H threshold for color filtering"},
		{Name: ParamHMax, Category: CategoryColor, Kind: KindInt, Default: "90", Min: 0, Max: 179,
			Description: "Maximum H threshold for color filtering"},
		byte255(ParamSMin, "Minimum S threshold for color filtering", "0"),
		byte255(ParamSMax, "Maximum S threshold for color filtering", "100"),
		byte255(ParamVMin, "Minimum V threshold for color filtering", "240"),
		byte255(ParamVMax, "Maximum V threshold for color filtering", "255"),
		byte255(ParamRMin, "Minimum R threshold for color filtering", "127"),
		byte255(ParamRMax, "Maximum R threshold for color filtering", "255"),
		byte255(ParamGMin, "Minimum G threshold for color filtering", "127"),
		byte255(ParamGMax, "Maximum G threshold for color filtering", "255"),
		byte255(ParamBMin, "Minimum B threshold for color filtering", "20"),
		byte255(ParamBMax, "Maximum B threshold for color filtering", "150"),

		{Name: ParamMorphSize, Category: CategoryMorph, Kind: KindInt, Default: "3", Min: 1, Max: 31,
			Description: "Size of the square element used to remove speckles from the mask; 1 disables"},

		{Name: ParamThresh1, Category: CategoryEdge, Kind: KindFloat, Default: "50", Min: 0, Max: 10000,
			Description: "First threshold for hysteresis"},
		{Name: ParamThresh2, Category: CategoryEdge, Kind: KindFloat, Default: "150", Min: 0, Max: 10000,
			Description: "Second threshold for hysteresis"},
		{Name: ParamAperture, Category: CategoryEdge, Kind: KindInt, Default: "3", Choices: []string{"3", "5", "7"},
			Description: "Aperture size for the Sobel operator"},
		{Name: ParamL2Grad, Category: CategoryEdge, Kind: KindBool, Default: "false",
			Description: "Use more accurate L2 gradient norm if true, L1 if false"},
		{Name: ParamCannyBlur, Category: CategoryEdge, Kind: KindBool, Default: "false",
			Description: "Blur the image with a 5x5 Gaussian before edge detection"},

		{Name: ParamHoughRho, Category: CategoryLines, Kind: KindFloat, Default: "1", Min: 0.1, Max: 100,
			Description: "Distance resolution of the Hough accumulator in pixels"},
		{Name: ParamHoughTheta, Category: CategoryLines, Kind: KindFloat, Default: "1", Min: 0.1, Max: 90,
			Description: "Angle resolution of the Hough accumulator in degrees"},
		{Name: ParamHoughThresh, Category: CategoryLines, Kind: KindInt, Default: "30", Min: 1, Max: 10000,
			Description: "Accumulator votes needed before a line is traced"},
		{Name: ParamMinLineLen, Category: CategoryLines, Kind: KindInt, Default: "20", Min: 0, Max: 10000,
			Description: "Minimum line length in pixels"},
		{Name: ParamMaxLineGap, Category: CategoryLines, Kind: KindInt, Default: "10", Min: 0, Max: 10000,
			Description: "Maximum gap between pixels of one line"},
		{Name: ParamMaxLines, Category: CategoryLines, Kind: KindInt, Default: "50", Min: 0, Max: 1000,
			Description: "Stop after this many lines; 0 means no limit"},
		{Name: ParamMaxAngle, Category: CategoryLines, Kind: KindFloat, Default: "30", Min: 0, Max: 90,
			Description: "Largest deviation from vertical, in degrees, for a line to count towards the target; 0 accepts any angle"},
		{Name: ParamMinLines, Category: CategoryLines, Kind: KindInt, Default: "1", Min: 1, Max: 100,
			Description: "Lines required before a target is reported"},

		{Name: ParamLineColor, Category: CategoryGeneral, Kind: KindColor, Default: imaging.HexColor(imaging.ColorLine),
			Description: "Color of detected lines in the annotated view"},
		{Name: ParamTargetColor, Category: CategoryGeneral, Kind: KindColor, Default: imaging.HexColor(imaging.ColorTarget),
			Description: "Color of the target box and crosshair in the annotated view"},

		{Name: ParamSerOut, Category: CategorySerial, Kind: KindBool, Default: "true",
			Description: "Send a message over serial for every frame with a target"},
		{Name: ParamSerStyle, Category: CategorySerial, Kind: KindChoice, Default: StyleTerse,
			Choices:     []string{StyleTerse, StyleNormal, StyleDetail},
			Description: "Serial message style"},
	}
}

// specsWith returns the base specs with some defaults replaced.
func specsWith(defaults map[string]string) []Spec {
	specs := baseSpecs()
	for i := range specs {
		if v, ok := defaults[specs[i].Name]; ok {
			specs[i].Default = v
		}
	}
	return specs
}

// variant is what distinguishes one registered module from another.
type variant struct {
	name        string
	vendor      string
	description string
	header      string
	defaults    map[string]string
}

// pipeline implements Module with the threshold, open, Canny, Hough chain.
type pipeline struct {
	variant
	params  *Params
	backend Backend
	mapping *VideoMapping
	logger  *slog.Logger
}

func newPipeline(v variant, opts Options) (*pipeline, error) {
	params, err := NewParams(specsWith(v.defaults))
	if err != nil {
		return nil, errors.Wrapf(err, "module %s", v.name)
	}
	p := &pipeline{
		variant: v,
		params:  params,
		backend: opts.Backend,
		mapping: opts.Mapping,
		logger:  opts.Logger.With("module", v.name),
	}
	if err := params.OnChange(ParamL2Grad, func(name, value string) {
		p.logger.Info("l2grad changed", "value", value)
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pipeline) Name() string { return p.name }

func (p *pipeline) Params() *Params { return p.params }

func (p *pipeline) Info() Info {
	return Info{
		Name:        p.name,
		Vendor:      p.vendor,
		Description: p.description,
		Backend:     p.backend.Name(),
		Mapping:     p.mapping,
	}
}

func (p *pipeline) Process(ctx context.Context, f Frame) (*Result, error) {
	return p.process(ctx, f, true)
}

func (p *pipeline) ProcessNoUSB(ctx context.Context, f Frame) (*Result, error) {
	return p.process(ctx, f, false)
}

// settings is a consistent view of the parameters for one frame.
type settings struct {
	displayLevel int
	threshold    ThresholdSpec
	morphSize    int
	canny        imaging.CannyOptions
	hough        detection.HoughParams
	target       detection.TargetOptions
	serOut       bool
	serStyle     string
	lineColor    color.RGBA
	targetColor  color.RGBA
}

func (p *pipeline) snapshot() settings {
	ps := p.params
	u8 := func(name string) uint8 { return uint8(ps.Int(name)) }

	hough := detection.DefaultHoughParams()
	hough.Rho = ps.Float(ParamHoughRho)
	hough.ThetaDeg = ps.Float(ParamHoughTheta)
	hough.Threshold = ps.Int(ParamHoughThresh)
	hough.MinLineLength = ps.Int(ParamMinLineLen)
	hough.MaxLineGap = ps.Int(ParamMaxLineGap)
	hough.MaxLines = ps.Int(ParamMaxLines)

	return settings{
		displayLevel: ps.Int(ParamDisplayLevel),
		threshold: ThresholdSpec{
			Space: ColorSpace(ps.String(ParamColorSpace)),
			HSV: imaging.HSVRange{
				Lower: imaging.HSV{H: u8(ParamHMin), S: u8(ParamSMin), V: u8(ParamVMin)},
				Upper: imaging.HSV{H: u8(ParamHMax), S: u8(ParamSMax), V: u8(ParamVMax)},
			},
			RGB: imaging.RGBRange{
				Lower: imaging.RGBColor{R: u8(ParamRMin), G: u8(ParamGMin), B: u8(ParamBMin)},
				Upper: imaging.RGBColor{R: u8(ParamRMax), G: u8(ParamGMax), B: u8(ParamBMax)},
			},
		},
		morphSize: ps.Int(ParamMorphSize),
		canny: imaging.CannyOptions{
			Low:        ps.Float(ParamThresh1),
			High:       ps.Float(ParamThresh2),
			Aperture:   ps.Int(ParamAperture),
			L2Gradient: ps.Bool(ParamL2Grad),
			Blur:       ps.Bool(ParamCannyBlur),
		},
		hough: hough,
		target: detection.TargetOptions{
			MaxAngleDeg: ps.Float(ParamMaxAngle),
			MinLines:    ps.Int(ParamMinLines),
		},
		serOut:      ps.Bool(ParamSerOut),
		serStyle:    ps.String(ParamSerStyle),
		lineColor:   ps.Color(ParamLineColor),
		targetColor: ps.Color(ParamTargetColor),
	}
}

// process runs one frame through the chain. Finding no lines is a normal
// outcome and yields a Result with a nil Target.
func (p *pipeline) process(ctx context.Context, f Frame, render bool) (*Result, error) {
	if f.Image == nil || f.Image.Bounds().Empty() {
		return nil, ErrNoFrame
	}
	start := time.Now()
	s := p.snapshot()
	if err := s.threshold.Validate(); err != nil {
		return nil, errors.Wrap(err, "threshold")
	}

	mask, err := p.backend.Threshold(f.Image, s.threshold)
	if err != nil {
		return nil, errors.Wrap(err, "threshold")
	}
	// Luminance is not a mask; opening it would only erode bright regions.
	if s.morphSize > 1 && s.threshold.Space != SpaceGray {
		if mask, err = p.backend.Open(mask, s.morphSize); err != nil {
			return nil, errors.Wrap(err, "morphological open")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges, err := p.backend.Canny(mask, s.canny)
	if err != nil {
		return nil, errors.Wrap(err, "canny")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := p.backend.Lines(edges, s.hough)
	if err != nil {
		return nil, errors.Wrap(err, "hough lines")
	}

	frameRect := image.Rect(0, 0, mask.Bounds().Dx(), mask.Bounds().Dy())
	target := detection.LocateTarget(lines, frameRect, s.target)

	res := &Result{
		Seq:        f.Seq,
		Time:       f.Time,
		MaskPixels: imaging.CountNonZero(mask),
		EdgePixels: imaging.CountNonZero(edges),
		Lines:      lines,
		Target:     target,
	}
	if s.serOut {
		res.Serial = FormatSerial(s.serStyle, target)
	}

	if render {
		if res.Output, err = p.render(s, f.Image, mask, edges, lines, target); err != nil {
			return nil, errors.Wrap(err, "render")
		}
	}

	res.Elapsed = time.Since(start)
	p.logger.Debug("frame processed",
		"seq", f.Seq,
		"lines", len(lines),
		"found", target != nil,
		"elapsed", res.Elapsed)
	return res, nil
}

// render composes the output frame for the current display level.
func (p *pipeline) render(s settings, raw image.Image, mask, edges *image.Gray, lines []detection.Line, target *detection.Target) (image.Image, error) {
	var panel image.Image
	switch s.displayLevel {
	case DisplayRaw:
		panel = raw
	case DisplayThreshold:
		panel = mask
	case DisplayEdges:
		panel = edges
	default:
		panel = annotate(raw, lines, target, s)
	}

	footer := "no target"
	if target != nil {
		footer = FormatSerial(s.serStyle, target) + " lines=" + strconv.Itoa(target.Lines)
	}
	var out image.Image = imaging.Compose(panel, p.header, footer)

	if p.mapping != nil && !p.mapping.Headless() {
		w, h := p.mapping.Output.Width, p.mapping.Output.Height
		if b := out.Bounds(); w != b.Dx() || h != b.Dy() {
			resized, err := imaging.Resize(out, w, h)
			if err != nil {
				return nil, err
			}
			out = resized
		}
	}
	return out, nil
}

// annotate draws the detected lines and the target box over the raw frame.
func annotate(raw image.Image, lines []detection.Line, target *detection.Target, s settings) *image.RGBA {
	out := imaging.ToRGBA(raw)
	for _, l := range lines {
		imaging.DrawLine(out, l.Start.X, l.Start.Y, l.End.X, l.End.Y, s.lineColor)
	}
	if target != nil {
		b := target.Bounds
		imaging.DrawRect(out, image.Rect(b.X1, b.Y1, b.X2+1, b.Y2+1), s.targetColor)
		imaging.DrawCrosshair(out, target.Center.X, target.Center.Y, 5, s.targetColor)
	}
	return out
}
