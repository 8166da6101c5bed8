package tracker

import (
	"bufio"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/imaging"
)

// Kind is the value type of a parameter.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindChoice Kind = "choice"
	KindColor  Kind = "color"
)

// Parameter categories.
const (
	CategoryGeneral = "General"
	CategoryColor   = "Color filtering"
	CategoryMorph   = "Morphology"
	CategoryEdge    = "Edge detection"
	CategoryLines   = "Line detection"
	CategorySerial  = "Serial output"
)

// Spec declares one tunable parameter.
type Spec struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Kind        Kind     `json:"kind"`
	Default     string   `json:"default"`
	Min         float64  `json:"min,omitempty"`
	Max         float64  `json:"max,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

// hasRange reports whether Min/Max apply.
func (s Spec) hasRange() bool {
	return (s.Kind == KindInt || s.Kind == KindFloat) && s.Min < s.Max
}

// normalize validates raw against the spec and returns its canonical form.
func (s Spec) normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch s.Kind {
	case KindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %q is not an integer", s.Name, raw)
		}
		if s.hasRange() && (float64(v) < s.Min || float64(v) > s.Max) {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %d outside range [%g, %g]", s.Name, v, s.Min, s.Max)
		}
		if len(s.Choices) > 0 && !contains(s.Choices, strconv.Itoa(v)) {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %d not one of %s", s.Name, v, strings.Join(s.Choices, "|"))
		}
		return strconv.Itoa(v), nil

	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %q is not a finite number", s.Name, raw)
		}
		if s.hasRange() && (v < s.Min || v > s.Max) {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %g outside range [%g, %g]", s.Name, v, s.Min, s.Max)
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil

	case KindBool:
		switch strings.ToLower(raw) {
		case "true", "1", "on", "yes":
			return "true", nil
		case "false", "0", "off", "no":
			return "false", nil
		}
		return "", errors.Wrapf(ErrInvalidValue, "%s: %q is not a boolean", s.Name, raw)

	case KindColor:
		c, err := imaging.ParseHexColor(raw)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidValue, "%s: %v", s.Name, err)
		}
		return imaging.HexColor(c), nil

	case KindChoice:
		for _, c := range s.Choices {
			if strings.EqualFold(c, raw) {
				return c, nil
			}
		}
		return "", errors.Wrapf(ErrInvalidValue, "%s: %q not one of %s", s.Name, raw, strings.Join(s.Choices, "|"))
	}
	return "", errors.Errorf("%s: unsupported kind %q", s.Name, s.Kind)
}

// Param is a Spec together with its current value.
type Param struct {
	Spec
	Value string `json:"value"`
}

// ChangeFunc is called after a parameter value changes.
type ChangeFunc func(name, value string)

// Params holds the parameter values of one module instance.
//
// All methods are safe for concurrent use; the control channel may set
// parameters while the run loop is processing frames.
type Params struct {
	mu        sync.RWMutex
	specs     []Spec
	index     map[string]int
	values    map[string]string
	callbacks map[string][]ChangeFunc
}

// NewParams creates a parameter set with every value at its default. Specs
// with invalid defaults or duplicate names are rejected.
func NewParams(specs []Spec) (*Params, error) {
	p := &Params{
		specs:     make([]Spec, len(specs)),
		index:     make(map[string]int, len(specs)),
		values:    make(map[string]string, len(specs)),
		callbacks: make(map[string][]ChangeFunc),
	}
	copy(p.specs, specs)
	for i, s := range p.specs {
		if _, dup := p.index[s.Name]; dup {
			return nil, errors.Errorf("duplicate parameter %q", s.Name)
		}
		v, err := s.normalize(s.Default)
		if err != nil {
			return nil, errors.Wrap(err, "default")
		}
		p.index[s.Name] = i
		p.values[s.Name] = v
	}
	return p, nil
}

// Get returns the current value of name.
func (p *Params) Get(name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownParam, "%q", name)
	}
	return v, nil
}

// Set validates value and stores it. Change callbacks run after the new
// value is visible, outside the lock.
func (p *Params) Set(name, value string) error {
	p.mu.Lock()
	i, ok := p.index[name]
	if !ok {
		p.mu.Unlock()
		return errors.Wrapf(ErrUnknownParam, "%q", name)
	}
	v, err := p.specs[i].normalize(value)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	changed := p.values[name] != v
	p.values[name] = v
	callbacks := append([]ChangeFunc(nil), p.callbacks[name]...)
	p.mu.Unlock()

	if changed {
		for _, fn := range callbacks {
			fn(name, v)
		}
	}
	return nil
}

// List returns every parameter in declaration order.
func (p *Params) List() []Param {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Param, len(p.specs))
	for i, s := range p.specs {
		out[i] = Param{Spec: s, Value: p.values[s.Name]}
	}
	return out
}

// Describe returns the spec and value of a single parameter.
func (p *Params) Describe(name string) (Param, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.index[name]
	if !ok {
		return Param{}, errors.Wrapf(ErrUnknownParam, "%q", name)
	}
	return Param{Spec: p.specs[i], Value: p.values[name]}, nil
}

// Reset restores every parameter to its default without firing callbacks.
func (p *Params) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.specs {
		v, _ := s.normalize(s.Default)
		p.values[s.Name] = v
	}
}

// OnChange registers fn to run whenever name changes value.
func (p *Params) OnChange(name string, fn ChangeFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.index[name]; !ok {
		return errors.Wrapf(ErrUnknownParam, "%q", name)
	}
	p.callbacks[name] = append(p.callbacks[name], fn)
	return nil
}

// LoadFile applies "name = value" assignments from a file. Blank lines and
// lines starting with # are ignored. Loading stops at the first bad line.
func (p *Params) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open params file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return errors.Errorf("%s:%d: expected name = value", path, lineNo)
		}
		if err := p.Set(strings.TrimSpace(name), strings.TrimSpace(value)); err != nil {
			return errors.Wrapf(err, "%s:%d", path, lineNo)
		}
	}
	return errors.Wrap(scanner.Err(), "read params file")
}

// Int returns an integer parameter. Unknown names and non-integer values
// yield 0; callers only ask for names they declared.
func (p *Params) Int(name string) int {
	v, _ := p.Get(name)
	n, _ := strconv.Atoi(v)
	return n
}

// Float returns a numeric parameter.
func (p *Params) Float(name string) float64 {
	v, _ := p.Get(name)
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

// Bool returns a boolean parameter.
func (p *Params) Bool(name string) bool {
	v, _ := p.Get(name)
	return v == "true"
}

// Color returns a color parameter.
func (p *Params) Color(name string) color.RGBA {
	v, _ := p.Get(name)
	c, _ := imaging.ParseHexColor(v)
	return c
}

// String returns a parameter's raw value.
func (p *Params) String(name string) string {
	v, _ := p.Get(name)
	return v
}

func contains(list []string, s string) bool {
	for _, c := range list {
		if c == s {
			return true
		}
	}
	return false
}

// FormatParam renders a parameter the way the text control channel lists it.
func FormatParam(p Param) string {
	var limits string
	switch {
	case len(p.Choices) > 0:
		limits = " [" + strings.Join(p.Choices, "|") + "]"
	case p.hasRange():
		limits = fmt.Sprintf(" [%g..%g]", p.Min, p.Max)
	}
	return fmt.Sprintf("%s = %s (%s, default %s%s) %s: %s",
		p.Name, p.Value, p.Kind, p.Default, limits, p.Category, p.Description)
}
