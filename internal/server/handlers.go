package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/imaging"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// errInvalidParams marks request params that failed to decode or validate.
var errInvalidParams = errors.New("invalid params")

// handlerFunc executes one JSON-RPC method.
type handlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// handlers maps method names to their handler functions.
func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		"methods/list":  s.handleMethodsList,
		"module/info":   s.handleModuleInfo,
		"module/list":   s.handleModuleList,
		"param/list":    s.handleParamList,
		"param/get":     s.handleParamGet,
		"param/set":     s.handleParamSet,
		"param/reset":   s.handleParamReset,
		"frame/info":    s.handleFrameInfo,
		"frame/process": s.handleFrameProcess,
		"frame/sample":  s.handleFrameSample,
	}
}

func isInvalidParams(err error) bool {
	return errors.Is(err, errInvalidParams) ||
		errors.Is(err, tracker.ErrUnknownParam) ||
		errors.Is(err, tracker.ErrInvalidValue)
}

// decodeParams unmarshals params into v. Missing params decode as an empty
// object so methods with only optional params accept a bare request.
func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return errors.Wrap(errInvalidParams, err.Error())
	}
	return nil
}

func (s *Server) handleMethodsList(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"methods": GetMethodDefinitions()}, nil
}

// === Module Handlers ===

func (s *Server) handleModuleInfo(context.Context, json.RawMessage) (interface{}, error) {
	return s.module.Info(), nil
}

func (s *Server) handleModuleList(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"modules": tracker.Names(),
		"active":  s.module.Name(),
	}, nil
}

// === Parameter Handlers ===

type paramArgs struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

func (s *Server) handleParamList(context.Context, json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"params": s.module.Params().List()}, nil
}

func (s *Server) handleParamGet(_ context.Context, params json.RawMessage) (interface{}, error) {
	var a paramArgs
	if err := decodeParams(params, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, errors.Wrap(errInvalidParams, "name is required")
	}
	return s.module.Params().Describe(a.Name)
}

func (s *Server) handleParamSet(_ context.Context, params json.RawMessage) (interface{}, error) {
	var a paramArgs
	if err := decodeParams(params, &a); err != nil {
		return nil, err
	}
	if a.Name == "" || a.Value == nil {
		return nil, errors.Wrap(errInvalidParams, "name and value are required")
	}
	if err := s.module.Params().Set(a.Name, *a.Value); err != nil {
		return nil, err
	}
	return s.module.Params().Describe(a.Name)
}

func (s *Server) handleParamReset(context.Context, json.RawMessage) (interface{}, error) {
	p := s.module.Params()
	p.Reset()
	s.logger.Info("parameters reset to defaults")
	return map[string]interface{}{"params": p.List()}, nil
}

// === Frame Handlers ===

type frameInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(_ context.Context, params json.RawMessage) (interface{}, error) {
	var a frameInfoArgs
	if err := decodeParams(params, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.Wrap(errInvalidParams, "path is required")
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

type frameProcessArgs struct {
	Path        string `json:"path"`
	OutputPath  string `json:"output_path"`
	ReturnImage bool   `json:"return_image"`
	Format      string `json:"format"`
}

// frameProcessResult is the module result plus where the output frame went.
type frameProcessResult struct {
	*tracker.Result
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	OutputPath string `json:"output_path,omitempty"`
	Image      string `json:"image,omitempty"`
	MimeType   string `json:"mime_type,omitempty"`
}

// handleFrameProcess runs the module on an image file. The output frame is
// only composed when it is saved or returned.
func (s *Server) handleFrameProcess(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var a frameProcessArgs
	if err := decodeParams(params, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.Wrap(errInvalidParams, "path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	frame := tracker.Frame{Image: img, Seq: s.nextSeq(), Time: time.Now()}
	render := a.OutputPath != "" || a.ReturnImage

	var res *tracker.Result
	if render {
		res, err = s.module.Process(ctx, frame)
	} else {
		res, err = s.module.ProcessNoUSB(ctx, frame)
	}
	if err != nil {
		return nil, err
	}

	out := &frameProcessResult{
		Result: res,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	if a.OutputPath != "" {
		if err := imaging.SaveFrame(a.OutputPath, res.Output); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.ReturnImage {
		format := imaging.ParseFormat(a.Format)
		if out.Image, err = imaging.EncodeBase64(res.Output, format); err != nil {
			return nil, err
		}
		out.MimeType = format.MimeType()
	}
	return out, nil
}

type frameSampleArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleFrameSample(_ context.Context, params json.RawMessage) (interface{}, error) {
	var a frameSampleArgs
	if err := decodeParams(params, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.Wrap(errInvalidParams, "path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}
