package server

// Method describes a JSON-RPC method and the shape of its params.
type Method struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ParamSchema map[string]interface{} `json:"paramSchema"`
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to a captured frame (PNG, JPEG or GIF)",
}

// GetMethodDefinitions returns every method served besides the protocol
// handshake.
func GetMethodDefinitions() []Method {
	return []Method{
		{
			Name:        "ping",
			Description: "Health check. Returns an empty object.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "methods/list",
			Description: "List the methods this server supports.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},

		// Module
		{
			Name:        "module/info",
			Description: "Describe the loaded module: name, vendor, backend and video mapping.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "module/list",
			Description: "List every registered module and the one that is active.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},

		// Parameters
		{
			Name:        "param/list",
			Description: "List all module parameters with their category, limits and current value.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "param/get",
			Description: "Get one module parameter.",
			ParamSchema: objectSchema(map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Parameter name, e.g. hmin",
				},
			}, "name"),
		},
		{
			Name:        "param/set",
			Description: "Set one module parameter. The value is validated against its range or choices and takes effect on the next frame.",
			ParamSchema: objectSchema(map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Parameter name, e.g. hmin",
				},
				"value": map[string]interface{}{
					"type":        "string",
					"description": "New value as text, e.g. \"85\" or \"true\"",
				},
			}, "name", "value"),
		},
		{
			Name:        "param/reset",
			Description: "Restore every module parameter to its default.",
			ParamSchema: objectSchema(map[string]interface{}{}),
		},

		// Frames
		{
			Name:        "frame/info",
			Description: "Get the dimensions, format and file size of a captured frame.",
			ParamSchema: objectSchema(map[string]interface{}{
				"path": pathProperty,
			}, "path"),
		},
		{
			Name:        "frame/process",
			Description: "Run the module on a captured frame and return the target, the lines found and the serial message.",
			ParamSchema: objectSchema(map[string]interface{}{
				"path": pathProperty,
				"output_path": map[string]interface{}{
					"type":        "string",
					"description": "Where to save the composed output frame. The extension selects the format.",
				},
				"return_image": map[string]interface{}{
					"type":        "boolean",
					"description": "Return the composed output frame as base64",
					"default":     false,
				},
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"png", "jpeg"},
					"description": "Encoding of the returned image (default png)",
					"default":     "png",
				},
			}, "path"),
		},
		{
			Name:        "frame/sample",
			Description: "Get the color at a pixel as hex, RGB and 8-bit HSV. Use this to pick threshold values for the tape.",
			ParamSchema: objectSchema(map[string]interface{}{
				"path": pathProperty,
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (0 = left edge)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (0 = top edge)",
				},
			}, "path", "x", "y"),
		},
	}
}

func methodNames() []string {
	defs := GetMethodDefinitions()
	names := make([]string, len(defs))
	for i, m := range defs {
		names[i] = m.Name
	}
	return names
}
