package server

import (
	"testing"
)

func TestGetMethodDefinitions(t *testing.T) {
	methods := GetMethodDefinitions()

	expected := []string{
		"ping",
		"methods/list",
		"module/info",
		"module/list",
		"param/list",
		"param/get",
		"param/set",
		"param/reset",
		"frame/info",
		"frame/process",
		"frame/sample",
	}

	methodMap := make(map[string]Method)
	for _, m := range methods {
		methodMap[m.Name] = m
	}

	for _, name := range expected {
		if _, ok := methodMap[name]; !ok {
			t.Errorf("Expected method %s not found", name)
		}
	}
	if len(methods) != len(expected) {
		t.Errorf("got %d methods, want %d", len(methods), len(expected))
	}
}

func TestMethodDefinitions_Structure(t *testing.T) {
	s := newTestServer(t)
	handlers := s.handlers()

	for _, m := range GetMethodDefinitions() {
		t.Run(m.Name, func(t *testing.T) {
			if m.Description == "" {
				t.Error("Description is empty")
			}
			if m.ParamSchema["type"] != "object" {
				t.Errorf("schema type = %v, want object", m.ParamSchema["type"])
			}
			props, ok := m.ParamSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("schema properties should be a map")
			}
			if required, ok := m.ParamSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required param %q has no property", r)
					}
				}
			}
			if _, ok := handlers[m.Name]; !ok && m.Name != "ping" {
				t.Errorf("method %s has no handler", m.Name)
			}
		})
	}
}
