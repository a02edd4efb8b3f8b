package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Both built-in codecs speak the same wire format: catalogs written
// with one decode with the other. JSON is the lowest-dependency
// option; GoJSON is the faster one.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// This affects newly written catalogs. Deployments that pin a codec by
// name in configuration are unaffected by changes to the default.
var Default Codec = GoJSON{}
