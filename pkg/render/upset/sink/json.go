package sink

import (
	"encoding/json"

	"github.com/matzehuels/upset/pkg/render/upset"
)

// JSONFormatVersion is bumped when the scene JSON changes incompatibly.
const JSONFormatVersion = 1

type jsonOutput struct {
	Version int `json:"version"`
	upset.Scene
}

// RenderJSON encodes s with its palette and elements for external renderers.
func RenderJSON(s upset.Scene) ([]byte, error) {
	if s.Elements == nil {
		s.Elements = []upset.Element{}
	}
	return json.MarshalIndent(jsonOutput{Version: JSONFormatVersion, Scene: s}, "", "  ")
}
