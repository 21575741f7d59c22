// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package animjson emits the JSON sidecar that accompanies a decoded
// multi-frame ABM: tool version, frame names, and the animation header
// fields. Like internal/bmpio, it is a standard-library exception: the
// sidecar is a flat struct and no example in the retrieval pack reaches
// for a third-party JSON or schema library for something this shape.
package animjson

import (
	"encoding/json"

	"github.com/aosvn/aoskit/internal/abm"
)

// ToolVersion is embedded in every sidecar this package emits.
const ToolVersion = "aoskit/1"

// Sidecar is the on-disk shape of the animation JSON file.
type Sidecar struct {
	ToolVersion       string   `json:"tool_version"`
	Frames            []string `json:"frames"`
	ABMType           uint16   `json:"abm_type"`
	AnimMode          uint16   `json:"anim_mode"`
	FrameCount        uint32   `json:"frame_count"`
	FrameSequenceSize uint32   `json:"frame_sequence_size"`
	FrameOffsets      []uint32 `json:"frame_offsets"`
	FrameSequence     []uint16 `json:"frame_sequence"`
}

// Marshal builds the sidecar document for a decoded multi-frame image and
// returns its indented JSON encoding.
func Marshal(img *abm.Image) ([]byte, error) {
	names := make([]string, len(img.Frames))
	for i, f := range img.Frames {
		names[i] = f.Name
	}
	side := Sidecar{
		ToolVersion:       ToolVersion,
		Frames:            names,
		ABMType:           img.Animation.ABMType,
		AnimMode:          img.Animation.AnimMode,
		FrameCount:        img.Animation.FrameCount,
		FrameSequenceSize: img.Animation.FrameSequenceSize,
		FrameOffsets:      img.Animation.FrameOffsets,
		FrameSequence:     img.Animation.FrameSequence,
	}
	return json.MarshalIndent(side, "", "  ")
}
