// package predict loads camera pose predictions for DRR registration. A
// prediction document pairs rendered thumbnail filenames with the camera
// poses that produced them, so a pose estimate can be replayed onto the
// live viewport.
package predict

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// predictionSchema validates a document before it is decoded, so malformed
// files are rejected with a field-level message instead of a partial decode.
var predictionSchema = jsonschema.MustCompileString("predictions.schema.json", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["filename", "eye", "center", "up"],
    "properties": {
      "filename": {"type": "string", "minLength": 1},
      "eye": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
      "center": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
      "up": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
      "fovy": {"type": "number", "exclusiveMinimum": 0}
    }
  }
}`)

// Prediction is one registration estimate: a rendered thumbnail and the
// camera pose that produced it. Fovy is in degrees and zero when the
// document omits it.
type Prediction struct {
	Filename string     `json:"filename"`
	Eye      mgl32.Vec3 `json:"eye"`
	Center   mgl32.Vec3 `json:"center"`
	Up       mgl32.Vec3 `json:"up"`
	Fovy     float32    `json:"fovy"`
}

// Camera returns the entry's pose for a camera update callback.
//
// Returns:
//   - mgl32.Vec3: the eye position
//   - mgl32.Vec3: the look-at center
//   - mgl32.Vec3: the up direction
func (p *Prediction) Camera() (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	return p.Eye, p.Center, p.Up
}

// ViewMatrix returns the entry's world-to-camera transform.
func (p *Prediction) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(p.Eye, p.Center, p.Up)
}

// Image is one decoded thumbnail with its geometry.
type Image struct {
	Width         int
	Height        int
	BytesPerPixel int
	Data          image.Image
}

// Decoder loads one thumbnail image from disk. Adapters over the standard
// image decoders satisfy this.
type Decoder func(path string) (image.Image, error)

// Set is an ordered collection of predictions loaded from one JSON
// document, plus the thumbnails decoded for them.
type Set struct {
	Predictions []Prediction
	Images      []Image
}

// Len returns the number of predictions in the set.
func (s *Set) Len() int {
	return len(s.Predictions)
}

// Load reads and validates a prediction document.
//
// Parameters:
//   - path: the JSON document path
//
// Returns:
//   - *Set: the decoded predictions, without thumbnails
//   - error: error if the file is missing, malformed, or fails validation
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("predictions: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("predictions %q: %w", path, err)
	}
	if err := predictionSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("predictions %q: %w", path, err)
	}

	var entries []Prediction
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("predictions %q: %w", path, err)
	}
	return &Set{Predictions: entries}, nil
}

// LoadImages decodes every prediction's thumbnail with dec and records its
// geometry, logging one line per image. Thumbnails render at 4 bytes per
// pixel regardless of the on-disk format.
//
// Parameters:
//   - dec: the image decoder supplied by the caller
//
// Returns:
//   - error: the first decoder error, leaving earlier images in place
func (s *Set) LoadImages(dec Decoder) error {
	for i := range s.Predictions {
		p := &s.Predictions[i]
		img, err := dec(p.Filename)
		if err != nil {
			return fmt.Errorf("prediction image %q: %w", p.Filename, err)
		}
		bounds := img.Bounds()
		s.Images = append(s.Images, Image{
			Width:         bounds.Dx(),
			Height:        bounds.Dy(),
			BytesPerPixel: 4,
			Data:          img,
		})
		log.Printf("Loaded %s: (%dx%d, %s)", p.Filename, bounds.Dx(), bounds.Dy(), formatName(img))
	}
	return nil
}

// formatName labels the decoded in-memory layout for the load log line.
func formatName(img image.Image) string {
	switch img.(type) {
	case *image.Gray:
		return "R8"
	case *image.Gray16:
		return "R16"
	case *image.NRGBA, *image.RGBA:
		return "RGBA8"
	default:
		return "RGBA8"
	}
}
