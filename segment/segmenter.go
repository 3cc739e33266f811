package segment

import (
	"io"
	"strings"

	"github.com/vidroto/vidroto"
)

// GrabCutModel is the selector value for the weightless GrabCut backend.
const GrabCutModel = "grabcut"

// New resolves a segmentation model selector to a segmenter instance.
// "grabcut" (or empty) selects the GrabCut backend, anything else is
// treated as the path to an ONNX mask model. The returned closer is nil
// for backends that hold no resources.
func New(model string) (vidroto.Segmenter, io.Closer, error) {
	switch {
	case model == "" || strings.EqualFold(model, GrabCutModel):
		return NewGrabCut(0), nil, nil

	default:
		dnn, err := NewDNN(model)

		if err != nil {
			return nil, nil, err
		}

		return dnn, dnn, nil
	}
}
