package neural

import (
	"fmt"
	"sync"

	gonnx "github.com/advancedclimatesystems/gonnx"
	"gorgonia.org/tensor"
)

// Policy wraps the ONNX targeting network. The model maps the encoded
// board to one logit per cell; higher means shoot here.
type Policy struct {
	model *gonnx.Model
	mu    sync.Mutex
}

// LoadPolicy loads the policy model from an .onnx file.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return nil, fmt.Errorf("policy model path not configured")
	}
	model, err := gonnx.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load policy model %s: %w", path, err)
	}
	return &Policy{model: model}, nil
}

// Scores runs inference on an encoded board (see Encode) and returns
// one score per cell in row-major order.
func (p *Policy) Scores(board []float32, size int) ([]float32, error) {
	boardTensor := tensor.New(
		tensor.WithShape(1, size, size, NumChannels),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(board),
	)
	inputs := gonnx.Tensors{"board": boardTensor}

	p.mu.Lock()
	outputs, err := p.model.Run(inputs)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("policy run: %w", err)
	}

	out, ok := outputs["cell_logits"]
	if !ok {
		// Fall back to the first output if the name doesn't match.
		for _, v := range outputs {
			out = v
			break
		}
	}
	if out == nil {
		return nil, fmt.Errorf("no output tensor from policy model")
	}

	var scores []float32
	switch d := out.Data().(type) {
	case []float32:
		scores = d
	case []float64:
		scores = make([]float32, len(d))
		for i, v := range d {
			scores[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("unexpected policy output type %T", out.Data())
	}

	if len(scores) < size*size {
		return nil, fmt.Errorf("policy output too short: %d for %dx%d grid", len(scores), size, size)
	}
	return scores[:size*size], nil
}
