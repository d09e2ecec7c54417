package hist

import (
	"fmt"
	"slices"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/axis"
	"github.com/hupe1980/histgo/codec"
)

func init() {
	accum.RegisterKind(accum.KindHist.String(), decodeHist)
}

type axisPayload struct {
	Kind     string    `json:"kind"`
	Name     string    `json:"name"`
	Edges    []float64 `json:"edges,omitempty"`
	Labels   []string  `json:"labels,omitempty"`
	Growable bool      `json:"growable,omitempty"`
}

type histPayload struct {
	Axes  []axisPayload `json:"axes"`
	Sumw  []float64     `json:"sumw"`
	Sumw2 []float64     `json:"sumw2,omitempty"`
}

// EncodePayload implements the accum.Encodable interface. Numeric axes
// travel as their edge arrays and rehydrate as Variable axes, which merge
// cleanly with the Regular originals since binning identity compares edges.
func (h *Histogram) EncodePayload(c codec.Codec) ([]byte, error) {
	p := histPayload{
		Axes:  make([]axisPayload, len(h.axes)),
		Sumw:  h.sumw,
		Sumw2: h.sumw2,
	}

	for d, ax := range h.axes {
		switch a := ax.(type) {
		case axis.Numeric:
			p.Axes[d] = axisPayload{Kind: "numeric", Name: a.Name(), Edges: a.Edges()}
		case *axis.Category:
			p.Axes[d] = axisPayload{Kind: "category", Name: a.Name(), Labels: a.Labels(), Growable: a.Growable()}
		default:
			return nil, fmt.Errorf("axis %q has unsupported type %T", ax.Name(), ax)
		}
	}

	return c.Marshal(p)
}

func decodeHist(c codec.Codec, payload []byte) (accum.Value, error) {
	var p histPayload
	if err := c.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	axes := make([]axis.Axis, len(p.Axes))

	for d, ap := range p.Axes {
		switch ap.Kind {
		case "numeric":
			ax, err := axis.NewVariable(ap.Name, ap.Edges...)
			if err != nil {
				return nil, fmt.Errorf("axis %q: %w", ap.Name, err)
			}

			axes[d] = ax
		case "category":
			if ap.Growable {
				axes[d] = axis.NewCategory(ap.Name, ap.Labels...)
			} else {
				axes[d] = axis.NewFixedCategory(ap.Name, ap.Labels...)
			}
		default:
			return nil, fmt.Errorf("axis %q has unknown kind %q", ap.Name, ap.Kind)
		}
	}

	h, err := New(axes...)
	if err != nil {
		return nil, err
	}

	if len(p.Sumw) != h.shape.Size() {
		return nil, fmt.Errorf("payload carries %d cells for a %d-cell histogram", len(p.Sumw), h.shape.Size())
	}

	copy(h.sumw, p.Sumw)

	if p.Sumw2 != nil {
		if len(p.Sumw2) != h.shape.Size() {
			return nil, fmt.Errorf("payload carries %d squared-weight cells for a %d-cell histogram", len(p.Sumw2), h.shape.Size())
		}

		h.sumw2 = slices.Clone(p.Sumw2)
	}

	return h, nil
}
