package render

import (
	"context"
)

// Renderer converts a StepView into a byte representation (HTML, terminal
// output, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view StepView, options RenderOptions) ([]byte, error)
}
