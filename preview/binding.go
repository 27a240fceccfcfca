// Package preview keeps renderers in sync with form parameters. Data flows
// one way: the form owns the parameters and pushes a copy to the renderer
// whenever they change.
package preview

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Renderer[P any] interface {
	Render(p P) error
}

type RendererFunc[P any] func(p P) error

func (f RendererFunc[P]) Render(p P) error {
	return f(p)
}

// Binding forwards parameter values to a renderer, skipping values equal to
// the last one rendered successfully.
type Binding[P comparable] struct {
	mu       sync.Mutex
	renderer Renderer[P]
	last     P
	rendered bool
	log      zerolog.Logger
}

func NewBinding[P comparable](r Renderer[P]) *Binding[P] {
	return &Binding[P]{renderer: r, log: log.Logger.With().Str("component", "preview").Logger()}
}

// Push renders p unless it is what the renderer already shows. A nil
// binding accepts and drops everything, so forms work without a preview.
func (b *Binding[P]) Push(p P) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rendered && b.last == p {
		return nil
	}

	if err := b.renderer.Render(p); err != nil {
		b.log.Warn().Err(err).Msg("preview render failed")

		return err
	}

	b.last, b.rendered = p, true

	return nil
}
