// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
)

// Source is a raw page as handed over by the document extraction step.
type Source struct {
	// Content is the raw page content.
	Content []byte
	Format  string
	ID      string
}

// PageDecoder turns a raw Source into the text and tables of a page.
type PageDecoder interface {
	CanHandle(source Source) bool
	Decode(ctx context.Context, source Source) (soil.Page, error)
	Name() string
}

// Registry picks the decoder for a source.
type Registry struct {
	decoders []PageDecoder
}

// NewRegistry creates a Registry. Order matters: the first decoder whose
// CanHandle accepts a source is used.
func NewRegistry(decoders ...PageDecoder) *Registry {
	return &Registry{decoders: decoders}
}

// DefaultRegistry registers the structured decoder before the markdown one so
// a YAML page is never read as plain text.
func DefaultRegistry() *Registry {
	return NewRegistry(NewYAMLDecoder(), NewMarkdownDecoder())
}

// Decoded is a page together with the decoder that produced it.
type Decoded struct {
	Page        soil.Page
	DecoderUsed string
}

// Decode turns source into a page with the first decoder that accepts it.
// Decoder failures are returned with the decoder name attached.
func (r *Registry) Decode(ctx context.Context, source Source) (Decoded, error) {
	decoder, ok := r.lookup(source)
	if !ok {
		return Decoded{}, fmt.Errorf("unsupported page format %q for %s: expected one of %v",
			source.Format, describe(source), r.RegisteredDecoders())
	}
	page, err := decoder.Decode(ctx, source)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoder %q failed: %w", decoder.Name(), err)
	}
	return Decoded{Page: page, DecoderUsed: decoder.Name()}, nil
}

func (r *Registry) lookup(source Source) (PageDecoder, bool) {
	for _, decoder := range r.decoders {
		if decoder.CanHandle(source) {
			return decoder, true
		}
	}
	return nil, false
}

func describe(source Source) string {
	if source.ID == "" {
		return "page"
	}
	return fmt.Sprintf("page %q", source.ID)
}

// RegisteredDecoders lists decoder names in lookup order.
func (r *Registry) RegisteredDecoders() []string {
	names := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		names = append(names, decoder.Name())
	}
	return names
}
