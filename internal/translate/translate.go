// Package translate implements the message translation step. Translation itself is a
// pass-through; the package only detects the language the text was written in.
package translate

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/translachat-server/internal/core"
)

// Passthrough returns the text unchanged together with its detected language.
type Passthrough struct {
	log *zerolog.Logger
}

// NewPassthrough creates a pass-through translator.
func NewPassthrough(logger *zerolog.Logger) *Passthrough {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Passthrough{log: logger}
}

// Translate implements core.Translator.
func (p *Passthrough) Translate(ctx context.Context, text, sourceLang string) (core.Translation, error) {
	if err := ctx.Err(); err != nil {
		return core.Translation{}, err
	}
	return core.Translation{
		Text:             text,
		DetectedLanguage: p.Detect(text, sourceLang),
	}, nil
}

// Detect returns the ISO 639-1 code of text, or fallback when detection is not reliable.
func (p *Passthrough) Detect(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if !info.IsReliable() || code == "" {
		p.log.Debug().
			Str("guess", code).
			Float64("confidence", info.Confidence).
			Msg("language detection unreliable, using sender language")
		return fallback
	}
	return code
}
