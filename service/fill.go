package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dzikrimr/tugasmk/model"
)

// HealingPhrase replaces placeholders that survive both fill stages.
const HealingPhrase = "akan ditentukan kemudian"

// attachmentNotice replaces the attachment loop block; there is no attachment
// data model to drive it.
const attachmentNotice = "Daftar lampiran akan dilengkapi kemudian."

var (
	placeholderRe    = regexp.MustCompile(`\{\{\s*\w+\s*\}\}`)
	attachmentLoopRe = regexp.MustCompile(`(?s)\{%\s*for\b.*?\{%\s*endfor\s*%\}`)
)

// Generator produces text from a prompt. Implemented by GeneratorService;
// failures mean the deterministic fill takes over.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Filler turns a contract template and a field mapping into a filled HTML
// document. It tries the generation service first (when configured), then
// falls back to literal placeholder substitution, and finally heals any
// placeholder that is still unresolved. The returned document never contains
// the placeholder opener "{{".
type Filler struct {
	generator      Generator
	maxPromptChars int
}

// NewFiller creates a Filler. generator may be nil, in which case only the
// deterministic stages run.
func NewFiller(generator Generator, maxPromptChars int) *Filler {
	if maxPromptChars <= 0 {
		maxPromptChars = 8000
	}
	return &Filler{
		generator:      generator,
		maxPromptChars: maxPromptChars,
	}
}

// Fill produces the filled document. It never fails; a generation-service
// outage degrades to the deterministic stages.
func (f *Filler) Fill(ctx context.Context, template string, fields model.FieldMapping) string {
	if f.generator != nil {
		if filled, ok := f.tryGenerative(ctx, template, fields); ok {
			return filled
		}
	}
	return f.deterministicFill(template, fields)
}

// tryGenerative asks the generation service to fill the template. The answer
// is accepted only when it is plausible: non-empty, free of placeholders, and
// not drastically shorter than the template it was meant to fill.
func (f *Filler) tryGenerative(ctx context.Context, template string, fields model.FieldMapping) (string, bool) {
	prompt := f.buildPrompt(template, fields)

	result, err := f.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("generation service unavailable, falling back to substitution", "error", err)
		return "", false
	}

	result = strings.TrimSpace(result)
	switch {
	case result == "":
		slog.Warn("generation returned empty result, falling back")
		return "", false
	case strings.Contains(result, "{{"):
		slog.Warn("generation left placeholders unresolved, falling back")
		return "", false
	case len(result) <= len(template)/2:
		slog.Warn("generation result implausibly short, falling back",
			"result_len", len(result), "template_len", len(template))
		return "", false
	}

	return result, true
}

// buildPrompt embeds the field values and the (possibly truncated) template
// into an instruction for the generation service.
func (f *Filler) buildPrompt(template string, fields model.FieldMapping) string {
	var b strings.Builder
	b.WriteString("Isi template HTML kontrak berikut menggunakan data ini:\n")
	for _, key := range model.FieldNames {
		if value, ok := fields[key]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", key, value)
		}
	}
	b.WriteString("Template:\n")
	if len(template) > f.maxPromptChars {
		b.WriteString(template[:f.maxPromptChars])
	} else {
		b.WriteString(template)
	}
	b.WriteString("\nHasilkan HTML penuh yang siap dicetak sebagai PDF.")
	return b.String()
}

// deterministicFill substitutes every known field into the template, strips
// the unsupported attachment loop, and heals leftover placeholders. Running
// it again on its own output is a no-op.
func (f *Filler) deterministicFill(template string, fields model.FieldMapping) string {
	out := attachmentLoopRe.ReplaceAllString(template, attachmentNotice)

	for key, value := range fields {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	out = placeholderRe.ReplaceAllString(out, HealingPhrase)

	// Malformed openers without a closing brace pair would otherwise leak
	// into the rendered document.
	out = strings.ReplaceAll(out, "{{", "")

	return out
}
