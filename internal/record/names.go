package record

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InstructMarker tags display names of instruction-tuned models.
const InstructMarker = "(it)"

// hfCachePrefix matches Hugging Face hub cache directory names such as
// "models--meta-llama--Meta-Llama-3-8B".
var hfCachePrefix = regexp.MustCompile(`^models--(?:.+--)?`)

// instructSuffix matches the instruction-tuned suffix of a model name, with an
// optional version and "-hf" tail that belong to the base name.
var instructSuffix = regexp.MustCompile(`(?i)[-_](?:instruct|it|chat)(?P<version>[-_]v?\d+(?:\.\d+)*)?(?P<hf>[-_]hf)?$`)

var titler = cases.Title(language.English, cases.NoLower)

// ParseModelName returns the canonical model name: the last path segment of
// name, with any Hugging Face cache prefix ("models--org--") removed.
// Org-qualified names ("org/name") and local paths are both accepted.
func ParseModelName(name string) string {
	name = strings.TrimRight(strings.TrimSpace(name), `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if loc := hfCachePrefix.FindStringIndex(name); loc != nil {
		name = name[loc[1]:]
	}
	if i := strings.LastIndex(name, "--"); i >= 0 {
		name = name[i+2:]
	}
	return name
}

// BaseModelName returns the non-instruction-tuned variant of a parsed model
// name. Names without an instruction-tuned suffix are returned unchanged.
func BaseModelName(parsed string) string {
	m := instructSuffix.FindStringSubmatchIndex(parsed)
	if m == nil {
		return parsed
	}
	base := parsed[:m[0]]
	if hf := instructSuffix.SubexpIndex("hf"); m[2*hf] >= 0 {
		base += parsed[m[2*hf]:m[2*hf+1]]
	}
	return base
}

// DisplayName returns a human-readable name for a parsed model name:
// separators become spaces, words are title-cased, and instruction-tuned
// models carry the InstructMarker suffix.
func DisplayName(parsed string) string {
	base := BaseModelName(parsed)
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_'
	})
	display := titler.String(strings.Join(words, " "))
	if base != parsed {
		display += " " + InstructMarker
	}
	return display
}

// IsInstructionTuned reports whether a model is an instruction-tuned variant:
// its base name differs from its parsed name, or its display name carries
// the instruction-tuned marker.
func IsInstructionTuned(parsed, base, display string) bool {
	return base != parsed || strings.Contains(display, InstructMarker)
}
