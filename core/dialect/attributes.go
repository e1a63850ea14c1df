package dialect

import (
	"regexp"
	"strings"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

// Word-level attribute decoding for the OSIS <w …> field.
//
// The attribute values are compact mini-languages: savlm/lemma carry zero or
// more "strong:G1234" / "strong:H1234" lexical identifiers, morph carries
// "strongMorph:TH1234" morphological codes. Each decoded code is emitted as
// a canonical inline marker. Attribute kinds that carry no information we
// keep (split bookkeeping, source word numbers) are consumed and dropped.
var (
	attrSavlmRE   = regexp.MustCompile(`savlm="(.+?)"`)
	attrLemmaRE   = regexp.MustCompile(`lemma="(.+?)"`)
	attrMorphRE   = regexp.MustCompile(`morph="(.+?)"`)
	attrTypeRE    = regexp.MustCompile(`type="(.+?)"`)
	attrSubTypeRE = regexp.MustCompile(`subType="(.+?)"`)
	attrSrcRE     = regexp.MustCompile(`src="(.+?)"`)
	attrWnRE      = regexp.MustCompile(`wn="(\d+?)"`)

	strongsCodeRE = regexp.MustCompile(`strong:([GH]\d{1,5})`)
	morphCodeRE   = regexp.MustCompile(`strongMorph:(TH\d{1,4})`)
)

// decodeWordAttributes decodes the attribute string of one word-wrapper tag
// and returns the canonical inline markers that replace it.
//
// Any attribute content left over after all known kinds are decoded is a
// verse-fatal residue error: an unrecognized attribute means the grammar
// does not cover this input.
func decodeWordAttributes(attributes string, loc rerr.Location) (string, error) {
	var out strings.Builder
	attributeCount := strings.Count(attributes, `="`)

	for j := 0; j < attributeCount; j++ {
		if m := attrSavlmRE.FindStringSubmatchIndex(attributes); m != nil {
			value := attributes[m[2]:m[3]]
			out.WriteString(decodeStrongs(value))
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrLemmaRE.FindStringSubmatchIndex(attributes); m != nil {
			value := attributes[m[2]:m[3]]
			out.WriteString(decodeStrongs(value))
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrMorphRE.FindStringSubmatchIndex(attributes); m != nil {
			value := attributes[m[2]:m[3]]
			out.WriteString(decodeMorph(value))
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrTypeRE.FindStringSubmatchIndex(attributes); m != nil {
			value := attributes[m[2]:m[3]]
			// x-split word-part bookkeeping (x-split, x-split-1, …) carries
			// nothing the canonical form keeps.
			if !strings.HasPrefix(value, "x-split") {
				return "", rerr.NewUnknownConstruct(string(OSIS), "word type attribute", value, attributes, loc)
			}
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrSubTypeRE.FindStringSubmatchIndex(attributes); m != nil {
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrSrcRE.FindStringSubmatchIndex(attributes); m != nil {
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
		if m := attrWnRE.FindStringSubmatchIndex(attributes); m != nil {
			attributes = attributes[:m[0]] + attributes[m[1]:]
		}
	}

	if strings.TrimSpace(attributes) != "" {
		return "", rerr.NewAttributeResidue(string(OSIS), strings.TrimSpace(attributes), loc)
	}
	return out.String(), nil
}

// decodeStrongs extracts every strong:Gnnnn / strong:Hnnnn code from value
// and emits each as a canonical \str marker.
func decodeStrongs(value string) string {
	var out strings.Builder
	for {
		m := strongsCodeRE.FindStringSubmatchIndex(value)
		if m == nil {
			break
		}
		out.WriteString("\\str ")
		out.WriteString(value[m[2]:m[3]])
		out.WriteString("\\str*")
		value = value[:m[0]] + value[m[1]:]
	}
	return out.String()
}

// decodeMorph extracts every strongMorph:THnnnn code from value and emits
// each as a canonical \morph marker.
func decodeMorph(value string) string {
	var out strings.Builder
	for {
		m := morphCodeRE.FindStringSubmatchIndex(value)
		if m == nil {
			break
		}
		out.WriteString("\\morph ")
		out.WriteString(value[m[2]:m[3]])
		out.WriteString("\\morph*")
		value = value[:m[0]] + value[m[1]:]
	}
	return out.String()
}
