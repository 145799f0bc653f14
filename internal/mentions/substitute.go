// package mentions implements the @mention rewriting engine.
//
// The engine is pure text work: no I/O, no API types. A [Mapping] holds the
// ordered old→new handle table parsed from the mapping document, and
// [Substitute] rewrites one body at a time. Everything else in the tool
// exists to get text safely in and out of this package.
package mentions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Pair is one old→new handle replacement.
type Pair struct {
	Old string
	New string
}

// rule is a compiled Pair: the match pattern plus the guard suffix that keeps
// an already-rewritten handle from being rewritten again.
type rule struct {
	pair    Pair
	pattern *regexp.Regexp
	guard   string
}

func compileRule(p Pair) rule {
	return rule{
		pair:    p,
		pattern: regexp.MustCompile(`@` + regexp.QuoteMeta(p.Old) + `\b`),
		guard:   "-" + finalSegment(p.New),
	}
}

// finalSegment returns the last hyphen-delimited segment of a handle.
func finalSegment(handle string) string {
	if i := strings.LastIndex(handle, "-"); i >= 0 {
		return handle[i+1:]
	}
	return handle
}

// Mapping is an ordered old→new handle table. Order is part of the contract:
// pairs apply in declaration order over the progressively-rewritten text, so
// the same entries in a different order are a different mapping.
type Mapping struct {
	rules []rule
	index map[string]int
}

// NewMapping builds a mapping from pairs, preserving their order. A repeated
// Old keeps its first position and takes its last New value.
func NewMapping(pairs []Pair) *Mapping {
	m := &Mapping{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		m.add(p)
	}
	return m
}

func (m *Mapping) add(p Pair) {
	if i, ok := m.index[p.Old]; ok {
		m.rules[i] = compileRule(p)
		return
	}
	m.index[p.Old] = len(m.rules)
	m.rules = append(m.rules, compileRule(p))
}

// Len returns the number of replacement pairs.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Pairs returns the replacement pairs in declaration order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	pairs := make([]Pair, len(m.rules))
	for i, r := range m.rules {
		pairs[i] = r.pair
	}
	return pairs
}

// ParseMapping decodes a mapping document of the form
//
//	{"mappings": {"old-handle": "new-handle", ...}}
//
// encoding/json map decoding would lose the object's declaration order, which
// is contractual here, so the mappings object is token-walked instead.
func ParseMapping(data []byte) (*Mapping, error) {
	var doc struct {
		Mappings json.RawMessage `json:"mappings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse mapping document: %w", err)
	}
	if len(doc.Mappings) == 0 {
		return nil, fmt.Errorf("mapping document has no \"mappings\" key")
	}

	dec := json.NewDecoder(bytes.NewReader(doc.Mappings))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse mappings object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("\"mappings\" must be a JSON object")
	}

	m := NewMapping(nil)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse mappings object: %w", err)
		}
		old, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in mappings object", keyTok)
		}

		var handle string
		if err := dec.Decode(&handle); err != nil {
			return nil, fmt.Errorf("mapping for %q must be a string: %w", old, err)
		}
		if old == "" || handle == "" {
			return nil, fmt.Errorf("mapping entries cannot be empty (old=%q, new=%q)", old, handle)
		}
		m.add(Pair{Old: old, New: handle})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse mappings object: %w", err)
	}

	return m, nil
}

// Substitute rewrites every @old mention in text to @new per the mapping.
//
// Each pair replaces occurrences of "@" + old followed by a word boundary,
// except occurrences immediately followed by "-" + the final hyphen-delimited
// segment of new: that suffix marks an already-rewritten handle, which makes
// a second pass a no-op. Pairs apply in declaration order, each over the
// result of the previous pair. Bare handles without "@" are never touched.
//
// The input string itself comes back when nothing changed, so callers can use
// string equality as the no-change signal.
func Substitute(text string, m *Mapping) string {
	if text == "" || m.Len() == 0 {
		return text
	}

	out := text
	for _, r := range m.rules {
		out = r.apply(out)
	}
	return out
}

func (r rule) apply(text string) string {
	locs := r.pattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	changed := false
	for _, loc := range locs {
		if strings.HasPrefix(text[loc[1]:], r.guard) {
			continue // already carries the rewritten suffix
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString("@")
		b.WriteString(r.pair.New)
		last = loc[1]
		changed = true
	}
	if !changed {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}
