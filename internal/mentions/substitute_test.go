package mentions

import "testing"

func TestSubstitute(t *testing.T) {
	tc := []struct {
		name  string
		text  string
		pairs []Pair
		want  string
	}{
		{
			name:  "empty text",
			text:  "",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "",
		},
		{
			name:  "no mentions",
			text:  "Bug fixes and performance improvements.",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "Bug fixes and performance improvements.",
		},
		{
			name:  "bare handle without at-sign untouched",
			text:  "Thanks to alice for the report",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "Thanks to alice for the report",
		},
		{
			name:  "single mention",
			text:  "Thanks to @nghia-nguyen for the fix",
			pairs: []Pair{{Old: "nghia-nguyen", New: "nghia-nguyen-4321"}},
			want:  "Thanks to @nghia-nguyen-4321 for the fix",
		},
		{
			name:  "already rewritten mention untouched",
			text:  "Thanks to @nghia-nguyen-4321 for the fix",
			pairs: []Pair{{Old: "nghia-nguyen", New: "nghia-nguyen-4321"}},
			want:  "Thanks to @nghia-nguyen-4321 for the fix",
		},
		{
			name:  "multiple occurrences",
			text:  "cc @alice and @alice again",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "cc @alice-acme and @alice-acme again",
		},
		{
			name:  "punctuation after mention",
			text:  "Reviewed-by: @alice, @bob.",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}, {Old: "bob", New: "bob-acme"}},
			want:  "Reviewed-by: @alice-acme, @bob-acme.",
		},
		{
			name:  "longer handle does not match prefix",
			text:  "ping @alicesmith",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "ping @alicesmith",
		},
		{
			name:  "guard is a plain prefix check",
			text:  "see @bob-99x",
			pairs: []Pair{{Old: "bob", New: "bob-99"}},
			want:  "see @bob-99x",
		},
		{
			name:  "hyphenated handle with non-guard suffix is rewritten",
			text:  "ping @alice-ops",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "ping @alice-acme-ops",
		},
		{
			name:  "at-sign inside larger token still matches",
			text:  "mail bob@alice.com",
			pairs: []Pair{{Old: "alice", New: "alice-acme"}},
			want:  "mail bob@alice-acme.com",
		},
		{
			name:  "full rename without shared prefix",
			text:  "thanks @bob!",
			pairs: []Pair{{Old: "bob", New: "robert"}},
			want:  "thanks @robert!",
		},
		{
			name: "multiline release body",
			text: "## What's Changed\n* Fix crash by @alice in #12\n* Docs by @nghia-nguyen in #13\n",
			pairs: []Pair{
				{Old: "alice", New: "alice-acme"},
				{Old: "nghia-nguyen", New: "nghia-nguyen-4321"},
			},
			want: "## What's Changed\n* Fix crash by @alice-acme in #12\n* Docs by @nghia-nguyen-4321 in #13\n",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Substitute(tt.text, NewMapping(tt.pairs))
			if got != tt.want {
				t.Errorf("Substitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstituteIdempotence(t *testing.T) {
	mapping := NewMapping([]Pair{
		{Old: "nghia-nguyen", New: "nghia-nguyen-4321"},
		{Old: "alice", New: "alice-acme"},
		{Old: "bob", New: "robert"},
	})

	texts := []string{
		"Thanks @nghia-nguyen, @alice and @bob!",
		"@alice opened this; @alice closed it",
		"no mentions here",
		"",
	}

	for _, text := range texts {
		once := Substitute(text, mapping)
		twice := Substitute(once, mapping)
		if once != twice {
			t.Errorf("second pass changed output: %q -> %q", once, twice)
		}
	}
}

// Pairs apply in declaration order over the progressively-rewritten text, so
// an entry whose new handle collides with a later entry's old handle chains:
// here @carol becomes @alice on the first pass and @alice-acme on the next.
// The mapping file owns avoiding that shape.
func TestSubstituteChainedMapping(t *testing.T) {
	mapping := NewMapping([]Pair{
		{Old: "alice", New: "alice-acme"},
		{Old: "carol", New: "alice"},
	})

	once := Substitute("@carol and @alice", mapping)
	if once != "@alice and @alice-acme" {
		t.Errorf("first pass = %q, want %q", once, "@alice and @alice-acme")
	}

	twice := Substitute(once, mapping)
	if twice != "@alice-acme and @alice-acme" {
		t.Errorf("second pass = %q, want %q", twice, "@alice-acme and @alice-acme")
	}
}

func TestSubstituteNilMapping(t *testing.T) {
	if got := Substitute("ping @alice", nil); got != "ping @alice" {
		t.Errorf("nil mapping should return input, got %q", got)
	}

	if got := Substitute("ping @alice", NewMapping(nil)); got != "ping @alice" {
		t.Errorf("empty mapping should return input, got %q", got)
	}
}

func TestParseMapping(t *testing.T) {
	t.Run("PreservesDeclarationOrder", func(t *testing.T) {
		doc := []byte(`{"mappings": {"zeta": "zeta-1", "alpha": "alpha-2", "mike": "mike-3"}}`)

		m, err := ParseMapping(doc)
		if err != nil {
			t.Fatalf("failed to parse mapping: %v", err)
		}

		want := []Pair{
			{Old: "zeta", New: "zeta-1"},
			{Old: "alpha", New: "alpha-2"},
			{Old: "mike", New: "mike-3"},
		}
		got := m.Pairs()
		if len(got) != len(want) {
			t.Fatalf("expected %d pairs, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("pair %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("DuplicateKeyKeepsFirstPositionLastValue", func(t *testing.T) {
		doc := []byte(`{"mappings": {"a": "a-1", "b": "b-2", "a": "a-9"}}`)

		m, err := ParseMapping(doc)
		if err != nil {
			t.Fatalf("failed to parse mapping: %v", err)
		}

		if m.Len() != 2 {
			t.Fatalf("expected 2 pairs, got %d", m.Len())
		}
		pairs := m.Pairs()
		if pairs[0] != (Pair{Old: "a", New: "a-9"}) {
			t.Errorf("first pair = %+v, want a -> a-9", pairs[0])
		}
		if pairs[1] != (Pair{Old: "b", New: "b-2"}) {
			t.Errorf("second pair = %+v, want b -> b-2", pairs[1])
		}
	})

	t.Run("MissingMappingsKey", func(t *testing.T) {
		if _, err := ParseMapping([]byte(`{"users": {}}`)); err == nil {
			t.Fatal("expected error for missing mappings key")
		}
	})

	t.Run("MappingsNotAnObject", func(t *testing.T) {
		if _, err := ParseMapping([]byte(`{"mappings": ["alice"]}`)); err == nil {
			t.Fatal("expected error for non-object mappings")
		}
	})

	t.Run("NonStringValue", func(t *testing.T) {
		if _, err := ParseMapping([]byte(`{"mappings": {"alice": 42}}`)); err == nil {
			t.Fatal("expected error for non-string mapping value")
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		if _, err := ParseMapping([]byte(`{"mappings": {"alice": ""}}`)); err == nil {
			t.Fatal("expected error for empty mapping value")
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		if _, err := ParseMapping([]byte(`{"mappings": {`)); err == nil {
			t.Fatal("expected error for malformed document")
		}
	})
}
