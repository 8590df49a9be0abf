package nametable

import "testing"

func TestTagForNameRoundtrip(t *testing.T) {
	tbl := New()

	cases := []struct{ uri, local string }{
		{NSWordproc, "customElement"},
		{"urn:x-custom", "thing"},
		{"", "untouched"},
		{NSWordproc, "customElement"}, // repeat: must intern to the same tag
	}

	seen := map[string]Tag{}
	for _, c := range cases {
		tag := tbl.TagForName(c.uri, c.local)
		key := c.uri + "|" + c.local
		if prev, ok := seen[key]; ok && prev != tag {
			t.Fatalf("interning %s/%s twice gave different tags: %d vs %d", c.uri, c.local, prev, tag)
		}
		seen[key] = tag

		gotNS, gotLocal, err := tbl.NameForTag(tag)
		if err != nil {
			t.Fatalf("NameForTag(%d): %v", tag, err)
		}
		info, ok := tbl.Namespace(gotNS)
		if !ok {
			t.Fatalf("namespace %d not found", gotNS)
		}
		if info.URI != c.uri || gotLocal != c.local {
			t.Errorf("roundtrip mismatch: interned (%q,%q), resolved (%q,%q)", c.uri, c.local, info.URI, gotLocal)
		}
	}
}

func TestPredefinedTagsAreStable(t *testing.T) {
	tbl := New()
	tag := tbl.TagForName(NSWordproc, "body")
	if tag != WordBody {
		t.Errorf("expected predefined tag for w:body to be reused, got %d want %d", tag, WordBody)
	}
	if tag >= PredefinedTagCount {
		t.Errorf("predefined tag %d should be below PredefinedTagCount %d", tag, PredefinedTagCount)
	}
}

func TestDynamicTagAllocatedBeyondPredefined(t *testing.T) {
	tbl := New()
	tag := tbl.TagForName("urn:custom", "thing")
	if tag < PredefinedTagCount {
		t.Errorf("dynamic tag %d should be >= PredefinedTagCount %d", tag, PredefinedTagCount)
	}
}

func TestNamespacePrefixPreservedOnFirstIntern(t *testing.T) {
	tbl := New()
	id1 := tbl.InternNamespace("urn:x", "a")
	id2 := tbl.InternNamespace("urn:x", "b")
	if id1 != id2 {
		t.Fatalf("same URI interned twice produced different ids: %d vs %d", id1, id2)
	}
	info, _ := tbl.Namespace(id1)
	if info.Prefix != "a" {
		t.Errorf("expected first prefix 'a' to be preserved, got %q", info.Prefix)
	}
}
