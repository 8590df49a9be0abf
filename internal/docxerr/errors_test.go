package docxerr

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := WrapPath("opc", "read", "word/document.xml", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is lost the sentinel through WrapPath")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound predicate disagrees with errors.Is")
	}
	msg := err.Error()
	for _, part := range []string{"opc", "read", "word/document.xml"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
}

func TestErrorfFormats(t *testing.T) {
	err := Errorf("xmlio", "parse", "doc.xml", "line %d: %w", 7, ErrInvalidFormat)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Error("Errorf did not wrap the sentinel")
	}
	if !strings.Contains(err.Error(), "line 7") {
		t.Errorf("formatted detail lost: %q", err.Error())
	}
}

func TestIdentityPredicate(t *testing.T) {
	err := Wrap("wordlens", "lookup", ErrIdentity)
	if !IsIdentity(err) {
		t.Error("IsIdentity predicate failed")
	}
	if IsIdentity(Wrap("wordlens", "lookup", ErrSemantic)) {
		t.Error("IsIdentity matched a semantic error")
	}
}
