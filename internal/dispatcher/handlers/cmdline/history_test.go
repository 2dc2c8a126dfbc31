package cmdline

import (
	"slices"
	"testing"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory(3)
	for _, s := range []string{"a", "b", "", "a", "c", "d"} {
		h.Add(s)
	}
	want := []string{"a", "c", "d"}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %q, want %q", got, want)
	}
	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
}

func TestHistoryBrowse(t *testing.T) {
	h := NewHistory(0)
	for _, s := range []string{"set ts=4", "s/a/b/", "set sw=2"} {
		h.Add(s)
	}

	b := h.browse()
	b.start("se", "se")
	var got []string
	for {
		s, ok := b.prev()
		if !ok {
			break
		}
		got = append(got, s)
	}
	if want := []string{"set sw=2", "set ts=4"}; !slices.Equal(got, want) {
		t.Errorf("prev() with prefix visited %q, want %q", got, want)
	}

	if s, ok := b.next(); !ok || s != "set sw=2" {
		t.Errorf("next() = %q, %v, want %q", s, ok, "set sw=2")
	}
	if s, ok := b.next(); !ok || s != "se" {
		t.Errorf("next() past the newest = %q, %v, want the typed line", s, ok)
	}
	if _, ok := b.next(); ok {
		t.Error("next() on the typed line moved")
	}
}
