package player

import (
	"context"
	"errors"
	"testing"

	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

func testEntry(name string) model.StreamEntry {
	return model.StreamEntry{Name: name, URL: "http://example.com/" + name}
}

func TestAddItemValidation(t *testing.T) {
	tests := []struct {
		name    string
		entry   model.StreamEntry
		wantErr error
	}{
		{"valid", model.StreamEntry{Name: "BBC", URL: "http://x/1"}, nil},
		{"valid https", model.StreamEntry{Name: "BBC", URL: "https://x/1"}, nil},
		{"empty name", model.StreamEntry{Name: "", URL: "http://x/1"}, model.ErrEmptyField},
		{"empty url", model.StreamEntry{Name: "BBC", URL: ""}, model.ErrEmptyField},
		{"bad scheme", model.StreamEntry{Name: "BBC", URL: "ftp://x/1"}, model.ErrBadScheme},
		{"name too long", model.StreamEntry{Name: string(make([]byte, 80)), URL: "http://x/1"}, model.ErrEmptyField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := NewPlaylist(20, store.NewMemoryStore())
			err := pl.AddItem(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AddItem() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("AddItem() expected error, got nil")
			}
		})
	}
}

func TestAddItemFull(t *testing.T) {
	pl := NewPlaylist(2, store.NewMemoryStore())
	if err := pl.AddItem(testEntry("a")); err != nil {
		t.Fatal(err)
	}
	if err := pl.AddItem(testEntry("b")); err != nil {
		t.Fatal(err)
	}

	if err := pl.AddItem(testEntry("c")); !errors.Is(err, ErrPlaylistFull) {
		t.Fatalf("AddItem() error = %v, want ErrPlaylistFull", err)
	}
	if pl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", pl.Count())
	}
}

func TestFirstAddSelects(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	if got := pl.Selection(); got != -1 {
		t.Fatalf("empty playlist Selection() = %d, want -1", got)
	}
	if err := pl.AddItem(testEntry("a")); err != nil {
		t.Fatal(err)
	}
	if got := pl.Selection(); got != 0 {
		t.Fatalf("Selection() after first add = %d, want 0", got)
	}
}

func TestItemBoundsChecked(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(testEntry("a"))

	if _, err := pl.Item(0); err != nil {
		t.Fatalf("Item(0) error = %v", err)
	}
	for _, i := range []int{-1, 1, 99} {
		if _, err := pl.Item(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Item(%d) error = %v, want ErrOutOfRange", i, err)
		}
	}
}

func TestSetItem(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(testEntry("a"))

	if err := pl.SetItem(0, testEntry("b")); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	e, _ := pl.Item(0)
	if e.Name != "b" {
		t.Fatalf("Item(0).Name = %q, want %q", e.Name, "b")
	}

	if err := pl.SetItem(1, testEntry("c")); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SetItem(1) error = %v, want ErrOutOfRange", err)
	}
}

func TestRemoveItemCompacts(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	for _, n := range []string{"a", "b", "c", "d"} {
		pl.AddItem(testEntry(n))
	}
	pl.SetSelection(2) // "c"

	if err := pl.RemoveItem(1); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if pl.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", pl.Count())
	}

	// Trailing entries shift down and the selection follows its entry.
	wantOrder := []string{"a", "c", "d"}
	for i, want := range wantOrder {
		e, err := pl.Item(i)
		if err != nil {
			t.Fatal(err)
		}
		if e.Name != want {
			t.Errorf("Item(%d).Name = %q, want %q", i, e.Name, want)
		}
	}
	if got := pl.Selection(); got != 1 {
		t.Fatalf("Selection() = %d, want 1", got)
	}
}

func TestRemoveLastItemResetsSelection(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(testEntry("a"))
	if err := pl.RemoveItem(0); err != nil {
		t.Fatal(err)
	}
	if got := pl.Selection(); got != -1 {
		t.Fatalf("Selection() = %d, want -1", got)
	}
}

func TestClear(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(testEntry("a"))
	pl.Clear()
	if pl.Count() != 0 || pl.Selection() != -1 {
		t.Fatalf("after Clear: count=%d selection=%d", pl.Count(), pl.Selection())
	}
}

func TestSetSelectionReset(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	pl.AddItem(testEntry("a"))
	pl.AddItem(testEntry("b"))

	pl.SetSelection(1)
	if got := pl.Selection(); got != 1 {
		t.Fatalf("Selection() = %d, want 1", got)
	}

	// Invalid index resets to 0 on a nonempty playlist.
	pl.SetSelection(5)
	if got := pl.Selection(); got != 0 {
		t.Fatalf("Selection() after invalid set = %d, want 0", got)
	}

	pl.Clear()
	pl.SetSelection(0)
	if got := pl.Selection(); got != -1 {
		t.Fatalf("Selection() on empty = %d, want -1", got)
	}
}

func TestNextPreviousIdentity(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	for _, n := range []string{"a", "b", "c"} {
		pl.AddItem(testEntry(n))
	}
	pl.SetSelection(1)

	if _, err := pl.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := pl.Previous(); err != nil {
		t.Fatal(err)
	}
	if got := pl.Selection(); got != 1 {
		t.Fatalf("next+previous Selection() = %d, want 1", got)
	}

	if _, err := pl.Previous(); err != nil {
		t.Fatal(err)
	}
	if _, err := pl.Next(); err != nil {
		t.Fatal(err)
	}
	if got := pl.Selection(); got != 1 {
		t.Fatalf("previous+next Selection() = %d, want 1", got)
	}
}

func TestNextCyclesModuloCount(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	for _, n := range []string{"a", "b", "c"} {
		pl.AddItem(testEntry(n))
	}
	pl.SetSelection(2)

	// count applications of next return to the original selection.
	for i := 0; i < pl.Count(); i++ {
		if _, err := pl.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if got := pl.Selection(); got != 2 {
		t.Fatalf("Selection() after full cycle = %d, want 2", got)
	}
}

func TestNextOnEmpty(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	if _, err := pl.Next(); !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("Next() error = %v, want ErrEmptyPlaylist", err)
	}
	if _, err := pl.Previous(); !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("Previous() error = %v, want ErrEmptyPlaylist", err)
	}
}

func TestLoadDropsInvalidEntries(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	stored := []model.StreamEntry{
		{Name: "BBC", URL: "http://x/1"},
		{Name: "", URL: "http://x/2"},        // empty name
		{Name: "Bad", URL: "file:///etc"},    // wrong scheme
		{Name: "Jazz", URL: "https://x/3"},
	}
	if err := st.Set(ctx, store.KeyPlaylist, stored); err != nil {
		t.Fatal(err)
	}

	pl := NewPlaylist(20, st)
	if err := pl.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if pl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", pl.Count())
	}
	first, _ := pl.Item(0)
	second, _ := pl.Item(1)
	if first.Name != "BBC" || second.Name != "Jazz" {
		t.Fatalf("kept entries = %q, %q", first.Name, second.Name)
	}
}

func TestLoadMissingDocument(t *testing.T) {
	pl := NewPlaylist(20, store.NewMemoryStore())
	if err := pl.Load(context.Background()); err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if pl.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", pl.Count())
	}
}

func TestReplaceRespectsCapacity(t *testing.T) {
	pl := NewPlaylist(2, store.NewMemoryStore())
	pl.Replace([]model.StreamEntry{
		testEntry("a"), testEntry("b"), testEntry("c"),
	})
	if pl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", pl.Count())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	pl := NewPlaylist(20, st)
	pl.AddItem(testEntry("a"))
	pl.AddItem(testEntry("b"))
	if err := pl.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := NewPlaylist(20, st)
	if err := loaded.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", loaded.Count())
	}
}
