package state

import "testing"

func TestCellAsScalar(t *testing.T) {
	scalar := NewScalarCell("hi")
	if got := scalar.AsScalar(); got != "hi" {
		t.Errorf("scalar.AsScalar() = %q, want %q", got, "hi")
	}

	indexed := &Cell{Kind: KindIndexed, Indexed: map[int64]string{0: "first", 1: "second"}}
	if got := indexed.AsScalar(); got != "first" {
		t.Errorf("indexed.AsScalar() = %q, want %q", got, "first")
	}

	assoc := &Cell{Kind: KindAssoc, Assoc: map[string]string{"0": "zeroth"}}
	if got := assoc.AsScalar(); got != "zeroth" {
		t.Errorf("assoc.AsScalar() = %q, want %q", got, "zeroth")
	}
}

func TestCellClone(t *testing.T) {
	c := &Cell{Kind: KindIndexed, Attrs: AttrExported, Indexed: map[int64]string{0: "a"}}
	clone := c.Clone()
	clone.Indexed[0] = "b"
	if c.Indexed[0] != "a" {
		t.Error("Clone should deep-copy the Indexed map, not share it")
	}
	if clone.Attrs != c.Attrs {
		t.Error("Clone should preserve Attrs")
	}
}

func TestAttrHas(t *testing.T) {
	a := AttrExported | AttrReadOnly
	if !a.Has(AttrExported) {
		t.Error("expected AttrExported to be set")
	}
	if a.Has(AttrInteger) {
		t.Error("did not expect AttrInteger to be set")
	}
	if !a.Has(AttrExported | AttrReadOnly) {
		t.Error("expected both AttrExported and AttrReadOnly to be set")
	}
}

func TestStoreSetGet(t *testing.T) {
	s := New()
	s.Set("FOO", NewScalarCell("bar"))
	cell, ok := s.Get("FOO")
	if !ok || cell.Scalar != "bar" {
		t.Fatalf("Get(FOO) = %+v, %v, want scalar \"bar\"", cell, ok)
	}
	if _, ok := s.Get("UNSET"); ok {
		t.Error("Get on an unset variable should report ok=false")
	}
}

func TestStoreScopingAndFrames(t *testing.T) {
	s := New()
	s.Set("GLOBAL", NewScalarCell("g"))

	s.PushFrame()
	s.Define("LOCAL", NewScalarCell("l"))
	if cell, ok := s.Get("LOCAL"); !ok || cell.Scalar != "l" {
		t.Fatal("expected LOCAL to be visible inside its own frame")
	}
	if cell, ok := s.Get("GLOBAL"); !ok || cell.Scalar != "g" {
		t.Fatal("expected GLOBAL to still be visible through the enclosing scope")
	}

	// Set on an existing outer variable mutates it in place rather than
	// shadowing it in the new frame.
	s.Set("GLOBAL", NewScalarCell("g2"))
	s.PopFrame()

	if _, ok := s.Get("LOCAL"); ok {
		t.Error("LOCAL should not survive PopFrame")
	}
	if cell, ok := s.Get("GLOBAL"); !ok || cell.Scalar != "g2" {
		t.Fatal("expected GLOBAL's mutation from the inner frame to be visible after PopFrame")
	}
}

func TestStoreUnset(t *testing.T) {
	s := New()
	s.Set("X", NewScalarCell("1"))
	s.Unset("X")
	if _, ok := s.Get("X"); ok {
		t.Error("expected X to be gone after Unset")
	}
}

func TestStoreIFSDefault(t *testing.T) {
	s := New()
	if got := s.IFS(); got != " \t\n" {
		t.Errorf("default IFS() = %q, want space/tab/newline", got)
	}
	s.Set("IFS", NewScalarCell(":"))
	if got := s.IFS(); got != ":" {
		t.Errorf("IFS() after override = %q, want %q", got, ":")
	}
}

func TestStoreExported(t *testing.T) {
	s := New()
	s.Set("PLAIN", NewScalarCell("x"))
	exported := &Cell{Kind: KindScalar, Scalar: "y", Attrs: AttrExported}
	s.Set("EXP", exported)

	env := s.Exported()
	if _, ok := env["PLAIN"]; ok {
		t.Error("a non-exported variable should not appear in Exported()")
	}
	if v, ok := env["EXP"]; !ok || v != "y" {
		t.Errorf("Exported()[EXP] = %q, %v, want \"y\", true", v, ok)
	}
}

func TestStoreSnapshotIsolatesVariablesButSharesCounters(t *testing.T) {
	s := New()
	s.Set("X", NewScalarCell("1"))

	snap := s.Snapshot()
	snap.Set("X", NewScalarCell("2"))
	snap.LastExit = 7

	if cell, _ := s.Get("X"); cell.Scalar != "1" {
		t.Error("mutating the snapshot's variables should not affect the parent")
	}
	if snap.Counters != s.Counters {
		t.Error("Snapshot should share Counters with the parent, not clone them")
	}

	s.Restore(snap)
	if s.LastExit != 7 {
		t.Errorf("Restore should copy LastExit back from the subshell, got %d", s.LastExit)
	}
	if cell, _ := s.Get("X"); cell.Scalar != "1" {
		t.Error("Restore should not copy variables back from the subshell snapshot")
	}
}
