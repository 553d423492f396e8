package core

import "testing"

func TestRegistryMembersSorted(t *testing.T) {
	r := NewRegistry()
	r.AddMember("boy-1", "u2", "Zoe")
	r.AddMember("boy-1", "u1", "Alice")
	r.AddMember("boy-1", "u3", "Bob")

	if got := r.Members("boy-1"); !equalStrings(got, []string{"Alice", "Bob", "Zoe"}) {
		t.Fatalf("Members = %v, want sorted names", got)
	}
}

func TestRegistryRemovePrunesEmptyRoom(t *testing.T) {
	r := NewRegistry()
	r.AddMember("boy-1", "u1", "Alice")
	r.RemoveMember("boy-1", "u1")

	if len(r.rooms) != 0 {
		t.Fatalf("expected empty room to be pruned, rooms = %v", r.rooms)
	}
	if got := r.Members("boy-1"); len(got) != 0 {
		t.Fatalf("Members of pruned room = %v", got)
	}
}

func TestRegistryRemoveUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.RemoveMember("boy-1", "u1")
	r.AddMember("boy-1", "u1", "Alice")
	r.RemoveMember("boy-1", "u9")

	if got := r.Members("boy-1"); !equalStrings(got, []string{"Alice"}) {
		t.Fatalf("Members = %v", got)
	}
}

func TestRegistryRename(t *testing.T) {
	r := NewRegistry()
	r.AddMember("boy-1", "u1", "Alice")
	r.RenameMember("boy-1", "u1", "Alicia")

	if got := r.Members("boy-1"); !equalStrings(got, []string{"Alicia"}) {
		t.Fatalf("Members after rename = %v", got)
	}

	// Renaming someone not in the room must not insert them.
	r.RenameMember("boy-1", "u2", "Ghost")
	if got := r.Members("boy-1"); !equalStrings(got, []string{"Alicia"}) {
		t.Fatalf("Members after phantom rename = %v", got)
	}
}

func TestRegistryMemberByName(t *testing.T) {
	r := NewRegistry()
	r.AddMember("boy-1", "u1", "Alice")
	r.AddMember("general-1", "u2", "Bob")

	id, ok := r.MemberByName("boy-1", "Alice")
	if !ok || id != "u1" {
		t.Fatalf("MemberByName = %q, %v", id, ok)
	}
	if _, ok := r.MemberByName("boy-1", "Bob"); ok {
		t.Fatal("lookup must not cross rooms")
	}
	if _, ok := r.MemberByName("boy-1", "Nobody"); ok {
		t.Fatal("expected miss for unknown name")
	}
}
