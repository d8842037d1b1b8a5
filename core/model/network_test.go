package model

import "testing"

func TestAddLinkDefaultCapacity(t *testing.T) {
	n := NewNetwork()
	n.AddLink(Link{ID: "A_B", FromNode: "A", ToNode: "B"})
	if got := n.LinkCapacity("A_B"); got != DefaultLinkCapacity {
		t.Fatalf("default capacity = %d, want %d", got, DefaultLinkCapacity)
	}
	n.AddLink(Link{ID: "B_C", FromNode: "B", ToNode: "C", Capacity: 4})
	if got := n.LinkCapacity("B_C"); got != 4 {
		t.Fatalf("capacity = %d, want 4", got)
	}
	if got := n.LinkCapacity("unknown"); got != DefaultLinkCapacity {
		t.Fatalf("unknown link capacity = %d, want %d", got, DefaultLinkCapacity)
	}
}

func TestNetworkValidate(t *testing.T) {
	n := NewNetwork()
	n.AddNode(Node{ID: "A"})
	n.AddLink(Link{ID: "A_B", FromNode: "A", ToNode: "B"})
	if err := n.Validate(); err == nil {
		t.Fatal("expected error for link referencing unknown node")
	}
	n.AddNode(Node{ID: "B"})
	if err := n.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Göteborg", "Goteborg"},
		{"Västerås", "Vasteras"},
		{"Åmål", "Amal"},
		{"Örebro", "Orebro"},
		{"Münster", "Munster"},
		{"Stockholm", "Stockholm"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNetworkNormalizeNames(t *testing.T) {
	n := NewNetwork()
	n.AddNode(Node{ID: "Göteborg"})
	n.AddNode(Node{ID: "Borås"})
	n.AddLink(Link{ID: "Göteborg_Borås", FromNode: "Göteborg", ToNode: "Borås"})
	n.NormalizeNames()
	if !n.HasLink("Goteborg_Boras") {
		t.Fatal("link id should be normalized")
	}
	if err := n.Validate(); err != nil {
		t.Fatalf("normalized network should validate: %v", err)
	}
}
