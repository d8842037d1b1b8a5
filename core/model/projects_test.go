package model

import "testing"

func TestParseBlockingAmount(t *testing.T) {
	got, err := ParseBlockingAmount("esp")
	if err != nil {
		t.Fatalf("parse esp: %v", err)
	}
	if !got.SingleTrack || got.Fraction != 0.5 {
		t.Fatalf("esp = %+v", got)
	}
	got, err = ParseBlockingAmount("0.75")
	if err != nil {
		t.Fatalf("parse 0.75: %v", err)
	}
	if got.SingleTrack || got.Fraction != 0.75 {
		t.Fatalf("0.75 = %+v", got)
	}
	for _, s := range []string{"abc", "-0.1", "1.5"} {
		if _, err := ParseBlockingAmount(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestProjectsOrder(t *testing.T) {
	p := NewProjects()
	p.Add(&Project{ID: "P2"})
	p.Add(&Project{ID: "P1"})
	p.Add(&Project{ID: "P2"}) // replace, keeps position
	ids := p.IDs()
	if len(ids) != 2 || ids[0] != "P2" || ids[1] != "P1" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestProjectsNormalizeLinks(t *testing.T) {
	p := NewProjects()
	p.Add(&Project{ID: "P1", Tasks: []*Task{{
		ID:        "T1",
		Blockings: []TrafficBlocking{{Link: "Göteborg_Borås", Amount: BlockingAmount{Fraction: 1}}},
	}}})
	p.NormalizeLinks()
	proj, _ := p.Get("P1")
	if got := proj.Tasks[0].Blockings[0].Link; got != "Goteborg_Boras" {
		t.Fatalf("link = %q", got)
	}
}
