package core

import "testing"

func TestResolverKnownKeys(t *testing.T) {
	r := NewResolver(
		[]Category{{Key: "mensalidade", Label: "Mensalidade", Color: "#3B5BDB", System: true}},
		[]Party{{Key: "father", Label: "Pai", System: true}},
	)

	c := r.Category("mensalidade")
	if c.Label != "Mensalidade" || c.Color != "#3B5BDB" {
		t.Fatalf("unexpected category info: %+v", c)
	}
	p := r.Party("father")
	if p.Label != "Pai" {
		t.Fatalf("unexpected party info: %+v", p)
	}
}

func TestResolverDanglingKeyFallsBack(t *testing.T) {
	r := NewResolver(nil, nil)

	c := r.Category("ballet")
	if c.Key != "ballet" || c.Label != "ballet" || c.Color != fallbackColor {
		t.Fatalf("fallback broken: %+v", c)
	}
	p := r.Party("grandma")
	if p.Key != "grandma" || p.Label != "grandma" {
		t.Fatalf("fallback broken: %+v", p)
	}
}
