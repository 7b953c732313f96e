// Copyright (c) The Dune Authors
// SPDX-License-Identifier: MPL-2.0

package dtype

import "testing"

func TestRecalcFlagString(t *testing.T) {
	cases := []struct {
		name string
		flag RecalcFlag
		want string
	}{
		{"none", 0, "(none)"},
		{"single", RecalcTransform, "Transform"},
		{"combined", RecalcTransform | RecalcGeometry, "Transform|Geometry"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.flag.String(); got != c.want {
				t.Errorf("String() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestRecalcFlagHas(t *testing.T) {
	f := RecalcTransform | RecalcGeometry
	if !f.Has(RecalcTransform) {
		t.Errorf("expected Has(RecalcTransform) to be true")
	}
	if f.Has(RecalcAnimation) {
		t.Errorf("expected Has(RecalcAnimation) to be false")
	}
	if !f.Has(RecalcTransform | RecalcGeometry) {
		t.Errorf("expected Has of the full combined flag to be true")
	}
}

func TestMergeLinkedState(t *testing.T) {
	cases := []struct {
		a, b LinkedState
		want LinkedState
	}{
		{LinkedIndirectly, LinkedDirectly, LinkedDirectly},
		{LinkedDirectly, LinkedIndirectly, LinkedDirectly},
		{LinkedViaSet, LinkedViaSet, LinkedViaSet},
		{LinkedIndirectly, LinkedViaSet, LinkedViaSet},
	}
	for _, c := range cases {
		if got := MergeLinkedState(c.a, c.b); got != c.want {
			t.Errorf("MergeLinkedState(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestComponentTypeBit(t *testing.T) {
	if got := ComponentUnknown.Bit(); got != 0 {
		t.Errorf("ComponentUnknown.Bit() = %d, want 0", got)
	}
	first := ComponentParameters.Bit()
	second := ComponentAnimation.Bit()
	if first == 0 || second == 0 {
		t.Fatalf("expected non-zero bits, got %d and %d", first, second)
	}
	if first == second {
		t.Errorf("expected distinct component types to have distinct bits")
	}
	if first&second != 0 {
		t.Errorf("expected distinct component type bits not to overlap")
	}
}

func TestComponentVisibilityIsInternal(t *testing.T) {
	if !ComponentVisibility.IsInternal() {
		t.Errorf("expected ComponentVisibility.IsInternal() to be true")
	}
	if ComponentTransform.IsInternal() {
		t.Errorf("expected ComponentTransform.IsInternal() to be false")
	}
}
