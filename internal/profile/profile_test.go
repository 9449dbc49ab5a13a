// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultAndFixedAlwaysValid(t *testing.T) {
	assert.NoError(t, (&Profile{Kind: KindDefault}).Validate())
	assert.NoError(t, (&Profile{Kind: KindFixed, FixedDutyPct: 50}).Validate())
}

func TestValidate_Graph(t *testing.T) {
	assert.ErrorIs(t, (&Profile{Kind: KindGraph}).Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, (&Profile{Kind: KindGraph, Points: []GraphPoint{{TempC: 0, DutyPct: 0}}}).Validate(), ErrInvalidProfile)

	valid := &Profile{
		Kind:   KindGraph,
		Source: TempSource{DeviceUID: "dev", TempName: "value"},
		Points: []GraphPoint{{TempC: 0, DutyPct: 0}, {TempC: 100, DutyPct: 100}},
	}
	assert.NoError(t, valid.Validate())
}

func TestValidate_Mix(t *testing.T) {
	assert.ErrorIs(t, (&Profile{Kind: KindMix}).Validate(), ErrInvalidProfile)

	unknownFn := &Profile{Kind: KindMix, MemberUIDs: []string{"a"}, MixFunction: "bogus"}
	assert.ErrorIs(t, unknownFn.Validate(), ErrUnknownMixFunction)

	valid := &Profile{Kind: KindMix, MemberUIDs: []string{"a", "b"}, MixFunction: MixAvg}
	assert.NoError(t, valid.Validate())
}

func TestValidate_Overlay(t *testing.T) {
	assert.ErrorIs(t, (&Profile{Kind: KindOverlay}).Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, (&Profile{Kind: KindOverlay, MemberUID: "base"}).Validate(), ErrInvalidProfile)

	valid := &Profile{Kind: KindOverlay, MemberUID: "base", OffsetPoints: []OffsetPoint{{DutyPct: 0, OffsetDutyPct: 5}}}
	assert.NoError(t, valid.Validate())
}

func TestValidate_UnknownKind(t *testing.T) {
	assert.ErrorIs(t, (&Profile{Kind: "bogus"}).Validate(), ErrInvalidProfile)
}

func TestInterpolateGraph(t *testing.T) {
	points := []GraphPoint{{TempC: 20, DutyPct: 20}, {TempC: 40, DutyPct: 60}, {TempC: 60, DutyPct: 100}}

	assert.Equal(t, 20.0, InterpolateGraph(points, 0), "below first point clamps")
	assert.Equal(t, 100.0, InterpolateGraph(points, 100), "above last point clamps")
	assert.Equal(t, 20.0, InterpolateGraph(points, 20))
	assert.Equal(t, 60.0, InterpolateGraph(points, 40))
	assert.InDelta(t, 40, InterpolateGraph(points, 30), 0.001, "halfway between 20 and 60 duty")
}

func TestInterpolateGraph_EmptyPoints(t *testing.T) {
	assert.Equal(t, 0.0, InterpolateGraph(nil, 50))
}

func TestInterpolateOffset(t *testing.T) {
	points := []OffsetPoint{{DutyPct: 0, OffsetDutyPct: 0}, {DutyPct: 100, OffsetDutyPct: 20}}

	assert.Equal(t, 0.0, InterpolateOffset(points, -10))
	assert.Equal(t, 20.0, InterpolateOffset(points, 150))
	assert.InDelta(t, 10, InterpolateOffset(points, 50), 0.001)
}
