// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctionValidate(t *testing.T) {
	assert.ErrorIs(t, (&Function{Kind: "bogus"}).Validate(), ErrInvalidFunction)
	assert.ErrorIs(t, (&Function{Kind: FunctionStandard, ResponseDelaySec: -1}).Validate(), ErrInvalidFunction)
	assert.ErrorIs(t, (&Function{Kind: FunctionEMA, SampleWindow: -1}).Validate(), ErrInvalidFunction)
	assert.ErrorIs(t, (&Function{Kind: FunctionIdentity, DutyMinimumPct: 80, DutyMaximumPct: 20}).Validate(), ErrInvalidFunction)
	assert.NoError(t, (&Function{Kind: FunctionIdentity}).Validate())
	assert.NoError(t, (&Function{Kind: FunctionStandard, ResponseDelaySec: 2}).Validate())
}

func TestResolvedThresholds_AsymmetricExplicit(t *testing.T) {
	fn := &Function{
		StepSizeMinIncreasing: 1, StepSizeMaxIncreasing: 5,
		StepSizeMinDecreasing: 2, StepSizeMaxDecreasing: 8,
	}
	incMin, incMax, decMin, decMax := fn.ResolvedThresholds()
	assert.Equal(t, 1.0, incMin)
	assert.Equal(t, 5.0, incMax)
	assert.Equal(t, 2.0, decMin)
	assert.Equal(t, 8.0, decMax)
}

func TestResolvedThresholds_SymmetricWhenDecreasingUnset(t *testing.T) {
	fn := &Function{StepSizeMinIncreasing: 1, StepSizeMaxIncreasing: 5}
	incMin, incMax, decMin, decMax := fn.ResolvedThresholds()
	assert.Equal(t, incMin, decMin)
	assert.Equal(t, incMax, decMax)
}

func TestResolvedThresholds_MaxDefaultsToMinWhenZero(t *testing.T) {
	fn := &Function{StepSizeMinIncreasing: 4}
	incMin, incMax, _, _ := fn.ResolvedThresholds()
	assert.Equal(t, 4.0, incMin)
	assert.Equal(t, 4.0, incMax)
}

func TestResolvedThresholds_DecreasingMaxDefaultsToDecreasingMinWhenExplicitlySet(t *testing.T) {
	fn := &Function{StepSizeMinIncreasing: 1, StepSizeMaxIncreasing: 5, StepSizeMinDecreasing: 3}
	_, _, decMin, decMax := fn.ResolvedThresholds()
	assert.Equal(t, 3.0, decMin)
	assert.Equal(t, 3.0, decMax)
}
