// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/gpiocfg"
	"github.com/warthog618/gpiocfg/uapi"
)

func TestToLineConfigDefault(t *testing.T) {
	// nil config
	var cfg *gpiocfg.Config
	lc, err := cfg.ToLineConfig([]int{1, 2, 3})
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagInput, lc.Flags)
	assert.Equal(t, uint32(0), lc.NumAttrs)

	// untouched config
	cfg = gpiocfg.NewConfig()
	lc, err = cfg.ToLineConfig([]int{1, 2, 3})
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagInput, lc.Flags)
	assert.Equal(t, uint32(0), lc.NumAttrs)
}

func TestToLineConfigFlags(t *testing.T) {
	patterns := []struct {
		name  string
		mut   func(*gpiocfg.Config)
		flags uapi.LineFlag
	}{
		{
			"input",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
			},
			uapi.LineFlagInput,
		},
		{
			"output",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionOutput)
			},
			uapi.LineFlagOutput,
		},
		{
			"as-is",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionAsIs)
				c.SetBias(gpiocfg.LineBiasAsIs)
			},
			0,
		},
		{
			"open-drain",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionOutput)
				c.SetDrive(gpiocfg.LineDriveOpenDrain)
			},
			uapi.LineFlagOutput | uapi.LineFlagOpenDrain,
		},
		{
			"open-source",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionOutput)
				c.SetDrive(gpiocfg.LineDriveOpenSource)
			},
			uapi.LineFlagOutput | uapi.LineFlagOpenSource,
		},
		{
			"push-pull",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionOutput)
				c.SetDrive(gpiocfg.LineDrivePushPull)
			},
			uapi.LineFlagOutput,
		},
		{
			"active-low pull-up input",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
				c.SetBias(gpiocfg.LineBiasPullUp)
				c.SetActiveLow()
			},
			uapi.LineFlagInput | uapi.LineFlagBiasPullUp | uapi.LineFlagActiveLow,
		},
		{
			"active-high",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
				c.SetActiveLow()
				c.SetActiveHigh()
			},
			uapi.LineFlagInput,
		},
		{
			"bias disabled",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
				c.SetBias(gpiocfg.LineBiasDisabled)
			},
			uapi.LineFlagInput | uapi.LineFlagBiasDisabled,
		},
		{
			"pull-down",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
				c.SetBias(gpiocfg.LineBiasPullDown)
			},
			uapi.LineFlagInput | uapi.LineFlagBiasPullDown,
		},
		{
			"edge rising",
			func(c *gpiocfg.Config) {
				c.SetEdgeDetection(gpiocfg.LineEdgeRising)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeRising,
		},
		{
			"edge falling",
			func(c *gpiocfg.Config) {
				c.SetEdgeDetection(gpiocfg.LineEdgeFalling)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeFalling,
		},
		{
			"edge both",
			func(c *gpiocfg.Config) {
				c.SetEdgeDetection(gpiocfg.LineEdgeBoth)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling,
		},
		{
			"edge none",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionInput)
				c.SetEdgeDetection(gpiocfg.LineEdgeNone)
			},
			uapi.LineFlagInput,
		},
		{
			"edge overrides output",
			func(c *gpiocfg.Config) {
				c.SetDirection(gpiocfg.LineDirectionOutput)
				c.SetEdgeDetection(gpiocfg.LineEdgeRising)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeRising,
		},
		{
			"realtime clock",
			func(c *gpiocfg.Config) {
				c.SetEdgeDetection(gpiocfg.LineEdgeBoth)
				c.SetEventClock(gpiocfg.LineEventClockRealtime)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling |
				uapi.LineFlagEventClockRealtime,
		},
		{
			"monotonic clock",
			func(c *gpiocfg.Config) {
				c.SetEdgeDetection(gpiocfg.LineEdgeBoth)
				c.SetEventClock(gpiocfg.LineEventClockMonotonic)
			},
			uapi.LineFlagInput | uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling,
		},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			cfg := gpiocfg.NewConfig()
			p.mut(cfg)
			lc, err := cfg.ToLineConfig([]int{0, 1, 2})
			require.Nil(t, err)
			assert.Equal(t, p.flags, lc.Flags)
			assert.Equal(t, uint32(0), lc.NumAttrs)
		}
		t.Run(p.name, tf)
	}
}

func TestToLineConfigInvalid(t *testing.T) {
	patterns := []struct {
		name   string
		mut    func(*gpiocfg.Config)
		subMut func(*gpiocfg.Config)
	}{
		{
			"direction",
			func(c *gpiocfg.Config) { c.SetDirection(gpiocfg.LineDirection(42)) },
			func(c *gpiocfg.Config) { c.SetDirectionOffset(gpiocfg.LineDirection(42), 0) },
		},
		{
			"edge",
			func(c *gpiocfg.Config) { c.SetEdgeDetection(gpiocfg.LineEdge(42)) },
			func(c *gpiocfg.Config) { c.SetEdgeDetectionOffset(gpiocfg.LineEdge(42), 0) },
		},
		{
			"drive",
			func(c *gpiocfg.Config) { c.SetDrive(gpiocfg.LineDrive(42)) },
			func(c *gpiocfg.Config) { c.SetDriveOffset(gpiocfg.LineDrive(42), 0) },
		},
		{
			"bias",
			func(c *gpiocfg.Config) { c.SetBias(gpiocfg.LineBias(42)) },
			func(c *gpiocfg.Config) { c.SetBiasOffset(gpiocfg.LineBias(42), 0) },
		},
		{
			"event clock",
			func(c *gpiocfg.Config) { c.SetEventClock(gpiocfg.LineEventClock(42)) },
			func(c *gpiocfg.Config) { c.SetEventClockOffset(gpiocfg.LineEventClock(42), 0) },
		},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			cfg := gpiocfg.NewConfig()
			p.mut(cfg)
			lc, err := cfg.ToLineConfig([]int{0})
			assert.Equal(t, gpiocfg.ErrInvalidConfig, err)
			assert.Equal(t, uapi.LineConfig{}, lc)

			// subset compiles are checked too
			cfg = gpiocfg.NewConfig()
			p.subMut(cfg)
			lc, err = cfg.ToLineConfig([]int{0})
			assert.Equal(t, gpiocfg.ErrInvalidConfig, err)
			assert.Equal(t, uapi.LineConfig{}, lc)
		}
		t.Run(p.name, tf)
	}
}

func TestSubsetCanonicalMerge(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	// {3,5,3} and {5,3} share the canonical form {3,5}
	cfg.SetEdgeDetectionSubset(gpiocfg.LineEdgeBoth, []int{3, 5, 3})
	cfg.SetBiasSubset(gpiocfg.LineBiasPullUp, []int{5, 3})
	lc, err := cfg.ToLineConfig([]int{3, 5})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.NewLineBits(0, 1), lc.Attrs[0].Mask)
	flags := uapi.LineFlagInput | uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling |
		uapi.LineFlagBiasPullUp
	assert.Equal(t, flags.Encode(), lc.Attrs[0].Attr)
}

func TestSubsetIdempotentSetter(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetBiasOffset(gpiocfg.LineBiasPullDown, 2)
	lc1, err := cfg.ToLineConfig([]int{2})
	require.Nil(t, err)
	cfg.SetBiasOffset(gpiocfg.LineBiasPullDown, 2)
	lc2, err := cfg.ToLineConfig([]int{2})
	require.Nil(t, err)
	assert.Equal(t, lc1, lc2)
	assert.Equal(t, uint32(1), lc2.NumAttrs)
}

func TestSubsetDistinct(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	// non-equal but overlapping sets are distinct
	cfg.SetBiasSubset(gpiocfg.LineBiasPullUp, []int{1, 2})
	cfg.SetBiasSubset(gpiocfg.LineBiasPullUp, []int{1, 2, 3})
	lc, err := cfg.ToLineConfig([]int{1, 2, 3})
	require.Nil(t, err)
	assert.Equal(t, uint32(2), lc.NumAttrs)
}

func TestSubsetOverflow(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	for i := 0; i < uapi.LineNumAttrsMax; i++ {
		cfg.SetBiasOffset(gpiocfg.LineBiasPullUp, i)
	}
	oo := make([]int, uapi.LineNumAttrsMax+1)
	for i := range oo {
		oo[i] = i
	}
	lc, err := cfg.ToLineConfig(oo)
	require.Nil(t, err)
	assert.Equal(t, uint32(uapi.LineNumAttrsMax), lc.NumAttrs)

	// the next distinct subset tips it over the limit...
	cfg.SetBiasOffset(gpiocfg.LineBiasPullUp, uapi.LineNumAttrsMax)
	_, err = cfg.ToLineConfig(oo)
	assert.Equal(t, gpiocfg.ErrConfigOverflow, err)

	// ... and the flag is sticky
	_, err = cfg.ToLineConfig(oo)
	assert.Equal(t, gpiocfg.ErrConfigOverflow, err)

	// ... so subsequent mutations are no-ops
	cfg.SetOutputValue(0, 1)
	_, err = cfg.ToLineConfig(oo)
	assert.Equal(t, gpiocfg.ErrConfigOverflow, err)
}

func TestDebouncePrimary(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetection(gpiocfg.LineEdgeBoth)
	cfg.SetDebouncePeriod(10 * time.Millisecond)
	lc, err := cfg.ToLineConfig([]int{1, 2})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.DebouncePeriod(10*time.Millisecond).Encode(), lc.Attrs[0].Attr)
	// applies to all lines in the request
	assert.Equal(t, uapi.NewLineBitMask(uapi.LinesMax), lc.Attrs[0].Mask)

	// zero period yields no attribute
	cfg = gpiocfg.NewConfig()
	cfg.SetEdgeDetection(gpiocfg.LineEdgeBoth)
	cfg.SetDebouncePeriod(0)
	lc, err = cfg.ToLineConfig([]int{1, 2})
	require.Nil(t, err)
	assert.Equal(t, uint32(0), lc.NumAttrs)
}

func TestDebounceSubset(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetDebouncePeriodOffset(20*time.Millisecond, 3)
	lc, err := cfg.ToLineConfig([]int{1, 3})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.DebouncePeriod(20*time.Millisecond).Encode(), lc.Attrs[0].Attr)
	assert.Equal(t, uapi.NewLineBits(1), lc.Attrs[0].Mask)

	// the request offset list is independent of configuration order
	lc, err = cfg.ToLineConfig([]int{3, 1})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.NewLineBits(0), lc.Attrs[0].Mask)

	// zero period yields no debounce attribute
	cfg = gpiocfg.NewConfig()
	cfg.SetDebouncePeriodOffset(0, 3)
	lc, err = cfg.ToLineConfig([]int{1, 3})
	require.Nil(t, err)
	for i := 0; i < int(lc.NumAttrs); i++ {
		assert.NotEqual(t, uapi.LineAttributeIDDebounce, lc.Attrs[i].Attr.ID)
	}
}

func TestDebounceSubsetPrecedence(t *testing.T) {
	// debounce takes precedence over flags for a subset
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetectionOffset(gpiocfg.LineEdgeRising, 2)
	cfg.SetDebouncePeriodOffset(5*time.Millisecond, 2)
	lc, err := cfg.ToLineConfig([]int{2})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.DebouncePeriod(5*time.Millisecond).Encode(), lc.Attrs[0].Attr)
}

func TestOutputValues(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionOutput)
	cfg.SetOutputValues([]int{1, 4}, []int{1, 1})
	// overwrite replaces the value, not the position
	cfg.SetOutputValue(4, 0)
	lc, err := cfg.ToLineConfig([]int{0, 1, 4})
	require.Nil(t, err)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.NewLineBits(1, 2), lc.Attrs[0].Mask)
	var ov uapi.OutputValues
	require.Equal(t, uapi.LineAttributeIDOutputValues, lc.Attrs[0].Attr.ID)
	ov.Decode(lc.Attrs[0].Attr)
	assert.Equal(t, uapi.NewLineBits(1), uapi.LineBitmap(ov))
}

func TestOutputValueNotInRequest(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionOutput)
	cfg.SetOutputValue(99, 1)
	lc, err := cfg.ToLineConfig([]int{0, 1, 2})
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
	assert.Equal(t, uapi.LineConfig{}, lc)
}

func TestOutputValuesExceedRequest(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionOutput)
	cfg.SetOutputValues([]int{0, 1, 2}, []int{1, 1, 1})
	_, err := cfg.ToLineConfig([]int{0})
	assert.Equal(t, gpiocfg.ErrConfigOverflow, err)

	// overflow is sticky
	_, err = cfg.ToLineConfig([]int{0, 1, 2})
	assert.Equal(t, gpiocfg.ErrConfigOverflow, err)
}

func TestSubsetNotInRequest(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetectionSubset(gpiocfg.LineEdgeBoth, []int{99})
	lc, err := cfg.ToLineConfig([]int{0, 1, 2})
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
	assert.Equal(t, uapi.LineConfig{}, lc)
}

func TestToLineConfigScenario(t *testing.T) {
	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionInput)
	cfg.SetBias(gpiocfg.LineBiasPullUp)
	cfg.SetEdgeDetectionSubset(gpiocfg.LineEdgeBoth, []int{3, 5})
	lc, err := cfg.ToLineConfig([]int{1, 3, 5, 7})
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagInput|uapi.LineFlagBiasPullUp, lc.Flags)
	require.Equal(t, uint32(1), lc.NumAttrs)
	assert.Equal(t, uapi.NewLineBits(1, 2), lc.Attrs[0].Mask)
	flags := uapi.LineFlagInput | uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling
	assert.Equal(t, flags.Encode(), lc.Attrs[0].Attr)
}

func TestToLineConfigAttrOrder(t *testing.T) {
	// output values, then primary debounce, then subsets in creation order
	cfg := gpiocfg.NewConfig()
	cfg.SetDebouncePeriod(time.Millisecond)
	cfg.SetBiasSubset(gpiocfg.LineBiasPullUp, []int{2})
	cfg.SetBiasSubset(gpiocfg.LineBiasPullDown, []int{0, 1})
	cfg.SetOutputValue(0, 1)
	lc, err := cfg.ToLineConfig([]int{0, 1, 2})
	require.Nil(t, err)
	require.Equal(t, uint32(4), lc.NumAttrs)
	assert.Equal(t, uapi.LineAttributeIDOutputValues, lc.Attrs[0].Attr.ID)
	assert.Equal(t, uapi.LineAttributeIDDebounce, lc.Attrs[1].Attr.ID)
	assert.Equal(t, uapi.LineAttributeIDFlags, lc.Attrs[2].Attr.ID)
	assert.Equal(t, uapi.NewLineBits(2), lc.Attrs[2].Mask)
	assert.Equal(t, uapi.LineAttributeIDFlags, lc.Attrs[3].Attr.ID)
	assert.Equal(t, uapi.NewLineBits(0, 1), lc.Attrs[3].Mask)
}

func TestToLineConfigRereadable(t *testing.T) {
	// the encode only reads the config and may be repeated with different
	// offset lists
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetectionSubset(gpiocfg.LineEdgeBoth, []int{3, 5})
	lc, err := cfg.ToLineConfig([]int{3, 5})
	require.Nil(t, err)
	assert.Equal(t, uapi.NewLineBits(0, 1), lc.Attrs[0].Mask)
	lc, err = cfg.ToLineConfig([]int{1, 3, 5, 7})
	require.Nil(t, err)
	assert.Equal(t, uapi.NewLineBits(1, 2), lc.Attrs[0].Mask)
}
