// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg

import (
	"sort"
	"time"

	"github.com/warthog618/gpiocfg/uapi"
)

// LineDirection indicates the direction of a line.
type LineDirection int

const (
	// LineDirectionUnset indicates the direction has not been set and the
	// kernel default applies.
	LineDirectionUnset LineDirection = iota

	// LineDirectionAsIs indicates the line direction is left as is.
	LineDirectionAsIs

	// LineDirectionInput indicates the line is an input.
	LineDirectionInput

	// LineDirectionOutput indicates the line is an output.
	LineDirectionOutput
)

// LineEdge indicates the edges detected by the line.
type LineEdge int

const (
	// LineEdgeUnset indicates edge detection has not been set and the
	// kernel default applies.
	LineEdgeUnset LineEdge = iota

	// LineEdgeNone indicates edge detection is disabled.
	LineEdgeNone

	// LineEdgeRising indicates edge detection on the rising edge.
	LineEdgeRising

	// LineEdgeFalling indicates edge detection on the falling edge.
	LineEdgeFalling

	// LineEdgeBoth indicates edge detection on both rising and falling
	// edges.
	LineEdgeBoth
)

// LineDrive indicates the drive of an output line.
type LineDrive int

const (
	// LineDriveUnset indicates the drive has not been set and the kernel
	// default applies.
	LineDriveUnset LineDrive = iota

	// LineDrivePushPull indicates the line is driven both high and low.
	LineDrivePushPull

	// LineDriveOpenDrain indicates the line is an open drain output.
	LineDriveOpenDrain

	// LineDriveOpenSource indicates the line is an open source output.
	LineDriveOpenSource
)

// LineBias indicates the bias applied to a line.
type LineBias int

const (
	// LineBiasUnset indicates the bias has not been set and the kernel
	// default applies.
	LineBiasUnset LineBias = iota

	// LineBiasAsIs indicates the line bias is left as is.
	LineBiasAsIs

	// LineBiasDisabled indicates the line bias is disabled.
	LineBiasDisabled

	// LineBiasPullUp indicates the line has pull-up enabled.
	LineBiasPullUp

	// LineBiasPullDown indicates the line has pull-down enabled.
	LineBiasPullDown
)

// LineEventClock indicates the source clock used to timestamp edge events.
type LineEventClock int

const (
	// LineEventClockUnset indicates the event clock has not been set and
	// the kernel default, CLOCK_MONOTONIC, applies.
	LineEventClockUnset LineEventClock = iota

	// LineEventClockMonotonic indicates the source clock is
	// CLOCK_MONOTONIC.
	LineEventClockMonotonic

	// LineEventClockRealtime indicates the source clock is CLOCK_REALTIME.
	LineEventClockRealtime
)

// bundle is a complete set of settings for one or more lines.
//
// Zero valued fields leave the corresponding kernel default in place and
// set no flag bits.
type bundle struct {
	direction      LineDirection
	edge           LineEdge
	drive          LineDrive
	bias           LineBias
	activeLow      bool
	eventClock     LineEventClock
	debouncePeriod time.Duration
}

// subsetConfig contains override settings for a subset of the lines in a
// request.
type subsetConfig struct {
	cfg bundle

	// offsets are sorted ascending with duplicates removed.
	offsets    [uapi.LinesMax]uint32
	numOffsets int
}

func (sc *subsetConfig) matches(offsets []uint32) bool {
	if len(offsets) != sc.numOffsets {
		return false
	}
	for i, o := range offsets {
		if sc.offsets[i] != o {
			return false
		}
	}
	return true
}

// mask returns a bitmap with a bit set for the position of each of the
// subset's offsets within offsets.
func (sc *subsetConfig) mask(offsets []int) (mask uapi.LineBitmap, err error) {
	for i := 0; i < sc.numOffsets; i++ {
		idx := findBitmapIndex(sc.offsets[i], offsets)
		if idx < 0 {
			return 0, ErrInvalidOffset
		}
		mask = mask.Set(idx, 1)
	}
	return mask, nil
}

type outputValue struct {
	offset uint32
	value  int
}

// Config contains the requested configuration for a set of lines.
//
// The configuration is described in terms of the lines it is to be applied
// to, identified by offset, independent of any particular chip or request.
// Settings may be applied to all lines, to a single line, or to an
// arbitrary subset of lines. The same Config may be used both to request
// lines and to subsequently reconfigure them.
//
// Setters never fail. A configuration that cannot be represented in the
// kernel uAPI, due to either too many distinct line subsets or too many
// output values, is flagged internally and reported by ToLineConfig. Once
// flagged, further mutations become no-ops.
//
// A Config is not safe for concurrent mutation. ToLineConfig does not
// modify the Config on success, so successful encodes may proceed
// concurrently on an otherwise unmutated Config, but a capacity failure
// marks the config too complex, so concurrent encodes are only safe while
// encodes succeed.
//
// The zero value, and a nil *Config, are both valid empty configurations.
type Config struct {
	// once set all mutators become no-ops and ToLineConfig fails.
	tooComplex bool

	// settings applied to all lines not overridden by a subset.
	primary bundle

	// override settings for particular subsets of lines, in order of
	// creation.
	subsets    [uapi.LineNumAttrsMax]subsetConfig
	numSubsets int

	// requested output values, at most one entry per offset.
	outputValues    [uapi.LinesMax]outputValue
	numOutputValues int
}

// NewConfig creates an empty configuration.
//
// An empty configuration requests lines as inputs with all other settings
// left at kernel defaults.
func NewConfig() *Config {
	return &Config{}
}

// sanitizeOffsets returns the canonical form of the given offsets - sorted
// ascending with duplicates removed.
//
// Offsets beyond the maximum lines per request are ignored.
func sanitizeOffsets(offsets []int) []uint32 {
	if len(offsets) > uapi.LinesMax {
		offsets = offsets[:uapi.LinesMax]
	}
	oo := make([]uint32, len(offsets))
	for i, o := range offsets {
		oo[i] = uint32(o)
	}
	if len(oo) < 2 {
		return oo
	}
	sort.Slice(oo, func(i, j int) bool { return oo[i] < oo[j] })
	d := 1
	for s := 1; s < len(oo); s++ {
		if oo[s] != oo[s-1] {
			oo[d] = oo[s]
			d++
		}
	}
	return oo[:d]
}

// subset returns the subsetConfig matching the canonical form of the given
// offsets, allocating one if none exists.
//
// Returns nil if the configuration is already too complex, or becomes too
// complex due to the subset table being full.
func (c *Config) subset(offsets []int) *subsetConfig {
	if c.tooComplex {
		return nil
	}
	oo := sanitizeOffsets(offsets)
	for i := 0; i < c.numSubsets; i++ {
		if c.subsets[i].matches(oo) {
			return &c.subsets[i]
		}
	}
	if c.numSubsets == len(c.subsets) {
		c.tooComplex = true
		return nil
	}
	sc := &c.subsets[c.numSubsets]
	c.numSubsets++
	copy(sc.offsets[:], oo)
	sc.numOffsets = len(oo)
	return sc
}

// SetDirection sets the direction for all lines.
func (c *Config) SetDirection(direction LineDirection) {
	c.primary.direction = direction
}

// SetDirectionOffset sets the direction for the line at offset.
func (c *Config) SetDirectionOffset(direction LineDirection, offset int) {
	c.SetDirectionSubset(direction, []int{offset})
}

// SetDirectionSubset sets the direction for a subset of lines.
func (c *Config) SetDirectionSubset(direction LineDirection, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.direction = direction
	}
}

// SetEdgeDetection sets the edge detection for all lines.
func (c *Config) SetEdgeDetection(edge LineEdge) {
	c.primary.edge = edge
}

// SetEdgeDetectionOffset sets the edge detection for the line at offset.
func (c *Config) SetEdgeDetectionOffset(edge LineEdge, offset int) {
	c.SetEdgeDetectionSubset(edge, []int{offset})
}

// SetEdgeDetectionSubset sets the edge detection for a subset of lines.
func (c *Config) SetEdgeDetectionSubset(edge LineEdge, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.edge = edge
	}
}

// SetDrive sets the drive for all lines.
func (c *Config) SetDrive(drive LineDrive) {
	c.primary.drive = drive
}

// SetDriveOffset sets the drive for the line at offset.
func (c *Config) SetDriveOffset(drive LineDrive, offset int) {
	c.SetDriveSubset(drive, []int{offset})
}

// SetDriveSubset sets the drive for a subset of lines.
func (c *Config) SetDriveSubset(drive LineDrive, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.drive = drive
	}
}

// SetBias sets the bias for all lines.
func (c *Config) SetBias(bias LineBias) {
	c.primary.bias = bias
}

// SetBiasOffset sets the bias for the line at offset.
func (c *Config) SetBiasOffset(bias LineBias, offset int) {
	c.SetBiasSubset(bias, []int{offset})
}

// SetBiasSubset sets the bias for a subset of lines.
func (c *Config) SetBiasSubset(bias LineBias, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.bias = bias
	}
}

// SetActiveLow makes all lines active low - the line is considered active
// when the line level is low.
func (c *Config) SetActiveLow() {
	c.primary.activeLow = true
}

// SetActiveLowOffset makes the line at offset active low.
func (c *Config) SetActiveLowOffset(offset int) {
	c.SetActiveLowSubset([]int{offset})
}

// SetActiveLowSubset makes a subset of lines active low.
func (c *Config) SetActiveLowSubset(offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.activeLow = true
	}
}

// SetActiveHigh makes all lines active high - the default.
func (c *Config) SetActiveHigh() {
	c.primary.activeLow = false
}

// SetActiveHighOffset makes the line at offset active high.
func (c *Config) SetActiveHighOffset(offset int) {
	c.SetActiveHighSubset([]int{offset})
}

// SetActiveHighSubset makes a subset of lines active high.
func (c *Config) SetActiveHighSubset(offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.activeLow = false
	}
}

// SetDebouncePeriod sets the debounce period for all lines.
//
// A zero period disables debounce. Periods are truncated to microsecond
// resolution when passed to the kernel. Negative periods are treated as
// zero.
func (c *Config) SetDebouncePeriod(period time.Duration) {
	c.primary.debouncePeriod = clampPeriod(period)
}

// SetDebouncePeriodOffset sets the debounce period for the line at offset.
func (c *Config) SetDebouncePeriodOffset(period time.Duration, offset int) {
	c.SetDebouncePeriodSubset(period, []int{offset})
}

// SetDebouncePeriodSubset sets the debounce period for a subset of lines.
//
// A subset with a non-zero debounce period maps to a debounce attribute in
// the kernel uAPI, so any other settings applied to the same subset are
// not passed to the kernel.
func (c *Config) SetDebouncePeriodSubset(period time.Duration, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.debouncePeriod = clampPeriod(period)
	}
}

func clampPeriod(period time.Duration) time.Duration {
	if period < 0 {
		return 0
	}
	return period
}

// SetEventClock sets the source clock for edge event timestamps for all
// lines.
func (c *Config) SetEventClock(clock LineEventClock) {
	c.primary.eventClock = clock
}

// SetEventClockOffset sets the source clock for edge event timestamps for
// the line at offset.
func (c *Config) SetEventClockOffset(clock LineEventClock, offset int) {
	c.SetEventClockSubset(clock, []int{offset})
}

// SetEventClockSubset sets the source clock for edge event timestamps for
// a subset of lines.
func (c *Config) SetEventClockSubset(clock LineEventClock, offsets []int) {
	if sc := c.subset(offsets); sc != nil {
		sc.cfg.eventClock = clock
	}
}

// SetOutputValue sets the output value for the line at offset.
//
// Zero is a logical low (inactive) and any other value a logical high
// (active). The value applies when the line is requested, or reconfigured,
// as an output.
func (c *Config) SetOutputValue(offset, value int) {
	c.SetOutputValues([]int{offset}, []int{value})
}

// SetOutputValues sets the output values for a set of lines.
//
// Values are matched to offsets by position. Surplus offsets or values are
// ignored. Setting a value for an offset that already has one overwrites
// the previous value.
func (c *Config) SetOutputValues(offsets, values []int) {
	if c.tooComplex {
		return
	}
	if len(values) < len(offsets) {
		offsets = offsets[:len(values)]
	}
	for i, o := range offsets {
		pos := c.findOutputValue(uint32(o))
		if pos < 0 {
			if c.numOutputValues == len(c.outputValues) {
				c.tooComplex = true
				return
			}
			pos = c.numOutputValues
			c.numOutputValues++
		}
		c.outputValues[pos] = outputValue{offset: uint32(o), value: values[i]}
	}
}

func (c *Config) findOutputValue(offset uint32) int {
	for i := 0; i < c.numOutputValues; i++ {
		if c.outputValues[i].offset == offset {
			return i
		}
	}
	return -1
}

// toLineFlags converts the bundle into kernel uAPI flags.
//
// Edge detection requires the line to be an input, so requesting edge
// detection forces the input flag on and the output flag off.
func (b bundle) toLineFlags() (uapi.LineFlag, error) {
	var flags uapi.LineFlag

	switch b.direction {
	case LineDirectionInput:
		flags |= uapi.LineFlagInput
	case LineDirectionOutput:
		flags |= uapi.LineFlagOutput
	case LineDirectionUnset, LineDirectionAsIs:
	default:
		return 0, ErrInvalidConfig
	}

	switch b.edge {
	case LineEdgeRising:
		flags |= uapi.LineFlagEdgeRising | uapi.LineFlagInput
		flags &^= uapi.LineFlagOutput
	case LineEdgeFalling:
		flags |= uapi.LineFlagEdgeFalling | uapi.LineFlagInput
		flags &^= uapi.LineFlagOutput
	case LineEdgeBoth:
		flags |= uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling | uapi.LineFlagInput
		flags &^= uapi.LineFlagOutput
	case LineEdgeUnset, LineEdgeNone:
	default:
		return 0, ErrInvalidConfig
	}

	switch b.drive {
	case LineDriveOpenDrain:
		flags |= uapi.LineFlagOpenDrain
	case LineDriveOpenSource:
		flags |= uapi.LineFlagOpenSource
	case LineDriveUnset, LineDrivePushPull:
	default:
		return 0, ErrInvalidConfig
	}

	switch b.bias {
	case LineBiasDisabled:
		flags |= uapi.LineFlagBiasDisabled
	case LineBiasPullUp:
		flags |= uapi.LineFlagBiasPullUp
	case LineBiasPullDown:
		flags |= uapi.LineFlagBiasPullDown
	case LineBiasUnset, LineBiasAsIs:
	default:
		return 0, ErrInvalidConfig
	}

	if b.activeLow {
		flags |= uapi.LineFlagActiveLow
	}

	switch b.eventClock {
	case LineEventClockRealtime:
		flags |= uapi.LineFlagEventClockRealtime
	case LineEventClockUnset, LineEventClockMonotonic:
	default:
		return 0, ErrInvalidConfig
	}

	return flags, nil
}

// findBitmapIndex returns the position of needle within offsets, or -1 if
// not present.
func findBitmapIndex(needle uint32, offsets []int) int {
	for i, o := range offsets {
		if int(needle) == o {
			return i
		}
	}
	return -1
}

// outputValueBitmaps returns the mask selecting the lines with requested
// output values, and the values themselves, as bitmaps of positions in
// offsets.
func (c *Config) outputValueBitmaps(offsets []int) (mask, values uapi.LineBitmap, err error) {
	for i := 0; i < c.numOutputValues; i++ {
		ov := c.outputValues[i]
		idx := findBitmapIndex(ov.offset, offsets)
		if idx < 0 {
			return 0, 0, ErrInvalidOffset
		}
		mask = mask.Set(idx, 1)
		v := 0
		if ov.value != 0 {
			v = 1
		}
		values = values.Set(idx, v)
	}
	return mask, values, nil
}

// ToLineConfig compiles the configuration into the kernel uAPI form for a
// request on the given offsets.
//
// The offsets are those of the pending request or reconfigure, in request
// order, and need not be related to any offsets used while building the
// configuration - though any offset with an output value or subset setting
// must be present or the compile fails with ErrInvalidOffset.
//
// A nil Config compiles to a request for inputs.
//
// Returns ErrConfigOverflow if the configuration cannot be represented
// within the fixed capacity of the kernel structure, and ErrInvalidConfig
// if a setting has an unrecognized value. On error the returned LineConfig
// is zeroed - a partially populated structure is never returned.
func (c *Config) ToLineConfig(offsets []int) (uapi.LineConfig, error) {
	var lc uapi.LineConfig
	if c == nil || *c == (Config{}) {
		lc.Flags = uapi.LineFlagInput
		return lc, nil
	}
	if c.tooComplex {
		return uapi.LineConfig{}, ErrConfigOverflow
	}
	attrIdx := 0
	if c.numOutputValues != 0 {
		if c.numOutputValues > len(offsets) {
			c.tooComplex = true
			return uapi.LineConfig{}, ErrConfigOverflow
		}
		mask, values, err := c.outputValueBitmaps(offsets)
		if err != nil {
			return uapi.LineConfig{}, err
		}
		attr := &lc.Attrs[attrIdx]
		attrIdx++
		attr.Attr = uapi.OutputValues(values).Encode()
		attr.Mask = mask
	}
	if c.primary.debouncePeriod != 0 {
		attr := &lc.Attrs[attrIdx]
		attrIdx++
		attr.Attr = uapi.DebouncePeriod(c.primary.debouncePeriod).Encode()
		attr.Mask = uapi.NewLineBitMask(uapi.LinesMax)
	}
	for i := 0; i < c.numSubsets; i++ {
		if attrIdx == uapi.LineNumAttrsMax {
			c.tooComplex = true
			return uapi.LineConfig{}, ErrConfigOverflow
		}
		sc := &c.subsets[i]
		if sc.numOffsets > len(offsets) {
			c.tooComplex = true
			return uapi.LineConfig{}, ErrConfigOverflow
		}
		attr := &lc.Attrs[attrIdx]
		attrIdx++
		if sc.cfg.debouncePeriod != 0 {
			// debounce is orthogonal to flags, and a subset can only carry
			// one attribute, so debounce takes precedence.
			attr.Attr = uapi.DebouncePeriod(sc.cfg.debouncePeriod).Encode()
		} else {
			flags, err := sc.cfg.toLineFlags()
			if err != nil {
				return uapi.LineConfig{}, err
			}
			attr.Attr = flags.Encode()
		}
		mask, err := sc.mask(offsets)
		if err != nil {
			return uapi.LineConfig{}, err
		}
		attr.Mask = mask
	}
	flags, err := c.primary.toLineFlags()
	if err != nil {
		return uapi.LineConfig{}, err
	}
	lc.Flags = flags
	lc.NumAttrs = uint32(attrIdx)
	return lc, nil
}
