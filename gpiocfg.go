// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

// Package gpiocfg is a library for accessing GPIO lines on Linux platforms
// using the GPIO character device.
//
// The configuration to be applied to a set of lines is described by a
// Config, which is compiled into the kernel uAPI form when the lines are
// requested or reconfigured:
//
//	cfg := gpiocfg.NewConfig()
//	cfg.SetDirection(gpiocfg.LineDirectionOutput)
//	cfg.SetOutputValue(4, 1)
//	c, _ := gpiocfg.NewChip("gpiochip0")
//	l, _ := c.RequestLines([]int{4}, cfg)
//
// Requires Linux v5.10 or later - the library uses GPIO uAPI v2
// exclusively.
package gpiocfg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/warthog618/gpiocfg/uapi"
	"golang.org/x/sys/unix"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	f *os.File

	// The system name for this chip.
	Name string

	// A more individual label for the chip.
	Label string

	// The number of GPIO lines on this chip.
	lines int

	// default options for requested lines.
	options ChipOptions

	// mu covers the attributes below it.
	mu sync.Mutex

	// watcher for line info changes.
	iw *infoWatcher

	// handlers for info changes on watched lines, keyed by offset.
	ich map[int]InfoChangeHandler

	// indicates the chip has been closed.
	closed bool
}

// LineInfo contains a summary of publicly available information about a
// line.
type LineInfo struct {
	// The line offset within the chip.
	Offset int

	// The system name for the line.
	Name string

	// A string identifying the requester of the line, if requested.
	Consumer string

	// The line is in use.
	Used bool

	// A flag indicating if the line is active low.
	ActiveLow bool

	// The line direction.
	Direction LineDirection

	// The line drive.
	Drive LineDrive

	// The line bias.
	Bias LineBias

	// The line edge detection.
	EdgeDetection LineEdge

	// The source clock for edge event timestamps on the line.
	EventClock LineEventClock

	// The line debounce period. Zero if the line is not debounced.
	DebouncePeriod time.Duration
}

// Chips returns the names of the available GPIO devices.
func Chips() []string {
	cc := []string(nil)
	for _, name := range chipNames() {
		if IsChip(name) == nil {
			cc = append(cc, name)
		}
	}
	return cc
}

// FindLine finds the chip and offset of the named line.
//
// Returns the name of the chip containing the line, and the offset of the
// line on that chip.
func FindLine(name string) (string, int, error) {
	for _, cname := range Chips() {
		c, err := NewChip(cname)
		if err != nil {
			continue
		}
		for o := 0; o < c.Lines(); o++ {
			inf, err := c.LineInfo(o)
			if err == nil && inf.Name == name {
				c.Close()
				return cname, o, nil
			}
		}
		c.Close()
	}
	return "", 0, ErrLineNotFound
}

// NewChip opens a GPIO character device.
func NewChip(name string, options ...ChipOption) (*Chip, error) {
	path := nameToPath(name)
	err := IsChip(path)
	if err != nil {
		return nil, err
	}
	co := ChipOptions{
		consumer: fmt.Sprintf("gpiocfg-%d", os.Getpid()),
	}
	for _, option := range options {
		option.applyChipOption(&co)
	}
	f, err := os.OpenFile(path, unix.O_CLOEXEC, unix.O_RDONLY)
	if err != nil {
		// only happens if device removed/locked since IsChip call.
		return nil, translateErr(err)
	}
	ci, err := uapi.GetChipInfo(f.Fd())
	if err != nil {
		f.Close()
		return nil, err
	}
	c := Chip{
		f:       f,
		Name:    uapi.BytesToString(ci.Name[:]),
		Label:   uapi.BytesToString(ci.Label[:]),
		lines:   int(ci.Lines),
		options: co,
	}
	// probe for uAPI v2 - the only ABI supported here.
	if _, err = uapi.GetLineInfo(f.Fd(), 0); err != nil {
		f.Close()
		return nil, ErrUapiIncompatibility
	}
	if len(c.Label) == 0 {
		c.Label = "unknown"
	}
	return &c, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be
// closed independently.
func (c *Chip) Close() error {
	c.mu.Lock()
	closed := c.closed
	c.closed = true
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if c.iw != nil {
		c.iw.close()
	}
	return c.f.Close()
}

// Lines returns the number of lines that exist on the GPIO chip.
func (c *Chip) Lines() int {
	return c.lines
}

// LineInfo returns the publicly available information on the line.
//
// This is always available and does not require requesting the line.
func (c *Chip) LineInfo(offset int) (info LineInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		err = ErrClosed
		return
	}
	if offset < 0 || offset >= c.lines {
		err = ErrInvalidOffset
		return
	}
	li, err := uapi.GetLineInfo(c.f.Fd(), offset)
	if err == nil {
		info = newLineInfo(li)
	}
	return
}

func newLineInfo(li uapi.LineInfo) LineInfo {
	info := LineInfo{
		Offset:    int(li.Offset),
		Name:      uapi.BytesToString(li.Name[:]),
		Consumer:  uapi.BytesToString(li.Consumer[:]),
		Used:      li.Flags.IsUsed(),
		ActiveLow: li.Flags.IsActiveLow(),
	}

	if li.Flags.IsOutput() {
		info.Direction = LineDirectionOutput
		if li.Flags.IsOpenDrain() {
			info.Drive = LineDriveOpenDrain
		} else if li.Flags.IsOpenSource() {
			info.Drive = LineDriveOpenSource
		} else {
			info.Drive = LineDrivePushPull
		}
	} else {
		info.Direction = LineDirectionInput
	}

	if li.Flags.IsBothEdges() {
		info.EdgeDetection = LineEdgeBoth
	} else if li.Flags.IsRisingEdge() {
		info.EdgeDetection = LineEdgeRising
	} else if li.Flags.IsFallingEdge() {
		info.EdgeDetection = LineEdgeFalling
	} else {
		info.EdgeDetection = LineEdgeNone
	}

	if li.Flags.IsBiasPullUp() {
		info.Bias = LineBiasPullUp
	} else if li.Flags.IsBiasPullDown() {
		info.Bias = LineBiasPullDown
	} else if li.Flags.IsBiasDisabled() {
		info.Bias = LineBiasDisabled
	}

	if li.Flags.HasRealtimeEventClock() {
		info.EventClock = LineEventClockRealtime
	} else {
		info.EventClock = LineEventClockMonotonic
	}

	for i := 0; i < int(li.NumAttrs); i++ {
		if li.Attrs[i].ID == uapi.LineAttributeIDDebounce {
			var dp uapi.DebouncePeriod
			dp.Decode(li.Attrs[i])
			info.DebouncePeriod = time.Duration(dp)
		}
	}
	return info
}

// creates the iw and ich.
//
// Assumes c is locked.
func (c *Chip) createInfoWatcher() error {
	iw, err := newInfoWatcher(int(c.f.Fd()),
		func(lic LineInfoChangeEvent) {
			c.mu.Lock()
			ich := c.ich[lic.Info.Offset]
			c.mu.Unlock() // handler called outside lock
			if ich != nil {
				ich(lic)
			}
		})
	if err != nil {
		return err
	}
	c.iw = iw
	c.ich = map[int]InfoChangeHandler{}
	return nil
}

// WatchLineInfo enables watching changes to line info for the specified
// line.
//
// The changes are reported via the InfoChangeHandler.
// Repeated calls replace the InfoChangeHandler.
func (c *Chip) WatchLineInfo(offset int, lich InfoChangeHandler) (info LineInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		err = ErrClosed
		return
	}
	if c.iw == nil {
		err = c.createInfoWatcher()
		if err != nil {
			return
		}
	}
	li := uapi.LineInfo{Offset: uint32(offset)}
	err = uapi.WatchLineInfo(c.f.Fd(), &li)
	if err != nil {
		return
	}
	c.ich[offset] = lich
	info = newLineInfo(li)
	return
}

// UnwatchLineInfo disables watching changes to line info for the specified
// line.
func (c *Chip) UnwatchLineInfo(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	delete(c.ich, offset)
	return uapi.UnwatchLineInfo(c.f.Fd(), uint32(offset))
}

// LineInfoChangeEvent represents a change in the info of a line.
type LineInfoChangeEvent struct {
	// Info is the updated line info.
	Info LineInfo

	// Timestamp indicates the time the change was detected.
	//
	// The timestamp is intended for accurately measuring intervals between
	// events. It is based on CLOCK_MONOTONIC.
	Timestamp time.Duration

	// The type of info change event this structure represents.
	Type LineInfoChangeType
}

// LineInfoChangeType indicates the type of change to the line info.
type LineInfoChangeType int

const (
	_ LineInfoChangeType = iota

	// LineRequested indicates the line has been requested.
	LineRequested

	// LineReleased indicates the line has been released.
	LineReleased

	// LineReconfigured indicates the line configuration has changed.
	LineReconfigured
)

// InfoChangeHandler is a receiver for line info change events.
type InfoChangeHandler func(LineInfoChangeEvent)

// IsChip checks if the named device is an accessible GPIO character
// device.
//
// Returns an error if not.
func IsChip(name string) error {
	path := nameToPath(name)
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return ErrNotCharacterDevice
	}
	sysfspath := fmt.Sprintf("/sys/bus/gpio/devices/%s/dev", fi.Name())
	if err = unix.Access(sysfspath, unix.R_OK); err != nil {
		return ErrNotCharacterDevice
	}
	sysfsf, err := os.Open(sysfspath)
	if err != nil {
		// changed since Access?
		return ErrNotCharacterDevice
	}
	var sysfsdev [16]byte
	n, err := sysfsf.Read(sysfsdev[:])
	sysfsf.Close()
	if err != nil || n <= 0 {
		return ErrNotCharacterDevice
	}
	var stat unix.Stat_t
	if err = unix.Lstat(path, &stat); err != nil {
		return err
	}
	devstr := fmt.Sprintf("%d:%d", unix.Major(uint64(stat.Rdev)), unix.Minor(uint64(stat.Rdev)))
	sysstr := string(sysfsdev[:n-1])
	if devstr != sysstr {
		return ErrNotCharacterDevice
	}
	return nil
}

// chipNames returns the names of potential gpiochips.
//
// Does not open them or check if they are valid.
func chipNames() []string {
	ee, err := os.ReadDir("/dev")
	if err != nil {
		return nil
	}
	cc := []string(nil)
	for _, e := range ee {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			cc = append(cc, name)
		}
	}
	return cc
}

func nameToPath(name string) string {
	if strings.HasPrefix(name, "/dev/") {
		return name
	}
	return "/dev/" + name
}

// translateErr maps permission errors, from either the OS or kernel errnos,
// to ErrPermissionDenied. Other errors pass through unchanged.
func translateErr(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return ErrPermissionDenied
	}
	return err
}

var (
	// ErrClosed indicates the chip or line has already been closed.
	ErrClosed = errors.New("already closed")

	// ErrConfigOverflow indicates the configuration is too complex to be
	// mapped to the kernel uAPI.
	//
	// Reduce the number of distinct line subsets or output values, or
	// split the request into multiple requests for smaller sets of lines.
	ErrConfigOverflow = errors.New("configuration too complex to map to kernel uAPI")

	// ErrInvalidConfig indicates a configuration setting has a value
	// outside the range of the setting's type.
	ErrInvalidConfig = errors.New("invalid line configuration")

	// ErrInvalidOffset indicates a line offset is invalid, or refers to a
	// line not contained in the request.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrLineNotFound indicates the named line could not be found on any
	// available chip.
	ErrLineNotFound = errors.New("line not found")

	// ErrNotCharacterDevice indicates the device is not a character
	// device.
	ErrNotCharacterDevice = errors.New("not a character device")

	// ErrPermissionDenied indicates the caller does not have the required
	// permissions for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUapiIncompatibility indicates the kernel does not support GPIO
	// uAPI v2. Requires Linux v5.10 or later.
	ErrUapiIncompatibility = errors.New("kernel does not support GPIO uAPI v2")
)
