// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg

import (
	"sync"
	"time"

	"github.com/warthog618/gpiocfg/uapi"
	"golang.org/x/sys/unix"
)

// RequestLine requests control of a single line on the chip.
//
// The config may be nil, in which case the line is requested as an input.
//
// If granted, control is maintained until either the Line or Chip are
// closed.
func (c *Chip) RequestLine(offset int, cfg *Config, options ...RequestOption) (*Line, error) {
	ll, err := c.RequestLines([]int{offset}, cfg, options...)
	if err != nil {
		return nil, err
	}
	l := Line{baseLine: baseLine{
		offsets: ll.offsets,
		vfd:     ll.vfd,
		chip:    ll.chip,
		watcher: ll.watcher,
	}}
	return &l, nil
}

// RequestLines requests control of a collection of lines on the chip.
//
// The config may be nil, in which case the lines are requested as inputs.
// The config is compiled against the requested offsets - settings applied
// to offsets outside the request cause the request to fail.
func (c *Chip) RequestLines(offsets []int, cfg *Config, options ...RequestOption) (*Lines, error) {
	if len(offsets) == 0 || len(offsets) > uapi.LinesMax {
		return nil, ErrInvalidOffset
	}
	for _, o := range offsets {
		if o < 0 || o >= c.lines {
			return nil, ErrInvalidOffset
		}
	}
	offsets = append([]int(nil), offsets...)
	ro := requestOptions{
		consumer: c.options.consumer,
	}
	for _, option := range options {
		option.applyRequestOption(&ro)
	}
	lc, err := cfg.ToLineConfig(offsets)
	if err != nil {
		return nil, err
	}
	lr := uapi.LineRequest{
		Lines:           uint32(len(offsets)),
		Config:          lc,
		EventBufferSize: uint32(ro.eventBufferSize),
	}
	copy(lr.Consumer[:len(lr.Consumer)-1], ro.consumer)
	for i, o := range offsets {
		lr.Offsets[i] = uint32(o)
	}
	err = uapi.GetLine(c.f.Fd(), &lr)
	if err != nil {
		return nil, translateErr(err)
	}
	ll := Lines{
		baseLine: baseLine{
			offsets: offsets,
			vfd:     uintptr(lr.Fd),
			chip:    c.Name,
		},
	}
	if ro.eh != nil {
		w, err := newWatcher(ll.vfd, ro.eh)
		if err != nil {
			unix.Close(int(lr.Fd))
			return nil, err
		}
		ll.watcher = w
	}
	return &ll, nil
}

type baseLine struct {
	offsets []int
	vfd     uintptr
	chip    string

	// mu covers all that follow - those above are immutable.
	mu      sync.Mutex
	closed  bool
	watcher *watcher
}

// Chip returns the name of the chip from which the lines were requested.
func (l *baseLine) Chip() string {
	return l.chip
}

// Close releases all resources held by the requested lines.
func (l *baseLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	if l.watcher != nil {
		l.watcher.close()
	}
	unix.Close(int(l.vfd))
	return nil
}

// Reconfigure updates the configuration of the requested lines.
//
// The config is compiled against the offsets of the request, replacing the
// configuration applied when the lines were requested or last
// reconfigured. A nil config reverts the lines to inputs.
//
// Requires Linux v5.10 or later.
func (l *baseLine) Reconfigure(cfg *Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	lc, err := cfg.ToLineConfig(l.offsets)
	if err != nil {
		return err
	}
	return uapi.SetLineConfig(l.vfd, &lc)
}

// Line represents a requested line.
type Line struct {
	baseLine
}

// Offset returns the offset of the line within the chip.
func (l *Line) Offset() int {
	return l.offsets[0]
}

// Value returns the current value (active state) of the line.
func (l *Line) Value() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	lv := uapi.LineValues{Mask: uapi.NewLineBitMask(1)}
	err := uapi.GetLineValues(l.vfd, &lv)
	return lv.Get(0), err
}

// SetValue sets the current value (active state) of the line.
//
// Only valid for output lines.
func (l *Line) SetValue(value int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	lv := uapi.LineValues{
		Mask: uapi.NewLineBitMask(1),
		Bits: uapi.NewLineBitmap(value),
	}
	return uapi.SetLineValues(l.vfd, lv)
}

// Lines represents a collection of requested lines.
type Lines struct {
	baseLine
}

// Offsets returns the offsets of the lines within the chip, in request
// order.
func (l *Lines) Offsets() []int {
	return l.offsets
}

// Values returns the current values (active state) of the collection of
// lines.
//
// Values are returned in the same order as the request offsets. If vv is
// shorter than the number of lines then only the values of the first
// len(vv) lines are returned.
func (l *Lines) Values(vv []int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if len(vv) > len(l.offsets) {
		vv = vv[:len(l.offsets)]
	}
	lv := uapi.LineValues{Mask: uapi.NewLineBitMask(len(vv))}
	err := uapi.GetLineValues(l.vfd, &lv)
	if err != nil {
		return err
	}
	for i := 0; i < len(vv); i++ {
		vv[i] = lv.Get(i)
	}
	return nil
}

// SetValues sets the current values (active state) of the collection of
// lines.
//
// Only valid for output lines.
//
// All lines in the set are set at once. If insufficient values are
// provided then the remaining lines are left unchanged. If too many values
// are provided then the surplus values are ignored.
func (l *Lines) SetValues(values []int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if len(values) > len(l.offsets) {
		values = values[:len(l.offsets)]
	}
	lv := uapi.LineValues{
		Mask: uapi.NewLineBitMask(len(values)),
		Bits: uapi.NewLineBitmap(values...),
	}
	return uapi.SetLineValues(l.vfd, lv)
}

// LineEventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type LineEventType int

const (
	_ LineEventType = iota

	// LineEventRisingEdge indicates an inactive to active event.
	LineEventRisingEdge

	// LineEventFallingEdge indicates an active to inactive event.
	LineEventFallingEdge
)

// LineEvent represents a change in the state of a line.
type LineEvent struct {
	// The line offset within the GPIO chip.
	Offset int

	// Timestamp indicates the time the event was detected.
	//
	// The timestamp is intended for accurately measuring intervals between
	// events. It is based on CLOCK_MONOTONIC unless the line is configured
	// with the realtime event clock.
	Timestamp time.Duration

	// The type of state change event this structure represents.
	Type LineEventType

	// The seqno for this event in all events on all lines in this line
	// request.
	Seqno uint32

	// The seqno for this event in all events on this line.
	LineSeqno uint32
}

// EventHandler is a receiver for line events.
type EventHandler func(LineEvent)
