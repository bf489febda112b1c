// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg

// ChipOption defines the interface required to provide a Chip option.
type ChipOption interface {
	applyChipOption(*ChipOptions)
}

// ChipOptions contains the options for a Chip.
type ChipOptions struct {
	consumer string
}

// RequestOption defines the interface required to provide an option for a
// line request.
//
// Request options control request-scoped behaviour - the line settings
// themselves are provided by the Config.
type RequestOption interface {
	applyRequestOption(*requestOptions)
}

// requestOptions contains the options for a line request.
type requestOptions struct {
	consumer        string
	eh              EventHandler
	eventBufferSize int
}

// ConsumerOption defines the consumer label for a line.
type ConsumerOption string

// WithConsumer provides the consumer label for the line.
//
// When applied to a chip it provides the default consumer label for all
// lines requested by the chip.
func WithConsumer(consumer string) ConsumerOption {
	return ConsumerOption(consumer)
}

func (o ConsumerOption) applyChipOption(c *ChipOptions) {
	c.consumer = string(o)
}

func (o ConsumerOption) applyRequestOption(r *requestOptions) {
	r.consumer = string(o)
}

// EventHandlerOption provides the handler for edge events detected on the
// requested lines.
type EventHandlerOption struct {
	e EventHandler
}

// WithEventHandler provides the handler for edge events detected on the
// requested lines.
//
// The handler is called for each event from a goroutine monitoring the
// request. Events are only generated for lines with edge detection enabled
// in the Config.
func WithEventHandler(e func(LineEvent)) EventHandlerOption {
	return EventHandlerOption{EventHandler(e)}
}

func (o EventHandlerOption) applyRequestOption(r *requestOptions) {
	r.eh = o.e
}

// EventBufferSizeOption provides a suggested minimum number of events the
// kernel will buffer for the request.
type EventBufferSizeOption int

// WithEventBufferSize sets a suggested minimum number of events the kernel
// will buffer for the request.
//
// The kernel may adjust the size as it sees fit. A zero size leaves the
// buffer at the kernel default.
func WithEventBufferSize(size int) EventBufferSizeOption {
	if size < 0 {
		size = 0
	}
	return EventBufferSizeOption(size)
}

func (o EventBufferSizeOption) applyRequestOption(r *requestOptions) {
	r.eventBufferSize = int(o)
}
