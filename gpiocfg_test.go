// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package gpiocfg_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/gpiocfg"
	"github.com/warthog618/gpiocfg/mockup"
)

var platform *mockup.Mockup

func TestMain(m *testing.M) {
	mm, err := mockup.New([]int{8}, false)
	if err == nil {
		platform = mm
	}
	rc := m.Run()
	if platform != nil {
		platform.Close()
	}
	os.Exit(rc)
}

// requirePlatform skips the test if the gpio-mockup module could not be
// loaded, which requires root and a suitable kernel.
func requirePlatform(t *testing.T) *mockup.Chip {
	t.Helper()
	if platform == nil {
		t.Skip("gpio-mockup not available")
	}
	c, err := platform.Chip(0)
	require.Nil(t, err)
	return c
}

func TestChips(t *testing.T) {
	requirePlatform(t)
	cc := gpiocfg.Chips()
	require.NotEmpty(t, cc)
}

func TestNewChip(t *testing.T) {
	mc := requirePlatform(t)

	// nonexistent
	c, err := gpiocfg.NewChip("/dev/nosuchchip")
	assert.NotNil(t, err)
	assert.Nil(t, c)

	// success
	c, err = gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	require.NotNil(t, c)
	assert.Equal(t, mc.Name, c.Name)
	assert.Equal(t, mc.Label, c.Label)
	assert.Equal(t, mc.Lines, c.Lines())
	err = c.Close()
	assert.Nil(t, err)
	err = c.Close()
	assert.Equal(t, gpiocfg.ErrClosed, err)
}

func TestChipLineInfo(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	_, err = c.LineInfo(-1)
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
	_, err = c.LineInfo(c.Lines())
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)

	li, err := c.LineInfo(1)
	require.Nil(t, err)
	assert.Equal(t, 1, li.Offset)
	assert.False(t, li.Used)
	assert.Equal(t, gpiocfg.LineDirectionInput, li.Direction)
}

func TestRequestLine(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name, gpiocfg.WithConsumer("TestRequestLine"))
	require.Nil(t, err)
	defer c.Close()

	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionInput)
	l, err := c.RequestLine(2, cfg)
	require.Nil(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 2, l.Offset())
	assert.Equal(t, c.Name, l.Chip())

	li, err := c.LineInfo(2)
	require.Nil(t, err)
	assert.True(t, li.Used)
	assert.Equal(t, "TestRequestLine", li.Consumer)

	mc.SetValue(2, 1)
	v, err := l.Value()
	assert.Nil(t, err)
	assert.Equal(t, 1, v)
	mc.SetValue(2, 0)
	v, err = l.Value()
	assert.Nil(t, err)
	assert.Equal(t, 0, v)

	err = l.Close()
	assert.Nil(t, err)
	err = l.Close()
	assert.Equal(t, gpiocfg.ErrClosed, err)
}

func TestRequestLinesOutput(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	oo := []int{1, 3, 4}
	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionOutput)
	cfg.SetOutputValues(oo, []int{0, 1, 0})
	l, err := c.RequestLines(oo, cfg)
	require.Nil(t, err)
	defer l.Close()
	assert.Equal(t, oo, l.Offsets())

	v, err := mc.Value(3)
	assert.Nil(t, err)
	assert.Equal(t, 1, v)
	v, err = mc.Value(1)
	assert.Nil(t, err)
	assert.Equal(t, 0, v)

	err = l.SetValues([]int{1, 0, 1})
	assert.Nil(t, err)
	v, err = mc.Value(3)
	assert.Nil(t, err)
	assert.Equal(t, 0, v)
	v, err = mc.Value(4)
	assert.Nil(t, err)
	assert.Equal(t, 1, v)

	vv := make([]int, len(oo))
	err = l.Values(vv)
	assert.Nil(t, err)
	assert.Equal(t, []int{1, 0, 1}, vv)
}

func TestRequestLinesInvalidOffset(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	_, err = c.RequestLines(nil, nil)
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
	_, err = c.RequestLines([]int{c.Lines()}, nil)
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
	_, err = c.RequestLines([]int{-1}, nil)
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)

	// config refers to a line outside the request
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetectionOffset(gpiocfg.LineEdgeBoth, 5)
	_, err = c.RequestLines([]int{1, 2}, cfg)
	assert.Equal(t, gpiocfg.ErrInvalidOffset, err)
}

func TestReconfigure(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	cfg := gpiocfg.NewConfig()
	cfg.SetDirection(gpiocfg.LineDirectionInput)
	l, err := c.RequestLine(5, cfg)
	require.Nil(t, err)
	defer l.Close()

	li, err := c.LineInfo(5)
	require.Nil(t, err)
	assert.Equal(t, gpiocfg.LineDirectionInput, li.Direction)

	cfg.SetDirection(gpiocfg.LineDirectionOutput)
	cfg.SetOutputValue(5, 1)
	err = l.Reconfigure(cfg)
	require.Nil(t, err)

	li, err = c.LineInfo(5)
	require.Nil(t, err)
	assert.Equal(t, gpiocfg.LineDirectionOutput, li.Direction)
	v, err := mc.Value(5)
	assert.Nil(t, err)
	assert.Equal(t, 1, v)

	// nil config reverts to input
	err = l.Reconfigure(nil)
	require.Nil(t, err)
	li, err = c.LineInfo(5)
	require.Nil(t, err)
	assert.Equal(t, gpiocfg.LineDirectionInput, li.Direction)
}

func TestEdgeEvents(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	ech := make(chan gpiocfg.LineEvent, 3)
	cfg := gpiocfg.NewConfig()
	cfg.SetEdgeDetection(gpiocfg.LineEdgeBoth)
	l, err := c.RequestLine(6, cfg,
		gpiocfg.WithEventHandler(func(evt gpiocfg.LineEvent) {
			ech <- evt
		}))
	require.Nil(t, err)
	defer l.Close()

	mc.SetValue(6, 1)
	select {
	case evt := <-ech:
		assert.Equal(t, 6, evt.Offset)
		assert.Equal(t, gpiocfg.LineEventRisingEdge, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for rising event")
	}
	mc.SetValue(6, 0)
	select {
	case evt := <-ech:
		assert.Equal(t, 6, evt.Offset)
		assert.Equal(t, gpiocfg.LineEventFallingEdge, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for falling event")
	}
}

func TestWatchLineInfo(t *testing.T) {
	mc := requirePlatform(t)
	c, err := gpiocfg.NewChip(mc.Name)
	require.Nil(t, err)
	defer c.Close()

	ich := make(chan gpiocfg.LineInfoChangeEvent, 3)
	_, err = c.WatchLineInfo(7, func(evt gpiocfg.LineInfoChangeEvent) {
		ich <- evt
	})
	require.Nil(t, err)

	l, err := c.RequestLine(7, nil)
	require.Nil(t, err)
	select {
	case evt := <-ich:
		assert.Equal(t, gpiocfg.LineRequested, evt.Type)
		assert.Equal(t, 7, evt.Info.Offset)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for requested event")
	}
	l.Close()
	select {
	case evt := <-ich:
		assert.Equal(t, gpiocfg.LineReleased, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for released event")
	}

	err = c.UnwatchLineInfo(7)
	assert.Nil(t, err)
}

func TestFindLine(t *testing.T) {
	requirePlatform(t)
	// mockup lines are unnamed by default
	_, _, err := gpiocfg.FindLine("nonexistent-line")
	assert.Equal(t, gpiocfg.ErrLineNotFound, err)
}
