// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiocfg"
)

func init() {
	monCmd.Flags().BoolVarP(&monOpts.ActiveLow, "active-low", "l", false, "treat the line state as active low")
	monCmd.Flags().StringVarP(&monOpts.Bias, "bias", "b", "as-is", "set the line bias.")
	monCmd.Flags().StringVarP(&monOpts.Edge, "edge", "e", "both", "select the edge detection.")
	monCmd.Flags().StringVarP(&monOpts.Debounce, "debounce", "d", "", "debounce the lines for a period of time.")
	monCmd.Flags().UintVarP(&monOpts.NumEvents, "num-events", "n", 0, "exit after n edges")
	monCmd.Flags().BoolVarP(&monOpts.Quiet, "quiet", "q", false, "don't display event details")
	monCmd.SetHelpTemplate(monCmd.HelpTemplate() + extendedMonHelp)
	rootCmd.AddCommand(monCmd)
}

var extendedMonHelp = `
Edges:
  both:         both rising and falling edge events are detected
                and reported
  rising:       only rising edge events are detected and reported
  falling:      only falling edge events are detected and reported

Biases:
  as-is:        leave bias unchanged
  disable:      disable bias
  pull-up:      enable pull-up
  pull-down:    enable pull-down
`

var (
	monCmd = &cobra.Command{
		Use:                   "mon [flags] <chip> <offset1>...",
		Short:                 "Monitor the state of a line or lines",
		Long:                  `Wait for events on GPIO lines and print them to standard output.`,
		Args:                  cobra.MinimumNArgs(2),
		PreRunE:               premon,
		RunE:                  mon,
		DisableFlagsInUseLine: true,
	}
	monOpts = struct {
		ActiveLow bool
		Bias      string
		Edge      string
		Debounce  string
		Quiet     bool
		NumEvents uint
	}{}
)

func premon(cmd *cobra.Command, args []string) error {
	if len(monOpts.Debounce) != 0 {
		d, err := time.ParseDuration(monOpts.Debounce)
		if err != nil {
			return err
		}
		if d < 0 {
			return fmt.Errorf("debounce period (%s) must be positive", monOpts.Debounce)
		}
	}
	return nil
}

func mon(cmd *cobra.Command, args []string) error {
	name := args[0]
	oo, err := parseOffsets(args[1:])
	if err != nil {
		return err
	}
	c, err := gpiocfg.NewChip(name, gpiocfg.WithConsumer("gpiocfg-mon"))
	if err != nil {
		return err
	}
	defer c.Close()
	evtchan := make(chan gpiocfg.LineEvent)
	eh := func(evt gpiocfg.LineEvent) {
		evtchan <- evt
	}
	cfg := makeMonConfig()
	l, err := c.RequestLines(oo, cfg, gpiocfg.WithEventHandler(eh))
	if err != nil {
		return fmt.Errorf("error requesting GPIO lines: %s", err)
	}
	defer l.Close()
	monWait(evtchan)
	return nil
}

func monWait(evtchan <-chan gpiocfg.LineEvent) {
	sigdone := make(chan os.Signal, 1)
	signal.Notify(sigdone, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigdone)
	count := uint(0)
	for {
		select {
		case evt := <-evtchan:
			if !monOpts.Quiet {
				t := time.Now()
				edge := "rising"
				if evt.Type == gpiocfg.LineEventFallingEdge {
					edge = "falling"
				}
				fmt.Printf("event:%3d %-7s %s (%s)\n",
					evt.Offset,
					edge,
					t.Format(time.RFC3339Nano),
					evt.Timestamp)
			}
			count++
			if monOpts.NumEvents > 0 && count >= monOpts.NumEvents {
				return
			}
		case <-sigdone:
			return
		}
	}
}

func makeMonConfig() *gpiocfg.Config {
	cfg := gpiocfg.NewConfig()
	if monOpts.ActiveLow {
		cfg.SetActiveLow()
	}
	switch strings.ToLower(monOpts.Edge) {
	case "falling":
		cfg.SetEdgeDetection(gpiocfg.LineEdgeFalling)
	case "rising":
		cfg.SetEdgeDetection(gpiocfg.LineEdgeRising)
	case "both":
		fallthrough
	default:
		cfg.SetEdgeDetection(gpiocfg.LineEdgeBoth)
	}
	setBias(cfg, monOpts.Bias)
	if len(monOpts.Debounce) != 0 {
		d, _ := time.ParseDuration(monOpts.Debounce)
		cfg.SetDebouncePeriod(d)
	}
	return cfg
}
