// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiocfg"
)

func init() {
	getCmd.Flags().BoolVarP(&getOpts.ActiveLow, "active-low", "l", false, "treat the line state as active low")
	getCmd.Flags().BoolVarP(&getOpts.AsIs, "as-is", "a", false, "request the line as-is rather than as an input")
	getCmd.Flags().StringVarP(&getOpts.Bias, "bias", "b", "as-is", "set the line bias.")
	getCmd.SetHelpTemplate(getCmd.HelpTemplate() + extendedGetHelp)
	rootCmd.AddCommand(getCmd)
}

var extendedGetHelp = `
Biases:
  as-is:        leave bias unchanged
  disable:      disable bias
  pull-up:      enable pull-up
  pull-down:    enable pull-down
`

var (
	getCmd = &cobra.Command{
		Use:                   "get [flags] <chip> <offset1>...",
		Short:                 "Get the state of a line or lines",
		Long:                  `Read the state of a line or lines from a GPIO chip.`,
		Args:                  cobra.MinimumNArgs(2),
		RunE:                  get,
		DisableFlagsInUseLine: true,
	}
	getOpts = struct {
		ActiveLow bool
		AsIs      bool
		Bias      string
	}{}
)

func get(cmd *cobra.Command, args []string) error {
	name := args[0]
	oo, err := parseOffsets(args[1:])
	if err != nil {
		return err
	}
	c, err := gpiocfg.NewChip(name, gpiocfg.WithConsumer("gpiocfg-get"))
	if err != nil {
		return err
	}
	defer c.Close()
	cfg := makeGetConfig()
	l, err := c.RequestLines(oo, cfg)
	if err != nil {
		return fmt.Errorf("error requesting GPIO lines: %s", err)
	}
	defer l.Close()
	vv := make([]int, len(l.Offsets()))
	err = l.Values(vv)
	if err != nil {
		return fmt.Errorf("error reading GPIO state: %s", err)
	}
	vstr := fmt.Sprintf("%d", vv[0])
	for _, v := range vv[1:] {
		vstr += fmt.Sprintf(" %d", v)
	}
	fmt.Println(vstr)
	return nil
}

func makeGetConfig() *gpiocfg.Config {
	cfg := gpiocfg.NewConfig()
	if getOpts.ActiveLow {
		cfg.SetActiveLow()
	}
	if getOpts.AsIs {
		cfg.SetDirection(gpiocfg.LineDirectionAsIs)
	} else {
		cfg.SetDirection(gpiocfg.LineDirectionInput)
	}
	setBias(cfg, getOpts.Bias)
	return cfg
}

func setBias(cfg *gpiocfg.Config, bias string) {
	switch strings.ToLower(bias) {
	case "pull-up":
		cfg.SetBias(gpiocfg.LineBiasPullUp)
	case "pull-down":
		cfg.SetBias(gpiocfg.LineBiasPullDown)
	case "disable":
		cfg.SetBias(gpiocfg.LineBiasDisabled)
	case "as-is":
		fallthrough
	default:
	}
}
