// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/gpiocfg"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect available GPIO chips",
	Long:  `List all GPIO chips, print their labels and number of GPIO lines.`,
	Run:   detect,
}

func detect(cmd *cobra.Command, args []string) {
	rc := 0
	cc := gpiocfg.Chips()
	for _, path := range cc {
		c, err := gpiocfg.NewChip(path)
		if err != nil {
			logErr(cmd, err)
			rc = 1
			continue
		}
		fmt.Printf("%s [%s] (%d lines)\n", c.Name, c.Label, c.Lines())
		c.Close()
	}
	os.Exit(rc)
}
