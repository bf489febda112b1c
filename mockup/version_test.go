// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package mockup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	assert.Equal(t, "", version{}.String())
	assert.Equal(t, "5.10.0", version{5, 10, 0}.String())
}

func TestCheckKernelVersion(t *testing.T) {
	// a far-future floor always fails
	err := CheckKernelVersion(version{255, 255, 255})
	require.NotNil(t, err)
	assert.IsType(t, ErrorBadVersion{}, err)
	assert.Contains(t, err.Error(), "255.255.255")
}
