// go-rf230
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rf230.
//
// go-rf230 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rf230 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rf230; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := getPathIgnoredTests()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

type pathIgnoredTest struct {
	name        string
	devicePath  string
	ignorePaths []string
	expected    bool
}

func getPathIgnoredTests() []pathIgnoredTest {
	return []pathIgnoredTest{
		{name: "empty ignore list", devicePath: "/dev/spidev0.0", ignorePaths: []string{}, expected: false},
		{name: "empty device path", devicePath: "", ignorePaths: []string{"/dev/spidev0.0"}, expected: false},
		{name: "exact match", devicePath: "/dev/spidev0.0", ignorePaths: []string{"/dev/spidev0.0"}, expected: true},
		{name: "case insensitive match", devicePath: "/dev/spidev0.1", ignorePaths: []string{"/DEV/SPIDEV0.1"}, expected: true},
		{name: "different chip select", devicePath: "/dev/spidev0.1", ignorePaths: []string{"/dev/spidev0.0"}, expected: false},
		{
			name:        "multiple paths with match",
			devicePath:  "/dev/spidev1.0",
			ignorePaths: []string{"/dev/spidev0.0", "/dev/spidev1.0"},
			expected:    true,
		},
		{
			name:        "path with relative components",
			devicePath:  "/dev/../dev/spidev0.0",
			ignorePaths: []string{"/dev/spidev0.0"},
			expected:    true,
		},
		{
			name:        "empty strings in ignore list",
			devicePath:  "/dev/spidev0.0",
			ignorePaths: []string{"", "/dev/spidev0.0", ""},
			expected:    true,
		},
	}
}

func TestOptionsWithIgnorePaths(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Nil(t, opts.IgnorePaths)
	assert.Equal(t, Safe, opts.Mode)

	opts.IgnorePaths = []string{"/dev/spidev0.0"}
	assert.Len(t, opts.IgnorePaths, 1)
}

type stubDetector struct {
	err     error
	devices []DeviceInfo
}

func (*stubDetector) Transport() string { return "stub" }

func (s *stubDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	return s.devices, s.err
}

// The registry is package global, so these cases run sequentially.
//
//nolint:paralleltest // mutates the detector registry
func TestDetectAll(t *testing.T) {
	saved := Detectors()
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})

	reset := func(ds ...Detector) {
		registryMu.Lock()
		registry = nil
		registryMu.Unlock()
		for _, d := range ds {
			RegisterDetector(d)
		}
	}

	reset()
	_, err := DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDevicesFound)

	found := DeviceInfo{Transport: "stub", Path: "/dev/spidev0.0", Confidence: High}
	reset(
		&stubDetector{err: ErrUnsupportedPlatform},
		&stubDetector{err: ErrNoDevicesFound},
		&stubDetector{devices: []DeviceInfo{found}},
	)
	devices, err := DetectAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []DeviceInfo{found}, devices)

	boom := errors.New("boom")
	reset(&stubDetector{err: boom})
	_, err = DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}

func TestConfidenceString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "unknown", Confidence(9).String())
}
