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

// Package spi detects RF230 radios behind Linux spidev nodes
package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	rf230 "github.com/ZaparooProject/go-rf230"
	"github.com/ZaparooProject/go-rf230/detection"
)

// DevicePattern matches spidev nodes
const DevicePattern = "/dev/spidev*.*"

var spidevPath = regexp.MustCompile(`^/dev/spidev(\d+)\.(\d+)$`)

// detector implements the Detector interface for spidev nodes
type detector struct {
	glob      func(pattern string) ([]string, error)
	access    func(path string) error
	probe     func(ctx context.Context, path string) (partNumber byte, err error)
	supported bool
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{
		glob:      filepath.Glob,
		access:    checkAccess,
		probe:     probePartNumber,
		supported: runtime.GOOS == "linux",
	}
}

// init registers the detector on package import
func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists spidev nodes and, outside Passive mode, reads PART_NUM from each
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if !d.supported {
		return nil, detection.ErrUnsupportedPlatform
	}
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	paths, err := d.glob(DevicePattern)
	if err != nil {
		return nil, fmt.Errorf("list spidev nodes: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, path := range paths {
		if ctx.Err() != nil {
			return devices, detection.ErrDetectionTimeout
		}
		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}
		bus, cs, ok := parseSPIDevPath(path)
		if !ok {
			continue
		}
		if d.access(path) != nil {
			continue
		}

		info := detection.DeviceInfo{
			Transport:  "spi",
			Path:       path,
			Name:       fmt.Sprintf("SPI%d.%d", bus, cs),
			Confidence: detection.Low,
			Metadata: map[string]string{
				"bus":         strconv.Itoa(bus),
				"chip_select": strconv.Itoa(cs),
			},
		}

		if opts.Mode != detection.Passive {
			part, probeErr := d.probe(ctx, path)
			switch {
			case probeErr == nil && part == rf230.PartNumberRF230:
				info.Confidence = detection.High
				info.Name = "AT86RF230 on " + info.Name
				info.Metadata["part_number"] = fmt.Sprintf("0x%02X", part)
			case opts.Mode == detection.Full:
				if probeErr != nil {
					info.Metadata["probe_error"] = probeErr.Error()
				} else {
					info.Metadata["part_number"] = fmt.Sprintf("0x%02X", part)
				}
			default:
				continue
			}
		}

		devices = append(devices, info)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// parseSPIDevPath extracts bus and chip select numbers from a spidev path
func parseSPIDevPath(path string) (bus, cs int, ok bool) {
	m := spidevPath.FindStringSubmatch(path)
	if m == nil {
		return 0, 0, false
	}
	bus, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	cs, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return bus, cs, true
}
