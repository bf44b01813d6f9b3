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

// Command rf230ctl probes an AT86RF230 on a Linux SPI bus, sends data frames
// and listens for frames.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	rf230 "github.com/ZaparooProject/go-rf230"
	"github.com/ZaparooProject/go-rf230/detection"
	_ "github.com/ZaparooProject/go-rf230/detection/spi"
	"github.com/ZaparooProject/go-rf230/ieee802154"
	"github.com/ZaparooProject/go-rf230/interrupt"
	"github.com/ZaparooProject/go-rf230/transport/spi"
)

var errUsage = errors.New("usage: rf230ctl [flags] detect|probe|send|listen")

type config struct {
	bus        *string
	selectPin  *string
	controlPin *string
	resetPin   *string
	irqPin     *string
	timeout    *time.Duration
	debug      *bool
	panID      *string
	srcAddr    *string
	dstAddr    *string
	payload    *string
	forward    *string
	baud       *int
}

func parseFlags() *config {
	cfg := &config{
		bus:        flag.String("bus", "/dev/spidev0.0", "SPI bus name"),
		selectPin:  flag.String("sel", "GPIO8", "GPIO driving SEL"),
		controlPin: flag.String("slptr", "GPIO25", "GPIO driving SLP_TR"),
		resetPin:   flag.String("rst", "GPIO24", "GPIO driving RST"),
		irqPin:     flag.String("irq", "GPIO23", "GPIO reading IRQ"),
		timeout:    flag.Duration("timeout", 5*time.Second, "Timeout for send and detect"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
		panID:      flag.String("pan", "0xABCD", "PAN ID"),
		srcAddr:    flag.String("src", "0x0001", "Short source address"),
		dstAddr:    flag.String("dst", "0xFFFF", "Short destination address"),
		payload:    flag.String("payload", "hello", "Payload for send"),
		forward:    flag.String("forward", "", "Serial port that received frames are copied to"),
		baud:       flag.Int("baud", 115200, "Baud rate of the forward port"),
	}
	flag.Parse()

	if *cfg.debug {
		rf230.SetDebugEnabled(true)
	}
	return cfg
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return uint16(v), nil
}

// radio bundles a device with its transport and a lock shared with the
// interrupt dispatcher
type radio struct {
	device    *rf230.Device
	transport *spi.Transport
	mu        sync.Mutex
}

func openRadio(cfg *config, opts ...rf230.Option) (*radio, error) {
	transport, err := spi.New(spi.Config{
		BusName:    *cfg.bus,
		SelectPin:  *cfg.selectPin,
		ControlPin: *cfg.controlPin,
		ResetPin:   *cfg.resetPin,
		IRQPin:     *cfg.irqPin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open transport: %w", err)
	}

	device, err := rf230.New(transport, transport.Pins(), opts...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return &radio{device: device, transport: transport}, nil
}

func (r *radio) init(cfg *config, reader ieee802154.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.device.Init(ieee802154.Params{Reader: reader}); err != nil {
		return fmt.Errorf("failed to initialize radio: %w", err)
	}

	pan, err := parseUint16(*cfg.panID)
	if err != nil {
		return err
	}
	src, err := parseUint16(*cfg.srcAddr)
	if err != nil {
		return err
	}
	if err := r.device.SetPANID(pan); err != nil {
		return err
	}
	return r.device.SetShortAddress(ieee802154.ShortAddress(src))
}

func (r *radio) dispatch(ctx context.Context, callbacks interrupt.Callbacks) (*interrupt.Dispatcher, error) {
	irq := r.transport.IRQ()
	if irq == nil {
		return nil, errors.New("an IRQ pin is required")
	}
	dcfg := interrupt.DefaultConfig()
	dcfg.Lock = &r.mu
	d := interrupt.NewDispatcher(r.device, irq, dcfg, callbacks)
	if err := d.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start dispatcher: %w", err)
	}
	return d, nil
}

func (r *radio) close() {
	if err := r.device.Close(); err != nil {
		logrus.WithError(err).Warn("close failed")
	}
}

func runDetect(ctx context.Context, cfg *config) error {
	opts := detection.DefaultOptions()
	opts.Timeout = *cfg.timeout
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	for _, d := range devices {
		_, _ = fmt.Printf("%s\t%s\t%s\tconfidence=%s\n", d.Transport, d.Path, d.Name, d.Confidence)
	}
	return nil
}

func runProbe(cfg *config) error {
	r, err := openRadio(cfg)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.init(cfg, nil); err != nil {
		return err
	}

	part, err := r.device.PartNumber()
	if err != nil {
		return err
	}
	version, err := r.device.VersionNumber()
	if err != nil {
		return err
	}
	manufacturer, err := r.device.ManufacturerID()
	if err != nil {
		return err
	}
	state, err := r.device.State()
	if err != nil {
		return err
	}

	_, _ = fmt.Printf("Bus:          %s\n", *cfg.bus)
	_, _ = fmt.Printf("Part number:  0x%02X\n", part)
	_, _ = fmt.Printf("Version:      0x%02X\n", version)
	_, _ = fmt.Printf("Manufacturer: 0x%04X\n", manufacturer)
	_, _ = fmt.Printf("State:        %s\n", state)
	return nil
}

func runSend(ctx context.Context, cfg *config) error {
	done := make(chan struct{}, 1)
	r, err := openRadio(cfg)
	if err != nil {
		return err
	}
	defer r.close()

	reader := ieee802154.ReaderFuncs{OnSendDone: func() {
		select {
		case done <- struct{}{}:
		default:
		}
	}}
	if err := r.init(cfg, reader); err != nil {
		return err
	}

	pan, err := parseUint16(*cfg.panID)
	if err != nil {
		return err
	}
	src, err := parseUint16(*cfg.srcAddr)
	if err != nil {
		return err
	}
	dst, err := parseUint16(*cfg.dstAddr)
	if err != nil {
		return err
	}

	d, err := r.dispatch(ctx, interrupt.Callbacks{
		OnError: func(err error) { logrus.WithError(err).Warn("interrupt failed") },
	})
	if err != nil {
		return err
	}
	defer func() { _ = d.Stop(context.Background()) }()

	frame := &ieee802154.Frame{
		Type: ieee802154.FrameTypeData,
		Addresses: ieee802154.LocalAddresses{
			Source:      ieee802154.ShortAddress(src),
			Destination: ieee802154.FullAddress{Address: ieee802154.ShortAddress(dst), PANID: pan},
		},
		AckRequest: dst != 0xFFFF,
		Payload:    []byte(*cfg.payload),
	}

	r.mu.Lock()
	err = r.device.Send(frame)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	timer := time.NewTimer(*cfg.timeout)
	defer timer.Stop()
	select {
	case <-done:
		_, _ = fmt.Printf("Sent %d byte payload to %s on PAN 0x%04X\n", len(frame.Payload), ieee802154.ShortAddress(dst), pan)
		return nil
	case <-timer.C:
		return fmt.Errorf("send did not complete within %s", *cfg.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runListen(ctx context.Context, cfg *config) error {
	var fwd *forwarder
	if *cfg.forward != "" {
		f, closer, err := openForwarder(*cfg.forward, *cfg.baud, logrus.NewEntry(rf230.Logger()))
		if err != nil {
			return err
		}
		defer func() { _ = closer.Close() }()
		fwd = f
	}

	var r *radio
	reader := ieee802154.ReaderFuncs{OnFrameReceived: func(frame *ieee802154.Frame) {
		// Called under r.mu from the dispatcher
		lqi := r.device.LastLinkQuality()
		_, _ = fmt.Printf("%s seq=%d lqi=%d src=%v dst=%v payload=% X\n",
			frame.Type, frame.SequenceNumber, lqi,
			frame.Addresses.SourceAddress(), frame.Addresses.DestinationAddress(), frame.Payload)
		if fwd != nil {
			if err := fwd.Forward(frame, lqi); err != nil {
				logrus.WithError(err).Warn("forward failed")
			}
		}
	}}

	var err error
	r, err = openRadio(cfg)
	if err != nil {
		return err
	}
	defer r.close()

	if err := r.init(cfg, reader); err != nil {
		return err
	}

	d, err := r.dispatch(ctx, interrupt.Callbacks{
		OnEvent: func(e rf230.Event) {
			if e == rf230.EventFrameDropped {
				logrus.Debug("dropped malformed frame")
			}
		},
		OnError: func(err error) { logrus.WithError(err).Warn("interrupt failed") },
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	err = r.device.EnableRX()
	r.mu.Unlock()
	if err != nil {
		_ = d.Stop(context.Background())
		return fmt.Errorf("failed to enable receiver: %w", err)
	}
	_, _ = fmt.Println("Listening. Press Ctrl+C to stop.")

	<-ctx.Done()
	stopErr := d.Stop(context.Background())
	m := d.GetMetrics()
	diag := r.device.Diagnostics()
	_, _ = fmt.Printf("\nInterrupts: %d, received: %d, dropped: %d\n", m.Interrupts, diag.FramesReceived, diag.FramesDropped)
	if fwd != nil {
		_, _ = fmt.Printf("Forwarded: %d\n", fwd.Records())
	}
	return stopErr
}

func run(ctx context.Context, cfg *config) error {
	switch flag.Arg(0) {
	case "detect":
		return runDetect(ctx, cfg)
	case "probe":
		return runProbe(cfg)
	case "send":
		return runSend(ctx, cfg)
	case "listen":
		return runListen(ctx, cfg)
	default:
		return errUsage
	}
}

func main() {
	cfg := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		logrus.WithError(err).Error("rf230ctl failed")
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}
