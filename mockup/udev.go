// SPDX-FileCopyrightText: 2026 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build linux
// +build linux

package mockup

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pilebones/go-udev/netlink"
	log "github.com/sirupsen/logrus"
)

// udevMonitor collects the udev add events generated as the gpio-mockup
// chips are instantiated.
type udevMonitor struct {
	conn  *netlink.UEventConn
	queue chan netlink.UEvent
	quit  chan struct{}
}

func newUdevMonitor() (*udevMonitor, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, fmt.Errorf("unable to connect to Netlink Kobject UEvent socket")
	}
	action := "add"
	matcher := &netlink.RuleDefinition{Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "gpio",
			"DEVPATH":   "/devices/platform/gpio-mockup\\.\\d+/gpiochip\\d+",
		}}
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	quit := conn.Monitor(queue, errs, matcher)
	mon := udevMonitor{conn: conn, queue: queue, quit: quit}
	go func() {
		for {
			select {
			case err := <-errs:
				log.WithError(err).Error("udev monitor error")
			case <-quit:
				return
			}
		}
	}()
	return &mon, nil
}

// chips waits for the add event for each mocked chip and returns the
// corresponding Chips, ordered by device name.
func (m *udevMonitor) chips(lines []int) ([]Chip, error) {
	evts := make([]netlink.UEvent, len(lines))
	for i := range evts {
		select {
		case evts[i] = <-m.queue:
			log.WithField("devname", evts[i].Env["DEVNAME"]).Debug("chip added")
		case <-time.After(time.Second):
			return nil, errors.New("timeout waiting for udev events")
		}
	}
	sort.Slice(evts, func(i, j int) bool {
		return evts[i].Env["DEVNAME"] < evts[j].Env["DEVNAME"]
	})
	cc := make([]Chip, len(lines))
	for i, l := range lines {
		devpath := evts[i].Env["DEVNAME"]
		name := devpath[len("/dev/"):]
		var num int
		_, err := fmt.Sscanf(name, "gpiochip%d", &num)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chip num: %s", err)
		}
		cc[i] = Chip{
			Name:      name,
			Label:     fmt.Sprintf("gpio-mockup-%c", 'A'+i),
			Lines:     l,
			DevPath:   devpath,
			DbgfsPath: fmt.Sprintf("/sys/kernel/debug/gpio-mockup/gpiochip%d/", num)}
	}
	return cc, nil
}

func (m *udevMonitor) close() {
	m.quit <- struct{}{}
	m.conn.Close()
}
