// Package usb parses USB device listings in the format produced by lsusb.
package usb

import (
	"regexp"
	"strings"
)

// Device is a single entry from a lsusb listing.
type Device struct {
	Bus         string
	Address     string
	VendorID    string
	ProductID   string
	Description string
}

// ID returns the vendor:product pair in lowercase hex, the same form used
// by inventory device specs.
func (d Device) ID() string {
	return d.VendorID + ":" + d.ProductID
}

// lsusb lines look like:
//
//	Bus 001 Device 004: ID 1d6b:0002 Linux Foundation 2.0 root hub
var lineRe = regexp.MustCompile(`^Bus (\d{3}) Device (\d{3}): ID ([0-9a-fA-F]{4}):([0-9a-fA-F]{4})\s*(.*)$`)

// ParseLsusb extracts devices from raw lsusb output. Lines that do not
// match the listing format are skipped, so diagnostic noise on stderr or
// truncated output degrades to a shorter list rather than an error.
func ParseLsusb(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		m := lineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		devices = append(devices, Device{
			Bus:         m[1],
			Address:     m[2],
			VendorID:    strings.ToLower(m[3]),
			ProductID:   strings.ToLower(m[4]),
			Description: strings.TrimSpace(m[5]),
		})
	}
	return devices
}

// Find reports the first device matching the vendor:product pair,
// comparing case-insensitively.
func Find(devices []Device, vendorID, productID string) (Device, bool) {
	want := strings.ToLower(vendorID) + ":" + strings.ToLower(productID)
	for _, d := range devices {
		if d.ID() == want {
			return d, true
		}
	}
	return Device{}, false
}
