package usb

import (
	"testing"
)

const sampleListing = `Bus 002 Device 001: ID 1d6b:0003 Linux Foundation 3.0 root hub
Bus 001 Device 004: ID 12D1:1506 Huawei Technologies Co., Ltd. Modem/Networkcard
Bus 001 Device 003: ID 046d:0825 Logitech, Inc. Webcam C270
Bus 001 Device 001: ID 1d6b:0002 Linux Foundation 2.0 root hub
`

// ============================================================================
// ParseLsusb Tests
// ============================================================================

func TestParseLsusb(t *testing.T) {
	devices := ParseLsusb(sampleListing)
	if len(devices) != 4 {
		t.Fatalf("device count = %d, want 4", len(devices))
	}

	modem := devices[1]
	if modem.Bus != "001" || modem.Address != "004" {
		t.Errorf("bus/address = %s/%s, want 001/004", modem.Bus, modem.Address)
	}
	if modem.VendorID != "12d1" {
		t.Errorf("vendor should be lowercased, got %s", modem.VendorID)
	}
	if modem.ProductID != "1506" {
		t.Errorf("product = %s, want 1506", modem.ProductID)
	}
	if modem.Description != "Huawei Technologies Co., Ltd. Modem/Networkcard" {
		t.Errorf("description = %q", modem.Description)
	}
	if modem.ID() != "12d1:1506" {
		t.Errorf("ID() = %s, want 12d1:1506", modem.ID())
	}
}

func TestParseLsusb_SkipsNoise(t *testing.T) {
	output := `couldn't open /dev/bus/usb: permission denied

Bus 001 Device 002: ID 0403:6001 Future Technology Devices International, Ltd FT232 Serial (UART) IC
some unrelated warning
`
	devices := ParseLsusb(output)
	if len(devices) != 1 {
		t.Fatalf("device count = %d, want 1", len(devices))
	}
	if devices[0].ID() != "0403:6001" {
		t.Errorf("ID() = %s", devices[0].ID())
	}
}

func TestParseLsusb_Empty(t *testing.T) {
	if devices := ParseLsusb(""); devices != nil {
		t.Errorf("empty input should yield nil, got %v", devices)
	}
}

func TestParseLsusb_NoDescription(t *testing.T) {
	devices := ParseLsusb("Bus 003 Device 002: ID abcd:ef01")
	if len(devices) != 1 {
		t.Fatalf("device count = %d, want 1", len(devices))
	}
	if devices[0].Description != "" {
		t.Errorf("description = %q, want empty", devices[0].Description)
	}
}

// ============================================================================
// Find Tests
// ============================================================================

func TestFind(t *testing.T) {
	devices := ParseLsusb(sampleListing)

	tests := []struct {
		name      string
		vendorID  string
		productID string
		found     bool
	}{
		{"present lowercase", "12d1", "1506", true},
		{"present uppercase query", "12D1", "1506", true},
		{"webcam", "046d", "0825", true},
		{"absent", "dead", "beef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found := Find(devices, tt.vendorID, tt.productID)
			if found != tt.found {
				t.Errorf("Find(%s:%s) = %v, want %v", tt.vendorID, tt.productID, found, tt.found)
			}
		})
	}
}
