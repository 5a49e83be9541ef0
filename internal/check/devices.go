package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
	"github.com/2easy4marcus/ssh-agent/internal/usb"
)

func (e *Engine) deviceChecks(ctx context.Context, log zerolog.Logger, t Target) []model.CheckResult {
	if len(t.Profile.Devices) == 0 {
		log.Debug().Msg("no devices declared, skipping usb enumeration")
		return nil
	}

	res, err := t.Remote.Run(ctx, "lsusb")
	if err != nil {
		return []model.CheckResult{commandWarn(model.CategoryDevices, "usb", err)}
	}
	connected := usb.ParseLsusb(res.Stdout)
	if len(connected) == 0 {
		return []model.CheckResult{unparseableWarn(model.CategoryDevices, "usb", "lsusb", res.Stdout+res.Stderr)}
	}

	var results []model.CheckResult
	for _, spec := range t.Profile.Devices {
		device, found := usb.Find(connected, spec.VendorID, spec.ProductID)
		switch {
		case found:
			message := fmt.Sprintf("Device %s (%s) is connected", spec.Name, spec.ID())
			if device.Description != "" {
				message += ": " + device.Description
			}
			results = append(results, model.NewCheckResult(model.CategoryDevices, "device:"+spec.Name, model.StatusOK, message))
		case spec.Required:
			r := model.NewCheckResult(model.CategoryDevices, "device:"+spec.Name, model.StatusFail,
				fmt.Sprintf("Device %s (%s) is not connected", spec.Name, spec.ID()))
			r.Hint = fmt.Sprintf("Check the USB cable and power for %s", spec.Name)
			results = append(results, r)
		default:
			results = append(results, model.NewCheckResult(model.CategoryDevices, "device:"+spec.Name, model.StatusOK,
				fmt.Sprintf("Optional device %s (%s) is not connected", spec.Name, spec.ID())))
		}
	}

	// Devices on the bus that the inventory never mentions are informational
	// only, and only worth the noise when verbose output was requested.
	if e.verbose {
		declared := make(map[string]bool, len(t.Profile.Devices))
		for _, spec := range t.Profile.Devices {
			declared[spec.ID()] = true
		}
		var extras []string
		for _, device := range connected {
			if declared[device.ID()] {
				continue
			}
			desc := device.Description
			if desc == "" {
				desc = "unknown device"
			}
			extras = append(extras, fmt.Sprintf("%s %s", device.ID(), desc))
		}
		if len(extras) > 0 {
			results = append(results, model.NewCheckResult(model.CategoryDevices, "unlisted_devices", model.StatusOK,
				fmt.Sprintf("%d connected devices not in the inventory: %s", len(extras), strings.Join(extras, "; "))))
		}
	}
	return results
}
