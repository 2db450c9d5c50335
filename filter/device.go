package filter

import (
	"github.com/s0up4200/snapctl/snapapi"
)

// Device is one catalog entry together with the category it is listed under.
type Device struct {
	Category string
	snapapi.DeviceInfo
}

// Flatten lists every device in the catalog, ordered by category and then
// by catalog order within the category.
func Flatten(catalog *snapapi.Devices) []Device {
	if catalog == nil {
		return nil
	}

	n := 0
	for _, list := range catalog.Devices {
		n += len(list)
	}

	devices := make([]Device, 0, n)
	for _, category := range catalog.Categories() {
		for _, info := range catalog.Devices[category] {
			devices = append(devices, Device{Category: category, DeviceInfo: info})
		}
	}
	return devices
}

// AspectRatio returns width over height, or 0 for a zero height.
func (d Device) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// PhysicalWidth is the rendered width in device pixels.
func (d Device) PhysicalWidth() int {
	return int(float64(d.Width) * d.DeviceScaleFactor)
}

// PhysicalHeight is the rendered height in device pixels.
func (d Device) PhysicalHeight() int {
	return int(float64(d.Height) * d.DeviceScaleFactor)
}
