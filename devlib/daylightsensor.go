package devlib

import (
	"math"

	"github.com/ic10emu/icsim"
)

// daylightCycleTicks is the number of simulation ticks in one full
// day/night cycle, matching original_source/devices/daylight_sensor.rs's
// ticks_per_day-driven progress calculation.
const daylightCycleTicks = 600

// daylightBehavior derives Horizontal, Vertical and Solar from the
// simulation's own tick clock (icsim.Device.CurrentTick) rather than a
// counter the behavior keeps for itself, so the day/night cycle tracks
// the scheduler's environment instead of drifting independently per
// sensor.
type daylightBehavior struct{}

func (b *daylightBehavior) Tick(d *icsim.Device) {
	progress := float64(d.CurrentTick()%daylightCycleTicks) / float64(daylightCycleTicks)

	horizontal := progress * 360.0
	angle := 2 * math.Pi * progress
	vertical := 90.0 + 90.0*math.Cos(angle)

	// Solar intensity peaks straight overhead (vertical=0) and is zero
	// at and below the horizon (vertical>=90).
	solar := math.Max(0, math.Cos(vertical*math.Pi/180))

	d.Report(icsim.Horizontal, horizontal)
	d.Report(icsim.Vertical, vertical)
	d.Report(icsim.Solar, solar)
}

func init() {
	icsim.RegisterPrefab(&icsim.PrefabInfo{
		Name: "StructureDaylightSensor",
		Readable: rw(icsim.Solar, icsim.Horizontal, icsim.Vertical,
			icsim.PrefabHashLT, icsim.ReferenceIdLT),
		NewBehavior: func(d *icsim.Device) icsim.DeviceBehavior {
			return &daylightBehavior{}
		},
	})
}
