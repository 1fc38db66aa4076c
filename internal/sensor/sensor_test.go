package sensor_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
)

var _ = Describe("ToDataModel", func() {
	It("should carry the allow-list and flatten the coordinates", func() {
		s := &sensor.Sensor{
			SensorID:    "s-100",
			NetworkID:   "net-1",
			Location:    "Boiler Room",
			Region:      "north",
			IsActive:    true,
			AccessUsers: []string{"alice"},
			Coordinates: sensor.Coordinates{Lat: 52.37, Lng: 4.89},
			LastUpdated: time.Now(),
		}

		dm := sensor.ToDataModel(s)
		Expect(dm.AccessUsers).To(Equal([]string{"alice"}))
		Expect(dm.Lat).To(Equal(52.37))
		Expect(dm.Lng).To(Equal(4.89))

		back := sensor.FromDataModel(dm)
		Expect(back).To(Equal(s))
	})
})
