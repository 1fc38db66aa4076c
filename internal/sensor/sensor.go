package sensor

import (
	"sort"
	"time"

	networkDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/network"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sensor is the wire shape the dashboard browses. AccessUsers is the
// authoritative allow-list for non-admin visibility.
type Sensor struct {
	SensorID    string      `json:"sensorId"`
	NetworkID   string      `json:"networkId"`
	Location    string      `json:"location"`
	Region      string      `json:"region"`
	IsActive    bool        `json:"isActive"`
	AccessUsers []string    `json:"accessUsers"`
	Coordinates Coordinates `json:"coordinates"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

type Network struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Company string   `json:"company,omitempty"`
	Users   []string `json:"users,omitempty"`
}

// DataRow is one time-series sample. Different sensor models report different
// columns, so rows stay dynamic.
type DataRow map[string]interface{}

// Headers derives the union of column names across rows. Keys are sorted
// within each row so the result is stable; the table view needs the same
// headers on every render even when rows are ragged.
func Headers(rows []DataRow) []string {
	var headers []string
	seen := make(map[string]bool)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	return headers
}

func ToDataModel(s *Sensor) *networkDatamodel.Sensor {
	return &networkDatamodel.Sensor{
		SensorID:    s.SensorID,
		NetworkID:   s.NetworkID,
		Location:    s.Location,
		Region:      s.Region,
		IsActive:    s.IsActive,
		Lat:         s.Coordinates.Lat,
		Lng:         s.Coordinates.Lng,
		AccessUsers: s.AccessUsers,
		LastUpdated: s.LastUpdated,
	}
}

func FromDataModel(dm *networkDatamodel.Sensor) *Sensor {
	return &Sensor{
		SensorID:    dm.SensorID,
		NetworkID:   dm.NetworkID,
		Location:    dm.Location,
		Region:      dm.Region,
		IsActive:    dm.IsActive,
		AccessUsers: dm.AccessUsers,
		Coordinates: Coordinates{Lat: dm.Lat, Lng: dm.Lng},
		LastUpdated: dm.LastUpdated,
	}
}

func NetworkFromDataModel(dm *networkDatamodel.Network) *Network {
	return &Network{
		ID:      dm.ID,
		Name:    dm.Name,
		Company: dm.Company,
		Users:   dm.Users,
	}
}
