package model

// PropertyAttributes describes a property submitted for analysis.
// Zero numeric fields mean "not provided".
type PropertyAttributes struct {
	Size           float64  `json:"size"`              // m²
	Stories        int      `json:"stories,omitempty"` // floors above ground
	Rooms          int      `json:"rooms,omitempty"`
	AvgRoomSize    float64  `json:"avg_room_size,omitempty"` // m²
	Amenities      []string `json:"amenities,omitempty"`
	Usage          string   `json:"usage"`
	Location       string   `json:"location"`
	HasCoordinates bool     `json:"has_coordinates,omitempty"`
	Category       Category `json:"category,omitempty"` // manual override, skips usage inference
}

// HasAmenity reports whether the amenity set contains name (case-insensitive).
func (p *PropertyAttributes) HasAmenity(name string) bool {
	key := NormalizeKey(name)
	for _, a := range p.Amenities {
		if NormalizeKey(a) == key {
			return true
		}
	}
	return false
}
