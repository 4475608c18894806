package place

// Kind identifies one geo-tagged service directory.
type Kind string

const (
	KindPharmacy   Kind = "pharmacy"
	KindFuel       Kind = "fuel"
	KindHospital   Kind = "hospital"
	KindPostOffice Kind = "post_office"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPharmacy, KindFuel, KindHospital, KindPostOffice:
		return true
	}
	return false
}

// DatasetSlug maps a kind to its upstream open-data dataset.
func (k Kind) DatasetSlug() string {
	switch k {
	case KindPharmacy:
		return "lekarny"
	case KindFuel:
		return "cerpaci-stanice"
	case KindHospital:
		return "nemocnice"
	case KindPostOffice:
		return "posty"
	default:
		return ""
	}
}

// Item is one directory record, immutable once constructed. DistanceMeters
// is filled only for geo-mode queries.
type Item struct {
	Kind           Kind     `json:"kind"`
	Name           string   `json:"name"`
	Street         string   `json:"street,omitempty"`
	City           string   `json:"city"`
	PostalCode     string   `json:"postalCode,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
}

// HasCoordinates reports whether the record can be ranked by distance.
func (i Item) HasCoordinates() bool {
	return i.Lat != nil && i.Lon != nil
}

// DefaultLimit and MaxLimit bound result sizes; MaxRadiusKm bounds geo mode.
const (
	DefaultLimit = 10
	MaxLimit     = 50
	MaxRadiusKm  = 100
)
