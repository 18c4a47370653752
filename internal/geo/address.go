package geo

import "strings"

// Address is a postal address. Every field is optional.
type Address struct {
	StreetName string `json:"street_name,omitempty"`
	StreetNo   string `json:"street_no,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
}

// String returns the lower-cased, comma joined, non-empty fields in the order
// street name, street number, city, country. Adapters use it as a lookup key and
// as a free-form geocoding query.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, field := range [...]string{a.StreetName, a.StreetNo, a.City, a.Country} {
		if field != "" {
			parts = append(parts, strings.ToLower(field))
		}
	}
	return strings.Join(parts, ",")
}

func (a Address) IsZero() bool {
	return a.StreetName == "" && a.StreetNo == "" && a.City == "" && a.Country == ""
}
