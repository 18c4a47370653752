package geo_test

import (
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestAddress_String(t *testing.T) {
	tests := []struct {
		name    string
		address geo.Address
		want    string
	}{
		{
			name:    "empty country omitted",
			address: geo.Address{StreetName: "Main St", StreetNo: "12", City: "Springfield", Country: ""},
			want:    "main st,12,springfield",
		},
		{
			name:    "all fields",
			address: geo.Address{StreetName: "Bulevardul Unirii", StreetNo: "1A", City: "Bucharest", Country: "RO"},
			want:    "bulevardul unirii,1a,bucharest,ro",
		},
		{
			name:    "gaps keep order",
			address: geo.Address{StreetNo: "7", Country: "Romania"},
			want:    "7,romania",
		},
		{
			name:    "empty",
			address: geo.Address{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.address.String())
		})
	}
}

func TestAddress_IsZero(t *testing.T) {
	assert.True(t, geo.Address{}.IsZero())
	assert.False(t, geo.Address{City: "Cluj"}.IsZero())
}
