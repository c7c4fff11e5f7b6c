package specs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/car-spec-api/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func floatPtr(f float64) *float64 {
	return &f
}

func TestParseRawSpec(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		keys []string
	}{
		{"nil", nil, []string{}},
		{"blank", strPtr("   "), []string{}},
		{"malformed", strPtr(`{"Company": "BMW"`), []string{}},
		{"not an object", strPtr(`["BMW"]`), []string{}},
		{"legacy plain text", strPtr("BMW M3 2020"), []string{}},
		{"keeps source order", strPtr(`{"Serie": "M3", "Company": "BMW", "Body style": "Sedan"}`), []string{"Serie", "Company", "Body style"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, Keys(ParseRawSpec(tt.raw)))
		})
	}
}

func TestMergeCanonicalWinsOverAlias(t *testing.T) {
	car := &models.Car{
		Brand:      "BMW",
		Model:      "M3",
		Year:       2020,
		Horsepower: intPtr(480),
		RawSpec:    strPtr(`{"Horsepower": "425 HP", "horsepower": 400, "Power(HP)\n": "431", "Serie": "M3 Competition"}`),
	}

	merged := Merge(car)

	hp, ok := merged.Get("Power(HP)")
	require.True(t, ok)
	assert.Equal(t, 480, hp)
	for _, alias := range []string{"Horsepower", "horsepower", "Power(HP)\n"} {
		_, present := merged.Get(alias)
		assert.False(t, present, alias)
	}
	assert.Equal(t, []string{"Company", "Model", "Production Years", "Power(HP)", "Serie"}, Keys(merged))
}

func TestMergePlaceholderKeepsRawValue(t *testing.T) {
	car := &models.Car{
		Brand:      "Audi",
		Model:      "A4",
		Year:       2019,
		Horsepower: intPtr(0),
		DriveType:  strPtr("  "),
		RawSpec:    strPtr(`{"Horsepower": "190 HP", "Drive": "FWD"}`),
	}

	merged := Merge(car)

	v, ok := merged.Get("Horsepower")
	assert.True(t, ok)
	assert.Equal(t, "190 HP", v)
	_, ok = merged.Get("Power(HP)")
	assert.False(t, ok)
	v, ok = merged.Get("Drive")
	assert.True(t, ok)
	assert.Equal(t, "FWD", v)
}

func TestMergeStripsSensitiveKeys(t *testing.T) {
	car := &models.Car{
		Brand:   "Kia",
		Model:   "Ceed",
		Year:    2021,
		Price:   23000,
		Color:   strPtr("Red"),
		RawSpec: strPtr(`{"price": 1, "Price": 2, "color": "blue", "Color": "red", "created_at": "x", "createdAt": "x", "Created At": "x", "Created": "x", "updated_at": "y", "updatedAt": "y", "Updated At": "y", "Updated": "y", "UPDATED-AT": "y", "Seats": 5}`),
	}

	merged := Merge(car)

	assert.Equal(t, []string{"Company", "Model", "Production Years", "Seats"}, Keys(merged))
}

func TestMergeOrdering(t *testing.T) {
	car := &models.Car{
		Brand:            "Porsche",
		Model:            "911",
		Year:             2022,
		Cylinders:        intPtr(6),
		FuelType:         strPtr("Petrol"),
		Transmission:     strPtr("PDK"),
		DriveType:        strPtr("RWD"),
		Horsepower:       intPtr(443),
		TorqueNm:         intPtr(530),
		Acceleration0100: floatPtr(3.7),
		VitesseMax:       intPtr(308),
		Length:           strPtr("4519 mm"),
		Width:            strPtr("1852 mm"),
		Height:           strPtr("1300 mm"),
		CityMPG:          floatPtr(18),
		HighwayMPG:       floatPtr(24),
		CombinedMPG:      floatPtr(20.5),
		RawSpec:          strPtr(`{"Body style": "Coupe", "Gearbox": "8-speed", "Company": "PORSCHE"}`),
	}

	merged := Merge(car)

	assert.Equal(t, []string{
		"Company", "Model", "Production Years", "Cylinders", "Fuel", "Gearbox", "Drive Type",
		"Power(HP)", "Torque(Nm)", "Acceleration 0-62 Mph (0-100kph)", "Top Speed",
		"Length", "Width", "Height", "City mpg", "Highway mpg", "Combined mpg", "Body style",
	}, Keys(merged))
	company, _ := merged.Get("Company")
	assert.Equal(t, "Porsche", company)
	year, _ := merged.Get("Production Years")
	assert.Equal(t, "2022", year)
}

func TestMergeIsIdempotent(t *testing.T) {
	car := &models.Car{
		Brand:      "Tesla",
		Model:      "Model 3",
		Year:       2023,
		Horsepower: intPtr(283),
		RawSpec:    strPtr(`{"Horsepower": 283, "Battery": "60 kWh", "price": 40000}`),
	}

	first, err := json.Marshal(Merge(car))
	require.NoError(t, err)
	second, err := json.Marshal(Merge(car))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, `{"Horsepower": 283, "Battery": "60 kWh", "price": 40000}`, *car.RawSpec)
}

func TestMergeMarshalsInOrder(t *testing.T) {
	car := &models.Car{Brand: "Fiat", Model: "500", Year: 2015, RawSpec: strPtr(`{"Seats": 4}`)}

	b, err := json.Marshal(Merge(car))
	require.NoError(t, err)

	assert.Equal(t, `{"Company":"Fiat","Model":"500","Production Years":"2015","Seats":4}`, string(b))
}

func TestReorder(t *testing.T) {
	spec := ParseRawSpec(strPtr(`{"Engine": "V8", "Body style": "Coupe", "Serie": "AMG GT", "Brand": "Mercedes", "Production Years": "2018"}`))

	out := Reorder(spec)

	assert.Equal(t, []string{"Brand", "Serie", "Production Years", "Body style", "Engine"}, Keys(out))
	assert.Equal(t, []string{"Engine", "Body style", "Serie", "Brand", "Production Years"}, Keys(spec))
}

func TestReorderEmpty(t *testing.T) {
	assert.Empty(t, Keys(Reorder(New())))
}

func TestSynthesizeRawSpec(t *testing.T) {
	raw := SynthesizeRawSpec("Honda", "Civic", 2018)

	assert.Equal(t, `{"Company":"Honda","Model":"Civic","Production Years":"2018"}`, raw)
	assert.Equal(t, []string{"Company", "Model", "Production Years"}, Keys(ParseRawSpec(&raw)))
}
