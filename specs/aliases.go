package specs

import (
	"strconv"

	"github.com/linesmerrill/car-spec-api/models"
)

const (
	keyCompany         = "Company"
	keyModel           = "Model"
	keyProductionYears = "Production Years"
)

// canonicalField maps one canonical Car column to the display key it is
// rendered under and every spelling the raw spec has been seen to use for
// the same concept.
type canonicalField struct {
	key     string
	aliases []string
	value   func(c *models.Car) (any, bool)
}

// canonicalFields is ordered by display priority.
var canonicalFields = []canonicalField{
	{keyCompany, []string{"brand", "Brand", "Company"}, str(func(c *models.Car) *string { return &c.Brand })},
	{keyModel, []string{"model", "Model"}, str(func(c *models.Car) *string { return &c.Model })},
	{keyProductionYears, []string{"year", "Year", "Production Years"}, func(c *models.Car) (any, bool) {
		y, ok := models.Known(&c.Year)
		if !ok {
			return nil, false
		}
		return strconv.Itoa(y), true
	}},
	{"Cylinders", []string{"cylinders", "Cylinders"}, num(func(c *models.Car) *int { return c.Cylinders })},
	{"Fuel", []string{"fuel_type", "Fuel Type", "Fuel"}, str(func(c *models.Car) *string { return c.FuelType })},
	{"Gearbox", []string{"transmission", "Transmission", "Gearbox"}, str(func(c *models.Car) *string { return c.Transmission })},
	{"Drive Type", []string{"drive_type", "Drive type", "Drive Type", "Drive"}, str(func(c *models.Car) *string { return c.DriveType })},
	{"Power(HP)", []string{"horsepower", "Horsepower", "Power(HP)", "Power(HP)\n", "Power(HP)\r\n"}, num(func(c *models.Car) *int { return c.Horsepower })},
	{"Torque(Nm)", []string{"torque_nm", "Torque", "Torque (Nm)", "Torque Nm", "Torque(Nm)"}, num(func(c *models.Car) *int { return c.TorqueNm })},
	{"Acceleration 0-62 Mph (0-100kph)", []string{"acceleration_0_100", "Acceleration 0-100", "Acceleration 0-62 Mph (0-100kph)", "0-100", "0-100 km/h", "0-100km/h"}, num(func(c *models.Car) *float64 { return c.Acceleration0100 })},
	{"Top Speed", []string{"vitesse_max", "Top Speed", "Vitesse Max", "Vitesse max"}, num(func(c *models.Car) *int { return c.VitesseMax })},
	{"Length", []string{"length", "Length"}, str(func(c *models.Car) *string { return c.Length })},
	{"Width", []string{"width", "Width"}, str(func(c *models.Car) *string { return c.Width })},
	{"Height", []string{"height", "Height"}, str(func(c *models.Car) *string { return c.Height })},
	{"City mpg", []string{"city_mpg", "City MPG", "City mpg"}, num(func(c *models.Car) *float64 { return c.CityMPG })},
	{"Highway mpg", []string{"highway_mpg", "Highway MPG", "Highway mpg"}, num(func(c *models.Car) *float64 { return c.HighwayMPG })},
	{"Combined mpg", []string{"combined_mpg", "Combined MPG", "Combined mpg"}, num(func(c *models.Car) *float64 { return c.CombinedMPG })},
}

// displayPriority is the short key list Reorder promotes to the front.
var displayPriority = []string{keyCompany, "Brand", keyModel, "Serie", keyProductionYears, "Body style"}

// strippedKeys holds the normalized forms of keys that never reach
// attendee views: pricing, paint and record timestamps.
var strippedKeys = map[string]struct{}{
	"price":     {},
	"color":     {},
	"created":   {},
	"createdat": {},
	"updated":   {},
	"updatedat": {},
}

func str(field func(c *models.Car) *string) func(c *models.Car) (any, bool) {
	return func(c *models.Car) (any, bool) {
		v, ok := models.KnownString(field(c))
		return v, ok
	}
}

func num[T models.Number](field func(c *models.Car) *T) func(c *models.Car) (any, bool) {
	return func(c *models.Car) (any, bool) {
		v, ok := models.Known(field(c))
		return v, ok
	}
}
