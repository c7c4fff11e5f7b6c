package models

import "time"

// Car holds the structure for the cars collection in mongo. Pointer fields are
// optional attributes; a stored zero or blank value is a placeholder for
// "unknown", see Known and KnownString.
type Car struct {
	ID               int64     `json:"id" bson:"_id"`
	Brand            string    `json:"brand" bson:"brand"`
	Model            string    `json:"model" bson:"model"`
	Price            float64   `json:"price" bson:"price"`
	Year             int       `json:"year" bson:"year"`
	Cylinders        *int      `json:"cylinders" bson:"cylinders"`
	EngineType       *string   `json:"engine_type" bson:"engine_type"`
	Horsepower       *int      `json:"horsepower" bson:"horsepower"`
	FuelType         *string   `json:"fuel_type" bson:"fuel_type"`
	Transmission     *string   `json:"transmission" bson:"transmission"`
	Acceleration0100 *float64  `json:"acceleration_0_100" bson:"acceleration_0_100"`
	VitesseMax       *int      `json:"vitesse_max" bson:"vitesse_max"`
	DriveType        *string   `json:"drive_type" bson:"drive_type"`
	CityMPG          *float64  `json:"city_mpg" bson:"city_mpg"`
	HighwayMPG       *float64  `json:"highway_mpg" bson:"highway_mpg"`
	CombinedMPG      *float64  `json:"combined_mpg" bson:"combined_mpg"`
	TorqueNm         *int      `json:"torque_nm" bson:"torque_nm"`
	Length           *string   `json:"length" bson:"length"`
	Width            *string   `json:"width" bson:"width"`
	Height           *string   `json:"height" bson:"height"`
	RawSpec          *string   `json:"raw_spec" bson:"raw_spec"`
	Color            *string   `json:"color" bson:"color"`
	Mileage          *int      `json:"mileage" bson:"mileage"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}
