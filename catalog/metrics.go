package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/linesmerrill/car-spec-api/models"
)

// RankingMetric describes a column cars can be ranked by
type RankingMetric struct {
	Name        string `json:"name"`
	Display     string `json:"display"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	Usage       string `json:"usage"`

	ascending bool
	raw       func(c *models.Car) interface{}
}

// rankingMetrics is ordered as the valid metric list is reported.
var rankingMetrics = []RankingMetric{
	{
		Name:        "horsepower",
		Display:     "Horsepower",
		Description: "Engine power in HP (higher is faster)",
		Direction:   "higher is better",
		raw:         func(c *models.Car) interface{} { return deref(c.Horsepower) },
	},
	{
		Name:        "acceleration_0_100",
		Display:     "Acceleration 0-100 km/h",
		Description: "Time to accelerate from 0 to 100 km/h in seconds",
		Direction:   "lower is better (faster)",
		ascending:   true,
		raw:         func(c *models.Car) interface{} { return deref(c.Acceleration0100) },
	},
	{
		Name:        "vitesse_max",
		Display:     "Top Speed",
		Description: "Maximum speed in km/h",
		Direction:   "higher is better",
		raw:         func(c *models.Car) interface{} { return deref(c.VitesseMax) },
	},
	{
		Name:        "combined_mpg",
		Display:     "Fuel Efficiency",
		Description: "Combined MPG (miles per gallon)",
		Direction:   "higher is better (more efficient)",
		raw:         func(c *models.Car) interface{} { return deref(c.CombinedMPG) },
	},
	{
		Name:        "torque_nm",
		Display:     "Torque",
		Description: "Engine torque in Newton-meters",
		Direction:   "higher is better",
		raw:         func(c *models.Car) interface{} { return deref(c.TorqueNm) },
	},
	{
		Name:        "year",
		Display:     "Production Year",
		Description: "Most recent production year",
		Direction:   "higher is better (newer)",
		raw:         func(c *models.Car) interface{} { return c.Year },
	},
}

func init() {
	for i := range rankingMetrics {
		rankingMetrics[i].Usage = "GET /api/v1/cars/top/" + rankingMetrics[i].Name + "?limit=10"
	}
}

// MetricNames lists the metrics TopBy accepts
func MetricNames() []string {
	names := make([]string, len(rankingMetrics))
	for i, m := range rankingMetrics {
		names[i] = m.Name
	}
	return names
}

func lookupMetric(name string) (RankingMetric, bool) {
	for _, m := range rankingMetrics {
		if m.Name == name {
			return m, true
		}
	}
	return RankingMetric{}, false
}

// DisplayName renders a metric name for humans, e.g. "combined_mpg" becomes
// "Combined Mpg".
func DisplayName(metric string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(metric, "_", " "))
}

func deref[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
