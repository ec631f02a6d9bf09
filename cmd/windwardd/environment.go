package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/viper"

	"github.com/windward-sim/windward/internal/boat"
	"github.com/windward-sim/windward/internal/chart"
	"github.com/windward-sim/windward/internal/ocean"
	"github.com/windward-sim/windward/internal/polar"
	"github.com/windward-sim/windward/internal/weather"
	"github.com/windward-sim/windward/pkg/geo"
)

// buildEnvironment assembles the chart, weather and ocean providers the tick
// loop consults, all selected from config.
func buildEnvironment() (boat.Environment, error) {
	var env boat.Environment

	if err := polar.LoadClasses(); err != nil {
		return env, err
	}

	switch viper.GetString("chart.type") {
	case "opensea":
		env.Chart = chart.OpenSea{}
	case "polygon":
		land, err := chart.LoadLandFile(viper.GetString("chart.landFile"))
		if err != nil {
			return env, fmt.Errorf("failed to load land file: %w", err)
		}
		env.Chart = chart.NewPolygonChart(land)
	default:
		return env, fmt.Errorf("unknown chart type %q", viper.GetString("chart.type"))
	}

	switch viper.GetString("weather.type") {
	case "uniform":
		env.Weather = weather.Uniform{Wind: geo.Vec{
			Angle: viper.GetFloat64("weather.windAngle"),
			Mag:   viper.GetFloat64("weather.windMps"),
		}}
	case "grid":
		p, err := weather.LoadGridFile(viper.GetString("weather.gridFile"))
		if err != nil {
			return env, fmt.Errorf("failed to load wind grid: %w", err)
		}
		env.Weather = p
	default:
		return env, fmt.Errorf("unknown weather type %q", viper.GetString("weather.type"))
	}

	switch viper.GetString("ocean.type") {
	case "nodata":
		env.Ocean = ocean.NoData{}
	case "grid":
		p, err := ocean.LoadGridFile(viper.GetString("ocean.gridFile"))
		if err != nil {
			return env, fmt.Errorf("failed to load ocean grid: %w", err)
		}
		env.Ocean = p
	default:
		return env, fmt.Errorf("unknown ocean type %q", viper.GetString("ocean.type"))
	}

	seed := viper.GetInt64("sim.seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	env.Rand = rand.New(rand.NewSource(seed))

	return env, nil
}
