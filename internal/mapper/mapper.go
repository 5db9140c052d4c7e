// Package mapper bins heat points into hexagonal grid cells.
package mapper

import "github.com/mohammed-shakir/oceanwatch/internal/heat"

// DensityCell summarizes the heat points that fall into one grid cell.
type DensityCell struct {
	Cell          string  `json:"cell"`
	Res           int     `json:"res"`
	Count         int     `json:"count"`
	MeanIntensity float64 `json:"mean_intensity"`
	MaxIntensity  float64 `json:"max_intensity"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

type Interface interface {
	Density(points []heat.Point, res int) ([]DensityCell, error)
	// Rollup coarsens cells to parentRes, merging siblings.
	Rollup(cells []DensityCell, parentRes int) ([]DensityCell, error)
}
