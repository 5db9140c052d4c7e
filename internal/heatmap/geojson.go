package heatmap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// FeatureCollection renders heat points as GeoJSON Point features carrying
// an "intensity" property.
func FeatureCollection(points []heat.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(points))
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.Lng(), p.Lat()})
		f.Properties["intensity"] = p.Intensity()
		fc.Append(f)
	}
	return fc
}
