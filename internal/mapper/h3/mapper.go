package h3mapper

import (
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/mapper"
)

const DefaultRes = 5

type Mapper struct{}

var _ mapper.Interface = (*Mapper)(nil)

func New() *Mapper { return &Mapper{} }

type agg struct {
	count int
	sum   float64
	max   float64
}

// Density bins points into H3 cells at res. Cells are sorted by id; the
// reported position is the cell center.
func (m *Mapper) Density(points []heat.Point, res int) ([]mapper.DensityCell, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}

	acc := make(map[h3.Cell]*agg)
	for _, p := range points {
		c, err := h3.LatLngToCell(h3.LatLng{Lat: p.Lat(), Lng: p.Lng()}, res)
		if err != nil {
			return nil, fmt.Errorf("h3 cell for (%g,%g): %w", p.Lat(), p.Lng(), err)
		}
		a := acc[c]
		if a == nil {
			a = &agg{}
			acc[c] = a
		}
		a.count++
		a.sum += p.Intensity()
		a.max = max(a.max, p.Intensity())
	}

	out := make([]mapper.DensityCell, 0, len(acc))
	for c, a := range acc {
		center, err := h3.CellToLatLng(c)
		if err != nil {
			return nil, fmt.Errorf("h3 cell center %s: %w", c, err)
		}
		out = append(out, mapper.DensityCell{
			Cell:          c.String(),
			Res:           res,
			Count:         a.count,
			MeanIntensity: a.sum / float64(a.count),
			MaxIntensity:  a.max,
			Lat:           center.Lat,
			Lng:           center.Lng,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}

// ToParent returns the ancestor of cell at parentRes.
func (m *Mapper) ToParent(cell string, parentRes int) (string, error) {
	if err := validateRes(parentRes); err != nil {
		return "", err
	}
	var c h3.Cell
	if err := c.UnmarshalText([]byte(cell)); err != nil {
		return "", fmt.Errorf("parse cell: %w", err)
	}
	if !c.IsValid() {
		return "", fmt.Errorf("invalid h3 cell %q", cell)
	}
	curRes := c.Resolution()
	if parentRes > curRes {
		return "", fmt.Errorf("parentRes %d must be <= cell resolution %d", parentRes, curRes)
	}
	if parentRes == curRes {
		return cell, nil
	}
	p, err := c.Parent(parentRes)
	if err != nil {
		return "", fmt.Errorf("h3 parent: %w", err)
	}
	return p.String(), nil
}

// Rollup merges density cells into their ancestors at parentRes. Counts add
// up, the mean is weighted by count and the position moves to the parent
// center.
func (m *Mapper) Rollup(cells []mapper.DensityCell, parentRes int) ([]mapper.DensityCell, error) {
	if err := validateRes(parentRes); err != nil {
		return nil, err
	}
	acc := make(map[string]*agg)
	for _, dc := range cells {
		p, err := m.ToParent(dc.Cell, parentRes)
		if err != nil {
			return nil, err
		}
		a := acc[p]
		if a == nil {
			a = &agg{}
			acc[p] = a
		}
		a.count += dc.Count
		a.sum += dc.MeanIntensity * float64(dc.Count)
		a.max = max(a.max, dc.MaxIntensity)
	}

	out := make([]mapper.DensityCell, 0, len(acc))
	for id, a := range acc {
		var c h3.Cell
		if err := c.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("parse parent cell: %w", err)
		}
		center, err := h3.CellToLatLng(c)
		if err != nil {
			return nil, fmt.Errorf("h3 cell center %s: %w", id, err)
		}
		mean := 0.0
		if a.count > 0 {
			mean = a.sum / float64(a.count)
		}
		out = append(out, mapper.DensityCell{
			Cell:          id,
			Res:           parentRes,
			Count:         a.count,
			MeanIntensity: mean,
			MaxIntensity:  a.max,
			Lat:           center.Lat,
			Lng:           center.Lng,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}
