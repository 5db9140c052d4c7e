package loader

import (
	"github.com/mohammed-shakir/oceanwatch/internal/core/config"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

type Options struct {
	// initial batch
	PriorityFiles   int
	ChunkSize       int
	EarlyExitPoints int
	MinChunkOffset  int

	// background preload
	TotalFiles    int
	BatchSize     int
	SnapshotEvery int
	KnownTypes    []string
}

func DefaultOptions() Options {
	return Options{
		PriorityFiles:   100,
		ChunkSize:       10,
		EarlyExitPoints: 200,
		MinChunkOffset:  50,
		TotalFiles:      843,
		BatchSize:       30,
		SnapshotEvery:   10,
		KnownTypes:      heat.KnownTypes,
	}
}

func OptionsFrom(c config.LoaderCfg) Options {
	o := DefaultOptions()
	o.PriorityFiles = c.PriorityFiles
	o.ChunkSize = c.ChunkSize
	o.EarlyExitPoints = c.EarlyExitPoints
	o.MinChunkOffset = c.MinChunkOffset
	o.TotalFiles = c.TotalFiles
	o.BatchSize = c.BatchSize
	o.SnapshotEvery = c.SnapshotEvery
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.SnapshotEvery <= 0 {
		o.SnapshotEvery = d.SnapshotEvery
	}
	if o.PriorityFiles < 0 {
		o.PriorityFiles = 0
	}
	if o.TotalFiles < 0 {
		o.TotalFiles = 0
	}
	if o.KnownTypes == nil {
		o.KnownTypes = d.KnownTypes
	}
	return o
}
