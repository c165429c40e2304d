// Package statistics derives population and bucket statistics from a registry.
package statistics

import (
	"context"
	"reflect"
	"sort"

	"github.com/objectregistry/pkg/collections"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/parallel"
	"github.com/objectregistry/pkg/registry"
)

// Source is the read-only registry surface the calculator needs.
type Source interface {
	IterateEntries(fn func(registry.Entry) bool)
	IterateTypes(fn func(registry.TypeEntry) bool)
	Shape() registry.Shape
	Verify() error
}

// PopulationCalculator builds population reports.
type PopulationCalculator struct {
	topN   int
	verify bool
	pool   parallel.PoolConfig
}

// PopulationOption configures the PopulationCalculator.
type PopulationOption func(*PopulationCalculator)

// WithTopN sets the number of types listed in TopTypes.
func WithTopN(n int) PopulationOption {
	return func(c *PopulationCalculator) {
		c.topN = n
	}
}

// WithVerify runs the registry's structural check and records its failure.
func WithVerify(verify bool) PopulationOption {
	return func(c *PopulationCalculator) {
		c.verify = verify
	}
}

// WithPoolConfig sets the fan-out used to tally types.
func WithPoolConfig(cfg parallel.PoolConfig) PopulationOption {
	return func(c *PopulationCalculator) {
		c.pool = cfg
	}
}

// NewPopulationCalculator creates a new PopulationCalculator.
func NewPopulationCalculator(opts ...PopulationOption) *PopulationCalculator {
	c := &PopulationCalculator{
		topN: 15,
		pool: parallel.DefaultPoolConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate walks src once and returns its population report.
func (c *PopulationCalculator) Calculate(ctx context.Context, src Source, runUUID string) (*model.PopulationReport, error) {
	report := model.NewPopulationReport(runUUID)

	shape := src.Shape()
	report.SlotLength = shape.SlotLength
	report.Capacity = shape.Capacity
	report.HashDensity = shape.HashDensity
	report.Size = shape.Size
	report.GrowthDisabled = shape.GrowthDisabled
	report.LongestIDBucket = shape.LongestIDBucket
	report.LongestHashBucket = shape.LongestHashBucket
	report.LoadFactor = LoadFactor(shape)
	report.Buckets = BucketLengths(shape)

	objects := make([]any, 0, shape.Size)
	src.IterateEntries(func(e registry.Entry) bool {
		switch e.State {
		case registry.StateLive:
			report.States.Live++
			if !e.IsType() {
				objects = append(objects, e.Object)
			}
		case registry.StateHollow:
			report.States.Hollow++
		case registry.StateOrphan:
			report.States.Orphan++
		}
		return ctx.Err() == nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapped := collections.NewSet[reflect.Type]()
	src.IterateTypes(func(te registry.TypeEntry) bool {
		mapped.Add(te.Type)
		return true
	})
	report.TypeMappings = mapped.Len()

	counts := parallel.Aggregate(ctx, objects, c.pool,
		func(obj any) (reflect.Type, int) { return reflect.TypeOf(obj).Elem(), 1 },
		func(existing, next int) int { return existing + next })
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.DistinctTypes = len(counts)
	for typ := range counts {
		if !mapped.Contains(typ) {
			report.UnmappedTypes++
		}
	}
	report.TopTypes = c.topTypes(counts, len(objects))

	if c.verify {
		if err := src.Verify(); err != nil {
			report.VerifyError = err.Error()
		}
	}
	return report, nil
}

func (c *PopulationCalculator) topTypes(counts map[reflect.Type]int, total int) []model.TypePopulation {
	entries := make([]model.TypePopulation, 0, len(counts))
	for typ, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		entries = append(entries, model.TypePopulation{
			TypeName:   typ.String(),
			Count:      n,
			Percentage: pct,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].TypeName < entries[j].TypeName
	})

	if c.topN > 0 && len(entries) > c.topN {
		entries = entries[:c.topN]
	}
	return entries
}
