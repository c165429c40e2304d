// Package workload drives a registry with concurrent producers the way a
// deserializer would: ids are reserved ahead of their objects, several
// producers race to bind the same id, and most objects are dropped so their
// entries become orphans.
package workload

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/objectregistry/pkg/config"
	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/parallel"
	"github.com/objectregistry/pkg/registry"
	"github.com/objectregistry/pkg/utils"
)

// typeIDBase keeps type ids clear of object ids.
const typeIDBase = uint64(1) << 48

// Config holds simulator configuration.
type Config struct {
	Producers   int     // Concurrent producers
	Objects     int     // Distinct object ids to bind
	Types       int     // Type dictionary entries
	RetainRatio float64 // Share of objects kept reachable after the run
	Reserve     int     // Ids reserved ahead of their objects
	Collect     bool    // Run a GC cycle after producing so dropped objects orphan
}

// DefaultConfig returns default simulator configuration.
func DefaultConfig() *Config {
	return &Config{
		Producers:   4,
		Objects:     10000,
		Types:       16,
		RetainRatio: 0.5,
		Reserve:     100,
		Collect:     true,
	}
}

// FromConfig creates simulator config from application config.
func FromConfig(cfg *config.WorkloadConfig) *Config {
	c := DefaultConfig()
	c.Producers = cfg.Producers
	c.Objects = cfg.Objects
	c.Types = cfg.Types
	c.RetainRatio = cfg.RetainRatio
	c.Reserve = cfg.Objects / 100
	return c
}

// Params returns the parameters recorded on the run.
func (c *Config) Params() model.WorkloadParams {
	return model.WorkloadParams{
		Producers:   c.Producers,
		Objects:     c.Objects,
		Types:       c.Types,
		RetainRatio: c.RetainRatio,
	}
}

// Result summarizes one simulation.
type Result struct {
	Run      *model.Run
	FirstID  uint64
	Won      int64 // AddRef calls whose object was bound
	Lost     int64 // AddRef calls that returned another producer's object
	Reserved int   // Ids reserved before binding
	Bound    int   // Reserved ids bound afterwards
	TypeIDs  int

	// retained keeps objects reachable until Release.
	retained []any
}

// Retained returns the number of objects kept reachable.
func (r *Result) Retained() int {
	return len(r.retained)
}

// Release drops the retained objects so the next collection orphans them.
func (r *Result) Release() {
	r.retained = nil
}

// Simulator runs workloads against one registry.
type Simulator struct {
	reg    *registry.Registry
	config *Config
	clock  utils.Clock
	logger utils.Logger
	ids    *Sequence
}

// New creates a Simulator. Object ids start at 1.
func New(reg *registry.Registry, cfg *Config, clock utils.Clock, logger utils.Logger) *Simulator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Simulator{
		reg:    reg,
		config: cfg,
		clock:  clock,
		logger: logger,
		ids:    NewSequence(1),
	}
}

// Run executes one simulation. The returned run is finished, and failed when
// an error is returned.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	run := model.NewRun(uuid.NewString(), s.config.Params())
	run.Start(s.clock.Now())

	res, err := s.run(ctx)
	if res == nil {
		res = &Result{}
	}
	res.Run = run
	run.Finish(s.clock.Now(), err)

	if err != nil {
		s.logger.Error("Run %s failed: %v", run.RunUUID, err)
		return res, err
	}
	s.logger.Info("Run %s bound %d objects (%d lost races), retained %d, registry size %d",
		run.RunUUID, res.Won, res.Lost, res.Retained(), s.reg.Size())
	return res, nil
}

func (s *Simulator) run(ctx context.Context) (*Result, error) {
	if s.config.Producers < 1 {
		return nil, errors.Newf(errors.CodeInvalidInput, "producers must be at least 1, got %d", s.config.Producers)
	}

	res := &Result{}
	if err := s.registerTypes(res); err != nil {
		return res, err
	}

	if err := s.reserve(res); err != nil {
		return res, err
	}

	if err := s.produce(ctx, res); err != nil {
		return res, err
	}

	if err := s.bindReserved(res); err != nil {
		return res, err
	}

	if s.config.Collect {
		runtime.GC()
	}
	return res, nil
}

// registerTypes builds the type dictionary and checks it against itself the
// way a reader checks a stream's dictionary against a registry.
func (s *Simulator) registerTypes(res *Result) error {
	types := dictionaryTypes(s.config.Types)
	mappings := make([]registry.TypeMapping, len(types))
	for i, t := range types {
		mappings[i] = registry.TypeMapping{TypeID: typeIDBase + uint64(i), Type: t}
	}

	if err := s.reg.ValidatePossibleTypeMappings(mappings); err != nil {
		return fmt.Errorf("type dictionary rejected: %w", err)
	}
	for _, m := range mappings {
		if _, err := s.reg.RegisterType(m.TypeID, m.Type); err != nil {
			return fmt.Errorf("failed to register type %v: %w", m.Type, err)
		}
	}
	if err := s.reg.ValidateExistingTypeMappings(mappings); err != nil {
		return fmt.Errorf("type dictionary not applied: %w", err)
	}

	res.TypeIDs = len(mappings)
	return nil
}

// reserve registers hollow ids ahead of the objects that will fill them.
func (s *Simulator) reserve(res *Result) error {
	if s.config.Reserve <= 0 {
		return nil
	}
	first := s.ids.Reserve(s.config.Reserve)
	for i := 0; i < s.config.Reserve; i++ {
		if _, err := s.reg.RegisterObjectID(first + uint64(i)); err != nil {
			return err
		}
	}
	res.FirstID = first
	res.Reserved = s.config.Reserve
	return nil
}

// produce splits the object ids over the producers. Every producer also
// offers its own object for the ids of the next producer's chunk, so each id
// is raced by two producers and AddRef decides the winner.
func (s *Simulator) produce(ctx context.Context, res *Result) error {
	n := s.config.Objects
	if n <= 0 {
		return nil
	}
	first := s.ids.Reserve(n)
	if res.FirstID == 0 {
		res.FirstID = first
	}

	chunks := parallel.Chunks(n, s.config.Producers)
	winners := make([]any, n)
	var won, lost atomic.Int64

	offer := func(i int) (any, error) {
		seq := first + uint64(i)
		mine := newObject(seq)
		got, err := s.reg.AddRef(seq, mine)
		if err != nil {
			return nil, err
		}
		if got == mine {
			won.Add(1)
		} else {
			lost.Add(1)
		}
		return got, nil
	}

	producers := make([]int, len(chunks))
	for p := range producers {
		producers[p] = p
	}
	_, err := parallel.ForEach(ctx, producers, parallel.DefaultPoolConfig().WithWorkers(len(chunks)),
		func(ctx context.Context, p int) error {
			own := chunks[p]
			rival := chunks[(p+1)%len(chunks)]
			for i := own[0]; i < own[1]; i++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				got, err := offer(i)
				if err != nil {
					return err
				}
				// Only the owning producer writes winners[i]
				winners[i] = got
				if len(chunks) > 1 && rival != own {
					j := rival[0] + (i - own[0])
					if j < rival[1] {
						if _, err := offer(j); err != nil {
							return err
						}
					}
				}
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("producers failed: %w", err)
	}

	res.Won = won.Load()
	res.Lost = lost.Load()
	for i, obj := range winners {
		if retain(i, s.config.RetainRatio) {
			res.retained = append(res.retained, obj)
		}
	}
	return nil
}

// bindReserved fills half of the reserved ids with retained objects.
func (s *Simulator) bindReserved(res *Result) error {
	for i := 0; i < res.Reserved; i += 2 {
		id := res.FirstID + uint64(i)
		obj := newObject(id)
		if _, err := s.reg.RegisterObject(id, obj); err != nil {
			return err
		}
		res.retained = append(res.retained, obj)
		res.Bound++
	}
	return nil
}

// retain decides deterministically whether object i stays reachable.
func retain(i int, ratio float64) bool {
	return float64(i%100) < ratio*100
}
