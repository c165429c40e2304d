package statistics

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectregistry/internal/testutil"
	"github.com/objectregistry/pkg/parallel"
	"github.com/objectregistry/pkg/registry"
)

func populatedRegistry(t *testing.T) (*registry.Registry, []any) {
	t.Helper()
	r, err := registry.New()
	require.NoError(t, err)

	var keep []any
	id := uint64(1)
	for _, n := range testutil.NewNodes("node", 6) {
		_, err := r.RegisterObject(id, n)
		require.NoError(t, err)
		keep = append(keep, n)
		id++
	}
	for i := 0; i < 3; i++ {
		a := &testutil.Account{ID: int64(i)}
		_, err := r.RegisterObject(id, a)
		require.NoError(t, err)
		keep = append(keep, a)
		id++
	}
	o := &testutil.Order{ID: 1}
	_, err = r.RegisterObject(id, o)
	require.NoError(t, err)
	keep = append(keep, o)

	_, err = r.RegisterType(100, reflect.TypeOf(testutil.Node{}))
	require.NoError(t, err)
	_, err = r.RegisterObjectID(200)
	require.NoError(t, err)
	_, err = r.RegisterObjectID(201)
	require.NoError(t, err)
	return r, keep
}

func TestPopulationCalculator_Calculate(t *testing.T) {
	r, keep := populatedRegistry(t)

	report, err := NewPopulationCalculator(WithVerify(true)).Calculate(context.Background(), r, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunUUID)
	assert.Equal(t, 13, report.Size)
	assert.Equal(t, 1024, report.SlotLength)
	assert.Equal(t, 11, report.States.Live)
	assert.Equal(t, 2, report.States.Hollow)
	assert.Zero(t, report.States.Orphan)
	assert.Equal(t, 1, report.TypeMappings)
	assert.Equal(t, 3, report.DistinctTypes)
	assert.Equal(t, 2, report.UnmappedTypes, "Account and Order have no type id")
	assert.Empty(t, report.VerifyError)
	assert.InDelta(t, 13.0/1024, report.LoadFactor, 1e-9)

	require.Len(t, report.TopTypes, 3)
	assert.Equal(t, "testutil.Node", report.TopTypes[0].TypeName)
	assert.Equal(t, 6, report.TopTypes[0].Count)
	assert.InDelta(t, 60.0, report.TopTypes[0].Percentage, 1e-9)
	assert.Equal(t, "testutil.Account", report.TopTypes[1].TypeName)
	assert.Equal(t, "testutil.Order", report.TopTypes[2].TypeName)

	runtime.KeepAlive(keep)
}

func TestPopulationCalculator_TopN(t *testing.T) {
	r, keep := populatedRegistry(t)

	calc := NewPopulationCalculator(WithTopN(1), WithPoolConfig(parallel.PoolConfig{MaxWorkers: 2}))
	report, err := calc.Calculate(context.Background(), r, "")
	require.NoError(t, err)

	require.Len(t, report.TopTypes, 1)
	assert.Equal(t, "testutil.Node", report.TopTypes[0].TypeName)
	assert.Equal(t, 3, report.DistinctTypes)

	runtime.KeepAlive(keep)
}

func TestPopulationCalculator_Empty(t *testing.T) {
	r, err := registry.New()
	require.NoError(t, err)

	report, err := NewPopulationCalculator().Calculate(context.Background(), r, "")
	require.NoError(t, err)

	assert.Zero(t, report.States.Total())
	assert.Empty(t, report.TopTypes)
	assert.Zero(t, report.LoadFactor)
	require.Len(t, report.Buckets, 1)
	assert.Equal(t, 1024, report.Buckets[0].Slots)
}

func TestPopulationCalculator_Cancelled(t *testing.T) {
	r, keep := populatedRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewPopulationCalculator().Calculate(ctx, r, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)

	runtime.KeepAlive(keep)
}

type brokenSource struct {
	*registry.Registry
}

func (brokenSource) Verify() error {
	return errors.New("id 5 tracked twice")
}

func TestPopulationCalculator_RecordsVerifyFailure(t *testing.T) {
	r, keep := populatedRegistry(t)

	report, err := NewPopulationCalculator(WithVerify(true)).Calculate(context.Background(), brokenSource{r}, "")
	require.NoError(t, err)
	assert.Equal(t, "id 5 tracked twice", report.VerifyError)
	assert.False(t, report.Healthy())

	report, err = NewPopulationCalculator().Calculate(context.Background(), brokenSource{r}, "")
	require.NoError(t, err)
	assert.Empty(t, report.VerifyError, "verification is opt-in")

	runtime.KeepAlive(keep)
}
