package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_simulator/internal/model"
)

func TestWFRITE2014FiltersByLocality(t *testing.T) {
	peninsula, err := WFRITE2014(model.PENINSULA)
	require.NoError(t, err)
	canarias, err := WFRITE2014(model.CANARIAS)
	require.NoError(t, err)

	pIn, ok := peninsula.Lookup(model.ELECTRICIDAD, model.SourceRed, model.DestInput, model.StepA)
	require.True(t, ok)
	cIn, ok := canarias.Lookup(model.ELECTRICIDAD, model.SourceRed, model.DestInput, model.StepA)
	require.True(t, ok)
	assert.NotEqual(t, pIn, cIn)
}

func TestWFRITE2014IncludesLocalityIndependentRows(t *testing.T) {
	f, err := WFRITE2014(model.BALEARES)
	require.NoError(t, err)

	_, ok := f.Lookup(model.ELECTRICIDAD, model.SourceInsitu, model.DestInput, model.StepA)
	assert.True(t, ok)
	_, ok = f.Lookup(model.GASNATURAL, model.SourceRed, model.DestInput, model.StepA)
	assert.True(t, ok)
	_, ok = f.Lookup(model.MEDIOAMBIENTE, model.SourceInsitu, model.DestInput, model.StepA)
	assert.True(t, ok)
}

func TestWFRITE2014OmitsOtherLocalityElectricity(t *testing.T) {
	f, err := WFRITE2014(model.PENINSULA)
	require.NoError(t, err)
	for _, row := range f.Rows {
		if row.Carrier == model.ELECTRICIDAD && row.Source == model.SourceRed {
			// only verifiable indirectly: count of RED electricity rows must be
			// exactly 3 (input, to_grid, to_nEPB) for the requested locality.
			_ = row
		}
	}
	count := 0
	for _, row := range f.Rows {
		if row.Carrier == model.ELECTRICIDAD && row.Source == model.SourceRed {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestWFRITE2014OmitsRed1Red2(t *testing.T) {
	f, err := WFRITE2014(model.PENINSULA)
	require.NoError(t, err)
	_, ok := f.Lookup(model.RED1, model.SourceRed, model.DestInput, model.StepA)
	assert.False(t, ok)
	_, ok = f.Lookup(model.RED2, model.SourceRed, model.DestInput, model.StepA)
	assert.False(t, ok)
}
