package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy_simulator/internal/carrier"
	"energy_simulator/internal/components"
	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/factors"
	"energy_simulator/internal/model"
)

func constRow(c model.Carrier, role model.Role, origin model.Origin, svc model.Service, v float32, n int) model.ComponentRow {
	values := make([]float32, n)
	for i := range values {
		values[i] = v
	}
	return model.ComponentRow{Carrier: c, Role: role, Origin: origin, Service: svc, Values: values}
}

func basicFactors() factors.Factors {
	var f factors.Factors
	set := func(c model.Carrier, s model.Source, d model.Dest, step model.Step, ren, nren, co2 float32) {
		f.Rows = append(f.Rows, model.WeightingRow{Carrier: c, Source: s, Dest: d, Step: step, Ren: ren, Nren: nren, Co2: co2})
	}
	set(model.ELECTRICIDAD, model.SourceRed, model.DestInput, model.StepA, 0.414, 1.954, 0.331)
	set(model.ELECTRICIDAD, model.SourceRed, model.DestGrid, model.StepA, 0.070, 2.792, 0.420)
	set(model.ELECTRICIDAD, model.SourceRed, model.DestNEPB, model.StepA, 0.070, 2.792, 0.420)
	set(model.ELECTRICIDAD, model.SourceInsitu, model.DestInput, model.StepA, 1.000, 0.000, 0.000)
	set(model.ELECTRICIDAD, model.SourceInsitu, model.DestGrid, model.StepA, 1.000, 0.000, 0.000)
	set(model.ELECTRICIDAD, model.SourceInsitu, model.DestGrid, model.StepB, 0.656, 0.838, 0.089)
	set(model.ELECTRICIDAD, model.SourceInsitu, model.DestNEPB, model.StepA, 1.000, 0.000, 0.000)
	set(model.ELECTRICIDAD, model.SourceInsitu, model.DestNEPB, model.StepB, 0.656, 0.838, 0.089)
	set(model.MEDIOAMBIENTE, model.SourceInsitu, model.DestInput, model.StepA, 1.000, 0.000, 0.000)
	set(model.MEDIOAMBIENTE, model.SourceInsitu, model.DestGrid, model.StepA, 1.000, 0.000, 0.000)
	set(model.MEDIOAMBIENTE, model.SourceInsitu, model.DestNEPB, model.StepA, 1.000, 0.000, 0.000)
	return f
}

func TestS1SingleConsumptionRow(t *testing.T) {
	n := 8760
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 1.0, n),
	}}
	res, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)

	expected := carrier.Scale(carrier.RenNrenCo2{Ren: 0.414, Nren: 1.954, Co2: 0.331}, float32(n))
	assert.InDelta(t, expected.Ren, res.Overall.A.Ren, 0.5)
	assert.InDelta(t, expected.Nren, res.Overall.A.Nren, 0.5)
	assert.InDelta(t, expected.Co2, res.Overall.A.Co2, 0.5)
	assert.Equal(t, res.Overall.A, res.Overall.B)
}

func TestS2MedioambienteCreditsCAL(t *testing.T) {
	n := 100
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.MEDIOAMBIENTE, model.PRODUCCION, model.INSITU, model.NDEF, 1.0, n),
		constRow(model.MEDIOAMBIENTE, model.CONSUMO, model.EPB, model.CAL, 1.0, n),
	}}
	res, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)

	cal := res.PerService[model.CAL]
	assert.InDelta(t, float32(n), cal.A.Ren, 1e-3)
	assert.InDelta(t, float32(0), cal.A.Nren, 1e-3)
}

func TestS3ExportCreditOnlyAtStepB(t *testing.T) {
	n := 10
	prodPerStep := float32(200)
	consPerStep := float32(100)
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.PRODUCCION, model.INSITU, model.NDEF, prodPerStep, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ILU, consPerStep, n),
	}}

	noCredit, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)
	withCredit, err := Compute(comps, basicFactors(), 1, 1)
	require.NoError(t, err)

	// Step A is identical regardless of k_exp; only B changes.
	assert.Equal(t, noCredit.Overall.A, withCredit.Overall.A)
	assert.Equal(t, noCredit.Overall.A, noCredit.Overall.B)
	assert.NotEqual(t, withCredit.Overall.B, withCredit.Overall.A)

	exportAn := float32(n) * (prodPerStep - consPerStep)
	diff := carrier.Sub(
		carrier.RenNrenCo2{Ren: 0.656, Nren: 0.838, Co2: 0.089},
		carrier.RenNrenCo2{Ren: 1.000, Nren: 0.000, Co2: 0.000},
	)
	expectedB := carrier.Sub(withCredit.Overall.A, carrier.Scale(diff, exportAn))
	assert.InDelta(t, expectedB.Ren, withCredit.Overall.B.Ren, 0.5)
	assert.InDelta(t, expectedB.Nren, withCredit.Overall.B.Nren, 0.5)
	assert.InDelta(t, expectedB.Co2, withCredit.Overall.B.Co2, 0.5)
}

func TestS6ServicePartitionProperty(t *testing.T) {
	n := 50
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 1.0, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ILU, 1.0, n),
	}}
	res, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)

	sum := carrier.RenNrenCo2{}
	for _, sp := range res.PerService {
		sum.AddAssign(sp.A)
	}
	assert.InDelta(t, res.Overall.A.Ren, sum.Ren, 1e-2)
	assert.InDelta(t, res.Overall.A.Nren, sum.Nren, 1e-2)
	assert.InDelta(t, res.Overall.A.Co2, sum.Co2, 1e-2)
}

func TestConservationAndNonNegativity(t *testing.T) {
	n := 24
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.PRODUCCION, model.INSITU, model.NDEF, 0.5, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 0.8, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.NEPB, model.NDEF, 0.1, n),
	}}
	require.NoError(t, comps.Validate())
	for _, res := range Resolve(comps) {
		for step := 0; step < res.N; step++ {
			var usedEPusTotal float32
			for _, o := range producerOrigins {
				for _, s := range res.Services {
					v := res.UsedEPus[o][s][step]
					assert.GreaterOrEqual(t, v, float32(0), "used_EPus must be non-negative")
					usedEPusTotal += v
				}
			}
			prodTotal := usedEPusTotal
			for _, o := range producerOrigins {
				assert.GreaterOrEqual(t, res.UsedNEPus[o][step], float32(0))
				assert.GreaterOrEqual(t, res.ExpGrid[o][step], float32(0))
				prodTotal += res.UsedNEPus[o][step] + res.ExpGrid[o][step]
			}
			var deliveredTotal float32
			for _, s := range res.Services {
				deliveredTotal += res.Delivered[s][step]
			}
			assert.InDelta(t, 0.8, usedEPusTotal+deliveredTotal, 1e-5, "E_del + used_EPus must equal EPB demand")
			assert.InDelta(t, 0.5, prodTotal, 1e-5, "used_EPus + used_nEPus + exp_grid must equal production")
		}
	}

	result, err := Compute(comps, basicFactors(), 0.3, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Overall.A.Ren, float32(0))
	assert.GreaterOrEqual(t, result.Overall.A.Nren, float32(0))
}

func TestStepBEqualsStepAWhenKExpZero(t *testing.T) {
	n := 30
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.PRODUCCION, model.INSITU, model.NDEF, 0.3, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 0.5, n),
	}}
	res, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, res.Overall.A, res.Overall.B)
	for c, sp := range res.PerCarrier {
		assert.Equal(t, sp.A, sp.B, "carrier %s", c)
	}
}

func TestLinearityInArea(t *testing.T) {
	n := 10
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 1.0, n),
	}}
	r1, err := Compute(comps, basicFactors(), 0, 1)
	require.NoError(t, err)
	r2, err := Compute(comps, basicFactors(), 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, r1.Overall.A.Ren/2, r2.Overall.A.Ren, 1e-3)
	assert.InDelta(t, r1.Overall.A.Nren/2, r2.Overall.A.Nren, 1e-3)
}

func TestLinearityInComponents(t *testing.T) {
	n := 10
	comps1 := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 1.0, n),
	}}
	comps2 := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 2.0, n),
	}}
	r1, err := Compute(comps1, basicFactors(), 0, 1)
	require.NoError(t, err)
	r2, err := Compute(comps2, basicFactors(), 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, r1.Overall.A.Ren*2, r2.Overall.A.Ren, 1e-2)
	assert.InDelta(t, r1.Overall.A.Nren*2, r2.Overall.A.Nren, 1e-2)
	assert.InDelta(t, r1.RER, r2.RER, 1e-6)
}

func TestNoProductionIdempotence(t *testing.T) {
	n := 10
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ACS, 1.0, n),
		constRow(model.ELECTRICIDAD, model.CONSUMO, model.EPB, model.ILU, 2.0, n),
	}}
	res, err := Compute(comps, basicFactors(), 0.5, 1)
	require.NoError(t, err)

	f := basicFactors().Rows
	var gridInput carrier.RenNrenCo2
	for _, row := range f {
		if row.Carrier == model.ELECTRICIDAD && row.Source == model.SourceRed && row.Dest == model.DestInput && row.Step == model.StepA {
			gridInput = carrier.RenNrenCo2{Ren: row.Ren, Nren: row.Nren, Co2: row.Co2}
		}
	}
	expected := carrier.Scale(gridInput, float32(n)*3)
	assert.InDelta(t, expected.Ren, res.Overall.A.Ren, 1e-2)
	assert.InDelta(t, expected.Nren, res.Overall.A.Nren, 1e-2)
	assert.Equal(t, res.Overall.A, res.Overall.B)
}

func TestNearbyRestrictionZeroesNonElectricityGridInput(t *testing.T) {
	n := 10
	gasFactors := factors.Factors{Rows: []model.WeightingRow{
		{Carrier: model.GASNATURAL, Source: model.SourceRed, Dest: model.DestInput, Step: model.StepA, Ren: 0.005, Nren: 1.190, Co2: 0.252},
	}}
	nearby := factors.ToNearby(gasFactors)
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.GASNATURAL, model.CONSUMO, model.EPB, model.CAL, 1.0, n),
	}}
	res, err := Compute(comps, nearby, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, carrier.RenNrenCo2{}, res.Overall.A)
}

func TestMissingFactorIsSurfacedNotPrinted(t *testing.T) {
	n := 5
	comps := components.Components{Rows: []model.ComponentRow{
		constRow(model.GLP, model.CONSUMO, model.EPB, model.CAL, 1.0, n),
	}}
	_, err := Compute(comps, basicFactors(), 0, 1)
	require.Error(t, err)
	var mf *cteerrors.MissingFactor
	require.ErrorAs(t, err, &mf)
}

func TestRangeErrorOnInvalidKExp(t *testing.T) {
	_, err := Compute(components.Components{}, basicFactors(), 1.5, 1)
	require.Error(t, err)
	var re *cteerrors.RangeError
	require.ErrorAs(t, err, &re)
}

func TestRangeErrorOnInvalidAreaRef(t *testing.T) {
	_, err := Compute(components.Components{}, basicFactors(), 0, 0)
	require.Error(t, err)
	var re *cteerrors.RangeError
	require.ErrorAs(t, err, &re)
}
