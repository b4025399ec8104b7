package balance

import (
	"sort"

	"github.com/google/uuid"

	"energy_simulator/internal/carrier"
	"energy_simulator/internal/components"
	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/factors"
	"energy_simulator/internal/model"
)

var originSource = map[model.Origin]model.Source{
	model.INSITU:       model.SourceInsitu,
	model.COGENERACION: model.SourceCogeneracion,
}

// Compute implements the weighted balance engine of spec.md §4.4: it walks
// the prepared components through the resolver, applies the prepared
// weighting-factor table at step A and step B, and aggregates by carrier
// and by service. Errors are returned, never printed.
func Compute(comps components.Components, wf factors.Factors, kexp, arearef float32) (Result, error) {
	if kexp < 0 || kexp > 1 {
		return Result{}, &cteerrors.RangeError{Param: "k_exp", Value: kexp}
	}
	if arearef <= 0 {
		return Result{}, &cteerrors.RangeError{Param: "A_ref", Value: arearef}
	}

	resolutions := Resolve(comps)

	perCarrierA := make(map[model.Carrier]carrier.RenNrenCo2)
	perCarrierB := make(map[model.Carrier]carrier.RenNrenCo2)
	perServiceA := make(map[model.Service]carrier.RenNrenCo2)
	perServiceB := make(map[model.Service]carrier.RenNrenCo2)

	for _, res := range resolutions {
		bUsedEPus := make(map[model.Service]carrier.RenNrenCo2)
		bDelGrid := make(map[model.Service]carrier.RenNrenCo2)

		for _, o := range producerOrigins {
			fInputA, ok := wf.Lookup(res.Carrier, originSource[o], model.DestInput, model.StepA)
			if !ok {
				if !anyNonZero(res.UsedEPus[o]) {
					continue
				}
				return Result{}, &cteerrors.MissingFactor{
					Carrier: string(res.Carrier), Source: string(originSource[o]),
					Dest: string(model.DestInput), Step: string(model.StepA),
				}
			}
			for _, s := range res.Services {
				sum := sumF32(res.UsedEPus[o][s])
				if sum == 0 {
					continue
				}
				v := bUsedEPus[s]
				v.AddAssign(carrier.Scale(fInputA, sum))
				bUsedEPus[s] = v
			}
		}

		if len(res.Services) > 0 {
			fGridInputA, err := wf.MustLookup(res.Carrier, model.SourceRed, model.DestInput, model.StepA)
			if err != nil {
				if anyNonZero(res.Delivered) {
					return Result{}, err
				}
			} else {
				for _, s := range res.Services {
					sum := sumF32(res.Delivered[s])
					if sum == 0 {
						continue
					}
					v := bDelGrid[s]
					v.AddAssign(carrier.Scale(fGridInputA, sum))
					bDelGrid[s] = v
				}
			}
		}

		bA := carrier.RenNrenCo2{}
		for _, s := range res.Services {
			bA.AddAssign(bUsedEPus[s])
			bA.AddAssign(bDelGrid[s])
		}

		expCorrection := carrier.RenNrenCo2{}
		for _, o := range producerOrigins {
			expGridAn := sumF32(res.ExpGrid[o])
			if expGridAn != 0 {
				fA, errA := wf.MustLookup(res.Carrier, originSource[o], model.DestGrid, model.StepA)
				fB, errB := wf.MustLookup(res.Carrier, originSource[o], model.DestGrid, model.StepB)
				if errA != nil {
					return Result{}, errA
				}
				if errB != nil {
					return Result{}, errB
				}
				expCorrection.AddAssign(carrier.Scale(carrier.Sub(fB, fA), expGridAn))
			}
			expNEPusAn := sumF32(res.UsedNEPus[o])
			if expNEPusAn != 0 {
				fA, errA := wf.MustLookup(res.Carrier, originSource[o], model.DestNEPB, model.StepA)
				fB, errB := wf.MustLookup(res.Carrier, originSource[o], model.DestNEPB, model.StepB)
				if errA != nil {
					return Result{}, errA
				}
				if errB != nil {
					return Result{}, errB
				}
				expCorrection.AddAssign(carrier.Scale(carrier.Sub(fB, fA), expNEPusAn))
			}
		}

		bB := carrier.Sub(bA, carrier.Scale(expCorrection, kexp))

		perCarrierA[res.Carrier] = bA
		perCarrierB[res.Carrier] = bB

		credit := carrier.Scale(expCorrection, kexp)
		delTotal := float32(0)
		for _, s := range res.Services {
			delTotal += bDelGrid[s].Tot()
		}
		for _, s := range res.Services {
			stepA := carrier.Add(bUsedEPus[s], bDelGrid[s])
			weight := float32(0)
			if delTotal > 0 {
				weight = bDelGrid[s].Tot() / delTotal
			}
			stepB := carrier.Sub(stepA, carrier.Scale(credit, weight))

			a := perServiceA[s]
			a.AddAssign(stepA)
			perServiceA[s] = a

			b := perServiceB[s]
			b.AddAssign(stepB)
			perServiceB[s] = b
		}
	}

	carrierKeys := make([]model.Carrier, 0, len(perCarrierA))
	for k := range perCarrierA {
		carrierKeys = append(carrierKeys, k)
	}
	sort.Slice(carrierKeys, func(i, j int) bool { return carrierKeys[i] < carrierKeys[j] })

	overallA := carrier.RenNrenCo2{}
	overallB := carrier.RenNrenCo2{}
	for _, k := range carrierKeys {
		overallA.AddAssign(perCarrierA[k])
	}
	for _, k := range carrierKeys {
		overallB.AddAssign(perCarrierB[k])
	}

	invArea := 1 / arearef
	scaleMap := func(m map[model.Carrier]carrier.RenNrenCo2) map[model.Carrier]carrier.RenNrenCo2 {
		out := make(map[model.Carrier]carrier.RenNrenCo2, len(m))
		for k, v := range m {
			out[k] = carrier.Scale(v, invArea)
		}
		return out
	}
	scaleServiceMap := func(m map[model.Service]carrier.RenNrenCo2) map[model.Service]carrier.RenNrenCo2 {
		out := make(map[model.Service]carrier.RenNrenCo2, len(m))
		for k, v := range m {
			out[k] = carrier.Scale(v, invArea)
		}
		return out
	}

	overallAArea := carrier.Scale(overallA, invArea)
	overallBArea := carrier.Scale(overallB, invArea)

	result := Result{
		RunID:      uuid.New(),
		Meta:       append(model.MetaList(nil), comps.Meta...),
		KExp:       kexp,
		ARef:       arearef,
		PerCarrier: mergeSteps(scaleMap(perCarrierA), scaleMap(perCarrierB)),
		PerService: mergeServiceSteps(scaleServiceMap(perServiceA), scaleServiceMap(perServiceB)),
		Overall:    StepPair{A: overallAArea, B: overallBArea},
		RER:        overallBArea.Rer(),
	}
	if overallBArea.Nren > 0 {
		v := overallBArea.RerNren()
		result.RERNren = &v
	}
	return result, nil
}

func sumF32(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x
	}
	return sum
}

func anyNonZero(m map[model.Service][]float32) bool {
	for _, v := range m {
		if sumF32(v) != 0 {
			return true
		}
	}
	return false
}

func mergeSteps(a, b map[model.Carrier]carrier.RenNrenCo2) map[model.Carrier]StepPair {
	out := make(map[model.Carrier]StepPair)
	var keys []model.Carrier
	for k := range a {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		out[k] = StepPair{A: a[k], B: b[k]}
	}
	return out
}

func mergeServiceSteps(a, b map[model.Service]carrier.RenNrenCo2) map[model.Service]StepPair {
	out := make(map[model.Service]StepPair)
	for k, v := range a {
		out[k] = StepPair{A: v, B: b[k]}
	}
	return out
}
