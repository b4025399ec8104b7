package factors

import (
	"fmt"

	"energy_simulator/internal/carrier"
	"energy_simulator/internal/components"
	"energy_simulator/internal/model"
)

// Prepare implements spec.md §4.3: it seeds a working copy of base,
// substitutes user-supplied RED1/RED2/cogeneration factors, derives
// missing step-B export rows, and — unless simplify is false — drops
// rows for carriers the components list never uses. Completion failures
// (a required row missing after substitution) are returned as
// *cteerrors.MissingFactor.
func Prepare(base Factors, overrides UserOverrides, comps components.Components, simplify bool) (Factors, error) {
	out := Factors{
		Rows: append([]model.WeightingRow(nil), base.Rows...),
		Meta: append(model.MetaList(nil), base.Meta...),
	}

	used := components.CarriersInUse(comps)
	if err := substituteRed(&out, model.RED1, overrides.Red1, used[model.RED1]); err != nil {
		return Factors{}, err
	}
	if err := substituteRed(&out, model.RED2, overrides.Red2, used[model.RED2]); err != nil {
		return Factors{}, err
	}

	if components.HasCogeneration(comps) {
		applyCogeneration(&out, overrides)
	}

	deriveStepB(&out)

	if simplify {
		inUse := components.CarriersInUse(comps)
		out.Rows = filterByCarriers(out.Rows, inUse)
	}

	return out, nil
}

// substituteRed replaces the (carrier, RED, input, A) row for a
// user-defined network carrier (RED1/RED2) with override if supplied,
// otherwise requires a default row to already be present when the carrier
// is in use.
func substituteRed(f *Factors, c model.Carrier, override *carrier.RenNrenCo2, inUse bool) error {
	if override != nil {
		f.set(c, model.SourceRed, model.DestInput, model.StepA, *override, "")
		return nil
	}
	if !inUse {
		return nil
	}
	if _, err := requireRow(*f, c, model.SourceRed, model.DestInput, model.StepA); err != nil {
		return err
	}
	return nil
}

// applyCogeneration implements spec.md §4.3 step 3: cogenerated
// electricity's export rows come from user overrides if supplied, else
// default to (0,0,0) with an explanatory comment; its step-A input
// factor is (0,0,0) by convention (the fuel feeding the cogenerator is
// weighted elsewhere, via its own CONSUMO component row).
func applyCogeneration(f *Factors, overrides UserOverrides) {
	zero := carrier.RenNrenCo2{}
	f.set(model.ELECTRICIDAD, model.SourceCogeneracion, model.DestInput, model.StepA, zero,
		"cogenerated electricity consumed on-site is weighted via its fuel input")

	toGrid := zero
	toGridComment := "no user-supplied cogeneration export factor; defaulting to zero"
	if overrides.CogenToGrid != nil {
		toGrid = *overrides.CogenToGrid
		toGridComment = ""
	}
	f.set(model.ELECTRICIDAD, model.SourceCogeneracion, model.DestGrid, model.StepA, toGrid, toGridComment)

	toNepb := zero
	toNepbComment := "no user-supplied cogeneration export factor; defaulting to zero"
	if overrides.CogenToNepb != nil {
		toNepb = *overrides.CogenToNepb
		toNepbComment = ""
	}
	f.set(model.ELECTRICIDAD, model.SourceCogeneracion, model.DestNEPB, model.StepA, toNepb, toNepbComment)
}

// deriveStepB implements spec.md §4.3 step 4: for any INSITU or
// COGENERACION export row present only at step A, synthesize the step-B
// row as F_A + (F_grid_displaced - F_input_from_grid), where
// F_grid_displaced is the carrier's (RED, dest, A) row and k_rdel is
// taken as 1 for this derivation (the user-facing k_exp scaling happens
// in the balance engine, not here). Carriers with no RED/to_grid or
// RED/to_nEPB row (i.e. that are never exported to an actual network)
// simply have nothing to derive and are left untouched.
func deriveStepB(f *Factors) {
	sources := []model.Source{model.SourceInsitu, model.SourceCogeneracion}
	dests := []model.Dest{model.DestGrid, model.DestNEPB}

	// Snapshot the carriers/sources/dests that have a step-A row before we
	// start appending step-B rows, so we don't iterate over rows we just added.
	type key struct {
		c model.Carrier
		s model.Source
		d model.Dest
	}
	var candidates []key
	for _, row := range f.Rows {
		if row.Step != model.StepA {
			continue
		}
		for _, s := range sources {
			if row.Source != s {
				continue
			}
			for _, d := range dests {
				if row.Dest == d {
					candidates = append(candidates, key{row.Carrier, row.Source, row.Dest})
				}
			}
		}
	}

	for _, k := range candidates {
		if _, ok := f.Lookup(k.c, k.s, k.d, model.StepB); ok {
			continue // already supplied
		}
		fA, ok := f.Lookup(k.c, k.s, k.d, model.StepA)
		if !ok {
			continue
		}
		gridDisplaced, ok1 := f.Lookup(k.c, model.SourceRed, k.d, model.StepA)
		gridInput, ok2 := f.Lookup(k.c, model.SourceRed, model.DestInput, model.StepA)
		if !ok1 || !ok2 {
			continue
		}
		fB := carrier.Add(fA, carrier.Sub(gridDisplaced, gridInput))
		comment := fmt.Sprintf("derived from step A + grid displacement %s", fmtTriple(carrier.Sub(gridDisplaced, gridInput)))
		f.set(k.c, k.s, k.d, model.StepB, fB, comment)
	}
}

// ToNearby implements spec.md §4.3 step 6: restrict accounting to the
// building's immediate envelope by zeroing every non-INSITU-origin
// factor row for non-electricity carriers. Used for ACS-only evaluation.
func ToNearby(f Factors) Factors {
	out := Factors{
		Rows: make([]model.WeightingRow, len(f.Rows)),
		Meta: append(model.MetaList(nil), f.Meta...),
	}
	copy(out.Rows, f.Rows)
	for i, row := range out.Rows {
		if row.Carrier == model.ELECTRICIDAD {
			continue
		}
		if row.Source == model.SourceInsitu {
			continue
		}
		out.Rows[i].Ren, out.Rows[i].Nren, out.Rows[i].Co2 = 0, 0, 0
	}
	return out
}
