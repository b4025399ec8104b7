// Package factors parses, prepares and serializes the weighting-factor
// table described in spec.md §3, §4.3 and §6.
package factors

import (
	"fmt"

	"energy_simulator/internal/carrier"
	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/model"
)

// Factors holds the parsed weighting-factor rows plus their metadata.
type Factors struct {
	Rows []model.WeightingRow
	Meta model.MetaList
}

// Lookup scans Rows linearly for the (carrier, source, dest, step) key.
// A linear scan is intentional: the table holds at most a few dozen rows
// (spec.md §9 Design Notes), so a map would add bookkeeping without a
// measurable benefit.
func (f Factors) Lookup(c model.Carrier, s model.Source, d model.Dest, step model.Step) (carrier.RenNrenCo2, bool) {
	for _, row := range f.Rows {
		if row.Carrier == c && row.Source == s && row.Dest == d && row.Step == step {
			return carrier.RenNrenCo2{Ren: row.Ren, Nren: row.Nren, Co2: row.Co2}, true
		}
	}
	return carrier.RenNrenCo2{}, false
}

// MustLookup is Lookup but returns a MissingFactor error instead of a
// bool, for call sites where the row's absence is a hard engine error.
func (f Factors) MustLookup(c model.Carrier, s model.Source, d model.Dest, step model.Step) (carrier.RenNrenCo2, error) {
	v, ok := f.Lookup(c, s, d, step)
	if !ok {
		return carrier.RenNrenCo2{}, &cteerrors.MissingFactor{
			Carrier: string(c), Source: string(s), Dest: string(d), Step: string(step),
		}
	}
	return v, nil
}

// set replaces (or inserts) the row for (carrier, source, dest, step).
func (f *Factors) set(c model.Carrier, s model.Source, d model.Dest, step model.Step, v carrier.RenNrenCo2, comment string) {
	for i, row := range f.Rows {
		if row.Carrier == c && row.Source == s && row.Dest == d && row.Step == step {
			f.Rows[i].Ren, f.Rows[i].Nren, f.Rows[i].Co2 = v.Ren, v.Nren, v.Co2
			f.Rows[i].Comment = comment
			return
		}
	}
	f.Rows = append(f.Rows, model.WeightingRow{
		Carrier: c, Source: s, Dest: d, Step: step,
		Ren: v.Ren, Nren: v.Nren, Co2: v.Co2, Comment: comment,
	})
}

// HasMeta reports whether key is present in the metadata store.
func (f Factors) HasMeta(key string) bool { return f.Meta.Has(key) }

// GetMeta returns the raw string value for key.
func (f Factors) GetMeta(key string) (string, bool) { return f.Meta.Get(key) }

// UpdateMeta sets key to value in the metadata store.
func (f *Factors) UpdateMeta(key, value string) { f.Meta.Update(key, value) }

// UserOverrides holds the user-supplied factor triples of spec.md §4.3 —
// each optional, each resolved elsewhere (cmd/cteepbd) from CLI flags,
// embedded metadata, or left unset.
type UserOverrides struct {
	Red1        *carrier.RenNrenCo2
	Red2        *carrier.RenNrenCo2
	CogenToGrid *carrier.RenNrenCo2
	CogenToNepb *carrier.RenNrenCo2
}

func filterByCarriers(rows []model.WeightingRow, inUse map[model.Carrier]bool) []model.WeightingRow {
	out := make([]model.WeightingRow, 0, len(rows))
	for _, r := range rows {
		if inUse[r.Carrier] {
			out = append(out, r)
		}
	}
	return out
}

// requireRow is a small helper for the steps of Prepare that must find an
// existing default row or fail with MissingFactor.
func requireRow(base Factors, c model.Carrier, s model.Source, d model.Dest, step model.Step) (model.WeightingRow, error) {
	for _, row := range base.Rows {
		if row.Carrier == c && row.Source == s && row.Dest == d && row.Step == step {
			return row, nil
		}
	}
	return model.WeightingRow{}, &cteerrors.MissingFactor{
		Carrier: string(c), Source: string(s), Dest: string(d), Step: string(step),
	}
}

// fmtTriple renders a triple for a generated row's explanatory comment.
func fmtTriple(v carrier.RenNrenCo2) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.Ren, v.Nren, v.Co2)
}
