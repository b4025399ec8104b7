// Package components parses, validates and serializes the energy
// components list: the time-resolved inventory of production and
// consumption rows described in spec.md §3 and §6.
package components

import (
	"fmt"

	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/model"
)

// Components holds the parsed component rows plus their metadata,
// mirroring the original Rust implementation's Components struct
// (cdata/cmeta fields, get_meta_f32/update_meta methods).
type Components struct {
	Rows []model.ComponentRow
	Meta model.MetaList
}

// N returns the uniform sub-step count of the component rows, or 0 if
// there are none.
func (c Components) N() int {
	if len(c.Rows) == 0 {
		return 0
	}
	return len(c.Rows[0].Values)
}

// HasMeta reports whether key is present in the metadata store.
func (c Components) HasMeta(key string) bool { return c.Meta.Has(key) }

// GetMeta returns the raw string value for key.
func (c Components) GetMeta(key string) (string, bool) { return c.Meta.Get(key) }

// GetMetaF32 parses the value for key as a float32.
func (c Components) GetMetaF32(key string) (float32, bool) { return c.Meta.GetF32(key) }

// GetMetaRenNrenCo2 parses the value for key as a "ren, nren, co2" triple.
func (c Components) GetMetaRenNrenCo2(key string) (ren, nren, co2 float32, ok bool) {
	v, present := c.Meta.Get(key)
	if !present {
		return 0, 0, 0, false
	}
	r, n, co, err := model.ParseTriple(v)
	if err != nil {
		return 0, 0, 0, false
	}
	return r, n, co, true
}

// UpdateMeta sets key to value in the metadata store.
func (c *Components) UpdateMeta(key, value string) { c.Meta.Update(key, value) }

// Validate checks the invariants of spec.md §3: uniform row length,
// non-negative values, MEDIOAMBIENTE production only as INSITU (its
// consumption is accepted), COGENERACION only on ELECTRICIDAD, and an
// origin that matches the row's role.
func (c Components) Validate() error {
	if len(c.Rows) == 0 {
		return nil
	}
	n := len(c.Rows[0].Values)
	for _, row := range c.Rows {
		if len(row.Values) != n {
			return &cteerrors.ShapeError{Want: n, Got: len(row.Values)}
		}
		for _, v := range row.Values {
			if v < 0 {
				return &cteerrors.Inconsistent{Reason: fmt.Sprintf(
					"negative value in %s %s %s %s row", row.Carrier, row.Role, row.Origin, row.Service)}
			}
		}
		if row.Carrier == model.MEDIOAMBIENTE && row.Role == model.PRODUCCION && row.Origin != model.INSITU {
			return &cteerrors.Inconsistent{Reason: "MEDIOAMBIENTE production may only appear as INSITU"}
		}
		if row.Origin == model.COGENERACION && row.Carrier != model.ELECTRICIDAD {
			return &cteerrors.Inconsistent{Reason: fmt.Sprintf(
				"COGENERACION origin is only valid for ELECTRICIDAD, found on %s", row.Carrier)}
		}
		if !row.Origin.ValidForRole(row.Role) {
			return &cteerrors.Inconsistent{Reason: fmt.Sprintf(
				"origin %s is not valid for role %s", row.Origin, row.Role)}
		}
	}
	return nil
}

// HasCogeneration reports whether any ELECTRICIDAD/COGENERACION
// production row is present.
func HasCogeneration(c Components) bool {
	for _, row := range c.Rows {
		if row.Role == model.PRODUCCION && row.Origin == model.COGENERACION {
			return true
		}
	}
	return false
}

// CarriersInUse returns the set of carriers that appear in the
// components list.
func CarriersInUse(c Components) map[model.Carrier]bool {
	out := make(map[model.Carrier]bool)
	for _, row := range c.Rows {
		out[row.Carrier] = true
	}
	return out
}

// ByService restricts the components list to rows that either are
// CONSUMO rows of the given service, or are PRODUCCION rows (production
// is service-agnostic at the production point, per spec.md §9). Used by
// the ACS-nearby evaluation mode.
func ByService(c Components, s model.Service) Components {
	out := Components{Meta: append(model.MetaList{}, c.Meta...)}
	for _, row := range c.Rows {
		if row.Role == model.PRODUCCION || row.Service == s {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
