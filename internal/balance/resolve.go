// Package balance implements the production/consumption resolver and the
// EN 15603 step-A/step-B weighted balance engine (spec.md §4.2, §4.4).
package balance

import (
	"sort"

	"energy_simulator/internal/components"
	"energy_simulator/internal/model"
)

// producerOrigins fixes the stable iteration order of §4.4's lexicographic
// summation requirement for the origin dimension.
var producerOrigins = []model.Origin{model.INSITU, model.COGENERACION}

// serviceOrdinals fixes the stable summation order over services required
// by §4.4: the declared order of the closed EPBServices set, with any
// other service tag (NDEF, and the bookkeeping NEPB/CO2 pseudo-services)
// sorted after it.
var serviceOrdinals = func() map[model.Service]int {
	m := make(map[model.Service]int, len(model.EPBServices))
	for i, s := range model.EPBServices {
		m[s] = i
	}
	return m
}()

func serviceOrdinal(s model.Service) int {
	if o, ok := serviceOrdinals[s]; ok {
		return o
	}
	return len(serviceOrdinals) + int(s[0])
}

// CarrierResolution holds the per-sub-step vectors derived for one carrier
// by the production/consumption resolver of spec.md §4.2.
type CarrierResolution struct {
	Carrier model.Carrier
	N       int

	// UsedEPus[o][s] is on-site production of origin o consumed by EPB
	// service s, one slice of length N per (origin, service) pair present.
	UsedEPus map[model.Origin]map[model.Service][]float32
	// UsedNEPus[o] is on-site production of origin o delivered to non-EPB
	// uses (equivalently exported to non-EPB, §4.2).
	UsedNEPus map[model.Origin][]float32
	// ExpGrid[o] is production of origin o exported to the grid.
	ExpGrid map[model.Origin][]float32
	// Delivered[s] is energy delivered from the grid, credited to service s.
	Delivered map[model.Service][]float32

	// Services lists the EPB-origin service tags seen for this carrier,
	// sorted by serviceOrdinal (used to keep the stable summation order of
	// §4.4).
	Services []model.Service
}

// Resolve runs the resolver of spec.md §4.2 over every carrier present in
// comps (as either a production or a consumption row), returning one
// CarrierResolution per carrier in lexicographic carrier order.
func Resolve(comps components.Components) []CarrierResolution {
	n := comps.N()
	byCarrier := make(map[model.Carrier][]model.ComponentRow)
	var carriers []model.Carrier
	for _, row := range comps.Rows {
		if _, seen := byCarrier[row.Carrier]; !seen {
			carriers = append(carriers, row.Carrier)
		}
		byCarrier[row.Carrier] = append(byCarrier[row.Carrier], row)
	}
	sort.Slice(carriers, func(i, j int) bool { return carriers[i] < carriers[j] })

	out := make([]CarrierResolution, 0, len(carriers))
	for _, c := range carriers {
		out = append(out, resolveCarrier(c, byCarrier[c], n))
	}
	return out
}

func resolveCarrier(c model.Carrier, rows []model.ComponentRow, n int) CarrierResolution {
	prodByOrigin := map[model.Origin][]float32{
		model.INSITU:       make([]float32, n),
		model.COGENERACION: make([]float32, n),
	}
	epbDemand := make([]float32, n)
	nepbDemand := make([]float32, n)
	epbDemandByService := map[model.Service][]float32{}
	var serviceOrder []model.Service
	seenService := map[model.Service]bool{}

	for _, row := range rows {
		switch {
		case row.Role == model.PRODUCCION:
			vec := prodByOrigin[row.Origin]
			for t, v := range row.Values {
				vec[t] += v
			}
		case row.Role == model.CONSUMO && row.Origin == model.EPB:
			if _, ok := epbDemandByService[row.Service]; !ok {
				epbDemandByService[row.Service] = make([]float32, n)
			}
			if !seenService[row.Service] {
				seenService[row.Service] = true
				serviceOrder = append(serviceOrder, row.Service)
			}
			svc := epbDemandByService[row.Service]
			for t, v := range row.Values {
				svc[t] += v
				epbDemand[t] += v
			}
		case row.Role == model.CONSUMO && row.Origin == model.NEPB:
			for t, v := range row.Values {
				nepbDemand[t] += v
			}
		}
	}
	sort.Slice(serviceOrder, func(i, j int) bool {
		return serviceOrdinal(serviceOrder[i]) < serviceOrdinal(serviceOrder[j])
	})

	usedEPus := map[model.Origin]map[model.Service][]float32{
		model.INSITU:       {},
		model.COGENERACION: {},
	}
	for _, o := range producerOrigins {
		for _, s := range serviceOrder {
			usedEPus[o][s] = make([]float32, n)
		}
	}
	usedNEPus := map[model.Origin][]float32{
		model.INSITU:       make([]float32, n),
		model.COGENERACION: make([]float32, n),
	}
	expGrid := map[model.Origin][]float32{
		model.INSITU:       make([]float32, n),
		model.COGENERACION: make([]float32, n),
	}
	delivered := map[model.Service][]float32{}
	for _, s := range serviceOrder {
		delivered[s] = make([]float32, n)
	}

	for t := 0; t < n; t++ {
		totalProd := prodByOrigin[model.INSITU][t] + prodByOrigin[model.COGENERACION][t]

		usedEPusT := min32(epbDemand[t], totalProd)
		remaining := totalProd - usedEPusT
		usedNEPusT := min32(nepbDemand[t], remaining)
		expGridT := totalProd - usedEPusT - usedNEPusT
		deliveredT := max32(0, epbDemand[t]-usedEPusT)

		for _, o := range producerOrigins {
			frac := float32(0)
			if totalProd > 0 {
				frac = prodByOrigin[o][t] / totalProd
			}
			usedNEPus[o][t] = usedNEPusT * frac
			expGrid[o][t] = expGridT * frac

			for _, s := range serviceOrder {
				svcFrac := float32(0)
				if epbDemand[t] > 0 {
					svcFrac = epbDemandByService[s][t] / epbDemand[t]
				}
				usedEPus[o][s][t] = usedEPusT * frac * svcFrac
			}
		}
		for _, s := range serviceOrder {
			svcFrac := float32(0)
			if epbDemand[t] > 0 {
				svcFrac = epbDemandByService[s][t] / epbDemand[t]
			}
			delivered[s][t] = deliveredT * svcFrac
		}
	}

	return CarrierResolution{
		Carrier:   c,
		N:         n,
		UsedEPus:  usedEPus,
		UsedNEPus: usedNEPus,
		ExpGrid:   expGrid,
		Delivered: delivered,
		Services:  serviceOrder,
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
