// Package render serializes a balance.Result to the text, JSON and XML
// forms described in spec.md §4.5 and §6.
package render

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"energy_simulator/internal/balance"
	"energy_simulator/internal/model"
)

// tripleDoc is the Round3'd, JSON/XML-friendly shape of a carrier.RenNrenCo2.
type tripleDoc struct {
	Ren  float32 `json:"ren" xml:"ren"`
	Nren float32 `json:"nren" xml:"nren"`
	Co2  float32 `json:"co2" xml:"co2"`
}

type stepPairDoc struct {
	StepA tripleDoc `json:"A" xml:"A"`
	StepB tripleDoc `json:"B" xml:"B"`
}

type carrierEntry struct {
	Carrier string      `json:"carrier" xml:"carrier,attr"`
	StepPairDoc
}

type serviceEntry struct {
	Service string `json:"service" xml:"service,attr"`
	StepPairDoc
}

// StepPairDoc is embedded by carrierEntry/serviceEntry so both a
// "carrier"/"service" tag and the A/B triples serialize as one flat
// record, matching the original Rust CLI's row-per-carrier/service shape.
type StepPairDoc = stepPairDoc

// resultDoc is the wire shape consumed by ToJSON/ToXML.
type resultDoc struct {
	XMLName xml.Name `json:"-" xml:"balance"`
	RunID   string   `json:"run_id" xml:"run_id,attr"`
	KExp    float32  `json:"k_exp" xml:"k_exp,attr"`
	ARef    float32  `json:"a_ref" xml:"a_ref,attr"`

	Meta []metaEntryDoc `json:"meta" xml:"meta>entry"`

	PerCarrier []carrierEntry `json:"per_carrier" xml:"per_carrier>carrier"`
	PerService []serviceEntry `json:"per_service" xml:"per_service>service"`
	Overall    stepPairDoc    `json:"overall" xml:"overall"`

	RER      float32  `json:"rer" xml:"rer"`
	RERNren  *float32 `json:"rer_nren,omitempty" xml:"rer_nren,omitempty"`
}

type metaEntryDoc struct {
	Key   string `json:"key" xml:"key,attr"`
	Value string `json:"value" xml:",chardata"`
}

func toDoc(r balance.Result) resultDoc {
	doc := resultDoc{
		RunID:   r.RunID.String(),
		KExp:    r.KExp,
		ARef:    r.ARef,
		Overall: toStepPairDoc(r.Overall),
		RER:     r.RER,
		RERNren: r.RERNren,
	}
	for _, m := range r.Meta {
		doc.Meta = append(doc.Meta, metaEntryDoc{Key: m.Key, Value: m.Value})
	}

	var carriers []model.Carrier
	for c := range r.PerCarrier {
		carriers = append(carriers, c)
	}
	sort.Slice(carriers, func(i, j int) bool { return carriers[i] < carriers[j] })
	for _, c := range carriers {
		doc.PerCarrier = append(doc.PerCarrier, carrierEntry{Carrier: string(c), StepPairDoc: toStepPairDoc(r.PerCarrier[c])})
	}

	var services []model.Service
	for s := range r.PerService {
		services = append(services, s)
	}
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })
	for _, s := range services {
		doc.PerService = append(doc.PerService, serviceEntry{Service: string(s), StepPairDoc: toStepPairDoc(r.PerService[s])})
	}

	return doc
}

func toStepPairDoc(sp balance.StepPair) stepPairDoc {
	a := sp.A.Round3()
	b := sp.B.Round3()
	return stepPairDoc{
		StepA: tripleDoc{Ren: a.Ren, Nren: a.Nren, Co2: a.Co2},
		StepB: tripleDoc{Ren: b.Ren, Nren: b.Nren, Co2: b.Co2},
	}
}

// ToJSON renders the result as indented JSON.
func ToJSON(r balance.Result) ([]byte, error) {
	return json.MarshalIndent(toDoc(r), "", "  ")
}

// ToXML renders the result as indented XML.
func ToXML(r balance.Result) ([]byte, error) {
	return xml.MarshalIndent(toDoc(r), "", "  ")
}

// ToText renders a console report: one table for the per-carrier
// breakdown, one for the per-service breakdown, and a summary block with
// RER/RER_nren — the same three-part shape as the original Rust CLI's
// plain-text balance output.
func ToText(r balance.Result) string {
	var b strings.Builder

	doc := toDoc(r)

	carrierTable := table.NewWriter()
	carrierTable.AppendHeader(table.Row{"Carrier", "ren A", "nren A", "co2 A", "ren B", "nren B", "co2 B"})
	for _, c := range doc.PerCarrier {
		carrierTable.AppendRow(table.Row{
			c.Carrier, c.StepA.Ren, c.StepA.Nren, c.StepA.Co2, c.StepB.Ren, c.StepB.Nren, c.StepB.Co2,
		})
	}
	b.WriteString(carrierTable.Render())
	b.WriteString("\n\n")

	serviceTable := table.NewWriter()
	serviceTable.AppendHeader(table.Row{"Service", "ren A", "nren A", "co2 A", "ren B", "nren B", "co2 B"})
	for _, s := range doc.PerService {
		serviceTable.AppendRow(table.Row{
			s.Service, s.StepA.Ren, s.StepA.Nren, s.StepA.Co2, s.StepB.Ren, s.StepB.Nren, s.StepB.Co2,
		})
	}
	b.WriteString(serviceTable.Render())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "k_exp: %.3f  A_ref: %.3f\n", r.KExp, r.ARef)
	fmt.Fprintf(&b, "Overall A: %s\n", r.Overall.A.Round3())
	fmt.Fprintf(&b, "Overall B: %s\n", r.Overall.B.Round3())
	fmt.Fprintf(&b, "RER: %.3f\n", r.RER)
	if r.RERNren != nil {
		fmt.Fprintf(&b, "RER_nren: %.3f\n", *r.RERNren)
	}

	return b.String()
}
