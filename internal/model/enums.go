// Package model defines the closed vocabulary of the CTE DB-HE energy
// balance: carriers, roles, origins, services, and the weighting-factor
// source/destination/step tags, plus the row types tagged by them.
package model

import "fmt"

// Carrier is an energy vector identifier.
type Carrier string

const (
	ELECTRICIDAD       Carrier = "ELECTRICIDAD"
	MEDIOAMBIENTE      Carrier = "MEDIOAMBIENTE"
	BIOCARBURANTE      Carrier = "BIOCARBURANTE"
	BIOMASA            Carrier = "BIOMASA"
	BIOMASADENSIFICADA Carrier = "BIOMASADENSIFICADA"
	CARBON             Carrier = "CARBON"
	FUELOIL            Carrier = "FUELOIL"
	GASNATURAL         Carrier = "GASNATURAL"
	GASOLEO            Carrier = "GASOLEO"
	GLP                Carrier = "GLP"
	RED1               Carrier = "RED1"
	RED2               Carrier = "RED2"
)

var carriers = map[Carrier]bool{
	ELECTRICIDAD: true, MEDIOAMBIENTE: true, BIOCARBURANTE: true,
	BIOMASA: true, BIOMASADENSIFICADA: true, CARBON: true,
	FUELOIL: true, GASNATURAL: true, GASOLEO: true, GLP: true,
	RED1: true, RED2: true,
}

// Valid reports whether c belongs to the closed carrier set.
func (c Carrier) Valid() bool { return carriers[c] }

// ParseCarrier validates s against the closed carrier set.
func ParseCarrier(s string) (Carrier, error) {
	c := Carrier(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown carrier %q", s)
	}
	return c, nil
}

// Role distinguishes production from consumption rows.
type Role string

const (
	CONSUMO     Role = "CONSUMO"
	PRODUCCION Role = "PRODUCCION"
)

// Valid reports whether r is CONSUMO or PRODUCCION.
func (r Role) Valid() bool { return r == CONSUMO || r == PRODUCCION }

// ParseRole validates s against {CONSUMO, PRODUCCION}.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Origin tags a row with its delivery-chain origin. For producers it is
// INSITU or COGENERACION; for consumers it is EPB or NEPB.
type Origin string

const (
	INSITU       Origin = "INSITU"
	COGENERACION Origin = "COGENERACION"
	EPB          Origin = "EPB"
	NEPB         Origin = "NEPB"
)

var producerOrigins = map[Origin]bool{INSITU: true, COGENERACION: true}
var consumerOrigins = map[Origin]bool{EPB: true, NEPB: true}

// ValidForRole reports whether o is a legal origin for the given role.
func (o Origin) ValidForRole(r Role) bool {
	if r == PRODUCCION {
		return producerOrigins[o]
	}
	return consumerOrigins[o]
}

// ParseOrigin validates s against the full origin set, without regard to role.
func ParseOrigin(s string) (Origin, error) {
	o := Origin(s)
	if !producerOrigins[o] && !consumerOrigins[o] {
		return "", fmt.Errorf("unknown origin %q", s)
	}
	return o, nil
}

// Service is the closed set of EPB services plus NDEF ("unallocated") and
// the bookkeeping pseudo-services NEPB and CO2.
type Service string

const (
	ACS  Service = "ACS"
	CAL  Service = "CAL"
	REF  Service = "REF"
	VEN  Service = "VEN"
	ILU  Service = "ILU"
	HU   Service = "HU"
	DHU  Service = "DHU"
	BAC  Service = "BAC"
	NEPBSvc Service = "NEPB"
	CO2Svc  Service = "CO2"
	NDEF Service = "NDEF"
)

// EPBServices lists the services the balance engine credits on a
// per-service basis (excludes NEPB, CO2 and NDEF, which are bookkeeping
// tags rather than energy-performance services).
var EPBServices = []Service{ACS, CAL, REF, VEN, ILU, HU, DHU, BAC}

var services = map[Service]bool{
	ACS: true, CAL: true, REF: true, VEN: true, ILU: true, HU: true,
	DHU: true, BAC: true, NEPBSvc: true, CO2Svc: true, NDEF: true,
}

// Valid reports whether s belongs to the closed service set.
func (s Service) Valid() bool { return services[s] }

// ParseService validates s against the closed service set.
func ParseService(s string) (Service, error) {
	v := Service(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown service %q", s)
	}
	return v, nil
}

// Source tags a weighting-factor row with the chain segment it weights.
type Source string

const (
	SourceRed          Source = "RED"
	SourceInsitu       Source = "INSITU"
	SourceCogeneracion Source = "COGENERACION"
)

var sources = map[Source]bool{SourceRed: true, SourceInsitu: true, SourceCogeneracion: true}

// Valid reports whether s belongs to the closed source set.
func (s Source) Valid() bool { return sources[s] }

// ParseSource validates s against the closed source set.
func ParseSource(s string) (Source, error) {
	v := Source(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown source %q", s)
	}
	return v, nil
}

// Dest tags a weighting-factor row with its destination in the chain.
type Dest string

const (
	DestInput  Dest = "input"
	DestGrid   Dest = "to_grid"
	DestNEPB   Dest = "to_nEPB"
)

var dests = map[Dest]bool{DestInput: true, DestGrid: true, DestNEPB: true}

// Valid reports whether d belongs to the closed destination set.
func (d Dest) Valid() bool { return dests[d] }

// ParseDest validates s against the closed destination set.
func ParseDest(s string) (Dest, error) {
	v := Dest(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown dest %q", s)
	}
	return v, nil
}

// Step is the EN 15603 weighting step: A (no export credit) or B (with
// export credit).
type Step string

const (
	StepA Step = "A"
	StepB Step = "B"
)

var steps = map[Step]bool{StepA: true, StepB: true}

// Valid reports whether s is A or B.
func (s Step) Valid() bool { return steps[s] }

// ParseStep validates s against {A, B}.
func ParseStep(s string) (Step, error) {
	v := Step(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown step %q", s)
	}
	return v, nil
}

// Locality selects the electricity rows of WF_RITE2014.
type Locality string

const (
	PENINSULA    Locality = "PENINSULA"
	CANARIAS     Locality = "CANARIAS"
	BALEARES     Locality = "BALEARES"
	CEUTAMELILLA Locality = "CEUTAMELILLA"
)

var localities = map[Locality]bool{
	PENINSULA: true, CANARIAS: true, BALEARES: true, CEUTAMELILLA: true,
}

// Valid reports whether l belongs to the closed locality set.
func (l Locality) Valid() bool { return localities[l] }

// ParseLocality validates s against the closed locality set.
func ParseLocality(s string) (Locality, error) {
	v := Locality(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown locality %q", s)
	}
	return v, nil
}
