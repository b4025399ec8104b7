// Command cteepbd computes the CTE DB-HE weighted energy-performance
// balance of a building from a components time series and a
// weighting-factor table.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"energy_simulator/internal/balance"
	"energy_simulator/internal/carrier"
	"energy_simulator/internal/components"
	"energy_simulator/internal/cteconfig"
	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/factors"
	"energy_simulator/internal/model"
	"energy_simulator/internal/render"
)

const licenseText = `cteepbd — CTE DB-HE weighted energy-performance balance engine
Licensed under the MIT License.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	app := kingpin.New("cteepbd", "Balance energético ponderado CTE DB-HE (EN 15603).")
	app.HelpFlag.Short('h')

	var (
		componentesPath string
		factoresPath    string
		arearefFlag     float64
		arearefSet      bool
		kexpFlag        float64
		kexpSet         bool
		locFlag         string
		locSet          bool
		red1Flag        string
		red2Flag        string
		cogenFlag       string
		cogenNEPBFlag   string
		acsNearby       bool
		noSimplifica    bool
		ocPath          string
		ofPath          string
		jsonPath        string
		xmlPath         string
		txtPath         string
		licencia        bool
	)

	app.Flag("componentes", "Fichero de componentes energéticos.").StringVar(&componentesPath)
	app.Flag("factores", "Fichero de factores de paso.").StringVar(&factoresPath)
	app.Flag("arearef", "Área de referencia, en m².").IsSetByUser(&arearefSet).Float64Var(&arearefFlag)
	app.Flag("kexp", "Factor de exportación (k_exp), en [0, 1].").IsSetByUser(&kexpSet).Float64Var(&kexpFlag)
	app.Flag("localizacion", "Localización para el factor eléctrico de red de WF_RITE2014 (PENINSULA, CANARIAS, BALEARES, CEUTAMELILLA).").IsSetByUser(&locSet).StringVar(&locFlag)
	app.Flag("red1", "Factores de paso del vector RED1: \"ren, nren, co2\".").StringVar(&red1Flag)
	app.Flag("red2", "Factores de paso del vector RED2: \"ren, nren, co2\".").StringVar(&red2Flag)
	app.Flag("cogen", "Factores de paso de la electricidad cogenerada exportada a red: \"ren, nren, co2\".").StringVar(&cogenFlag)
	app.Flag("cogennepb", "Factores de paso de la electricidad cogenerada exportada a usos no EPB: \"ren, nren, co2\".").StringVar(&cogenNEPBFlag)
	app.Flag("acs-nearby", "Restringe el balance al servicio ACS y al perímetro próximo.").BoolVar(&acsNearby)
	app.Flag("no-simplifica-fps", "No elimina del factor de paso los vectores no usados en los componentes.").BoolVar(&noSimplifica)
	app.Flag("oc", "Vuelca los componentes preparados en este fichero.").StringVar(&ocPath)
	app.Flag("of", "Vuelca los factores de paso preparados en este fichero.").StringVar(&ofPath)
	app.Flag("json", "Escribe el balance en JSON en este fichero.").StringVar(&jsonPath)
	app.Flag("xml", "Escribe el balance en XML en este fichero.").StringVar(&xmlPath)
	app.Flag("txt", "Escribe el balance en texto en este fichero (por omisión, se escribe por pantalla).").StringVar(&txtPath)
	app.Flag("licencia", "Muestra la licencia y termina.").Short('L').BoolVar(&licencia)
	verbosity := app.Flag("verbose", "Aumenta el nivel de detalle (repetible).").Short('v').Counter()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cteerrors.ExitUsage
	}

	if licencia {
		fmt.Println(licenseText)
		return cteerrors.ExitOK
	}

	var comps components.Components
	if componentesPath != "" {
		f, err := os.Open(componentesPath)
		if err != nil {
			log.Printf("no se pudo abrir el fichero de componentes: %v", err)
			return cteerrors.ExitIOErr
		}
		defer f.Close()
		comps, err = components.Parse(f)
		if err != nil {
			log.Printf("error al interpretar el fichero de componentes: %v", err)
			return cteerrors.ExitCode(err)
		}
		if err := comps.Validate(); err != nil {
			log.Printf("componentes inconsistentes: %v", err)
			return cteerrors.ExitCode(err)
		}
	}

	anyOutput := ocPath != "" || ofPath != "" || jsonPath != "" || xmlPath != "" || txtPath != ""
	if len(comps.Rows) == 0 && factoresPath == "" && !locSet && !comps.HasMeta(model.MetaLocalizacion) {
		if !anyOutput {
			log.Printf("no hay componentes ni fichero de factores: nada que calcular")
			return cteerrors.ExitUsage
		}
	}

	areaMeta, areaMetaSet := metaF32(comps, model.MetaAreaRef)
	arearef, _, warnArea := cteconfig.Resolve(ptrIf(arearefSet, float32(arearefFlag)), arearefSet,
		areaMeta, areaMetaSet, float32(1.0))
	if warnArea && *verbosity > 0 {
		log.Printf("AVISO: arearef de la CLI no coincide con el valor embebido en los componentes")
	}

	kexpMeta, kexpMetaSet := metaF32(comps, model.MetaKExp)
	kexp, _, warnKExp := cteconfig.Resolve(ptrIf(kexpSet, float32(kexpFlag)), kexpSet,
		kexpMeta, kexpMetaSet, float32(0.0))
	if warnKExp && *verbosity > 0 {
		log.Printf("AVISO: kexp de la CLI no coincide con el valor embebido en los componentes")
	}

	locMeta, locMetaSet := metaStr(comps, model.MetaLocalizacion)
	locStr, _, warnLoc := cteconfig.Resolve(ptrIfStr(locSet, locFlag), locSet,
		locMeta, locMetaSet, "PENINSULA")
	if warnLoc && *verbosity > 0 {
		log.Printf("AVISO: localizacion de la CLI no coincide con el valor embebido en los componentes")
	}

	var wf factors.Factors
	if factoresPath != "" {
		f, err := os.Open(factoresPath)
		if err != nil {
			log.Printf("no se pudo abrir el fichero de factores: %v", err)
			return cteerrors.ExitIOErr
		}
		defer f.Close()
		wf, err = factors.Parse(f)
		if err != nil {
			log.Printf("error al interpretar el fichero de factores: %v", err)
			return cteerrors.ExitCode(err)
		}
	} else {
		loc, err := model.ParseLocality(locStr)
		if err != nil {
			log.Printf("localizacion no reconocida: %v", err)
			return cteerrors.ExitUsage
		}
		wf, err = factors.WFRITE2014(loc)
		if err != nil {
			log.Printf("no se pudo cargar WF_RITE2014: %v", err)
			return cteerrors.ExitDataErr
		}
	}

	overrides := factors.UserOverrides{}
	if v, err := parseTripleFlagOrMeta(red1Flag, comps, model.MetaRed1); err != nil {
		log.Printf("red1: %v", err)
		return cteerrors.ExitDataErr
	} else if v != nil {
		overrides.Red1 = v
		recordTripleOverride(&comps, red1Flag, model.MetaRed1, *v)
	}
	if v, err := parseTripleFlagOrMeta(red2Flag, comps, model.MetaRed2); err != nil {
		log.Printf("red2: %v", err)
		return cteerrors.ExitDataErr
	} else if v != nil {
		overrides.Red2 = v
		recordTripleOverride(&comps, red2Flag, model.MetaRed2, *v)
	}
	if v, err := parseTripleFlagOrMeta(cogenFlag, comps, model.MetaCogen); err != nil {
		log.Printf("cogen: %v", err)
		return cteerrors.ExitDataErr
	} else if v != nil {
		overrides.CogenToGrid = v
		recordTripleOverride(&comps, cogenFlag, model.MetaCogen, *v)
	}
	if v, err := parseTripleFlagOrMeta(cogenNEPBFlag, comps, model.MetaCogenNEPB); err != nil {
		log.Printf("cogennepb: %v", err)
		return cteerrors.ExitDataErr
	} else if v != nil {
		overrides.CogenToNepb = v
		recordTripleOverride(&comps, cogenNEPBFlag, model.MetaCogenNEPB, *v)
	}

	if acsNearby {
		comps = components.ByService(comps, model.ACS)
	}

	prepared, err := factors.Prepare(wf, overrides, comps, !noSimplifica)
	if err != nil {
		log.Printf("no se pudo preparar la tabla de factores: %v", err)
		return cteerrors.ExitCode(err)
	}
	if acsNearby {
		prepared = factors.ToNearby(prepared)
	}

	if ocPath != "" {
		if err := os.WriteFile(ocPath, []byte(comps.String()), 0o644); err != nil {
			log.Printf("no se pudo escribir %s: %v", ocPath, err)
			return cteerrors.ExitIOErr
		}
	}
	if ofPath != "" {
		if err := os.WriteFile(ofPath, []byte(prepared.String()), 0o644); err != nil {
			log.Printf("no se pudo escribir %s: %v", ofPath, err)
			return cteerrors.ExitIOErr
		}
	}

	if len(comps.Rows) == 0 && anyOutput {
		return cteerrors.ExitOK
	}

	result, err := balance.Compute(comps, prepared, kexp, arearef)
	if err != nil {
		log.Printf("no se pudo calcular el balance: %v", err)
		return cteerrors.ExitCode(err)
	}

	if err := writeOutputs(result, jsonPath, xmlPath, txtPath); err != nil {
		log.Printf("no se pudo escribir el resultado: %v", err)
		return cteerrors.ExitIOErr
	}

	return cteerrors.ExitOK
}

func writeOutputs(result balance.Result, jsonPath, xmlPath, txtPath string) error {
	if jsonPath != "" {
		out, err := render.ToJSON(result)
		if err != nil {
			return fmt.Errorf("generando JSON: %w", err)
		}
		if err := os.WriteFile(jsonPath, out, 0o644); err != nil {
			return fmt.Errorf("escribiendo %s: %w", jsonPath, err)
		}
	}
	if xmlPath != "" {
		out, err := render.ToXML(result)
		if err != nil {
			return fmt.Errorf("generando XML: %w", err)
		}
		if err := os.WriteFile(xmlPath, out, 0o644); err != nil {
			return fmt.Errorf("escribiendo %s: %w", xmlPath, err)
		}
	}
	text := render.ToText(result)
	if txtPath != "" {
		if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("escribiendo %s: %w", txtPath, err)
		}
	} else {
		fmt.Println(text)
	}
	return nil
}

func ptrIf(set bool, v float32) *float32 {
	if !set {
		return nil
	}
	return &v
}

func ptrIfStr(set bool, v string) *string {
	if !set {
		return nil
	}
	return &v
}

func metaF32(comps components.Components, key string) (*float32, bool) {
	if v, ok := comps.GetMetaF32(key); ok {
		return &v, true
	}
	return nil, false
}

func metaStr(comps components.Components, key string) (*string, bool) {
	if v, ok := comps.GetMeta(key); ok {
		return &v, true
	}
	return nil, false
}

// recordTripleOverride writes a CLI-supplied weighting triple back into
// comps' metadata, so a --oc dump reflects the override that was
// actually applied rather than whatever the input file originally said.
func recordTripleOverride(comps *components.Components, flagVal, metaKey string, v carrier.RenNrenCo2) {
	if flagVal == "" {
		return
	}
	comps.UpdateMeta(metaKey, model.FormatTriple(v.Ren, v.Nren, v.Co2))
}

func parseTripleFlagOrMeta(flagVal string, comps components.Components, metaKey string) (*carrier.RenNrenCo2, error) {
	if flagVal != "" {
		ren, nren, co2, err := model.ParseTriple(flagVal)
		if err != nil {
			return nil, err
		}
		return &carrier.RenNrenCo2{Ren: ren, Nren: nren, Co2: co2}, nil
	}
	if ren, nren, co2, ok := comps.GetMetaRenNrenCo2(metaKey); ok {
		return &carrier.RenNrenCo2{Ren: ren, Nren: nren, Co2: co2}, nil
	}
	return nil, nil
}
