package factors

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"energy_simulator/internal/model"
)

//go:embed testdata/wf_rite2014.yaml
var wfRite2014YAML []byte

type rite2014Row struct {
	Carrier  string  `yaml:"carrier"`
	Locality string  `yaml:"locality"`
	Source   string  `yaml:"source"`
	Dest     string  `yaml:"dest"`
	Step     string  `yaml:"step"`
	Ren      float32 `yaml:"ren"`
	Nren     float32 `yaml:"nren"`
	Co2      float32 `yaml:"co2"`
}

type rite2014File struct {
	Rows []rite2014Row `yaml:"rows"`
}

// WFRITE2014 builds the baseline table of spec.md §6: every row that
// applies regardless of locality, plus the electricity rows for the
// requested locality only.
func WFRITE2014(loc model.Locality) (Factors, error) {
	var file rite2014File
	if err := yaml.Unmarshal(wfRite2014YAML, &file); err != nil {
		return Factors{}, fmt.Errorf("decoding embedded WF_RITE2014 table: %w", err)
	}

	var out Factors
	for _, r := range file.Rows {
		if r.Locality != "" && model.Locality(r.Locality) != loc {
			continue
		}
		out.Rows = append(out.Rows, model.WeightingRow{
			Carrier: model.Carrier(r.Carrier),
			Source:  model.Source(r.Source),
			Dest:    model.Dest(r.Dest),
			Step:    model.Step(r.Step),
			Ren:     r.Ren,
			Nren:    r.Nren,
			Co2:     r.Co2,
		})
	}
	return out, nil
}
