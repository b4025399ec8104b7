package factors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/model"
)

// Parse reads the factors file format of spec.md §6:
//
//	carrier, source, dest, step, ren, nren, co2 [# comment]
//
// with the same "#META key: value" / "#" comment conventions as the
// components file.
func Parse(r io.Reader) (Factors, error) {
	var out Factors
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#META ") {
			rest := strings.TrimPrefix(line, "#META ")
			idx := strings.Index(rest, ":")
			if idx < 0 {
				return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "meta", Msg: "expected \"key: value\""}
			}
			out.Meta.Update(strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:]))
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		data, comment := splitComment(line)
		fields := splitFields(data)
		if len(fields) != 7 {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "row", Msg: "expected 7 comma-separated fields"}
		}

		c, err := model.ParseCarrier(strings.TrimSpace(fields[0]))
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "carrier", Msg: err.Error()}
		}
		s, err := model.ParseSource(strings.TrimSpace(fields[1]))
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "source", Msg: err.Error()}
		}
		d, err := model.ParseDest(strings.TrimSpace(fields[2]))
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "dest", Msg: err.Error()}
		}
		step, err := model.ParseStep(strings.TrimSpace(fields[3]))
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "step", Msg: err.Error()}
		}
		ren, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 32)
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "ren", Msg: err.Error()}
		}
		nren, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 32)
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "nren", Msg: err.Error()}
		}
		co2, err := strconv.ParseFloat(strings.TrimSpace(fields[6]), 32)
		if err != nil {
			return Factors{}, &cteerrors.ParseError{Line: lineNo, Field: "co2", Msg: err.Error()}
		}

		out.Rows = append(out.Rows, model.WeightingRow{
			Carrier: c, Source: s, Dest: d, Step: step,
			Ren: float32(ren), Nren: float32(nren), Co2: float32(co2),
			Comment: comment,
		})
	}
	if err := scanner.Err(); err != nil {
		return Factors{}, err
	}
	return out, nil
}

func splitComment(line string) (data, comment string) {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx], strings.TrimSpace(line[idx+1:])
	}
	return line, ""
}

func splitFields(s string) []string {
	parts := strings.Split(s, ",")
	for len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// String serializes Factors back to the line-oriented format, so it
// round-trips through the CLI's --of output artifact.
func (f Factors) String() string {
	var b strings.Builder
	for _, m := range f.Meta {
		fmt.Fprintf(&b, "#META %s: %s\n", m.Key, m.Value)
	}
	for _, row := range f.Rows {
		fmt.Fprintf(&b, "%s, %s, %s, %s, %.3f, %.3f, %.3f", row.Carrier, row.Source, row.Dest, row.Step, row.Ren, row.Nren, row.Co2)
		if row.Comment != "" {
			fmt.Fprintf(&b, " # %s", row.Comment)
		}
		b.WriteString("\n")
	}
	return b.String()
}
