package components

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"energy_simulator/internal/cteerrors"
	"energy_simulator/internal/model"
)

// Parse reads the line-oriented components file format of spec.md §6:
// "#META key: value" lines declare metadata, other "#" lines are
// comments, and data lines are
//
//	carrier, role, origin, service, v_0, v_1, ..., v_{N-1} [# comment]
//
// The first data line's length fixes N; later lines must match.
func Parse(r io.Reader) (Components, error) {
	var out Components
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	n := -1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#META ") {
			key, value, err := parseMetaLine(line)
			if err != nil {
				return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "meta", Msg: err.Error()}
			}
			out.Meta.Update(key, value)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		data, comment := splitComment(line)
		fields, err := splitFields(data)
		if err != nil {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "row", Msg: err.Error()}
		}
		if len(fields) < 5 {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "row", Msg: "expected at least 5 comma-separated fields"}
		}

		carrier, err := model.ParseCarrier(strings.TrimSpace(fields[0]))
		if err != nil {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "carrier", Msg: err.Error()}
		}
		role, err := model.ParseRole(strings.TrimSpace(fields[1]))
		if err != nil {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "role", Msg: err.Error()}
		}
		origin, err := model.ParseOrigin(strings.TrimSpace(fields[2]))
		if err != nil {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "origin", Msg: err.Error()}
		}
		service, err := model.ParseService(strings.TrimSpace(fields[3]))
		if err != nil {
			return Components{}, &cteerrors.ParseError{Line: lineNo, Field: "service", Msg: err.Error()}
		}

		valueFields := fields[4:]
		if n == -1 {
			n = len(valueFields)
		} else if len(valueFields) != n {
			return Components{}, &cteerrors.ShapeError{Want: n, Got: len(valueFields)}
		}

		values := make([]float32, len(valueFields))
		for i, f := range valueFields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
			if err != nil {
				return Components{}, &cteerrors.ParseError{Line: lineNo, Field: fmt.Sprintf("v_%d", i), Msg: err.Error()}
			}
			values[i] = float32(v)
		}

		out.Rows = append(out.Rows, model.ComponentRow{
			Carrier: carrier,
			Role:    role,
			Origin:  origin,
			Service: service,
			Values:  values,
			Comment: comment,
		})
	}
	if err := scanner.Err(); err != nil {
		return Components{}, err
	}
	if err := out.Validate(); err != nil {
		return Components{}, err
	}
	return out, nil
}

func parseMetaLine(line string) (key, value string, err error) {
	rest := strings.TrimPrefix(line, "#META ")
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("expected \"key: value\" after #META, got %q", rest)
	}
	return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:]), nil
}

// splitComment splits a data line on the first "#" (quoted or not), returning
// the data portion and the trimmed comment (without the marker).
func splitComment(line string) (data, comment string) {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx], strings.TrimSpace(line[idx+1:])
	}
	return line, ""
}

// splitFields parses the comma-separated data portion of a line (the
// inline "# comment" suffix already stripped by splitComment, and any
// whole-line "#META"/comment lines already consumed before Parse ever
// calls this) via encoding/csv, so quoted fields and embedded commas are
// handled the same way any other CSV-backed format in the tree is.
func splitFields(s string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(s))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	fields, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	return fields, nil
}

// String serializes Components back to the line-oriented format, so it
// round-trips through the CLI's --oc output artifact.
func (c Components) String() string {
	var b strings.Builder
	for _, m := range c.Meta {
		fmt.Fprintf(&b, "#META %s: %s\n", m.Key, m.Value)
	}
	for _, row := range c.Rows {
		fmt.Fprintf(&b, "%s, %s, %s, %s", row.Carrier, row.Role, row.Origin, row.Service)
		for _, v := range row.Values {
			fmt.Fprintf(&b, ", %.2f", v)
		}
		if row.Comment != "" {
			fmt.Fprintf(&b, " # %s", row.Comment)
		}
		b.WriteString("\n")
	}
	return b.String()
}
