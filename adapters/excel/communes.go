package excel

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"parceldash/domain/survey"

	"github.com/xuri/excelize/v2"
)

type communeField int

const (
	fieldName communeField = iota
	fieldRaw
	fieldIndividual
	fieldCollective
	fieldConflicts
	fieldQuality
	fieldStatus
)

// headerAliases maps normalized header text to the field it fills
var headerAliases = map[string]communeField{
	"name":                  fieldName,
	"commune":               fieldName,
	"communename":           fieldName,
	"rawparcelcount":        fieldRaw,
	"rawparcels":            fieldRaw,
	"raw":                   fieldRaw,
	"individualparcelcount": fieldIndividual,
	"individualparcels":     fieldIndividual,
	"individual":            fieldIndividual,
	"collectiveparcelcount": fieldCollective,
	"collectiveparcels":     fieldCollective,
	"collective":            fieldCollective,
	"conflictcount":         fieldConflicts,
	"conflicts":             fieldConflicts,
	"qualityscore":          fieldQuality,
	"quality":               fieldQuality,
	"status":                fieldStatus,
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseCommunes maps table rows to commune records. Only the name column is
// required; rows without a name are skipped and reported as warnings.
func ParseCommunes(data *TableData) ([]survey.CommuneRecord, []string, error) {
	if data == nil {
		return nil, nil, fmt.Errorf("no table data")
	}
	columns := make(map[communeField]string)
	for _, h := range data.Headers {
		if f, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, taken := columns[f]; !taken {
				columns[f] = h
			}
		}
	}
	if _, ok := columns[fieldName]; !ok {
		return nil, nil, fmt.Errorf("no commune name column among headers %v", data.Headers)
	}

	var (
		records  []survey.CommuneRecord
		warnings []string
	)
	for i, row := range data.Rows {
		line := i + 2 // header is line 1
		name := row[columns[fieldName]]
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: missing commune name, skipped", line))
			continue
		}
		rec := survey.CommuneRecord{Name: name}
		var err error
		if rec.RawParcelCount, err = intCell(row, columns, fieldRaw); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.IndividualParcelCount, err = intCell(row, columns, fieldIndividual); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.CollectiveParcelCount, err = intCell(row, columns, fieldCollective); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.ConflictCount, err = intCell(row, columns, fieldConflicts); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.QualityScore, err = floatCell(row, columns, fieldQuality); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if err := rec.Status.UnmarshalText([]byte(row[columns[fieldStatus]])); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Status == "" {
			rec.Status = survey.StatusSuccess
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

func intCell(row RawRowData, columns map[communeField]string, f communeField) (int, error) {
	header, ok := columns[f]
	if !ok || row[header] == "" {
		return 0, nil
	}
	raw := strings.ReplaceAll(row[header], ",", "")
	n, err := strconv.Atoi(raw)
	if err != nil {
		// spreadsheets often store counts as floats
		v, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0, fmt.Errorf("column %q: %q is not a number", header, row[header])
		}
		n = int(v)
	}
	return n, nil
}

func floatCell(row RawRowData, columns map[communeField]string, f communeField) (float64, error) {
	header, ok := columns[f]
	if !ok || row[header] == "" {
		return 0, nil
	}
	raw := strings.TrimSuffix(strings.ReplaceAll(row[header], ",", "."), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %q is not a number", header, row[header])
	}
	return v, nil
}

// WriteCommunes writes records as a "communes" sheet readable by DataReader
func WriteCommunes(path string, records []survey.CommuneRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "communes"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []interface{}{"name", "rawParcelCount", "individualParcelCount", "collectiveParcelCount", "conflictCount", "qualityScore", "status"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Name, r.RawParcelCount, r.IndividualParcelCount, r.CollectiveParcelCount, r.ConflictCount, r.QualityScore, string(r.Status)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.SaveAs(path)
}
