package excel

// RawRowData represents a row of raw sheet data keyed by header
type RawRowData map[string]string

// TableData is a header row plus its data rows
type TableData struct {
	Headers []string
	Rows    []RawRowData
}
