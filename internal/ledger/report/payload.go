// Package report flattens QuickBooks tabular report payloads into transaction rows.
package report

// Payload is the subset of a report response the parser reads.
type Payload struct {
	Columns Columns `json:"Columns"`
	Rows    Rows    `json:"Rows"`
}

type Columns struct {
	Column []Column `json:"Column"`
}

type Column struct {
	ColTitle string     `json:"ColTitle"`
	ColType  string     `json:"ColType"`
	MetaData []MetaData `json:"MetaData,omitempty"`
}

type MetaData struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type Rows struct {
	Row []Row `json:"Row"`
}

// Row is one node of the report tree. A row may carry leaf cells, nested rows
// or both; the two are checked independently.
type Row struct {
	Type    string     `json:"type,omitempty"`
	ColData []Cell     `json:"ColData,omitempty"`
	Header  *CellGroup `json:"Header,omitempty"`
	Rows    *Rows      `json:"Rows,omitempty"`
	Summary *CellGroup `json:"Summary,omitempty"`
}

type CellGroup struct {
	ColData []Cell `json:"ColData"`
}

type Cell struct {
	Value string `json:"value"`
	ID    string `json:"id,omitempty"`
	Href  string `json:"href,omitempty"`
}

// HasCells reports whether the row carries leaf data.
func (r Row) HasCells() bool { return len(r.ColData) > 0 }

// HasChildren reports whether the row nests further rows.
func (r Row) HasChildren() bool { return r.Rows != nil && len(r.Rows.Row) > 0 }
