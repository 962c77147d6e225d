package export

// Table is one titled tabular section of an export document.
type Table struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// Document groups the tables rendered into a single export file. A schedule
// export carries two tables: the weekly grid and the worker summary.
type Document struct {
	Title  string
	Tables []Table
}
