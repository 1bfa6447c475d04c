package domain

// Sheet is one named output table. Rows hold typed cells: string, int, int64, float64 or nil
// for a blank cell.
type Sheet struct {
	Name     string
	Header   []string
	Rows     [][]any
	Emphasis []int // data row indexes rendered bold
}
