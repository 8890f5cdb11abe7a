package parser

// Var is a stable handle to a variable cell in an Arena.
type Var int

// NoVar is the invalid handle.
const NoVar Var = -1

// Valid reports whether the handle refers to a cell.
func (v Var) Valid() bool {
	return v >= 0
}

// Arena owns the storage of the variables a parser reads and writes.
// Cells are never moved or freed so handles stay valid for the lifetime of the arena.
type Arena struct {
	cells []float64
	names []string
}

func NewArena() *Arena {
	return &Arena{}
}

// New allocates a cell holding v.
func (a *Arena) New(name string, v float64) Var {
	a.cells = append(a.cells, v)
	a.names = append(a.names, name)
	return Var(len(a.cells) - 1)
}

func (a *Arena) Get(v Var) float64 {
	return a.cells[v]
}

func (a *Arena) Set(v Var, x float64) {
	a.cells[v] = x
}

// Name returns the name the cell was allocated with.
func (a *Arena) Name(v Var) string {
	return a.names[v]
}

// Len returns the number of cells, which is also the row width expected by bulk evaluation.
func (a *Arena) Len() int {
	return len(a.cells)
}

// Contains reports whether v is a handle of this arena.
func (a *Arena) Contains(v Var) bool {
	return v >= 0 && int(v) < len(a.cells)
}

// Row copies the current cell values into a new slice suitable for bulk evaluation.
func (a *Arena) Row() []float64 {
	row := make([]float64, len(a.cells))
	copy(row, a.cells)
	return row
}

// ZeroFactory creates every unknown variable as a new zero cell of the arena.
func ZeroFactory(name string, a *Arena) Var {
	return a.New(name, 0)
}
