package engine

import "sync"

type zobristTable struct {
	size  int
	cells []uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*zobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*zobristTable)}

func zobristFor(size int) *zobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[size]; ok {
		return table
	}
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(size)}
	table := &zobristTable{size: size, cells: make([]uint64, size*size*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	zobristTables.tables[size] = table
	return table
}

func (z *zobristTable) stone(row, col int, color Cell) uint64 {
	idx := (row*z.size + col) * 2
	if color == CellWhite {
		idx++
	}
	return z.cells[idx]
}

// Fingerprint hashes the stones on board. Engines keep the same value
// incrementally.
func Fingerprint(board Board) uint64 {
	z := zobristFor(board.Size())
	var hash uint64
	size := board.Size()
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			cell := board.at(row, col)
			if cell == CellEmpty {
				continue
			}
			hash ^= z.stone(row, col, cell)
		}
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
