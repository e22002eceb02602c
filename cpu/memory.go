package cpu

const (
	MEMORY_SIZE = 1024 // Default memory size, in cells.
)

// Memory is the flat data memory. It doubles as the stack.
type Memory struct {
	Data []int32
}

// NewMemory creates a zeroed memory of size cells.
func NewMemory(size uint) Memory {
	return Memory{Data: make([]int32, size)}
}

func (m *Memory) Len() int {
	return len(m.Data)
}

func (m *Memory) Valid(addr int64) bool {
	return addr >= 0 && addr < int64(len(m.Data))
}

func (m *Memory) Load(addr int64) (value int32, err error) {
	if !m.Valid(addr) {
		err = ErrMemoryBounds(addr)
		return
	}

	value = m.Data[addr]
	return
}

func (m *Memory) Store(addr int64, value int32) (err error) {
	if !m.Valid(addr) {
		err = ErrMemoryBounds(addr)
		return
	}

	m.Data[addr] = value
	return
}

// Reset zeroes every cell.
func (m *Memory) Reset() {
	clear(m.Data)
}
