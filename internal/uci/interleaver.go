package uci

// Matrix is the (Msym x Nsymb) channel interleaver grid: Msym rows (the
// modulation symbols per PUSCH symbol period) and Nsymb columns.
type Matrix struct {
	Msym, Nsymb int
	reserved    map[[2]int]Field
}

// NewMatrix builds a Matrix with the given reserved positions (ACK/RI)
// already marked; everything else carries coded data.
func NewMatrix(mSym, nSymb int, reserved []Position) *Matrix {
	m := &Matrix{Msym: mSym, Nsymb: nSymb, reserved: make(map[[2]int]Field, len(reserved))}
	for _, p := range reserved {
		m.reserved[[2]int{p.Row, p.Col}] = p.Field
	}
	return m
}

// Interleave reads K data bits sequentially, writes them column-first
// into the matrix skipping RI/CQI-reserved positions (ACK-reserved
// positions receive data and are then overwritten), then reads the
// matrix row-first to produce the channel-mapped bit stream. ackBits,
// riBits and cqiBits supply the values to overwrite at their
// reserved positions (nil if the field is absent for this grant).
func (m *Matrix) Interleave(data []byte, ackBits, riBits, cqiBits []byte) []byte {
	grid := make([][]byte, m.Msym)
	for r := range grid {
		grid[r] = make([]byte, m.Nsymb)
	}

	di := 0
	for c := 0; c < m.Nsymb; c++ {
		for r := 0; r < m.Msym; r++ {
			if f, ok := m.reserved[[2]int{r, c}]; ok && (f == FieldRI || f == FieldCQI) {
				continue // RI/CQI positions are not written with data at all
			}
			if di < len(data) {
				grid[r][c] = data[di]
				di++
			}
		}
	}

	// ACK bits overwrite data bits already placed at their reserved rows.
	ai := 0
	for c := 0; c < m.Nsymb && ai < len(ackBits); c++ {
		for r := 0; r < m.Msym && ai < len(ackBits); r++ {
			if f, ok := m.reserved[[2]int{r, c}]; ok && f == FieldACK {
				grid[r][c] = ackBits[ai]
				ai++
			}
		}
	}
	ri := 0
	for c := 0; c < m.Nsymb && ri < len(riBits); c++ {
		for r := 0; r < m.Msym && ri < len(riBits); r++ {
			if f, ok := m.reserved[[2]int{r, c}]; ok && f == FieldRI {
				grid[r][c] = riBits[ri]
				ri++
			}
		}
	}
	qi := 0
	for c := 0; c < m.Nsymb && qi < len(cqiBits); c++ {
		for r := 0; r < m.Msym && qi < len(cqiBits); r++ {
			if f, ok := m.reserved[[2]int{r, c}]; ok && f == FieldCQI {
				grid[r][c] = cqiBits[qi]
				qi++
			}
		}
	}

	out := make([]byte, 0, m.Msym*m.Nsymb)
	for r := 0; r < m.Msym; r++ {
		out = append(out, grid[r]...)
	}
	return out
}

// Deinterleave is Interleave's inverse: given the row-first channel-
// mapped stream, it returns (dataBits, ackBits, riBits, cqiBits)
// recovered at their original positions.
func (m *Matrix) Deinterleave(stream []byte) (data, ack, ri, cqi []byte) {
	grid := make([][]byte, m.Msym)
	idx := 0
	for r := range grid {
		grid[r] = stream[idx : idx+m.Nsymb]
		idx += m.Nsymb
	}

	for c := 0; c < m.Nsymb; c++ {
		for r := 0; r < m.Msym; r++ {
			switch m.reserved[[2]int{r, c}] {
			case FieldACK:
				ack = append(ack, grid[r][c])
			case FieldRI:
				ri = append(ri, grid[r][c])
			case FieldCQI:
				cqi = append(cqi, grid[r][c])
			default:
				data = append(data, grid[r][c])
			}
		}
	}
	return
}
