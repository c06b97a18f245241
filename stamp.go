package spsolve

import "fmt"

// MatrixStamp is the part of a matrix that device models load into.
type MatrixStamp interface {
	Element(row, col int64, create bool) (Handle, error)
	AddToElement(h Handle, value float64)
	AddComplexToElement(h Handle, real, imag float64)
}

var _ MatrixStamp = (*Matrix)(nil)

// GetAdmittance prepares the four entries a two-terminal admittance between
// node1 and node2 touches. Node 0 is ground.
func (m *Matrix) GetAdmittance(node1, node2 int64, template *Template) error {
	return m.getQuad(node1, node2, node1, node2, template)
}

// GetQuad prepares the entries (row1, col1), (row2, col2), (row2, col1) and
// (row1, col2), the last two negated.
func (m *Matrix) GetQuad(row1, row2, col1, col2 int64, template *Template) error {
	return m.getQuad(row1, row2, col1, col2, template)
}

// GetOnes prepares the ±1 entries of a voltage source between pos and neg
// whose branch current is unknown eqn.
func (m *Matrix) GetOnes(pos, neg, eqn int64, template *Template) error {
	var err error
	if template.Element4Negated, err = m.Element(neg, eqn, true); err != nil {
		return fmt.Errorf("ones template (%d, %d, %d): %w", pos, neg, eqn, err)
	}
	if template.Element3Negated, err = m.Element(eqn, neg, true); err != nil {
		return fmt.Errorf("ones template (%d, %d, %d): %w", pos, neg, eqn, err)
	}
	if template.Element1, err = m.Element(pos, eqn, true); err != nil {
		return fmt.Errorf("ones template (%d, %d, %d): %w", pos, neg, eqn, err)
	}
	if template.Element2, err = m.Element(eqn, pos, true); err != nil {
		return fmt.Errorf("ones template (%d, %d, %d): %w", pos, neg, eqn, err)
	}
	template.trash = &m.trash
	return nil
}

func (m *Matrix) getQuad(row1, row2, col1, col2 int64, template *Template) error {
	positions := [4][2]int64{{row1, col1}, {row2, col2}, {row2, col1}, {row1, col2}}
	handles := [4]*Handle{&template.Element1, &template.Element2, &template.Element3Negated, &template.Element4Negated}

	for i, pos := range positions {
		h, err := m.Element(pos[0], pos[1], true)
		if err != nil {
			return fmt.Errorf("quad template (%d, %d, %d, %d): %w", row1, row2, col1, col2, err)
		}
		*handles[i] = h
	}

	// keep Element1 a real entry when one side is grounded
	if template.Element1.elem == &m.trash {
		template.Element1, template.Element2 = template.Element2, template.Element1
	}
	template.trash = &m.trash
	return nil
}

// AddRealQuad adds real to the two direct entries and subtracts it from the
// two negated ones.
func (t *Template) AddRealQuad(real float64) {
	t.Element1.elem.Real += real
	t.Element2.elem.Real += real
	t.Element3Negated.elem.Real -= real
	t.Element4Negated.elem.Real -= real
	t.clearTrash()
}

func (t *Template) AddImagQuad(imag float64) {
	t.Element1.elem.Imag += imag
	t.Element2.elem.Imag += imag
	t.Element3Negated.elem.Imag -= imag
	t.Element4Negated.elem.Imag -= imag
	t.clearTrash()
}

func (t *Template) AddComplexQuad(real, imag float64) {
	t.AddRealQuad(real)
	t.AddImagQuad(imag)
}

func (t *Template) clearTrash() {
	if t.trash != nil {
		t.trash.Real = 0.0
		t.trash.Imag = 0.0
	}
}
