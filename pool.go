package spsolve

// elementPool hands out elements from fixed-size blocks. A block is never
// reallocated, so an *Element stays put for the life of the matrix and
// device models can cache it. Released elements are chained through
// NextInCol and bump their generation so stale handles can be detected.
type elementPool struct {
	blocks   [][]Element
	next     int
	perBlock int
	free     *Element
}

func (p *elementPool) init(first, perBlock int) {
	if first < perBlock {
		first = perBlock
	}
	p.blocks = [][]Element{make([]Element, first)}
	p.next = 0
	p.perBlock = perBlock
	p.free = nil
}

func (p *elementPool) get() *Element {
	if e := p.free; e != nil {
		p.free = e.NextInCol
		*e = Element{gen: e.gen}
		return e
	}

	if len(p.blocks) == 0 || p.next == len(p.blocks[len(p.blocks)-1]) {
		p.blocks = append(p.blocks, make([]Element, p.perBlock))
		p.next = 0
	}

	block := p.blocks[len(p.blocks)-1]
	e := &block[p.next]
	p.next++
	return e
}

func (p *elementPool) put(e *Element) {
	e.gen++
	e.NextInRow = nil
	e.NextInCol = p.free
	p.free = e
}

func (p *elementPool) reset() {
	p.blocks = nil
	p.next = 0
	p.free = nil
}
