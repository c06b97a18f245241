package spsolve

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/james-bowman/sparse"
)

const (
	DEFAULT_PARTITION  int = 0
	DIRECT_PARTITION   int = 1
	INDIRECT_PARTITION int = 2
	AUTO_PARTITION     int = 3
)

const (
	AnnotateNone    = 0
	AnnotateUnusual = 1 // small pivots, reorder fallbacks
	AnnotateFull    = 2 // every pivot step
)

// Configuration holds the feature switches and tuning constants of a matrix.
type Configuration struct {
	Complex                 bool // elements carry an imaginary part
	SeparatedComplexVectors bool // complex rhs/solution as two slices instead of interleaved

	Expandable       bool // grow the matrix when a larger index is stamped
	Translate        bool // assign internal indices in order of first use
	ModifiedNodal    bool // matrix comes from MNA, PreorderMNA is worthwhile
	DiagonalPivoting bool // prefer diagonal pivots during ordering
	VerifyPivots     bool // re-check pivot stability when reusing an ordering
	Refine           bool // one pass of iterative refinement in real solves
	Debug            bool // validate handles on every AddToElement

	RelThreshold          float64 // pivot must exceed this times the largest in its column
	AbsThreshold          float64 // pivots at or below this magnitude are zero
	TiesMultiplier        int
	DefaultPartition      int
	SpaceForElements      int // initial elements per row
	SpaceForFillIns       int // initial fill-ins per row
	ElementsPerAllocation int
	PrinterWidth          int

	Annotate int // AnnotateNone, AnnotateUnusual or AnnotateFull
	Logger   *slog.Logger
}

// DefaultConfiguration returns the settings used when Create gets a nil config.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Expandable:            true,
		Translate:             false,
		ModifiedNodal:         true,
		DiagonalPivoting:      true,
		VerifyPivots:          true,
		RelThreshold:          1e-3,
		AbsThreshold:          0.0,
		TiesMultiplier:        5,
		DefaultPartition:      AUTO_PARTITION,
		SpaceForElements:      6,
		SpaceForFillIns:       4,
		ElementsPerAllocation: 31,
		PrinterWidth:          80,
	}
}

type Matrix struct {
	Config Configuration
	ID     uuid.UUID

	Size          int64 // internal size
	ExtSize       int64 // largest external index in use
	CurrentSize   int64 // internal indices handed out by translation
	AllocatedSize int64 // capacity of the internal vectors
	AllocatedExt  int64 // capacity of the external maps
	Complex       bool

	DoRealDirect    []bool
	DoComplexDirect []bool

	Diags         []*Element // diagonal elements, pivot reciprocals once factored [1...Size]
	FirstInRow    []*Element
	FirstInCol    []*Element
	Intermediate  []float64
	MarkowitzRow  []int64
	MarkowitzCol  []int64
	MarkowitzProd []int64 // [0...Size+1], both ends used as sentinels

	RelThreshold float64
	AbsThreshold float64

	NeedsOrdering bool
	Partitioned   bool
	Factored      bool
	Reordered     bool
	RowsLinked    bool

	SingularRow int64
	SingularCol int64
	PivotCount  int64 // elimination steps completed

	Elements   int
	Fillins    int
	Singletons int

	PivotsOriginalRow    int64
	PivotsOriginalCol    int64
	PivotSelectionMethod byte // 's', 'q', 'd' or 'e'

	IntToExtRowMap []int64
	IntToExtColMap []int64
	ExtToIntRowMap []int64
	ExtToIntColMap []int64

	// arrangement at the first ordering, restored before every full reorder
	baseRowMap []int64
	baseColMap []int64
	hasBase    bool

	rowScale []float64 // by external index
	colScale []float64
	scaled   bool

	intermediateComplex []complex128
	scratch             []*Element // indirect addressing during left-looking factor

	norm       float64 // 1-norm captured before elimination
	resumeStep int64   // first step to reorder after a NeedsReorderError
	operations int     // inner loop multiply count, AUTO_PARTITION only

	original *sparse.CSR // pre-factor snapshot for refinement

	pool   elementPool
	trash  Element
	logger *slog.Logger
}

type Element struct {
	Real      float64
	Imag      float64
	Row       int64
	Col       int64
	NextInRow *Element
	NextInCol *Element

	fillin bool
	gen    uint32
}

// Handle is what device models cache between loads. It stays valid until the
// element's row or column is deleted or the element is stripped as a fill-in.
type Handle struct {
	elem *Element
	gen  uint32
}

// Valid reports whether h still refers to the element it was created for.
func (h Handle) Valid() bool {
	return h.elem != nil && h.elem.gen == h.gen
}

// Value returns the current real and imaginary parts.
func (h Handle) Value() (float64, float64) {
	return h.elem.Real, h.elem.Imag
}

// Template groups the four entries touched by a conductance-like stamp.
type Template struct {
	Element1        Handle
	Element2        Handle
	Element3Negated Handle
	Element4Negated Handle

	trash *Element
}
