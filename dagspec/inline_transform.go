package dagspec

// TransformKind enumerates the closed set of inline transform operations.
// Inline transforms are declarative and closure-free: every one of them can
// be reconstructed purely from a DagSpec (unlike arbitrary module bodies,
// which may carry a closure that cannot survive a suspend/resume
// round-trip; see synthetic module rehydration in store).
type TransformKind string

const (
	TransformMerge       TransformKind = "merge"       // structural record merge
	TransformProject     TransformKind = "project"      // field projection (subset of fields)
	TransformAccess      TransformKind = "access"        // single field access
	TransformAnd         TransformKind = "and"
	TransformOr          TransformKind = "or"
	TransformNot         TransformKind = "not"
	TransformConditional TransformKind = "conditional" // if/then/else
	TransformGuarded     TransformKind = "guarded"      // guarded expression
	TransformListFilter  TransformKind = "listFilter"
	TransformListMap     TransformKind = "listMap"
	TransformListAll     TransformKind = "listAll"
	TransformListAny     TransformKind = "listAny"
	TransformConstant    TransformKind = "constant"
	TransformBranch      TransformKind = "branch" // n-ary typed switch
)

// InlineTransform is a single node of the closed inline-transform sum. Only
// the fields relevant to Kind are populated. All inline transforms evaluate
// synchronously from already-computed inputs; none may suspend or schedule
// further work.
type InlineTransform struct {
	Kind TransformKind

	// Access / Project: names of fields to read from a single Product input.
	FieldNames []string

	// Conditional: CondInput is a Bool input name; ThenInput/ElseInput name
	// the branches' data inputs.
	CondInput string
	ThenInput string
	ElseInput string

	// Guarded: GuardInput names a Bool input; ValueInput names the guarded
	// value; produces Option<T>, Some(value) when guard is true, None
	// otherwise.
	GuardInput string
	ValueInput string

	// ListFilter/ListMap/ListAll/ListAny: ListInput names the List input;
	// Predicate/Mapper name a nested InlineTransform applied per element,
	// with ElementInput as the synthetic name bound to the element.
	ListInput    string
	ElementInput string
	Element      *InlineTransform

	// And/Or: operand input names, evaluated in order (no short-circuit
	// guarantee beyond the declared order, since all inputs are already
	// computed data nodes by the time an inline transform runs).
	OperandInputs []string

	// Not: single operand input name.
	OperandInput string

	// Constant: a literal value encoded as already-converted JSON-shaped
	// data plus its declared CType signature (resolved by the loader).
	ConstantJSON any
	ConstantSig  string

	// Branch: an ordered list of (case predicate input, result input)
	// pairs plus a default result input.
	Cases          []BranchCase
	DefaultInput   string
}

// BranchCase is one arm of a Branch inline transform: when CaseInput
// evaluates true, ResultInput is selected.
type BranchCase struct {
	CaseInput   string
	ResultInput string
}
