package port

// SortMode selects the result ordering for a search.
type SortMode string

const (
	SortDate      SortMode = "date"
	SortDeadline  SortMode = "deadline"
	SortRelevance SortMode = "relevance"
)

// FilterSet is an immutable description of one search. It is a pure value:
// compiling it against a FieldCatalog yields the same request every time.
type FilterSet struct {
	Page     int `validate:"min=1"`
	PageSize int `validate:"min=1,max=100"`

	// Keywords is the final composed text query (manual input, keyword
	// buckets and training terms already OR-joined).
	Keywords string

	// CPVWhitelist and CPVPrefix are mutually exclusive per invocation;
	// the whitelist wins when both are set. The training preset forces the
	// fixed whitelist regardless of either.
	CPVWhitelist []string
	CPVPrefix    string

	DeptCodes []string
	Buyer     string
	Nature    []string

	// UseDate gates the date range: when false, neither bound is emitted
	// regardless of the stored values.
	UseDate  bool
	DateFrom string `validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `validate:"omitempty,datetime=2006-01-02"`

	Sort SortMode `validate:"omitempty,oneof=date deadline relevance"`

	// UseTraining toggles the built-in training/apprenticeship preset:
	// a fixed keyword disjunction, a fixed CPV whitelist and a fixed
	// service-category code.
	UseTraining bool
}
