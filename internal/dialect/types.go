package dialect

// Dialect identifies a regional variant of Arabic, or English for
// non-Arabic input.
type Dialect string

const (
	DialectEgyptian  Dialect = "eg"
	DialectSaudi     Dialect = "sa"
	DialectEmirati   Dialect = "ae"
	DialectKuwaiti   Dialect = "kw"
	DialectLevantine Dialect = "lev"
	DialectGulf      Dialect = "gulf"
	DialectMaghrebi  Dialect = "maghreb"
	DialectMSA       Dialect = "msa"
	DialectEnglish   Dialect = "en"
)

// Method records which strategy produced a classification.
type Method string

const (
	MethodKeyword Method = "keyword"
	MethodHybrid  Method = "hybrid"
	MethodGeo     Method = "geo"
	MethodML      Method = "ml"
)

// Result is an immutable classification outcome. Confidence is always
// within [0, 1].
type Result struct {
	Dialect    Dialect `json:"dialect"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// DetectOptions carry optional request context for a classification.
type DetectOptions struct {
	// Country is an ISO-3166 alpha-2 code used for the geo boost.
	Country string
	// ConversationID is attached to the analytics event when present.
	ConversationID string
}
