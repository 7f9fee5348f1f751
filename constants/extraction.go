package constants

// DefaultCurrency is assumed whenever a source document carries no currency.
const DefaultCurrency = "USD"

// Placeholder values used by the rule-based extractor for fields it cannot
// infer from metadata. Downstream consumers may rely on these exact strings;
// do not reword without a product decision.
const (
	PlaceholderServiceAddress = "Unknown facility"
	PlaceholderJobType        = "General service"
)

// MaxDocChars caps how much of a single PDF's text is included in the
// extraction prompt, to respect model context limits.
const MaxDocChars = 8000
