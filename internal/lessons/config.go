package lessons

// Config holds generation settings.
type Config struct {
	// LessonMaxTokens caps structured generations. Zero keeps the provider
	// budget.
	LessonMaxTokens int

	ExpansionMaxTokens int
	HintMaxTokens      int

	// Strict rejects structured results that fail Validate.
	Strict bool
}

// DefaultConfig returns sensible defaults for lesson generation.
func DefaultConfig() Config {
	return Config{
		ExpansionMaxTokens: 1200,
		HintMaxTokens:      120,
	}
}
