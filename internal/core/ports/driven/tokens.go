package driven

// TokenCounter estimates the number of model tokens in a text.
type TokenCounter interface {
	// Count returns the token count, or 0 when it cannot be estimated.
	Count(text string) int
}
