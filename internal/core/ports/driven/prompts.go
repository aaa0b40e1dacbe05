package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names are an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswerSystem is the system prompt for grounded answers.
	// The template expects a single %s placeholder for the retrieved context.
	PromptAnswerSystem = "answer_system"
)

// DefaultAnswerSystemPrompt is the built-in answer_system template.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultAnswerSystemPrompt = `Answer the question using ONLY the context below. If the answer is not in the context, say "I don't have enough information in the documents."

Context:
%s`

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in default prompt.
	SetPromptStore(store PromptStore)
}
