package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptQASystem is the grounded-answering system prompt. It instructs
	// the model to answer only from the supplied context and to cite
	// sources as "According to [Document Name], Page [X]".
	// This prompt has no format placeholders.
	PromptQASystem = "qa_system"

	// PromptQAUser frames the retrieved context and the question.
	// The template expects %s (context blocks) and %s (question).
	PromptQAUser = "qa_user"

	// PromptNoDocuments is the canned answer returned when retrieval
	// produces nothing for the tenant. No format placeholders.
	PromptNoDocuments = "no_documents"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Services implementing it can have their templates
// customised by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable
	// prompts. If not set, the service should use hardcoded defaults.
	SetPromptStore(store PromptStore)
}
