package domain

// AIProvider identifies the service behind embeddings or chat completions.
type AIProvider string

const (
	// AIProviderOllama is a local Ollama server.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

const unknownDescription = "Unknown"

type providerInfo struct {
	description    string
	local          bool
	embeddingModel string
	llmModel       string
}

// providers is ordered as menus list it.
var providers = []struct {
	id AIProvider
	providerInfo
}{
	{AIProviderOllama, providerInfo{"Ollama (local)", true, DefaultEmbeddingModel, DefaultLLMModel}},
	{AIProviderOpenAI, providerInfo{"OpenAI (cloud)", false, "text-embedding-3-large", "gpt-4.1-nano"}},
}

func (p AIProvider) info() (providerInfo, bool) {
	for _, e := range providers {
		if e.id == p {
			return e.providerInfo, true
		}
	}
	return providerInfo{}, false
}

// IsValid reports whether p is a known provider.
func (p AIProvider) IsValid() bool {
	_, ok := p.info()
	return ok
}

// IsLocal is true for providers that run on this machine and need a base URL.
func (p AIProvider) IsLocal() bool {
	info, _ := p.info()
	return info.local
}

// RequiresAPIKey is true for every known non-local provider.
func (p AIProvider) RequiresAPIKey() bool {
	info, ok := p.info()
	return ok && !info.local
}

func (p AIProvider) String() string { return string(p) }

// Description returns a one-line summary for menus and help text.
func (p AIProvider) Description() string {
	if info, ok := p.info(); ok {
		return info.description
	}
	return unknownDescription
}

func (p AIProvider) ready(apiKey string) bool {
	return p.IsValid() && (apiKey != "" || !p.RequiresAPIKey())
}

// AllEmbeddingProviders lists the providers that can embed text.
func AllEmbeddingProviders() []AIProvider {
	return providerIDs(func(i providerInfo) bool { return i.embeddingModel != "" })
}

// AllLLMProviders lists the providers that can answer questions.
func AllLLMProviders() []AIProvider {
	return providerIDs(func(i providerInfo) bool { return i.llmModel != "" })
}

func DefaultEmbeddingModels() map[AIProvider]string {
	return providerModels(func(i providerInfo) string { return i.embeddingModel })
}

func DefaultLLMModels() map[AIProvider]string {
	return providerModels(func(i providerInfo) string { return i.llmModel })
}

func providerIDs(keep func(providerInfo) bool) []AIProvider {
	var ids []AIProvider
	for _, e := range providers {
		if keep(e.providerInfo) {
			ids = append(ids, e.id)
		}
	}
	return ids
}

func providerModels(model func(providerInfo) string) map[AIProvider]string {
	m := make(map[AIProvider]string, len(providers))
	for _, e := range providers {
		if name := model(e.providerInfo); name != "" {
			m[e.id] = name
		}
	}
	return m
}
