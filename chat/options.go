package chat

import (
	"github.com/colincmac/openai-plugins-serverless/model"
)

// Memory collection names. Semantic memories are stored per chat under
// "<memoryName>-<chatID>".
const (
	// LongTermMemoryName holds durable facts distilled from conversations.
	LongTermMemoryName = "LongTermMemory"
	// WorkingMemoryName holds short-lived task context.
	WorkingMemoryName = "WorkingMemory"
)

// Options carries every prompt- and budget-related setting used by the
// pipeline. The zero value is not usable; start from DefaultOptions.
type Options struct {
	// CompletionTokenLimit is the total token ceiling for a rendered prompt
	// plus its response.
	CompletionTokenLimit int
	// ResponseTokenLimit is reserved for the generated response.
	ResponseTokenLimit int

	// Context weights split the remaining budget between retrieval stages.
	// They need not sum to 1; the slack funds chat history.
	ExternalInformationContextWeight float64
	MemoriesResponseContextWeight    float64
	DocumentContextWeight            float64

	// Minimum relevance thresholds for retrieval.
	SemanticMemoryMinRelevance float64
	DocumentMemoryMinRelevance float64

	// Response sampling parameters.
	ResponseTemperature      float64
	ResponseTopP             float64
	ResponseFrequencyPenalty float64
	ResponsePresencePenalty  float64

	// Intent/audience extraction sampling parameters.
	IntentTemperature      float64
	IntentTopP             float64
	IntentFrequencyPenalty float64
	IntentPresencePenalty  float64

	// KnowledgeCutoffDate is interpolated into system prompts.
	KnowledgeCutoffDate string

	// System prompt fragments.
	SystemDescription          string
	SystemResponse             string
	SystemIntent               string
	SystemIntentContinuation   string
	SystemAudience             string
	SystemAudienceContinuation string
	SystemChatContinuation     string
	ResponsePromptTemplate     string
	MemoryExtractionPrompt     string

	// MemoryNames are the semantic memory collections distilled and queried
	// per chat.
	MemoryNames []string

	// Document memory collection naming.
	ChatDocumentCollectionPrefix string
	GlobalDocumentCollectionName string
}

// DefaultOptions returns the baseline configuration.
func DefaultOptions() *Options {
	return &Options{
		CompletionTokenLimit:             4096,
		ResponseTokenLimit:               1024,
		ExternalInformationContextWeight: 0.3,
		MemoriesResponseContextWeight:    0.3,
		DocumentContextWeight:            0.3,
		SemanticMemoryMinRelevance:       0.8,
		DocumentMemoryMinRelevance:       0.8,
		ResponseTemperature:              0.7,
		ResponseTopP:                     1,
		ResponseFrequencyPenalty:         0.5,
		ResponsePresencePenalty:          0.5,
		IntentTemperature:                0.7,
		IntentTopP:                       1,
		IntentFrequencyPenalty:           0.5,
		IntentPresencePenalty:            0.5,
		KnowledgeCutoffDate:              "Saturday, January 1, 2022",
		SystemDescription:                defaultSystemDescription,
		SystemResponse:                   defaultSystemResponse,
		SystemIntent:                     defaultSystemIntent,
		SystemIntentContinuation:         defaultSystemIntentContinuation,
		SystemAudience:                   defaultSystemAudience,
		SystemAudienceContinuation:       defaultSystemAudienceContinuation,
		SystemChatContinuation:           defaultSystemChatContinuation,
		ResponsePromptTemplate:           defaultResponsePromptTemplate,
		MemoryExtractionPrompt:           defaultMemoryExtractionPrompt,
		MemoryNames:                      []string{LongTermMemoryName, WorkingMemoryName},
		ChatDocumentCollectionPrefix:     "chat-documents-",
		GlobalDocumentCollectionName:     "global-documents",
	}
}

// MemoryCollectionName returns the per-chat collection name for a semantic
// memory kind.
func MemoryCollectionName(chatID, memoryName string) string {
	return memoryName + "-" + chatID
}

// responseSampling builds the sampling configuration for the final chat
// response.
func (o *Options) responseSampling() model.SamplingConfig {
	return model.SamplingConfig{
		MaxTokens:        o.ResponseTokenLimit,
		Temperature:      o.ResponseTemperature,
		TopP:             o.ResponseTopP,
		FrequencyPenalty: o.ResponseFrequencyPenalty,
		PresencePenalty:  o.ResponsePresencePenalty,
	}
}

// intentSampling builds the sampling configuration shared by the intent and
// audience extraction stages. The stop sequence keeps the model from
// continuing the conversation past the extraction answer.
func (o *Options) intentSampling() model.SamplingConfig {
	return model.SamplingConfig{
		MaxTokens:        o.ResponseTokenLimit,
		Temperature:      o.IntentTemperature,
		TopP:             o.IntentTopP,
		FrequencyPenalty: o.IntentFrequencyPenalty,
		PresencePenalty:  o.IntentPresencePenalty,
		StopSequences:    []string{"] bot:"},
	}
}
