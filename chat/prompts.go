package chat

// Default system prompt fragments. They are split the way the budget
// allocator consumes them: fixed overhead fragments are counted up front,
// continuations close each rendered prompt.

const defaultSystemDescription = "This is a chat between an intelligent AI bot named Copilot and one or more participants. " +
	"SYSTEM is additional information about the chat and the participants. " +
	"The AI was trained on data through {{.KnowledgeCutoff}} and is not aware of events that have occurred after that time. " +
	"It cannot access the internet or other external services beyond the information given in the chat."

const defaultSystemResponse = "Either return [silence] or provide a response to the last message. " +
	"If you decide to respond, you must always generate a response immediately. " +
	"Prioritize the last message. Never generate [silence] if a direct question was asked."

const defaultSystemIntent = "Rewrite the last message to reflect the user's intent, taking into consideration the provided chat history. " +
	"The output should be a single rewritten sentence that describes the user's intent and is understandable outside of the context of the chat history, " +
	"in a way that will be useful for creating an embedding for semantic search."

const defaultSystemIntentContinuation = "REWRITTEN INTENT WITH EMBEDDED CONTEXT:\n[{{.KnowledgeCutoff}}] {{.Audience}}:"

const defaultSystemAudience = "Below is a chat history between an intelligent AI bot named Copilot with one or more participants. " +
	"Extract the list of participants in the chat. Only include the participants who have spoken; exclude the bot."

const defaultSystemAudienceContinuation = "Output the list of participant names, separated by commas. Do not include the bot.\n" +
	"ANSWER:"

const defaultSystemChatContinuation = "SINGLE RESPONSE FROM BOT TO LAST MESSAGE:\n[{{.KnowledgeCutoff}}] bot:"

// defaultResponsePromptTemplate composes the final response prompt from the
// stage outputs accumulated by the orchestrator.
const defaultResponsePromptTemplate = `{{.SystemDescription}}
{{.SystemResponse}}
{{.Audience}}
{{.UserIntent}}
{{.ChatContext}}
{{.SystemChatContinuation}}`

// defaultMemoryExtractionPrompt asks the backend to distill the latest
// exchange into discrete memory items as a JSON object.
const defaultMemoryExtractionPrompt = `Extract up to 3 items of {{.MemoryName}} from the following chat exchange.
{{.MemoryDescription}}
Respond with a JSON object of the form {"items": [{"label": "<short label>", "details": "<distilled fact>"}]} and nothing else.
If there is nothing worth remembering, respond with {"items": []}.

CHAT EXCHANGE:
{{.Exchange}}`

// memoryDescriptions explain each memory name to the extraction model.
var memoryDescriptions = map[string]string{
	LongTermMemoryName: "Long term memory captures durable facts about the user: identity, preferences, relationships and recurring goals.",
	WorkingMemoryName:  "Working memory captures short-lived context about the current task: open questions, in-progress work and immediate goals.",
}
