package generation

import (
	"fmt"

	"github.com/ahrav/go-ragcheck/internal/configuration"
)

// Profile system prompts. The profile changes tone and subject framing only;
// the answer contract (grounded in context, degrade to general knowledge)
// is identical across profiles.
const (
	systemPromptGeneral = "You are a helpful assistant that answers questions based on the provided context. " +
		"Use the context information to answer the question accurately. " +
		"If the context doesn't contain enough information to answer the question, " +
		"provide the best answer you can based on your general knowledge. " +
		"If you get conversational comments answer in the same way."

	systemPromptConstitution = "You are a helpful assistant that answers questions about the constitution " +
		"based on the provided context. " +
		"Use the context information to answer the question accurately. " +
		"If the context doesn't contain enough information to answer the question, " +
		"provide the best answer you can based on your general knowledge. " +
		"If you get conversational comments answer in the same way."

	systemPromptRetail = "You are a helpful assistant that answers questions about retail products " +
		"based on the provided context. " +
		"Use the context information to answer the question accurately. " +
		"If the context doesn't contain enough information to answer the question, " +
		"provide the best answer you can based on your general knowledge. " +
		"If you get conversational comments answer in the same way."

	systemPromptRegenerate = "You are a helpful assistant that answers questions based ONLY on the provided context. " +
		"The previous answer contained hallucinations or incorrect information. " +
		"Please provide a new answer that strictly adheres to the context provided. " +
		"If the context doesn't contain enough information to answer the question, " +
		"you must clearly state that you don't have enough information in the context. " +
		"Do not make up information or use knowledge outside the provided context."
)

// systemPrompt returns the profile's generation system prompt.
func systemPrompt(profile configuration.BotProfile) string {
	switch profile {
	case configuration.ProfileConstitution:
		return systemPromptConstitution
	case configuration.ProfileRetail:
		return systemPromptRetail
	default:
		return systemPromptGeneral
	}
}

// ChatPrompt builds the system and user messages for a first-pass answer.
// With no context the question is sent bare.
func ChatPrompt(profile configuration.BotProfile, question, context string) (system, user string) {
	system = systemPrompt(profile)
	if context == "" {
		return system, question
	}
	user = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
	return system, user
}

// RegeneratePrompt builds the system and user messages for a corrected
// answer. The previous answer is included so the model can avoid repeating
// its unsupported claims.
// All profiles share the stricter regeneration contract.
func RegeneratePrompt(question, previousAnswer, context string) (system, user string) {
	system = systemPromptRegenerate
	if context == "" {
		user = fmt.Sprintf(
			"Previous answer (had hallucinations): %s\n\nQuestion: %s\n\n"+
				"Please provide a corrected answer. If you don't have enough information, say so.",
			previousAnswer, question)
		return system, user
	}
	user = fmt.Sprintf(
		"Context:\n%s\n\nPrevious answer (had hallucinations): %s\n\nQuestion: %s\n\n"+
			"Please provide a corrected answer based strictly on the context above.",
		context, previousAnswer, question)
	return system, user
}
