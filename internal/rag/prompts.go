package rag

import "fmt"

const systemPrompt = `You answer questions about a personal knowledge base. Only use information from the context provided. If the context does not contain enough information to fully answer the question, say so clearly. Include specific details and mention which sources you are drawing from when relevant.`

const questionTemplate = `Based on the following context from a knowledge base, answer the question.

Context:
%s

Question: %s

Answer:`

// buildQuestionPrompt embeds the assembled context and the verbatim
// question into the fixed prompt template.
func buildQuestionPrompt(contextText, question string) string {
	return fmt.Sprintf(questionTemplate, contextText, question)
}
