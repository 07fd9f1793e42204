package openai

import "strings"

const maxPromptRunes = 4000

const systemPrompt = `You classify manufacturing customer inquiries.
Pick exactly one primary category from this set:
QUOTE_REQUEST, TECHNICAL_SPECIFICATION, CAPABILITY_QUESTION, PARTNERSHIP_INQUIRY, GENERAL_INQUIRY, UNKNOWN.

Respond with a strict JSON object and nothing else:
{"primary_category": string, "confidence": number between 0 and 1, "all_categories": [{"category": string, "confidence": number}]}

List every category you considered in all_categories. Use UNKNOWN only
when the text carries no classifiable intent.`

func buildClassificationPrompt(text string) string {
	runes := []rune(text)
	if len(runes) > maxPromptRunes {
		text = string(runes[:maxPromptRunes])
	}
	return "Inquiry:\n" + strings.TrimSpace(text)
}
