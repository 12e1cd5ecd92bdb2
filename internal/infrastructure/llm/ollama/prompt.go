package ollama

func buildEntityPrompt(text string, maxSnippet int) string {
	snippet := text
	if maxSnippet > 0 && len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are a named entity recognizer for court judgments.
Return strict JSON object with key entities: an array of objects with keys text (string) and label (one of ORG, PERSON, DATE).
List entities in the order they appear. Copy text exactly as written. No markdown, no extra keys.

Text:
` + snippet
}
