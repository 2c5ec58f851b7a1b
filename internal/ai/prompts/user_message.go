package prompts

import "fmt"

// UserMessage builds the user turn. Edit mode sends the whole current page
// and asks for a complete replacement.
func UserMessage(prompt, existingHTML string) string {
	if existingHTML == "" {
		return "Create a webpage for this idea: " + prompt
	}
	return fmt.Sprintf(`Here is an existing webpage:

%s

The user wants this change: %s

Return the full updated HTML page, following all system rules exactly.`, existingHTML, prompt)
}
