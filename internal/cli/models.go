package cli

import "strings"

var validGeminiModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-flash-preview",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
}

var validOpenAIModels = []string{
	"o1",
	"o3-mini",
	"o1-pro",
	"o3",
	"gpt-5",
	"gpt-5-nano",
	"gpt-5-mini",
	"gpt-5-pro",
	"gpt-5.1",
	"gpt-5.2",
	"gpt-5.2-pro",
}

func isValidGeminiModel(model string) bool {
	return containsModel(validGeminiModels, model)
}

func isValidOpenAIModel(model string) bool {
	return containsModel(validOpenAIModels, model)
}

func containsModel(models []string, model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}
