package nl2sql

const DefaultModel = "gpt-4o"

var KnownModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

func IsKnownModel(model string) bool {
	for _, known := range KnownModels {
		if known == model {
			return true
		}
	}
	return false
}
