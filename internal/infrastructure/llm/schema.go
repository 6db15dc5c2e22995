package llm

import (
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Tables 允许 LLM 返回的表名
var Tables = []string{
	model.TableExpenses,
	model.TableIncomeEntries,
	model.TableMaidDailyLog,
	model.TableMaidAttendance,
	model.TableReminders,
	model.TableBills,
}

// IntentResponseSchema 描述 {userResponse, dbOperations} 信封
// data 字段按表不同，这里只约束为 object
func IntentResponseSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"userResponse": {
				Type:        jsonschema.String,
				Description: "Short friendly reply shown and read aloud to the user.",
			},
			"dbOperations": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"table": {
							Type: jsonschema.String,
							Enum: Tables, // 核心：表名枚举
						},
						"operation": {
							Type: jsonschema.String,
							Enum: []string{"insert"},
						},
						"data": {
							Type:                 jsonschema.Object,
							AdditionalProperties: true,
						},
					},
					Required: []string{"table", "operation", "data"},
				},
			},
		},
		Required: []string{"userResponse", "dbOperations"},
	}
}

func responseFormat(useSchema bool) *openai.ChatCompletionResponseFormat {
	if !useSchema {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   "kindkeeper_intent",
			Schema: IntentResponseSchema(),
			Strict: false,
		},
	}
}
