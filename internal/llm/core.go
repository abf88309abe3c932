// Package llm abstracts the configured intelligence cores behind one client
// interface. A core is a (provider, model) pair; chat-completion vendors and
// the native Gemini API are adapted to the same request/result shape so the
// feed and generation layers never branch on provider family.
package llm

// Family distinguishes the two upstream API shapes.
type Family string

const (
	// FamilyChatCompletion covers OpenAI-compatible POST /chat/completions
	// vendors (DeepSeek, SiliconFlow, Zhipu, Aliyun DashScope).
	FamilyChatCompletion Family = "chat_completion"

	// FamilyNativeStructured is the Gemini API with native structured
	// output and server-side search grounding.
	FamilyNativeStructured Family = "native_structured"
)

// Core is one selectable model. ID is the upstream model identifier and is
// what API callers pass to pick a core.
type Core struct {
	ID                string `json:"id" mapstructure:"id"`
	Name              string `json:"name" mapstructure:"name"`
	Provider          string `json:"provider" mapstructure:"provider"`
	Family            Family `json:"family" mapstructure:"family"`
	SupportsGrounding bool   `json:"supportsGrounding" mapstructure:"supports_grounding"`
}

// DefaultCores returns the built-in core table. The first entry is the
// default when a request names no core or an unknown one.
func DefaultCores() []Core {
	return []Core{
		{ID: "deepseek-chat", Name: "DeepSeek V3", Provider: "deepseek", Family: FamilyChatCompletion},
		{ID: "deepseek-ai/DeepSeek-V3", Name: "SiliconFlow DeepSeek", Provider: "siliconflow", Family: FamilyChatCompletion},
		{ID: "glm-4-plus", Name: "Zhipu GLM-4 Plus", Provider: "zhipu", Family: FamilyChatCompletion},
		{ID: "qwen-max", Name: "Qwen Max", Provider: "aliyun", Family: FamilyChatCompletion},
		{ID: "gemini-3-flash-preview", Name: "Gemini Flash", Provider: "gemini", Family: FamilyNativeStructured, SupportsGrounding: true},
	}
}
