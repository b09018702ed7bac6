package models

// JSONSchema represents a JSON Schema used to describe an action's parameters
// to the LLM gateway and to validate the arguments it sends back.
type JSONSchema struct {
	Type        string               `json:"type"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
}

// ToolDeclaration is the OpenAI-style function declaration sent to the LLM
// gateway as part of the tools array.
type ToolDeclaration struct {
	Type     string          `json:"type"`
	Function FunctionDeclare `json:"function"`
}

// FunctionDeclare carries one function's name, description and parameters.
type FunctionDeclare struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters"`
}

// Property represents a JSON Schema property
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []any                `json:"enum,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Format      string               `json:"format,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
}
