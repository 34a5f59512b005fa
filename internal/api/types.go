package api

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ExtractRequest struct {
	ModelSource    string `json:"model_source"`
	ResolverHeader string `json:"resolver_header"`
	Stem           string `json:"stem,omitempty"`
}

type ExtractResponse struct {
	Symbol            string   `json:"symbol"`
	Stem              string   `json:"stem,omitempty"`
	Operations        []string `json:"operations"`
	OperationCount    int      `json:"operation_count"`
	DeclaredOperators *int     `json:"declared_operators,omitempty"`
}

type ReformatRequest struct {
	Source      string `json:"source"`
	OpenMarker  string `json:"open_marker,omitempty"`
	CloseMarker string `json:"close_marker,omitempty"`
}

type ReformatResponse struct {
	Source   string `json:"source"`
	Elements int    `json:"elements"`
	Rows     int    `json:"rows"`
}

type RenderRequest struct {
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

type RenderResponse struct {
	Name       string   `json:"name"`
	Text       string   `json:"text"`
	Unresolved []string `json:"unresolved,omitempty"`
}

type TemplatesResponse struct {
	Templates []string `json:"templates"`
}
