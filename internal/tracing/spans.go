package tracing

// Span names.
const (
	SpanExtract = "extract.create_automation"
	SpanMCPTool = "mcp.tool."
)

// Span attribute keys.
const (
	AttrProvider     = "extract.provider"
	AttrModel        = "extract.model"
	AttrPromptLength = "extract.prompt_length"
	AttrOutcome      = "extract.outcome"
	AttrStatusCode   = "http.status_code"
	AttrMCPToolName  = "mcp.tool.name"
)

// Values of AttrOutcome.
const (
	OutcomeOK             = "ok"
	OutcomeAmbiguous      = "ambiguous"
	OutcomeTransportError = "transport_error"
	OutcomeCanceled       = "canceled"
)
