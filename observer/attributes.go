package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for observability spans and metrics.
var (
	AttrLLMModel    = attribute.Key("llm.model")
	AttrLLMProvider = attribute.Key("llm.provider")
	AttrLLMMethod   = attribute.Key("llm.method")

	AttrTokensInput  = attribute.Key("llm.tokens.input")
	AttrTokensOutput = attribute.Key("llm.tokens.output")

	AttrStreamChunks = attribute.Key("llm.stream_chunks")

	AttrCapabilityName         = attribute.Key("capability.name")
	AttrCapabilityOperation    = attribute.Key("capability.operation")
	AttrCapabilityStatus       = attribute.Key("capability.status")
	AttrCapabilityResultLength = attribute.Key("capability.result_length")
)
