// Package openaicompat implements llm.Provider against any endpoint that
// speaks the OpenAI Chat Completions API, including native tool calling.
// HTTP status codes map to llm.Error codes with a retryable flag; the
// retry and breaker layers in package llm consume that flag.
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    APIKey:  cfg.LLM.APIKey,
//	    BaseURL: cfg.LLM.BaseURL,
//	    Model:   cfg.LLM.Model,
//	}, logger)
package openaicompat
