// Package quackquery is a multimodal AI assistant library for building
// voice, vision, and automation-aware command loops in Go.
//
// It provides modular, interface-driven building blocks: LLM providers,
// audio transcription, an automation capability system with intent dispatch,
// conversation history storage, and a console frontend.
//
// # Quick Start
//
// Create an assistant backed by a provider and register automation
// capabilities through a Registry:
//
//	provider := gemini.New(apiKey, model)
//	assistant := quackquery.NewAssistant(provider)
//
//	registry := quackquery.NewRegistry([]quackquery.Probe{
//		{Name: "file", Init: func() (quackquery.Capability, error) {
//			return filemanager.New(workspace)
//		}},
//		{Name: "github", Init: func() (quackquery.Capability, error) {
//			return github.New(token)
//		}},
//	})
//
//	if cap, intent, ok := registry.Dispatch(command); ok {
//		result := cap.Execute(ctx, intent)
//		fmt.Println(result.Content)
//	} else {
//		reply, _ := assistant.Answer(ctx, command, nil)
//		fmt.Println(reply)
//	}
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [Provider] — LLM backend (chat, streaming, multimodal input)
//   - [Transcriber] — speech-to-text for voice commands
//   - [Capability] — an optional automation integration (parse + execute)
//   - [HistoryStore] — conversation persistence
//
// # Included Implementations
//
// Providers: provider/gemini (Google Gemini), provider/openaicompat
// (OpenAI-compatible APIs).
// Storage: store/sqlite (local), store/postgres.
// Capabilities: automation/filemanager, automation/github,
// automation/applauncher, automation/web.
//
// See cmd/quackquery for the complete interactive application.
package quackquery
