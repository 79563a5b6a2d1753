// Package session drives the interactive command loop: mode selection,
// voice and screenshot turns, and the automation sub-loop with intent
// dispatch.
package session

import (
	"context"
	"log/slog"
	"strings"

	quackquery "github.com/QuackQuery/QuackQuery"
	"github.com/QuackQuery/QuackQuery/frontend/console"
)

// AudioRecorder captures one audio clip per voice turn.
type AudioRecorder interface {
	Record(ctx context.Context) (quackquery.AudioData, error)
}

// ScreenCapturer takes one screenshot per vision turn.
type ScreenCapturer interface {
	Capture(ctx context.Context) (quackquery.ImageData, error)
}

// Deps wires the session's collaborators. Console, Assistant, and Registry
// are required; Recorder, Transcriber, and Capturer gate the voice and
// screenshot modes.
type Deps struct {
	Console     *console.Console
	Assistant   *quackquery.Assistant
	Registry    *quackquery.Registry
	Recorder    AudioRecorder
	Transcriber quackquery.Transcriber
	Capturer    ScreenCapturer
	Logger      *slog.Logger
}

// Session is the interactive loop. One logical thread of control: the only
// blocking point is the assistant call, which each turn awaits before the
// next command is read.
type Session struct {
	deps Deps
}

// New creates a Session.
func New(deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{deps: deps}
}

// Run cycles through mode selection until EOF or an invalid choice.
// Per-command failures never unwind past this loop.
func (s *Session) Run(ctx context.Context) error {
	c := s.deps.Console
	for {
		s.printMenu()
		choice, ok := c.ReadLine("> ")
		if !ok {
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			s.voiceTurn(ctx)
		case "2":
			s.visionTurn(ctx)
		case "3":
			if s.deps.Registry.Len() == 0 {
				// Not offered in the menu, so picking it is invalid.
				c.Print("Invalid choice. Exiting.")
				return nil
			}
			s.automationLoop(ctx)
		case "":
			continue
		default:
			c.Print("Invalid choice. Exiting.")
			return nil
		}
	}
}

func (s *Session) printMenu() {
	c := s.deps.Console
	c.Print("")
	c.Print("What would you like to do?")
	if s.deps.Recorder != nil && s.deps.Transcriber != nil {
		c.Print("  1. Ask by voice")
	}
	if s.deps.Capturer != nil {
		c.Print("  2. Ask about my screen")
	}
	if s.deps.Registry.Len() > 0 {
		c.Printf("  3. Automation (%s)", strings.Join(s.deps.Registry.Names(), ", "))
	}
}

// voiceTurn records audio, transcribes it, and treats the transcript exactly
// like a typed automation command.
func (s *Session) voiceTurn(ctx context.Context) {
	c := s.deps.Console
	if s.deps.Recorder == nil || s.deps.Transcriber == nil {
		c.Print("Voice input is not configured.")
		return
	}

	c.Print("Listening...")
	audio, err := s.deps.Recorder.Record(ctx)
	if err != nil {
		c.Printf("Recording failed: %v", err)
		return
	}

	transcript, err := s.deps.Transcriber.Transcribe(ctx, audio)
	if err != nil {
		c.Printf("Transcription failed: %v", err)
		return
	}
	if strings.TrimSpace(transcript) == "" {
		c.Print("Heard nothing.")
		return
	}
	c.Printf("You said: %s", transcript)

	s.dispatch(ctx, transcript)
}

// visionTurn captures the screen and sends it with a typed question.
func (s *Session) visionTurn(ctx context.Context) {
	c := s.deps.Console
	if s.deps.Capturer == nil {
		c.Print("Screenshot capture is not configured.")
		return
	}

	shot, err := s.deps.Capturer.Capture(ctx)
	if err != nil {
		c.Printf("Screenshot failed: %v", err)
		return
	}

	prompt, ok := c.ReadLine("Question about your screen: ")
	if !ok {
		return
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = "Describe what is on my screen."
	}

	s.answer(ctx, prompt, []quackquery.ImageData{shot})
}

// automationLoop reads commands until the reserved literal "exit"
// (case-insensitive). exit never reaches a parser or the assistant.
func (s *Session) automationLoop(ctx context.Context) {
	c := s.deps.Console
	c.Print("Automation mode. Type 'exit' to return.")

	for {
		line, ok := c.ReadLine("cmd> ")
		if !ok {
			return
		}
		command := quackquery.NormalizeCommand(line)
		if command == "" {
			continue
		}
		if strings.EqualFold(command, "exit") {
			return
		}
		s.dispatch(ctx, command)
	}
}

// dispatch tries each capability parser in fixed priority order; the first
// match runs its paired executor. When every parser misses, the verbatim
// text goes to the assistant.
func (s *Session) dispatch(ctx context.Context, command string) {
	c := s.deps.Console

	if target, intent, ok := s.deps.Registry.Dispatch(command); ok {
		s.deps.Logger.Debug("dispatch", "capability", target.Name(), "operation", intent.Operation)
		result := target.Execute(ctx, intent)
		if result.OK() {
			c.PrintResult(result.Content)
		} else {
			c.PrintResult("Error: " + result.Error)
		}
		return
	}

	s.deps.Logger.Debug("dispatch", "capability", "assistant")
	s.answer(ctx, command, nil)
}

// answer forwards a prompt to the assistant and prints the framed response.
// Provider errors are reported and the loop continues.
func (s *Session) answer(ctx context.Context, prompt string, images []quackquery.ImageData) {
	c := s.deps.Console
	response, err := s.deps.Assistant.Answer(ctx, prompt, images)
	if err != nil {
		s.deps.Logger.Warn("assistant call failed", "err", err)
		c.Printf("Assistant error: %v", err)
		return
	}
	c.PrintResponse(response)
}
