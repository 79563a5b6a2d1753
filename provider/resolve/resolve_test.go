package resolve

import "testing"

func TestProviderKnownNames(t *testing.T) {
	for _, name := range []string{"gemini", "openai", "groq", "deepseek", "mistral", "ollama"} {
		p, err := Provider(Config{Provider: name, APIKey: "k", Model: "m"})
		if err != nil {
			t.Errorf("Provider(%q) error: %v", name, err)
			continue
		}
		if name == "gemini" {
			if p.Name() != "gemini" {
				t.Errorf("Name = %q, want gemini", p.Name())
			}
		} else if p.Name() != name {
			t.Errorf("Name = %q, want %q", p.Name(), name)
		}
	}
}

func TestProviderUnknown(t *testing.T) {
	if _, err := Provider(Config{Provider: "nope"}); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestTranscriberGeminiOnly(t *testing.T) {
	if _, err := Transcriber(Config{Provider: "gemini", APIKey: "k", Model: "m"}); err != nil {
		t.Errorf("gemini transcriber error: %v", err)
	}
	if _, err := Transcriber(Config{Provider: "openai", APIKey: "k", Model: "m"}); err == nil {
		t.Error("non-gemini transcriber should error")
	}
}
