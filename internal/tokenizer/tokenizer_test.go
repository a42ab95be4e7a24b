package tokenizer

import (
	"errors"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("boom") }

func TestCountText(t *testing.T) {
	testCases := []struct {
		name          string
		counter       Counter
		input         string
		expectCounted bool
		expectTokens  int
		expectError   bool
	}{
		{name: "text", counter: testCounter{}, input: "héllo", expectCounted: true, expectTokens: 5},
		{name: "empty", counter: testCounter{}, input: ""},
		{name: "nil counter", counter: nil, input: "x", expectError: true},
		{name: "counter failure", counter: failingCounter{}, input: "x", expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := CountText(testCase.counter, testCase.input)
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CountText error: %v", err)
			}
			if result.Counted != testCase.expectCounted {
				t.Fatalf("expected counted=%v, got %v", testCase.expectCounted, result.Counted)
			}
			if result.Tokens != testCase.expectTokens {
				t.Fatalf("expected %d tokens, got %d", testCase.expectTokens, result.Tokens)
			}
		})
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"text-embedding-3-small": true,
		"claude-3-opus":          false,
		"llama-3":                false,
	}
	for model, expected := range testCases {
		if got := isOpenAIModel(model); got != expected {
			t.Fatalf("isOpenAIModel(%q) = %v, want %v", model, got, expected)
		}
	}
}
