package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"playhub/internal/config"
)

var genres = []Candidate{
	{ID: 1, Name: "Puzzle"},
	{ID: 2, Name: "Racing"},
	{ID: 3, Name: "Shooter"},
	{ID: 4, Name: "Idle"},
}

func TestMatchKeepsOnlyKnownIDs(t *testing.T) {
	llm, _, _ := fakeLLM(t, `{"ids":[2, 99, 2, 3, 4, 1]}`)
	res := NewTaxonomyMatcher(llm).Match(context.Background(), MatchRequest{
		Title:      "Turbo Drift",
		Candidates: genres,
	})
	if res.Source != MatchSourceAI {
		t.Fatalf("source = %s", res.Source)
	}
	if want := []uint{2, 3, 4}; !reflect.DeepEqual(res.IDs, want) {
		t.Errorf("ids = %v, want %v", res.IDs, want)
	}
}

func TestMatchFallsBackToKeywords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()
	llm := NewLLMService(config.OpenAIProvider{BaseURL: server.URL, APIKey: "k", Model: "m"})

	res := NewTaxonomyMatcher(llm).Match(context.Background(), MatchRequest{
		Title:       "Block Puzzle",
		Description: "An IDLE game with puzzles",
		Candidates:  genres,
		Max:         5,
	})
	if res.Source != MatchSourceKeyword {
		t.Fatalf("source = %s", res.Source)
	}
	if want := []uint{1, 4}; !reflect.DeepEqual(res.IDs, want) {
		t.Errorf("ids = %v, want %v", res.IDs, want)
	}
}

func TestMatchWithoutAI(t *testing.T) {
	res := NewTaxonomyMatcher(NewLLMService(nil)).Match(context.Background(), MatchRequest{
		Title:      "Space Shooter Racing Puzzle Idle",
		Candidates: genres,
	})
	if res.Source != MatchSourceKeyword || len(res.IDs) != defaultMatchMax {
		t.Errorf("res = %+v", res)
	}
}
