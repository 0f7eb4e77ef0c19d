package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"defaults are valid", func(s *Settings) {}, false},
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }, true},
		{"negative overlap", func(s *Settings) { s.ChunkOverlap = -1 }, true},
		{"overlap equals chunk size", func(s *Settings) { s.ChunkSize = 200; s.ChunkOverlap = 200 }, true},
		{"zero top k", func(s *Settings) { s.TopKRetrieval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{
				ChunkSize:     1000,
				ChunkOverlap:  200,
				TopKRetrieval: 5,
			}
			tt.mutate(&s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGet_Caches(t *testing.T) {
	if Get() != Get() {
		t.Error("Get must return the same settings instance")
	}
}

func TestGet_Defaults(t *testing.T) {
	s := Get()
	if s.EvalLLMModel == "" {
		t.Error("EvalLLMModel must fall back to the main model")
	}
	if s.ListenAddr == "" || s.CollectionName == "" {
		t.Errorf("missing defaults: %+v", s)
	}
}
