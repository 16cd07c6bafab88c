package main

// Exit codes
const (
	ExitSuccess           = 0 // Success
	ExitError             = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError       = 2 // Configuration error (missing repository or config)
	ExitDataError         = 3 // Data error (malformed JSONL, invalid paper)
	ExitNotFound          = 4 // Paper id not in corpus
	ExitModelNotFound     = 5 // Embedding model not pulled
	ExitIndexStale        = 6 // Embedding matrix does not match the corpus
	ExitIndexNotFound     = 7 // Embedding matrix missing
	ExitOllamaUnavailable = 8 // Ollama not reachable or embedding failed
)
