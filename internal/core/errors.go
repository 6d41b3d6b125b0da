package core

import "fmt"

// Runtime failures are classified so callers can pick the right boundary:
// store and embedding failures abort the operation that needed them,
// generation failures degrade to an apology, config failures stop startup.

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding: %v", e.Err) }
func (e *EmbeddingError) Unwrap() error { return e.Err }

type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %v", e.Setting, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }
