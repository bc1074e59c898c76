package output

import (
	"context"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// SandboxExecutor runs code in isolation and reports how it ended
type SandboxExecutor interface {
	Execute(ctx context.Context, req repair.ExecutionRequest) (repair.ExecutionResult, error)
}

// LanguageCatalog maps a file path to its language
type LanguageCatalog interface {
	Language(path string) (repair.Language, bool)
}
