package filesource

import (
	"context"
	"fmt"
	"listings-service/internal/contextkeys"
	"listings-service/internal/contracts"
	"listings-service/internal/core/domain"
	"listings-service/internal/core/port"
	"os"
	"path/filepath"
)

// FileSource читает записи из локального JSON-файла (массив или конверт с data/listings/...)
type FileSource struct {
	path string
}

func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("listings file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listings file path: %w", err)
	}
	return &FileSource{path: abs}, nil
}

func (s *FileSource) Name() string { return "file" }

// Path - абсолютный путь к файлу
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "FileRecordSource",
		"path":      s.path,
	})

	payload, err := os.ReadFile(s.path)
	if err != nil {
		logger.Error("Failed to read listings file", err, nil)
		return nil, fmt.Errorf("failed to read listings file: %w", err)
	}

	records, err := contracts.DecodeRecords(payload)
	if err != nil {
		logger.Error("Listings file violates contract", err, nil)
		return nil, err
	}

	logger.Info("Listings file loaded", port.Fields{"records_count": len(records)})
	return records, nil
}
