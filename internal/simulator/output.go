package simulator

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chrisdamba/tripsim/internal/models"
	"github.com/chrisdamba/tripsim/internal/simulator/producers"
)

// OutputDestination receives serialized trip events.
type OutputDestination interface {
	WriteMessage(topic, key string, msg []byte) error
	Close() error
}

// NoopOutput drops every message.
type NoopOutput struct{}

func (NoopOutput) WriteMessage(topic, key string, msg []byte) error { return nil }

func (NoopOutput) Close() error { return nil }

// JSONOutput appends one JSON document per line to a file.
type JSONOutput struct {
	mu   sync.Mutex
	file *os.File
}

func NewJSONOutput(path string) (*JSONOutput, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output folder %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %w", path, err)
	}
	return &JSONOutput{file: file}, nil
}

func (j *JSONOutput) WriteMessage(topic, key string, msg []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	line := make([]byte, 0, len(msg)+1)
	line = append(append(line, msg...), '\n')
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (j *JSONOutput) Close() error {
	return j.file.Close()
}

// NewOutputDestination builds the sink selected in the config.
func NewOutputDestination(config *models.Config) (OutputDestination, error) {
	switch config.Sink {
	case models.SinkNone, "":
		return NoopOutput{}, nil
	case models.SinkFile:
		return NewJSONOutput(config.OutputFile)
	case models.SinkKafka:
		return producers.NewSaramaProducer(config)
	case models.SinkNATS:
		return producers.NewNATSPublisher(config.NATSURL)
	default:
		return nil, fmt.Errorf("unsupported sink: %s", config.Sink)
	}
}
