package email

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileEmailSender appends email content to a local log file. Enabled via the
// LOG_EMAILS environment variable, mostly for debugging delivery issues.
type FileEmailSender struct {
	filePath string
}

// NewFileEmailSender creates a FileEmailSender, ensuring the target directory
// exists.
func NewFileEmailSender(filePath string) (Sender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create email log directory %s: %w", dir, err)
	}
	return &FileEmailSender{filePath: filePath}, nil
}

func (s *FileEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open email log file: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("=== %s | To: %s | Subject: %s ===\n%s\n\n",
		time.Now().UTC().Format(time.RFC3339), strings.Join(to, ", "), subject, string(rawMessage))
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to write email log entry: %w", err)
	}

	log.Printf("Email logged to file %s (To: %s)", s.filePath, strings.Join(to, ", "))
	return nil
}
