package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/config"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// RedisSender stores emails in Redis instead of delivering them. Integration
// tests fetch them back through the service API.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{client: client, cfg: cfg}
}

// Send stores a JSON representation of the email under a key derived from the
// primary recipient and the detected template type.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	emailType := "unknown"
	switch {
	case strings.Contains(subject, "Welcome"):
		emailType = string(models.EmailWelcome)
	case strings.Contains(subject, "Payment"):
		emailType = string(models.EmailPaymentSuccess)
	case strings.Contains(subject, "Password"):
		emailType = string(models.EmailPasswordReset)
	}

	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	data := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
		"type":    emailType,
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, emailType)
	if err := s.client.Set(ctx, key, jsonData, 5*time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (To: %s, Subject: %s)", key, primaryTo, subject)
	return nil
}
