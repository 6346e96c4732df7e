package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
)

// Built-in templates used when no override exists in the database.
var defaultEmailTemplates = map[models.EmailType]models.EmailTemplate{
	models.EmailWelcome: {
		Type:    models.EmailWelcome,
		Subject: "Welcome to {{.app_name}}",
		Body:    "Hi {{.name}},\n\nYour account is ready. List a server or browse the marketplace to get started.",
	},
	models.EmailPaymentSuccess: {
		Type:    models.EmailPaymentSuccess,
		Subject: "Payment received",
		Body:    "Hi {{.name}},\n\nWe received your payment of {{.amount}}. Your {{.product}} is now active until {{.expires}}.",
	},
	models.EmailPasswordReset: {
		Type:    models.EmailPasswordReset,
		Subject: "Reset your password",
		Body:    "Hi {{.name}},\n\nClick here to reset your password: {{.reset_url}}\n\nIf you did not request this, ignore this email.",
	},
}

// IEmailTemplateService resolves transactional email templates.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, emailType models.EmailType) (*models.EmailTemplate, error)
	SaveTemplate(ctx context.Context, template *models.EmailTemplate) error
}

const emailTemplatesCollection = "email_templates"

// EmailTemplateService handles operations related to email templates.
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService.
func NewEmailTemplateService(db *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{db: db}
}

// GetTemplate returns the stored override for an email type, or the built-in
// default when none exists.
func (s *EmailTemplateService) GetTemplate(ctx context.Context, emailType models.EmailType) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	err := s.db.Collection(emailTemplatesCollection).FindOne(ctx, bson.M{"type": emailType}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if defaultTemplate, ok := defaultEmailTemplates[emailType]; ok {
				return &defaultTemplate, nil
			}
			return nil, fmt.Errorf("unknown email type: %s", emailType)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}
	return &template, nil
}

// SaveTemplate upserts an override for an email type.
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	if _, ok := defaultEmailTemplates[template.Type]; !ok {
		return fmt.Errorf("unknown email type: %s", template.Type)
	}

	filter := bson.M{"type": template.Type}
	update := bson.M{"$set": template}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(emailTemplatesCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}
	return nil
}
