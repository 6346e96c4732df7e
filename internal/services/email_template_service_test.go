package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/models"
	"github.com/ookayiztall/mu-nexus-hub-sub001/internal/utils"
)

func TestGetTemplateDefaultsAndOverrides(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_templates_test", emailTemplatesCollection)
	ctx := context.Background()
	svc := NewEmailTemplateService(db)

	t.Run("built-in default", func(t *testing.T) {
		tmpl, err := svc.GetTemplate(ctx, models.EmailWelcome)
		require.NoError(t, err)
		assert.Contains(t, tmpl.Subject, "Welcome")
	})

	t.Run("stored override wins", func(t *testing.T) {
		override := &models.EmailTemplate{Type: models.EmailWelcome, Subject: "Hello there", Body: "Custom body"}
		require.NoError(t, svc.SaveTemplate(ctx, override))

		tmpl, err := svc.GetTemplate(ctx, models.EmailWelcome)
		require.NoError(t, err)
		assert.Equal(t, "Hello there", tmpl.Subject)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.GetTemplate(ctx, models.EmailType("newsletter"))
		assert.Error(t, err)

		err = svc.SaveTemplate(ctx, &models.EmailTemplate{Type: models.EmailType("newsletter")})
		assert.Error(t, err)
	})
}

func TestMessageConversations(t *testing.T) {
	db := utils.SetupTestDB(t, "hub_messages_test", messagesCollection)
	ctx := context.Background()
	svc := NewMessageService(db, testConfig())

	_, err := svc.SendMessage(ctx, "alice", "bob", "Is this still available?", nil)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "bob", "alice", "Yes it is", nil)
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "carol", "bob", "Price?", nil)
	require.NoError(t, err)

	t.Run("both directions share one thread", func(t *testing.T) {
		thread, err := svc.GetConversation(ctx, "bob", "alice")
		require.NoError(t, err)
		require.Len(t, thread, 2)
		assert.Equal(t, "Is this still available?", thread[0].Content)
		assert.Equal(t, "Yes it is", thread[1].Content)
	})

	t.Run("conversation list returns newest message per thread", func(t *testing.T) {
		latest, err := svc.GetConversationsForUser(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, latest, 2)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, "alice", "bob", "   ", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})
}
