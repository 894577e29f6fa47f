package mailer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardiksavani/portfolio-backend/pkg/mailer"
)

func TestNewPostmarkSender(t *testing.T) {
	t.Parallel()

	t.Run("valid tokens", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.PostmarkConfig{
			ServerToken:  "test-server-token",
			AccountToken: "test-account-token",
		})
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("empty server token", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.PostmarkConfig{
			AccountToken: "test-account-token",
		})
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "server token is required")
	})

	t.Run("empty account token", func(t *testing.T) {
		t.Parallel()

		sender, err := mailer.NewPostmarkSender(mailer.PostmarkConfig{
			ServerToken: "test-server-token",
		})
		assert.Nil(t, sender)
		assert.ErrorIs(t, err, mailer.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "account token is required")
	})
}

func TestPostmarkSenderRejectsInvalidMessage(t *testing.T) {
	t.Parallel()

	sender, err := mailer.NewPostmarkSender(mailer.PostmarkConfig{
		ServerToken:  "test-server-token",
		AccountToken: "test-account-token",
	})
	require.NoError(t, err)

	msg := validMessage()
	msg.To = ""
	assert.ErrorIs(t, sender.Send(context.Background(), msg), mailer.ErrInvalidMessage)
}
