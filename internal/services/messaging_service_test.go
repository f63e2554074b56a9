package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/nanban-api/internal/constants"
	"github.com/yukikurage/nanban-api/internal/models"
	"github.com/yukikurage/nanban-api/internal/testutil"
)

func TestMessagingService_GetOrCreateDMIsSymmetric(t *testing.T) {
	f := newTaskFixture(t)

	ab, err := f.env.messaging.GetOrCreateDM("acme", f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	ba, err := f.env.messaging.GetOrCreateDM("acme", f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, ab.ID, ba.ID)
	assert.Equal(t, models.ChatTypeDM, ab.Type)

	var participants int64
	f.env.db.Model(&models.ChatParticipant{}).Where("chat_id = ?", ab.ID).Count(&participants)
	assert.Equal(t, int64(2), participants)

	other := testutil.CreateOrganization(t, f.env.db, "globex")
	elsewhere, err := f.env.messaging.GetOrCreateDM(other.Slug, f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ab.ID, elsewhere.ID, "DMs are per organization")
}

func TestMessagingService_GetOrCreateDMSortsNumerically(t *testing.T) {
	env := newTestEnv(t)
	org := testutil.CreateOrganization(t, env.db, "acme")
	var users []*models.User
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9", "u10"} {
		users = append(users, testutil.CreateUser(t, env.db, name))
	}
	nine, ten := users[8], users[9]

	chat, err := env.messaging.GetOrCreateDM(org.Slug, ten.ID, nine.ID)
	require.NoError(t, err)
	pair, ok := chat.DMPair()
	require.True(t, ok)
	assert.Equal(t, nine.ID, pair.Low)
	assert.Equal(t, ten.ID, pair.High)
}

func TestMessagingService_GetOrCreateDMErrors(t *testing.T) {
	f := newTaskFixture(t)

	for _, id := range []uint64{f.alice.ID, f.bob.ID, 999} {
		_, err := f.env.messaging.GetOrCreateDM("acme", id, id)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := f.env.messaging.GetOrCreateDM("nope", f.alice.ID, f.bob.ID)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.env.messaging.GetOrCreateDM("acme", f.alice.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMessagingService_CreateChatIsIdempotent(t *testing.T) {
	f := newTaskFixture(t)

	first, err := f.env.messaging.CreateChat(f.org.ID, "general", models.ChatTypeGroup)
	require.NoError(t, err)
	second, err := f.env.messaging.CreateChat(f.org.ID, "general", models.ChatTypeGroup)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	ai, err := f.env.messaging.CreateChat(f.org.ID, "general", models.ChatTypeAI)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, ai.ID, "type is part of the key")

	_, err = f.env.messaging.CreateChat(f.org.ID, "general", "broadcast")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.env.messaging.CreateChat(999, "general", models.ChatTypeGroup)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	p1, err := f.env.messaging.AddParticipant(first.ID, f.alice.ID)
	require.NoError(t, err)
	p2, err := f.env.messaging.AddParticipant(first.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)

	_, err = f.env.messaging.AddParticipant(999, f.alice.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestMessagingService_CreateChatRejectsDirectMessages(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.env.messaging.CreateChat(f.org.ID, models.NewDMPair(f.alice.ID, f.bob.ID).Key(), models.ChatTypeDM)
	assert.ErrorIs(t, err, ErrValidation)

	dm, err := f.env.messaging.GetOrCreateDM("acme", f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	_, ok := dm.DMPair()
	assert.True(t, ok)

	var chats int64
	f.env.db.Model(&models.Chat{}).Count(&chats)
	assert.Equal(t, int64(1), chats)
}

func TestMessagingService_GetOrCreateDMClaimsPairlessChat(t *testing.T) {
	f := newTaskFixture(t)
	carol := testutil.CreateUser(t, f.env.db, "carol")
	pair := models.NewDMPair(f.alice.ID, f.bob.ID)

	stale := &models.Chat{OrganizationID: f.org.ID, Type: models.ChatTypeDM, Name: pair.Key(), LookupKey: pair.Key()}
	require.NoError(t, f.env.db.Create(stale).Error)
	_, err := f.env.messaging.AddParticipant(stale.ID, carol.ID)
	require.NoError(t, err)

	dm, err := f.env.messaging.GetOrCreateDM("acme", f.bob.ID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, stale.ID, dm.ID)
	got, ok := dm.DMPair()
	require.True(t, ok)
	assert.Equal(t, pair, got)

	var stored models.Chat
	require.NoError(t, f.env.db.First(&stored, dm.ID).Error)
	got, ok = stored.DMPair()
	require.True(t, ok)
	assert.Equal(t, pair, got)

	var members []uint64
	f.env.db.Model(&models.ChatParticipant{}).Where("chat_id = ?", dm.ID).Order("user_id").Pluck("user_id", &members)
	assert.Equal(t, []uint64{pair.Low, pair.High}, members)

	inbox, err := f.env.messaging.Inbox("acme", f.alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "bob", inbox[0].DisplayName)

	carolInbox, err := f.env.messaging.Inbox("acme", carol.ID)
	require.NoError(t, err)
	assert.Empty(t, carolInbox)
}

func TestMessagingService_Inbox(t *testing.T) {
	f := newTaskFixture(t)
	carol := testutil.CreateUser(t, f.env.db, "carol")
	globex := testutil.CreateOrganization(t, f.env.db, "globex")

	withBob, err := f.env.messaging.GetOrCreateDM("acme", f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	withCarol, err := f.env.messaging.GetOrCreateDM("acme", carol.ID, f.alice.ID)
	require.NoError(t, err)

	general, err := f.env.messaging.CreateChat(f.org.ID, "general", models.ChatTypeGroup)
	require.NoError(t, err)
	_, err = f.env.messaging.AddParticipant(general.ID, f.alice.ID)
	require.NoError(t, err)

	// A dm-typed chat without a participant pair falls back to a generic label.
	legacy := &models.Chat{OrganizationID: f.org.ID, Type: models.ChatTypeDM, Name: "alice-and-someone", LookupKey: "alice-and-someone"}
	require.NoError(t, f.env.db.Create(legacy).Error)
	_, err = f.env.messaging.AddParticipant(legacy.ID, f.alice.ID)
	require.NoError(t, err)

	// Chats in other organizations stay out of this inbox.
	_, err = f.env.messaging.GetOrCreateDM(globex.Slug, f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	inbox, err := f.env.messaging.Inbox("acme", f.alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 4)

	got := make(map[uint64]string)
	var names []string
	for _, entry := range inbox {
		got[entry.ChatID] = entry.DisplayName
		names = append(names, entry.DisplayName)
	}
	assert.Equal(t, "bob", got[withBob.ID])
	assert.Equal(t, "carol", got[withCarol.ID])
	assert.Equal(t, "general", got[general.ID])
	assert.Equal(t, constants.DirectMessageLabel, got[legacy.ID])
	assert.IsNonDecreasing(t, names)

	bobInbox, err := f.env.messaging.Inbox("acme", f.bob.ID)
	require.NoError(t, err)
	require.Len(t, bobInbox, 1)
	assert.Equal(t, "alice", bobInbox[0].DisplayName)

	unknown, err := f.env.messaging.Inbox("nope", f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMessagingService_InboxFallsBackWhenUserIsGone(t *testing.T) {
	f := newTaskFixture(t)
	chat, err := f.env.messaging.GetOrCreateDM("acme", f.alice.ID, f.bob.ID)
	require.NoError(t, err)
	require.NoError(t, f.env.db.Delete(&models.User{}, f.bob.ID).Error)

	inbox, err := f.env.messaging.Inbox("acme", f.alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, chat.ID, inbox[0].ChatID)
	assert.Equal(t, constants.DirectMessageLabel, inbox[0].DisplayName)
}

func TestMessagingService_SendAndList(t *testing.T) {
	f := newTaskFixture(t)
	chat, err := f.env.messaging.GetOrCreateDM("acme", f.alice.ID, f.bob.ID)
	require.NoError(t, err)

	first, err := f.env.messaging.Send(chat.ID, f.alice.ID, "hi")
	require.NoError(t, err)
	assert.True(t, first.SentAt.Equal(f.env.clock.Now()))

	f.env.clock.Advance(time.Second)
	_, err = f.env.messaging.Send(chat.ID, f.bob.ID, "hello")
	require.NoError(t, err)

	messages, err := f.env.messaging.ListMessages(chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Body)
	assert.Equal(t, "hello", messages[1].Body)
	require.NotNil(t, messages[1].Sender)
	assert.Equal(t, "bob", messages[1].Sender.Name)

	_, err = f.env.messaging.Send(999, f.alice.ID, "lost")
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = f.env.messaging.Send(chat.ID, f.alice.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}
