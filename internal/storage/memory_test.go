package storage_test

import (
	"fmt"
	"sync"
	"testing"

	"supportchat/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateConversationUnique(t *testing.T) {
	mem := storage.NewMemory()

	first, err := mem.CreateConversation("token")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, "token", first.SessionID)
	assert.False(t, first.LastActivity.Before(first.CreatedAt))

	// A second create for the same token returns the existing conversation.
	second, err := mem.CreateConversation("token")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	convs, err := mem.ListConversations()
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestMemory_CreateConversationConcurrent(t *testing.T) {
	mem := storage.NewMemory()

	const callers = 32
	var wg sync.WaitGroup
	ids := make([]uint, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := mem.CreateConversation("contested")
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestMemory_GetConversationNotFound(t *testing.T) {
	mem := storage.NewMemory()

	_, err := mem.GetConversation(1)
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)
	_, err = mem.GetConversationBySessionID("nope")
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)
}

func TestMemory_TouchConversation(t *testing.T) {
	mem := storage.NewMemory()
	conv, err := mem.CreateConversation("token")
	require.NoError(t, err)

	require.NoError(t, mem.TouchConversation(conv.ID))
	after, err := mem.GetConversation(conv.ID)
	require.NoError(t, err)
	assert.False(t, after.LastActivity.Before(conv.LastActivity))

	// Touching a missing conversation is a silent no-op.
	assert.NoError(t, mem.TouchConversation(999))
}

func TestMemory_CreateMessage(t *testing.T) {
	mem := storage.NewMemory()
	conv, err := mem.CreateConversation("token")
	require.NoError(t, err)

	msg, err := mem.CreateMessage(conv.ID, "hi", false)
	require.NoError(t, err)
	assert.Equal(t, uint(1), msg.ID)
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.Equal(t, "hi", msg.Body)
	assert.False(t, msg.IsAdminReply)

	// Appending advances the parent's activity in the same operation.
	after, err := mem.GetConversation(conv.ID)
	require.NoError(t, err)
	assert.False(t, after.LastActivity.Before(msg.CreatedAt))

	_, err = mem.CreateMessage(999, "hi", false)
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)
}

func TestMemory_TranscriptOrdering(t *testing.T) {
	mem := storage.NewMemory()
	conv, err := mem.CreateConversation("token")
	require.NoError(t, err)
	other, err := mem.CreateConversation("other")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := mem.CreateMessage(conv.ID, fmt.Sprintf("msg-%d", i), i%2 == 0)
		require.NoError(t, err)
	}
	_, err = mem.CreateMessage(other.ID, "elsewhere", false)
	require.NoError(t, err)

	history, err := mem.GetMessagesByConversationID(conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 5, "messages of other conversations are excluded")
	for i := 0; i < 5; i++ {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), history[i].Body)
	}
	for i := 1; i < len(history); i++ {
		prev, cur := history[i-1], history[i]
		ordered := prev.CreatedAt.Before(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID < cur.ID)
		assert.True(t, ordered, "creation-time order with id tiebreak")
	}

	// Unknown conversation reads as empty, not as an error.
	empty, err := mem.GetMessagesByConversationID(999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemory_LatestMessagesSuffix(t *testing.T) {
	mem := storage.NewMemory()
	conv, err := mem.CreateConversation("token")
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := mem.CreateMessage(conv.ID, fmt.Sprintf("msg-%d", i), false)
		require.NoError(t, err)
	}

	tail, err := mem.GetLatestMessages(conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "msg-4", tail[0].Body, "suffix stays in ascending order")
	assert.Equal(t, "msg-5", tail[1].Body)

	all, err := mem.GetLatestMessages(conv.ID, 50)
	require.NoError(t, err)
	assert.Len(t, all, 6, "limit beyond length returns everything")
}

func TestMemory_ListConversationsMostRecentFirst(t *testing.T) {
	mem := storage.NewMemory()
	first, err := mem.CreateConversation("first")
	require.NoError(t, err)
	second, err := mem.CreateConversation("second")
	require.NoError(t, err)

	// Activity on the older conversation moves it to the front.
	_, err = mem.CreateMessage(first.ID, "bump", false)
	require.NoError(t, err)

	convs, err := mem.ListConversations()
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, first.ID, convs[0].ID)
	assert.Equal(t, second.ID, convs[1].ID)
}

func TestMemory_AdminAccounts(t *testing.T) {
	mem := storage.NewMemory()

	_, err := mem.GetAdminByUsername("admin")
	assert.ErrorIs(t, err, storage.ErrAdminNotFound)

	created, err := mem.CreateAdmin("admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password123", created.PasswordHash)

	admin, err := mem.GetAdminByUsername("admin")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("password123"))
	assert.False(t, admin.CheckPassword("wrong"))

	require.NoError(t, mem.UpdateAdminPassword("admin", "rotated"))
	admin, err = mem.GetAdminByUsername("admin")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("rotated"))
	assert.False(t, admin.CheckPassword("password123"))

	assert.ErrorIs(t, mem.UpdateAdminPassword("ghost", "x"), storage.ErrAdminNotFound)

	_, err = mem.CreateAdmin("second", "pw")
	require.NoError(t, err)
	admins, err := mem.ListAdmins()
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "admin", admins[0].Username)
	assert.Equal(t, "second", admins[1].Username)
}

func TestMemory_AdminSessions(t *testing.T) {
	mem := storage.NewMemory()

	ok, err := mem.IsAdminSession("sid")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mem.SetAdminSession("sid"))
	ok, err = mem.IsAdminSession("sid")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mem.ClearAdminSession("sid"))
	ok, err = mem.IsAdminSession("sid")
	require.NoError(t, err)
	assert.False(t, ok)

	// Clearing an absent session is fine.
	assert.NoError(t, mem.ClearAdminSession("never-set"))
}
