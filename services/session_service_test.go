package services

import (
	"testing"
	"time"

	"dietvision/models"

	"github.com/stretchr/testify/require"
)

func TestSessionStoreLifecycle(t *testing.T) {
	st := NewSessionStore()
	sess := st.Create(models.Profile{Email: "a@x.com", FirstName: "Ana"}, nil)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, "a@x.com", sess.Email)

	got, ok := st.Get(sess.ID)
	require.True(t, ok)
	require.Same(t, sess, got)

	st.Delete(sess.ID)
	_, ok = st.Get(sess.ID)
	require.False(t, ok)
}

func TestOAuthStateSingleUseAndExpiry(t *testing.T) {
	st := NewSessionStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	st.AddState("abc")
	require.True(t, st.ConsumeState("abc"))
	require.False(t, st.ConsumeState("abc"))
	require.False(t, st.ConsumeState("never-issued"))

	st.AddState("late")
	now = now.Add(11 * time.Minute)
	require.False(t, st.ConsumeState("late"))
}

func TestSessionCopiesAreIsolated(t *testing.T) {
	sess := NewSessionStore().Create(models.Profile{Email: "a@x.com"}, &models.Preferences{
		HealthConditions: []string{"Diabetes"},
	})
	conds := sess.HealthConditions()
	conds[0] = "changed"
	require.Equal(t, []string{"Diabetes"}, sess.HealthConditions())

	sess.AppendChat(models.ChatMessage{Role: models.RoleUser, Content: "hi"})
	chat := sess.Chat()
	require.Len(t, chat, 1)
	sess.ClearChat()
	require.Empty(t, sess.Chat())
	require.Len(t, chat, 1)

	require.Nil(t, sess.LastAnalysis())
	sess.SetLastAnalysis(models.Analysis{Prediction: models.Prediction{FoodName: "Pizza"}})
	require.Equal(t, "Pizza", sess.LastAnalysis().Prediction.FoodName)
}
