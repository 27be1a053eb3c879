package lifecycle

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) Set(t time.Time)         { c.t = t }

func newTestEngine() (*Engine, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)}
	n := 0
	e := New(WithClock(clock.Now), WithIDs(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	return e, clock
}

func draftPost(t *testing.T, e *Engine) domain.Post {
	t.Helper()
	p, err := e.CreatePost(domain.NewPost{Title: "Launch", Content: "We are live", Platform: domain.PlatformInstagram}, "creator-1")
	require.NoError(t, err)
	return p
}

func TestPostLaunchScenario(t *testing.T) {
	e, clock := newTestEngine()
	p := draftPost(t, e)
	assert.Equal(t, domain.PostDraft, p.Status)
	assert.Nil(t, p.PublishedAt)

	p, notes, err := e.SubmitForApproval(p)
	require.NoError(t, err)
	assert.Equal(t, domain.PostPendingApproval, p.Status)
	require.Len(t, notes, 1)
	assert.Equal(t, "marketing-head", notes[0].Channel)
	assert.Equal(t, domain.NotifyPostSubmitted, notes[0].Type)

	p, err = e.Approve(p, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.PostScheduled, p.Status)
	assert.Equal(t, "a", p.ApprovedBy)
	assert.Nil(t, p.PublishedAt)

	clock.Advance(time.Hour)
	p, notes, err = e.Publish(p)
	require.NoError(t, err)
	assert.Equal(t, domain.PostPublished, p.Status)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, clock.Now(), *p.PublishedAt)
	require.Len(t, notes, 1)
	assert.Equal(t, "user:creator-1", notes[0].Channel)
	assert.Equal(t, p.ID, notes[0].Payload["postId"])

	_, err = e.Approve(p, "b")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSecondApproveOnScheduledFails(t *testing.T) {
	e, _ := newTestEngine()
	p := draftPost(t, e)
	p, _, _ = e.SubmitForApproval(p)
	p, err := e.Approve(p, "a")
	require.NoError(t, err)

	again, err := e.Approve(p, "b")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, "a", again.ApprovedBy)
}

func TestSubmitRequiresDraft(t *testing.T) {
	e, _ := newTestEngine()
	for _, s := range domain.PostStatuses {
		t.Run(string(s), func(t *testing.T) {
			p := draftPost(t, e)
			p.Status = s
			got, _, err := e.SubmitForApproval(p)
			if s == domain.PostDraft {
				require.NoError(t, err)
				assert.Equal(t, domain.PostPendingApproval, got.Status)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.Equal(t, s, got.Status)
		})
	}
}

func TestPublishRequiresScheduled(t *testing.T) {
	e, _ := newTestEngine()
	for _, s := range domain.PostStatuses {
		p := draftPost(t, e)
		p.Status = s
		got, notes, err := e.Publish(p)
		if s == domain.PostScheduled {
			require.NoError(t, err)
			assert.NotNil(t, got.PublishedAt)
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, s)
		assert.Nil(t, got.PublishedAt, s)
		assert.Empty(t, notes)
	}
}

func TestCreateWithScheduleStartsScheduled(t *testing.T) {
	e, _ := newTestEngine()
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	p, err := e.CreatePost(domain.NewPost{Title: "T", Content: "C", Platform: "twitter", ScheduledAt: &at}, "u")
	require.NoError(t, err)
	assert.Equal(t, domain.PostScheduled, p.Status)
	assert.Equal(t, domain.PlatformTwitter, p.Platform)
	assert.Equal(t, time.UTC, p.ScheduledAt.Location())
}

func TestCreatePostValidation(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.CreatePost(domain.NewPost{Title: " ", Content: "c", Platform: domain.PlatformFacebook}, "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.CreatePost(domain.NewPost{Title: "t", Content: "c", Platform: "ORKUT"}, "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePostFields(t *testing.T) {
	e, _ := newTestEngine()
	title := "New title"

	t.Run("published is immutable", func(t *testing.T) {
		p := draftPost(t, e)
		p.Status = domain.PostPublished
		_, err := e.UpdatePostFields(p, domain.PostPatch{Title: &title})
		assert.ErrorIs(t, err, domain.ErrImmutable)
		_, err = e.UpdatePostFields(p, domain.PostPatch{})
		assert.ErrorIs(t, err, domain.ErrImmutable)
	})

	t.Run("failed and archived are immutable", func(t *testing.T) {
		for _, s := range []domain.PostStatus{domain.PostFailed, domain.PostArchived} {
			p := draftPost(t, e)
			p.Status = s
			_, err := e.UpdatePostFields(p, domain.PostPatch{Title: &title})
			assert.ErrorIs(t, err, domain.ErrImmutable)
		}
	})

	t.Run("scheduledAt forces scheduled", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		for _, s := range []domain.PostStatus{domain.PostDraft, domain.PostPendingApproval} {
			p := draftPost(t, e)
			p.Status = s
			got, err := e.UpdatePostFields(p, domain.PostPatch{ScheduledAt: &at})
			require.NoError(t, err)
			assert.Equal(t, domain.PostScheduled, got.Status)
			assert.Equal(t, at, *got.ScheduledAt)
		}
	})

	t.Run("plain edit keeps status", func(t *testing.T) {
		p := draftPost(t, e)
		tags := []string{"#go"}
		got, err := e.UpdatePostFields(p, domain.PostPatch{Title: &title, Hashtags: &tags})
		require.NoError(t, err)
		assert.Equal(t, domain.PostDraft, got.Status)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, tags, got.Hashtags)
	})
}

func TestFailAndArchive(t *testing.T) {
	e, _ := newTestEngine()

	p := draftPost(t, e)
	failed, err := e.Fail(p, " api timeout ")
	require.NoError(t, err)
	assert.Equal(t, domain.PostFailed, failed.Status)
	assert.Equal(t, "api timeout", failed.FailureReason)

	_, err = e.Archive(failed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	p.Status = domain.PostPublished
	_, err = e.Fail(p, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = e.Archive(p)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	p.Status = domain.PostPendingApproval
	archived, err := e.Archive(p)
	require.NoError(t, err)
	assert.Equal(t, domain.PostArchived, archived.Status)
}

func TestRecordEngagementAndMetadataOnPublished(t *testing.T) {
	e, _ := newTestEngine()
	p := draftPost(t, e)
	p.Status = domain.PostPublished

	p, err := e.RecordEngagement(p, domain.Engagement{Likes: 3, Views: 10})
	require.NoError(t, err)
	p, err = e.RecordEngagement(p, domain.Engagement{Likes: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.Engagement{Likes: 4, Views: 10}, p.Engagement)

	_, err = e.RecordEngagement(p, domain.Engagement{Shares: -1})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)

	p, err = e.UpdateMetadata(p, domain.PostMetadata{SEOScore: 80, ReadabilityScore: 70, SentimentScore: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 80.0, p.Metadata.SEOScore)

	_, err = e.UpdateMetadata(p, domain.PostMetadata{SentimentScore: -2})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestRecordEngagementRejectsOverflow(t *testing.T) {
	e, _ := newTestEngine()
	p := draftPost(t, e)
	p.Engagement = domain.Engagement{Likes: 10}

	got, err := e.RecordEngagement(p, domain.Engagement{Likes: math.MaxInt64})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, int64(10), got.Engagement.Likes)

	got, err = e.RecordEngagement(p, domain.Engagement{Likes: math.MaxInt64 - 10})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got.Engagement.Likes)
}
