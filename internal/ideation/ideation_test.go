package ideation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modryn-studio/specifythat/internal/models"
)

type fakeComposer struct {
	text  string
	err   error
	notes []models.Answer
}

func (f *fakeComposer) ComposeDescription(ctx context.Context, notes []models.Answer) (string, error) {
	f.notes = notes
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlow(t *testing.T) {
	f := NewFlow()
	assert.Equal(t, 1, f.Step())
	assert.Equal(t, 3, f.Total())
	assert.False(t, f.Back())

	p, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "problem", p.Key)

	assert.ErrorIs(t, f.Answer("   "), ErrEmptyAnswer)
	require.NoError(t, f.Answer(" Clients pay late "))
	require.NoError(t, f.Answer("Freelancers"))
	assert.Equal(t, 3, f.Step())

	assert.True(t, f.Back())
	p, _ = f.Current()
	assert.Equal(t, "audience", p.Key)

	require.NoError(t, f.Answer("Freelance designers"))
	require.NoError(t, f.Answer("Automatic reminders"))
	assert.True(t, f.Done())
	assert.Equal(t, 3, f.Step())
	_, ok = f.Current()
	assert.False(t, ok)

	notes := f.Notes()
	require.Len(t, notes, 3)
	assert.Equal(t, Prompts[0].Question, notes[0].Question)
	assert.Equal(t, "Clients pay late", notes[0].Answer)
	assert.Equal(t, "Freelance designers", notes[1].Answer)
}

func notes(problem, audience, solution string) []models.Answer {
	return []models.Answer{
		{Question: Prompts[0].Question, Answer: problem},
		{Question: Prompts[1].Question, Answer: audience},
		{Question: Prompts[2].Question, Answer: solution},
	}
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name  string
		notes []models.Answer
		want  string
	}{
		{
			name:  "all answered",
			notes: notes("clients pay late.", "freelance designers", "an app that sends reminders"),
			want:  "An app that sends reminders. It is for freelance designers. It addresses this problem: clients pay late.",
		},
		{
			name:  "solution missing",
			notes: notes("clients pay late", "freelancers", ""),
			want:  "It is for freelancers. It addresses this problem: clients pay late.",
		},
		{
			name:  "unknown questions use position",
			notes: []models.Answer{{Question: "?", Answer: "a"}, {Question: "?", Answer: "b"}},
			want:  "It is for b. It addresses this problem: a.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Template(tt.notes))
		})
	}
}

func TestCompose(t *testing.T) {
	ctx := context.Background()
	in := notes("late payments", "freelancers", "reminder app")

	t.Run("generated", func(t *testing.T) {
		c := &fakeComposer{text: "  A reminder app for freelancers.  "}
		d, err := NewService(c, testLogger()).Compose(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, Draft{Description: "A reminder app for freelancers.", Generated: true}, d)
		assert.Equal(t, in, c.notes)
	})

	t.Run("falls back on error", func(t *testing.T) {
		c := &fakeComposer{err: errors.New("offline")}
		d, err := NewService(c, testLogger()).Compose(ctx, in)
		require.NoError(t, err)
		assert.False(t, d.Generated)
		assert.Equal(t, Template(in), d.Description)
	})

	t.Run("falls back on blank reply", func(t *testing.T) {
		d, err := NewService(&fakeComposer{text: " "}, testLogger()).Compose(ctx, in)
		require.NoError(t, err)
		assert.False(t, d.Generated)
	})

	t.Run("no composer", func(t *testing.T) {
		d, err := NewService(nil, testLogger()).Compose(ctx, in)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(d.Description, "Reminder app."))
	})

	t.Run("blank notes", func(t *testing.T) {
		_, err := NewService(nil, testLogger()).Compose(ctx, notes(" ", "", ""))
		assert.ErrorIs(t, err, ErrNoNotes)
	})

	t.Run("long reply is capped", func(t *testing.T) {
		c := &fakeComposer{text: strings.Repeat("x", maxDescriptionRunes+50)}
		d, err := NewService(c, testLogger()).Compose(ctx, in)
		require.NoError(t, err)
		assert.Len(t, []rune(d.Description), maxDescriptionRunes)
	})
}
