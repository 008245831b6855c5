package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/weave/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			wantMessages: []string{"outer layer", "middle layer", "root cause"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "zerr with metadata",
			err:          zerr.With(zerr.With(zerr.New("base error"), "key1", "value1"), "key2", 42),
			wantMessages: []string{"base error"},
			wantMetadata: []map[string]any{{"key1": "value1", "key2": 42}},
		},
		{
			name: "metadata on an empty level moves to the next message",
			err: func() error {
				sentinel := zerr.New("project not found")
				return zerr.Wrap(zerr.With(zerr.Wrap(sentinel, ""), "project", "lib"), "failed to configure project")
			}(),
			wantMessages: []string{"failed to configure project", "project not found"},
			wantMetadata: []map[string]any{{}, {"project": "lib"}},
		},
		{
			name:         "metadata on a wrapped standard error",
			err:          zerr.With(errors.New("permission denied"), "path", "/ws/built"),
			wantMessages: []string{"permission denied"},
			wantMetadata: []map[string]any{{"path": "/ws/built"}},
		},
		{
			name:         "nil error",
			err:          nil,
			wantMessages: nil,
			wantMetadata: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)

			if tt.err == nil {
				assert.Empty(t, entries)
				return
			}

			assert.Len(t, entries, len(tt.wantMessages))
			for i, wantMsg := range tt.wantMessages {
				assert.Equal(t, wantMsg, entries[i].Message, "message at index %d", i)
				assert.Equal(t, tt.wantMetadata[i], entries[i].Metadata, "metadata at index %d", i)
			}
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "single error"}},
			want:    "Error: single error",
		},
		{
			name:    "three entries",
			entries: []logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			want:    "Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			name: "metadata sorted by key",
			entries: []logger.ErrorEntry{{
				Message:  "conflicting runtime dependencies",
				Metadata: map[string]any{"old": "/a/x.so", "dest": "x.so", "new": "/b/x.so"},
			}},
			want: "Error: conflicting runtime dependencies\n" +
				"       dest: x.so\n       new: /b/x.so\n       old: /a/x.so",
		},
		{
			name:    "metadata on cause",
			entries: []logger.ErrorEntry{{Message: "main"}, {Message: "cause", Metadata: map[string]any{"k": "v"}}},
			want:    "Error: main\n\n  Caused by:\n    → cause\n      k: v",
		},
		{
			name:    "multiline cause",
			entries: []logger.ErrorEntry{{Message: "main"}, {Message: "line1\nline2"}},
			want:    "Error: main\n\n  Caused by:\n    → line1\n      line2",
		},
		{
			name:    "empty entries",
			entries: []logger.ErrorEntry{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
