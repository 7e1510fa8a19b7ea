package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentEvent_OrphanedImage(t *testing.T) {
	tests := []struct {
		name  string
		event ContentEvent
		want  string
	}{
		{"created", ContentEvent{Type: EventPostCreated, ImageURL: "/uploads/a.png"}, ""},
		{"deleted", ContentEvent{Type: EventPostDeleted, ImageURL: "/uploads/a.png"}, "/uploads/a.png"},
		{"updated replaced", ContentEvent{Type: EventPostUpdated, ImageURL: "/uploads/b.png", PreviousImageURL: "/uploads/a.png"}, "/uploads/a.png"},
		{"updated same", ContentEvent{Type: EventPostUpdated, ImageURL: "/uploads/a.png", PreviousImageURL: "/uploads/a.png"}, ""},
		{"profile replaced", ContentEvent{Type: EventProfileUpdated, ImageURL: "/uploads/c.png", PreviousImageURL: "/uploads/d.png"}, "/uploads/d.png"},
		{"unknown", ContentEvent{Type: "other", ImageURL: "/uploads/a.png"}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.event.OrphanedImage())
		})
	}
}
