package engine

import (
	"context"
	"testing"

	"github.com/oscilla-audio/engine/internal/model"
)

func TestRenderProjectSurfacesCancellation(t *testing.T) {
	e := New(48000)
	if _, err := e.AddTrack(model.KindAudio, "lead"); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	e.ProcessBlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.RenderProject(ctx, RenderRequest{
		DurationSeconds:  1,
		TargetSampleRate: 48000,
	})
	if err == nil {
		t.Fatal("expected RenderProject to report an error for an already-cancelled context")
	}
	var engErr *Error
	if !errorsAs(err, &engErr) || engErr.Kind != RenderCancelled {
		t.Fatalf("expected RenderCancelled, got %v", err)
	}
}

func TestRenderStemRejectsUnknownTrack(t *testing.T) {
	e := New(48000)
	_, err := e.RenderStem(context.Background(), "does-not-exist", RenderRequest{
		DurationSeconds:  1,
		TargetSampleRate: 48000,
	})
	if err == nil {
		t.Fatal("expected RenderStem to reject an unknown track id")
	}
	var engErr *Error
	if !errorsAs(err, &engErr) || engErr.Kind != UnknownID {
		t.Fatalf("expected UnknownID, got %v", err)
	}
}
