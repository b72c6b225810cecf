package render

import (
	"strings"
	"testing"

	"github.com/mcalhoun/shelfie/internal/record"
)

var allKinds = []record.NotificationKind{
	record.KindFriendRequest,
	record.KindStoryLike,
	record.KindShelfLike,
	record.KindNewFollower,
	record.KindBookUpdate,
	record.KindReviewRequest,
	record.KindBorrowRequest,
	record.KindBookRequest,
	record.KindRecommendationRequest,
}

func TestMessageCoversEveryKindInBothLocales(t *testing.T) {
	t.Parallel()

	for _, locale := range []string{"en", "pt-BR"} {
		printer := NewPrinter(locale)
		for _, kind := range allKinds {
			got := Message(printer, Input{Kind: kind, ActorName: "Ada", BookTitle: "Dune"})
			if got == "" {
				t.Fatalf("%s/%s: empty message", locale, kind)
			}
			if !strings.Contains(got, "Ada") {
				t.Fatalf("%s/%s: expected actor name in %q", locale, kind, got)
			}
		}
	}
}

func TestMessageLocalizesPtBR(t *testing.T) {
	t.Parallel()

	got := Message(NewPrinter("pt-BR"), Input{Kind: record.KindNewFollower, ActorName: "Ada"})
	if got != "Ada começou a seguir você." {
		t.Fatalf("unexpected pt-BR copy: %q", got)
	}
}

func TestMessageFallsBackForUnknownKind(t *testing.T) {
	t.Parallel()

	got := Message(NewPrinter("en"), Input{Kind: "mystery", ActorName: "Ada"})
	if got != defaultGenericBody {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestMessageFallsBackForUnknownLocaleAndMissingActor(t *testing.T) {
	t.Parallel()

	got := Message(NewPrinter("!not-a-locale"), Input{Kind: record.KindStoryLike})
	if got != "Someone liked your story." {
		t.Fatalf("expected English fallback with generic actor, got %q", got)
	}
}

func TestDefaultRendersEnglish(t *testing.T) {
	t.Parallel()

	got := Default(Input{Kind: record.KindBorrowRequest, ActorName: "Ada", BookTitle: "Dune"})
	if got != "Ada asked to borrow Dune." {
		t.Fatalf("unexpected default copy: %q", got)
	}
}
