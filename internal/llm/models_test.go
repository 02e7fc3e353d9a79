package llm

import (
	"testing"

	"lofty-chat/internal/domain"
)

func TestResolveRoute(t *testing.T) {
	local := ResolveRoute("gemini-2.5-pro", "")
	if !local.IsLocal() || local.Remote != nil {
		t.Fatalf("expected local route without key, got %+v", local)
	}

	remote := ResolveRoute("gemini-2.0-flash-thinking", "k")
	if remote.Kind != domain.RouteRemote || remote.Remote == nil {
		t.Fatalf("expected remote route, got %+v", remote)
	}
	if remote.Remote.APIModel != "gemini-2.0-flash-thinking-exp" {
		t.Fatalf("unexpected api model %q", remote.Remote.APIModel)
	}

	unknown := ResolveRoute("not-a-model", "k")
	if *unknown.Remote != defaultRemote {
		t.Fatalf("expected default route for unknown id, got %+v", unknown.Remote)
	}
}

func TestCatalogDisabledFollowsCredential(t *testing.T) {
	for _, m := range Catalog(false) {
		if !m.Disabled {
			t.Fatalf("expected %s disabled without credential", m.ID)
		}
	}
	models := Catalog(true)
	if len(models) == 0 {
		t.Fatalf("expected non-empty catalog")
	}
	for _, m := range models {
		if m.Disabled || m.ContextWindowTokens <= 0 || len(m.Capabilities) == 0 {
			t.Fatalf("unexpected catalog entry %+v", m)
		}
	}
	models[0].Capabilities[0] = "mutated"
	if Catalog(true)[0].Capabilities[0] == "mutated" {
		t.Fatalf("expected catalog copies to be independent")
	}
	if !IsKnownModel(DefaultModelID) || IsKnownModel("nope") {
		t.Fatalf("unexpected IsKnownModel result")
	}
}
