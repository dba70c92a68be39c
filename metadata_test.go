package autotranslate

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
)

var userSchema = EntitySchema{
	Name:        "User",
	Description: "Application user",
	Fields: []FieldDescriptor{
		{Name: "id"},
		{Name: "firstName", NoTranslate: true},
		{Name: "bio"},
		{Name: "role", EnumType: "UserRole"},
		{Name: "dateCreation"},
	},
}

func newTestMetadata(backend Backend, shared *countingCache) *MetadataGenerator {
	var coord *Coordinator
	if shared != nil {
		coord, _ = newTestCoordinator(backend, shared)
	} else {
		coord, _ = newTestCoordinator(backend, nil)
	}
	return NewMetadataGenerator(coord, NewSchemaRegistry(userSchema), NewExclusionSet(DefaultExcludedFields...), "en", quietLogger())
}

func TestMetadataFor(t *testing.T) {
	backend := &fakeBackend{translations: map[string]string{
		"First Name": "Prénom",
		"Bio":        "Biographie",
		"Role":       "Rôle",
	}}
	g := newTestMetadata(backend, nil)

	got := g.MetadataFor(context.Background(), "User", "fr")

	want := map[string]string{
		"firstName": "Prénom",
		"bio":       "Biographie",
		"role":      "Rôle",
	}
	if len(got) != len(want) {
		t.Fatalf("MetadataFor = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	// Marker-protected fields keep their label; excluded fields never appear.
	if _, ok := got["id"]; ok {
		t.Error("excluded field id listed")
	}
	if _, ok := got["dateCreation"]; ok {
		t.Error("excluded field dateCreation listed")
	}

	for _, r := range backend.Requests() {
		if r.SourceLang != "en" {
			t.Errorf("labels are translated from the identifier language, got %+v", r)
		}
	}
}

func TestMetadataFor_IdentifierLangTarget(t *testing.T) {
	backend := &fakeBackend{}
	g := newTestMetadata(backend, nil)

	got := g.MetadataFor(context.Background(), "User", "en")

	if got["firstName"] != "First Name" {
		t.Errorf("firstName = %q", got["firstName"])
	}
	if backend.Calls() != 0 {
		t.Error("no translation needed for the identifier language")
	}
}

func TestMetadataFor_UnknownEntity(t *testing.T) {
	shared := newCountingCache()
	g := newTestMetadata(&fakeBackend{}, shared)

	got := g.MetadataFor(context.Background(), "Nope", "fr")

	if got == nil || len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
	if shared.Len() != 0 {
		t.Error("unknown entities are not cached")
	}
}

func TestMetadataFor_CachedInSharedTier(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	shared := newCountingCache()
	g := newTestMetadata(backend, shared)

	first := g.MetadataFor(ctx, "User", "de")

	raw, ok, _ := shared.MemoryCache.Get(ctx, "metadata:User:de")
	if !ok {
		t.Fatal("metadata not stored in the shared tier")
	}
	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored metadata is not JSON: %v", err)
	}
	if stored["bio"] != first["bio"] {
		t.Errorf("stored %v, returned %v", stored, first)
	}

	// A fresh generator sharing the tier reads the cached entry.
	other := newTestMetadata(backend, shared)
	calls := backend.Calls()
	second := other.MetadataFor(ctx, "User", "de")
	if backend.Calls() != calls {
		t.Error("cached metadata should not reach the backend")
	}
	if second["role"] != first["role"] {
		t.Errorf("got %v, want %v", second, first)
	}
}

func TestMetadataFor_CorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	shared := newCountingCache()
	shared.MemoryCache.Set(ctx, "metadata:User:en", "{not json", 0)
	g := newTestMetadata(&fakeBackend{}, shared)

	got := g.MetadataFor(ctx, "User", "en")
	if got["bio"] != "Bio" {
		t.Errorf("metadata should be regenerated, got %v", got)
	}
}

func TestMetadataGenerator_Entities(t *testing.T) {
	g := newTestMetadata(&fakeBackend{}, nil)

	if names := g.Entities(); len(names) != 1 || names[0] != "User" {
		t.Errorf("Entities() = %v", names)
	}
}
