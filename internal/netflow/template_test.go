package netflow

import "testing"

func TestTemplateStoreUpsertAndLookup(t *testing.T) {
	store := NewTemplateStore()

	fields := []FieldSpecifier{
		{Type: FieldIPv4SrcAddr, Length: 4},
		{Type: FieldL4SrcPort, Length: 2},
		{Type: FieldIPv4DstAddr, Length: 4},
	}
	store.Upsert(256, fields)

	got, ok := store.Lookup(256)
	if !ok {
		t.Fatal("expected template 256 to be present after upsert")
	}
	if len(got) != len(fields) {
		t.Fatalf("expected %d fields, got %d", len(fields), len(got))
	}
	for i, f := range fields {
		if got[i] != f {
			t.Errorf("field %d: expected %+v, got %+v", i, f, got[i])
		}
	}
	if store.Len() != 1 {
		t.Errorf("expected store length 1, got %d", store.Len())
	}
}

func TestTemplateStoreLookupMissing(t *testing.T) {
	store := NewTemplateStore()
	if _, ok := store.Lookup(300); ok {
		t.Fatal("lookup of an unregistered template must report not found")
	}
}

func TestTemplateStoreLastWriterWins(t *testing.T) {
	store := NewTemplateStore()

	store.Upsert(256, []FieldSpecifier{
		{Type: FieldIPv4SrcAddr, Length: 4},
		{Type: FieldIPv4DstAddr, Length: 4},
		{Type: FieldProtocol, Length: 1},
	})
	replacement := []FieldSpecifier{
		{Type: FieldL4SrcPort, Length: 2},
	}
	store.Upsert(256, replacement)

	got, ok := store.Lookup(256)
	if !ok {
		t.Fatal("template 256 missing after re-announcement")
	}
	if len(got) != 1 || got[0] != replacement[0] {
		t.Fatalf("expected replacement layout %+v, got %+v", replacement, got)
	}
	if store.Len() != 1 {
		t.Errorf("re-announcing an ID must not grow the store, length is %d", store.Len())
	}
}
