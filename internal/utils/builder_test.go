package querybuilder

import (
	"reflect"
	"testing"
)

func TestBuildSelect(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("id", "verdict").
		From("judgements").
		Where("language = ?", "cpp").
		AndGroup(func(qb QueryBuilder) {
			qb.Where("verdict = ?", "Accepted").Or("failed_test_case > ?", 3)
		}).
		OrderBy("created_at", false).
		Limit(10).
		Build()

	wantQuery := "SELECT id, verdict FROM public.judgements WHERE language = ? AND (verdict = ? OR failed_test_case > ?) ORDER BY created_at DESC LIMIT ?"
	if query != wantQuery {
		t.Errorf("query mismatch:\n got %s\nwant %s", query, wantQuery)
	}
	wantArgs := []interface{}{"cpp", "Accepted", 3, 10}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildSelect_EmptyGroupIsDropped(t *testing.T) {
	query, args := NewQueryBuilder("").
		Select("id").
		From("judgements").
		AndGroup(func(QueryBuilder) {}).
		Build()

	if query != "SELECT id FROM judgements" || len(args) != 0 {
		t.Errorf("unexpected %q %v", query, args)
	}
}

func TestBuildInsert(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Insert("id", "verdict").
		Into("judgements").
		Values(1, "Accepted").
		Values(2, "Wrong Answer").
		OnConflict("id").
		DoNothing().
		Build()

	wantQuery := "INSERT INTO public.judgements (id, verdict) VALUES (?, ?), (?, ?) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Errorf("query mismatch:\n got %s\nwant %s", query, wantQuery)
	}
	if !reflect.DeepEqual(args, []interface{}{1, "Accepted", 2, "Wrong Answer"}) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestBuildInsert_RowMismatch(t *testing.T) {
	query, args := NewQueryBuilder("public").Insert("id", "verdict").Into("judgements").Values(1).Build()
	if query != "" || args != nil {
		t.Errorf("expected empty query for mismatched row, got %q", query)
	}
}
