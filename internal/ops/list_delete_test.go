package ops

import (
	"context"
	"testing"
)

func TestListSaved_SaveOrder(t *testing.T) {
	database, _ := openTestDB(t)
	ctx := context.Background()
	fixedClock(t, 300, 100, 200)

	for _, q := range []string{"third saved first", "first saved second", "second saved third"} {
		if _, err := SaveTutorial(ctx, database, SaveInput{Query: q}); err != nil {
			t.Fatal(err)
		}
	}

	out := ListSaved(ctx, database)
	if out.Total != 3 {
		t.Fatalf("Total = %d, want 3", out.Total)
	}
	want := []string{"first saved second", "second saved third", "third saved first"}
	for i, q := range want {
		if out.Items[i].Query != q {
			t.Errorf("Items[%d].Query = %q, want %q", i, out.Items[i].Query, q)
		}
	}

	summaries := ListSummaries(ctx, database)
	if len(summaries) != 3 || summaries[0].Query != want[0] {
		t.Errorf("ListSummaries = %+v", summaries)
	}
}

func TestListSaved_EmptyAndFailure(t *testing.T) {
	database, _ := openTestDB(t)
	ctx := context.Background()

	out := ListSaved(ctx, database)
	if out.Items == nil || len(out.Items) != 0 {
		t.Errorf("Items = %#v, want empty non-nil slice", out.Items)
	}

	database.Close()
	out = ListSaved(ctx, database)
	if out.Items == nil || out.Total != 0 {
		t.Errorf("after close: %+v, want empty list", out)
	}
}

func TestDeleteSaved_RemovesOnlyThatEntry(t *testing.T) {
	database, _ := openTestDB(t)
	ctx := context.Background()

	a, err := SaveTutorial(ctx, database, SaveInput{Query: "bake some bread"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := SaveTutorial(ctx, database, SaveInput{Query: "brew some coffee"})
	if err != nil {
		t.Fatal(err)
	}

	out := DeleteSaved(ctx, database, a.Tutorial.ID)
	if !out.Deleted || out.ID != a.Tutorial.ID {
		t.Fatalf("DeleteSaved = %+v", out)
	}

	items := ListSaved(ctx, database).Items
	if len(items) != 1 || items[0].ID != b.Tutorial.ID {
		t.Errorf("items = %+v, want only %s", items, b.Tutorial.ID)
	}
	if IsSaved(ctx, database, "bake some bread") {
		t.Error("deleted query still reported as saved")
	}
}

func TestDeleteSaved_UnknownIsNoOp(t *testing.T) {
	database, _ := openTestDB(t)
	ctx := context.Background()

	if _, err := SaveTutorial(ctx, database, SaveInput{Query: "bake some bread"}); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"01UNKNOWN", "  "} {
		if out := DeleteSaved(ctx, database, id); out.Deleted {
			t.Errorf("DeleteSaved(%q).Deleted = true", id)
		}
	}
	if n := len(ListSaved(ctx, database).Items); n != 1 {
		t.Errorf("len(items) = %d, want 1", n)
	}
}
