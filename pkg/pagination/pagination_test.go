package pagination

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		skip      string
		limit     string
		sort      string
		allowed   []string
		want      Params
		expectErr bool
	}{
		{name: "defaults", want: Params{Limit: DefaultLimit}},
		{name: "default sort is first allowed desc", allowed: []string{"createdAt", "score"}, want: Params{Limit: DefaultLimit, SortBy: "createdAt", SortDesc: true}},
		{name: "explicit asc", sort: "score", allowed: []string{"createdAt", "score"}, want: Params{Limit: DefaultLimit, SortBy: "score"}},
		{name: "explicit desc", skip: "10", limit: "5", sort: "-score", allowed: []string{"createdAt", "score"}, want: Params{Skip: 10, Limit: 5, SortBy: "score", SortDesc: true}},
		{name: "limit capped", limit: "10000", want: Params{Limit: MaxLimit}},
		{name: "negative skip", skip: "-1", expectErr: true},
		{name: "zero limit", limit: "0", expectErr: true},
		{name: "garbage limit", limit: "ten", expectErr: true},
		{name: "unknown sort", sort: "password", allowed: []string{"createdAt"}, expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.skip, tt.limit, tt.sort, tt.allowed...)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWindowAndPage(t *testing.T) {
	p := Params{Skip: 2, Limit: 2}
	lo, hi := p.Window(5)
	if lo != 2 || hi != 4 {
		t.Fatalf("unexpected window %d..%d", lo, hi)
	}
	lo, hi = Params{Skip: 9, Limit: 2}.Window(5)
	if lo != 5 || hi != 5 {
		t.Fatalf("expected empty window past end, got %d..%d", lo, hi)
	}

	page := NewPage([]string{"c", "d"}, 5, p)
	if !page.HasMore || page.Total != 5 {
		t.Fatalf("unexpected page %+v", page)
	}
	empty := NewPage[string](nil, 0, Params{Limit: 10})
	if empty.Items == nil || empty.HasMore {
		t.Fatalf("expected empty non-nil items, got %+v", empty)
	}
}
