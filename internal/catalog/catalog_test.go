package catalog

import "testing"

// TestPageClamping verifies page and per-page normalization without hitting
// the database (values are clamped before the query is built).
func TestPageClamping(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		wantPage      int
		wantPerPage   int
	}{
		{"zero page", 0, 20, 1, 20},
		{"negative page", -3, 20, 1, 20},
		{"zero per page", 1, 0, 1, DefaultPageSize},
		{"oversized per page", 1, 1000, 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := clamp(tt.page, tt.perPage)
			if page != tt.wantPage || perPage != tt.wantPerPage {
				t.Errorf("clamp(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, page, perPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}
