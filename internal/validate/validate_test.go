package validate

import "testing"

func TestIsEventTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"search button", "Search", false},
		{"menu label", "Menu", false},
		{"subscribe link", "Subscribe", false},
		{"load more control", "Load More", false},
		{"view all link", "View All", false},
		{"real title with common word", "DJ Night at Fat Eddie's", true},
		{"short icon label", "Go", false},
		{"short glyph", "»", false},
		{"bare generic noun", "Events", false},
		{"bare generic noun lowercase", "about", false},
		{"short title containing chrome term", "All Tickets", false},
		{"long title containing chrome term", "An Evening of Search Party Favourites Live", true},
		{"band name", "Winter Jazz Fest", true},
		{"mixed case chrome", "LOAD MORE", false},
		{"legit short-ish title", "Punk Rock Bingo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEventTitle(tt.title); got != tt.want {
				t.Errorf("IsEventTitle(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}
