package pagination

import (
	"strconv"
	"testing"
)

func TestParseCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
		want   int64
	}{
		{name: "empty cursor starts at zero", cursor: "", want: 0},
		{name: "zero", cursor: "0", want: 0},
		{name: "plain offset", cursor: "250", want: 250},
		{name: "mid batch offset", cursor: "245", want: 245},
		{name: "large offset", cursor: "1000000", want: 1000000},
		{name: "negative rejected", cursor: "-1", want: 0},
		{name: "garbage rejected", cursor: "abc", want: 0},
		{name: "float rejected", cursor: "12.5", want: 0},
		{name: "overflow rejected", cursor: "99999999999999999999", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCursor(tt.cursor)
			if got != tt.want {
				t.Errorf("ParseCursor(%q) = %d, want %d", tt.cursor, got, tt.want)
			}
		})
	}
}

func TestCoordinates(t *testing.T) {
	tests := []struct {
		name       string
		offset     int64
		batchSize  int
		wantBatch  int64
		wantWithin int
	}{
		{name: "start of feed", offset: 0, batchSize: 250, wantBatch: 0, wantWithin: 0},
		{name: "inside first batch", offset: 245, batchSize: 250, wantBatch: 0, wantWithin: 245},
		{name: "first element of second batch", offset: 250, batchSize: 250, wantBatch: 1, wantWithin: 0},
		{name: "inside second batch", offset: 499, batchSize: 250, wantBatch: 1, wantWithin: 249},
		{name: "deep offset", offset: 1337, batchSize: 250, wantBatch: 5, wantWithin: 87},
		{name: "zero batch size falls back to default", offset: 300, batchSize: 0, wantBatch: 1, wantWithin: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, within := Coordinates(tt.offset, tt.batchSize)
			if batch != tt.wantBatch || within != tt.wantWithin {
				t.Errorf("Coordinates(%d, %d) = (%d, %d), want (%d, %d)",
					tt.offset, tt.batchSize, batch, within, tt.wantBatch, tt.wantWithin)
			}
		})
	}
}

// TestCoordinates_Algebra verifies batch*size + within == offset across a
// range of offsets.
func TestCoordinates_Algebra(t *testing.T) {
	const batchSize = 250

	for offset := int64(0); offset < 3*batchSize; offset++ {
		batch, within := Coordinates(offset, batchSize)

		if within < 0 || within >= batchSize {
			t.Fatalf("offset %d: within = %d out of range [0, %d)", offset, within, batchSize)
		}
		if batch*batchSize+int64(within) != offset {
			t.Fatalf("offset %d: %d*%d + %d != %d", offset, batch, batchSize, within, offset)
		}
	}
}

func TestSlice(t *testing.T) {
	batch := make([]string, 250)
	for i := range batch {
		batch[i] = "id-" + strconv.Itoa(i)
	}

	tests := []struct {
		name    string
		items   []string
		within  int
		limit   int
		wantLen int
	}{
		{name: "full page with lookahead", items: batch, within: 0, limit: 20, wantLen: 21},
		{name: "mid batch", items: batch, within: 100, limit: 20, wantLen: 21},
		{name: "tail of batch clipped", items: batch, within: 245, limit: 10, wantLen: 5},
		{name: "exactly at end", items: batch, within: 250, limit: 10, wantLen: 0},
		{name: "past end of short batch", items: batch[:50], within: 120, limit: 20, wantLen: 0},
		{name: "last element only", items: batch, within: 249, limit: 10, wantLen: 1},
		{name: "empty batch", items: nil, within: 0, limit: 20, wantLen: 0},
		{name: "negative within", items: batch, within: -1, limit: 20, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slice(tt.items, tt.within, tt.limit)
			if len(got) != tt.wantLen {
				t.Errorf("Slice(within=%d, limit=%d) returned %d items, want %d",
					tt.within, tt.limit, len(got), tt.wantLen)
			}
		})
	}
}

// TestSlice_Order ensures a slice preserves batch ordering from the requested
// offset.
func TestSlice_Order(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	got := Slice(items, 1, 2)
	want := []string{"b", "c", "d"}

	if len(got) != len(want) {
		t.Fatalf("Slice returned %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextCursor(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
		served int
		want   string
	}{
		{name: "first page", offset: 0, served: 20, want: "20"},
		{name: "continuation", offset: 20, served: 20, want: "40"},
		{name: "short page", offset: 245, served: 5, want: "250"},
		{name: "nothing served", offset: 100, served: 0, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextCursor(tt.offset, tt.served)
			if got != tt.want {
				t.Errorf("NextCursor(%d, %d) = %q, want %q", tt.offset, tt.served, got, tt.want)
			}
		})
	}
}

// TestCursorRoundTrip confirms a produced cursor parses back to the offset it
// encodes.
func TestCursorRoundTrip(t *testing.T) {
	offset := int64(0)
	for page := 0; page < 10; page++ {
		cursor := NextCursor(offset, 20)
		offset = ParseCursor(cursor)

		if offset != int64((page+1)*20) {
			t.Fatalf("page %d: round-tripped offset = %d, want %d", page, offset, (page+1)*20)
		}
	}
}
