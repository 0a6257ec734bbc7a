package hls

import "testing"

const sampleMediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:10
#EXTINF:6.0,
segment10.ts
#EXTINF:6.0,
segment11.ts
#EXTINF:5.8,
segment12.ts
`

const sampleMasterPlaylist = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=128000
low/playlist.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=640000
high/playlist.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=900000,URI="iframe/playlist.m3u8"
`

func TestParseMediaPlaylist(t *testing.T) {
	pl, err := ParseMediaPlaylist(sampleMediaPlaylist)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if pl.TargetDuration != 6 {
		t.Fatalf("target duration: got %v want 6", pl.TargetDuration)
	}
	if len(pl.Segments) != 3 {
		t.Fatalf("segment count: got %d want 3", len(pl.Segments))
	}
	want := []uint64{10, 11, 12}
	for i, s := range pl.Segments {
		if s.SequenceNumber != want[i] {
			t.Fatalf("segment[%d] sequence: got %d want %d", i, s.SequenceNumber, want[i])
		}
	}
	if pl.Segments[2].URI != "segment12.ts" {
		t.Fatalf("segment[2] uri: got %q", pl.Segments[2].URI)
	}
}

func TestParseMasterPlaylistSelectsHighestBandwidthNonIFrame(t *testing.T) {
	m, err := ParseMasterPlaylist(sampleMasterPlaylist)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(m.Variants) != 3 {
		t.Fatalf("variant count: got %d want 3", len(m.Variants))
	}
	best, ok := m.BestMediaPlaylistURL()
	if !ok {
		t.Fatal("expected a best variant")
	}
	if best != "high/playlist.m3u8" {
		t.Fatalf("best variant: got %q want high/playlist.m3u8 (i-frame variant must be excluded)", best)
	}
}

func TestParseMasterPlaylistRejectsMediaPlaylist(t *testing.T) {
	if _, err := ParseMasterPlaylist(sampleMediaPlaylist); err != ErrNotMaster {
		t.Fatalf("expected ErrNotMaster, got %v", err)
	}
}
