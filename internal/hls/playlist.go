package hls

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Segment is one media-playlist entry, keyed by its decoded sequence number.
type Segment struct {
	SequenceNumber uint64
	Duration       float64
	URI            string
	Title          string
}

// Variant is one EXT-X-STREAM-INF entry in a master playlist.
type Variant struct {
	Bandwidth int
	IsIFrame  bool
	URI       string
}

// MediaPlaylist is a parsed leaf playlist.
type MediaPlaylist struct {
	TargetDuration  float64
	MediaSequence   uint64
	Segments        []Segment
}

// MasterPlaylist is a parsed top-level playlist listing variant streams.
type MasterPlaylist struct {
	Variants []Variant
}

// ErrNotMaster is returned by ParseMasterPlaylist when content has no
// EXT-X-STREAM-INF tags, signalling the caller should try the media parser.
var ErrNotMaster = errors.New("hls: not a master playlist")

// ParseMasterPlaylist parses content as a master playlist. Returns
// ErrNotMaster if no EXT-X-STREAM-INF tag is present.
func ParseMasterPlaylist(content string) (*MasterPlaylist, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	var variants []Variant
	var pending *Variant

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			v := Variant{}
			if bw, ok := attrs["BANDWIDTH"]; ok {
				v.Bandwidth, _ = strconv.Atoi(bw)
			}
			if _, ok := attrs["URI"]; ok {
				// EXT-X-I-FRAME-STREAM-INF carries its own URI attribute and
				// is always I-frame-only; EXT-X-STREAM-INF never does.
				v.IsIFrame = true
				v.URI = strings.Trim(attrs["URI"], `"`)
			}
			pending = &v
		case strings.HasPrefix(line, "#EXT-X-I-FRAME-STREAM-INF:"):
			attrs := parseAttributes(strings.TrimPrefix(line, "#EXT-X-I-FRAME-STREAM-INF:"))
			v := Variant{IsIFrame: true}
			if bw, ok := attrs["BANDWIDTH"]; ok {
				v.Bandwidth, _ = strconv.Atoi(bw)
			}
			v.URI = strings.Trim(attrs["URI"], `"`)
			variants = append(variants, v)
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if pending != nil {
				pending.URI = line
				variants = append(variants, *pending)
				pending = nil
			}
		}
	}

	if len(variants) == 0 {
		return nil, ErrNotMaster
	}
	return &MasterPlaylist{Variants: variants}, nil
}

// BestMediaPlaylistURL selects the highest-bandwidth variant that is not
// I-frame-only.
func (m *MasterPlaylist) BestMediaPlaylistURL() (string, bool) {
	var best *Variant
	for i := range m.Variants {
		v := &m.Variants[i]
		if v.IsIFrame {
			continue
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	if best == nil {
		return "", false
	}
	return best.URI, true
}

// ParseMediaPlaylist parses content as a leaf (segment-listing) playlist.
func ParseMediaPlaylist(content string) (*MediaPlaylist, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	pl := &MediaPlaylist{}
	seq := uint64(0)
	var pendingDuration float64
	var pendingTitle string
	haveSegmentTag := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			pl.TargetDuration, _ = strconv.ParseFloat(strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:"), 64)
		case strings.HasPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"):
			n, err := strconv.ParseUint(strings.TrimPrefix(line, "#EXT-X-MEDIA-SEQUENCE:"), 10, 64)
			if err == nil {
				pl.MediaSequence = n
				seq = n
			}
		case strings.HasPrefix(line, "#EXTINF:"):
			rest := strings.TrimPrefix(line, "#EXTINF:")
			parts := strings.SplitN(rest, ",", 2)
			pendingDuration, _ = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if len(parts) > 1 {
				pendingTitle = parts[1]
			}
			haveSegmentTag = true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if haveSegmentTag {
				pl.Segments = append(pl.Segments, Segment{
					SequenceNumber: seq,
					Duration:       pendingDuration,
					URI:            line,
					Title:          pendingTitle,
				})
				seq++
				pendingDuration = 0
				pendingTitle = ""
				haveSegmentTag = false
			}
		}
	}

	if len(pl.Segments) == 0 && pl.TargetDuration == 0 {
		return nil, errors.New("hls: no media playlist tags found")
	}
	return pl, nil
}

func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	var key strings.Builder
	var val strings.Builder
	inQuotes := false
	inValue := false

	flush := func() {
		k := strings.TrimSpace(key.String())
		if k != "" {
			attrs[k] = val.String()
		}
		key.Reset()
		val.Reset()
		inValue = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			if inValue {
				val.WriteRune(r)
			}
		case r == '=' && !inQuotes && !inValue:
			inValue = true
		case r == ',' && !inQuotes:
			flush()
		default:
			if inValue {
				val.WriteRune(r)
			} else {
				key.WriteRune(r)
			}
		}
	}
	flush()

	for k, v := range attrs {
		attrs[k] = strings.Trim(v, `"`)
	}
	return attrs
}
